// SPDX-License-Identifier: Apache-2.0

package scheduler

// Notifier is the sink a Tool attaches to actions it creates, so the
// hosting scheduler wakes up on completion rather than polling (§4.7).
// The core only depends on this small interface; internal/notify ships
// a concrete MQTT-backed implementation.
type Notifier interface {
	Notify(reason string)
}

// BaseState is the equipment-communication "base" state referenced by
// VerifyUseStateChange. The full SEMI equipment-communication stack is out
// of scope for this module (§1 Non-goals); BaseState exists only as the
// minimal input/output VerifyUseStateChange needs to express its contract.
type BaseState string

const (
	BaseStateOffline BaseState = "Offline"
	BaseStateOnline  BaseState = "Online"
)

// Tool is the contract a pluggable scheduling tool implements (§4.7). It is
// generic over the tracker type it manages, so a tool can be built against
// either SubstrateTracker or SubstrateAndProcessTracker.
type Tool[T any] interface {
	// HostingPartNotifier returns the notifier sink attached to actions this
	// tool creates.
	HostingPartNotifier() Notifier

	// Add announces a new tracker under this tool's management.
	Add(t T)

	// Drop announces a tracker's removal from this tool's management.
	Drop(t T)

	// VerifyUseStateChange reports reasons a base-state transition must not
	// proceed. Going offline, any returned reasons are advisory only (the
	// hosting scheduler may still proceed); going online, a non-empty
	// result blocks the transition.
	VerifyUseStateChange(baseState, requestedUseState BaseState, andInitialize bool) []string

	// Service runs one tick of this tool's scheduling logic, folding every
	// managed tracker's state into tally, and returns the count of changes
	// observed. A non-zero count signals the hosting loop to shorten its
	// sleep before the next tick.
	Service(recentTrackerChangeMayHaveOccurred bool, tally *Tally, baseState BaseState) (countOfChanges int)
}
