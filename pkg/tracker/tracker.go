// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/majewsky/gg/option"
	"github.com/semi-e090/substrate-core/pkg/store"
	"github.com/semi-e090/substrate-core/pkg/substrate"
)

// SubstrateTracker is the per-substrate state machine described in §3/§4: it
// owns an observer on the substrate's E039 object, drives SJS transitions,
// and emits table updates as a side effect of those transitions.
type SubstrateTracker struct {
	SubstID substrate.ID
	Observer store.Publisher
	Logger  *slog.Logger

	SJS  substrate.SJS
	SJRS substrate.SJRS // mirror of the last observed SJRS, kept for inspection/logging

	// DropRequestReason is empty until a drop has been requested (§3,
	// invariant (c): becomes non-empty exactly once, never cleared).
	DropRequestReason string

	// JobLinkage is the optional external back-reference (§3, §9).
	JobLinkage option.Option[*JobTrackerLinkage]

	LastUpdateTimestamp time.Time

	updater store.TableUpdater
	clock   store.Clock

	inService bool
}

// Setup binds the tracker's collaborators, resolves its observer from the
// store, and emits the initial SJS (WaitingForStart). Every call builds a
// new tracker, so Setup never returns ErrAlreadySetup.
func Setup(substID substrate.ID, st store.Store, clock store.Clock, logger *slog.Logger) (*SubstrateTracker, error) {
	publisher, ok := st.GetPublisher(substID)
	if !ok {
		return nil, fmt.Errorf("tracker: setup %s: %w", substID, store.ErrSubstrateNotFound)
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &SubstrateTracker{
		SubstID:  substID,
		Observer: publisher,
		Logger:   logger.With("substrate", substID.FullName),
		SJS:      substrate.SJSInitial,
		updater:  st,
		clock:    clock,
	}
	t.setSubstrateJobState(substrate.SJSWaitingForStart, "Tracker set up", false)
	return t, nil
}

// Service runs one full service tick for this tracker: UpdateIfNeeded,
// ServiceDropReasonAssertion, then ServiceBasicSJSStateChangeTriggers. It
// guards against reentrant invocation (§5) and returns the total count of
// changes observed (0, 1, or 2).
func (t *SubstrateTracker) Service(force bool, flags substrate.TriggerFlags) (changes int, err error) {
	if t.inService {
		return 0, ErrReentrantService
	}
	t.inService = true
	defer func() { t.inService = false }()

	t.UpdateIfNeeded(force)
	changes += t.ServiceDropReasonAssertion()
	changes += t.ServiceBasicSJSStateChangeTriggers(flags)
	return changes, nil
}

// UpdateIfNeeded refreshes the observer and reports whether the observed
// snapshot changed (§4.1).
func (t *SubstrateTracker) UpdateIfNeeded(force bool) bool {
	if !force && !t.Observer.IsUpdateNeeded() {
		return false
	}
	changed, err := t.Observer.Refresh(force)
	if err != nil {
		t.Logger.Error("tracker: failed to refresh observer", "error", err)
		return false
	}
	if changed {
		t.LastUpdateTimestamp = t.clock.Now()
		if t.JobLinkage.IsSome() {
			linkage := t.JobLinkage.Unwrap()
			if !linkage.SubstrateTrackerHasBeenUpdated {
				linkage.SubstrateTrackerHasBeenUpdated = true
			}
		}
	}
	return changed
}

// ServiceDropReasonAssertion evaluates whether a drop should be requested
// and returns 1 if it just assigned a new DropRequestReason, 0 otherwise
// (§4.2). It is a no-op once DropRequestReason is already non-empty
// (invariant (c)).
func (t *SubstrateTracker) ServiceDropReasonAssertion() int {
	if t.DropRequestReason != "" {
		return 0
	}

	info := t.Observer.Info()
	hasLinkage := t.JobLinkage.IsSome()
	var linkage *JobTrackerLinkage
	if hasLinkage {
		linkage = t.JobLinkage.Unwrap()
	}

	var nextReason string
	switch {
	case info.SPS.IsProcessingComplete() && info.STS != substrate.STSAtWork && !hasLinkage:
		nextReason = "Substrate processing done and no Job was linked to it"
	case info.SPS.IsProcessingComplete() && info.STS != substrate.STSAtWork && hasLinkage && linkage.IsDropRequested:
		nextReason = fmt.Sprintf("Substrate processing done and linked Job is requesting to be dropped [%s]", linkage.DropRequestReason)
	case info.IsFinal && !hasLinkage:
		nextReason = "Substrate Object has been removed and no Job was linked to it"
	case info.IsFinal && hasLinkage && linkage.IsDropRequested:
		nextReason = fmt.Sprintf("Substrate Object has been removed and linked Job is requesting to be dropped [%s]", linkage.DropRequestReason)
	case info.IsFinal:
		nextReason = "Substrate Object has been removed unexpectedly"
	case info.IsEmpty:
		nextReason = "Substrate Object has been emptied unexpectedly"
	}

	if nextReason == "" || nextReason == t.DropRequestReason {
		return 0
	}
	t.Logger.Info("tracker: requesting drop", "reason", nextReason)
	t.DropRequestReason = nextReason
	return 1
}

// ServiceBasicSJSStateChangeTriggers runs the §4.3 state machine against the
// current observer snapshot and applies any resulting transition. It
// returns 1 if SJS changed, 0 otherwise. Once SJS is terminal, this never
// changes it again (§8).
func (t *SubstrateTracker) ServiceBasicSJSStateChangeTriggers(flags substrate.TriggerFlags) int {
	if t.SJS.IsTerminal() {
		return 0
	}

	info := t.Observer.Info()
	t.SJRS = info.SJRS

	nextSJS, reason := computeNextSJS(info, t.SJS, flags)
	if nextSJS == substrate.SJSInitial || nextSJS == t.SJS {
		return 0
	}
	t.setSubstrateJobState(nextSJS, annotateReason(reason, info), true)
	return 1
}

// SetSubstrateJobState assigns sjs, emitting the table-update batch
// described in §4.4. ifNeeded=true makes it a no-op when sjs already equals
// the current state.
func (t *SubstrateTracker) SetSubstrateJobState(sjs substrate.SJS, reason string, ifNeeded bool) {
	t.setSubstrateJobState(sjs, reason, ifNeeded)
}

func (t *SubstrateTracker) setSubstrateJobState(sjs substrate.SJS, reason string, ifNeeded bool) {
	if ifNeeded && t.SJS == sjs {
		t.Logger.Debug("tracker: SJS unchanged", "sjs", sjs)
		return
	}

	prev := t.SJS
	t.SJS = sjs
	t.Logger.Info("tracker: SJS transition", "from", prev, "to", sjs, "reason", reason)

	items := []store.Item{
		store.SetAttributesItem{
			ID:    t.SubstID,
			Attrs: map[string]string{"SJS": string(sjs)},
		},
	}
	items = append(items, t.finalSPSItemsFor(sjs)...)

	if len(items) > 1 && t.updater.GetUseExternalSync(false, true, true) {
		items = append(items, store.SyncExternalItem{ID: t.SubstID})
	}

	action := t.updater.Update(items)
	// Submission is synchronous from the caller's perspective (§4.4.4); the
	// state machine itself has no suspension points (§5), so a background
	// context is sufficient here.
	if err := action.Run(context.Background()); err != nil {
		t.Logger.Error("tracker: update submission failed", "error", err)
	}
}

// finalSPSItemsFor builds the SPS-latching portion of a SetSubstrateJobState
// batch, following the per-SJS cases in §4.4.2.
func (t *SubstrateTracker) finalSPSItemsFor(sjs substrate.SJS) []store.Item {
	info := t.Observer.Info()

	finalSPSPattern := func(defaultSPS substrate.SPS) []store.Item {
		if info.SPS.IsProcessingComplete() {
			return nil
		}
		target := defaultSPS
		if info.InferredSPS.IsProcessingComplete() {
			target = info.InferredSPS
		}
		return []store.Item{store.SPSUpdateItem{
			ID:       t.SubstID,
			Target:   target,
			Behavior: store.StandardSPSUpdate | store.BasicSPSLists,
		}}
	}

	switch sjs {
	case substrate.SJSProcessed:
		return finalSPSPattern(substrate.SPSProcessed)
	case substrate.SJSStopped:
		return finalSPSPattern(substrate.SPSStopped)
	case substrate.SJSAborting:
		if info.InferredSPS != substrate.SPSAborted {
			return []store.Item{store.SPSUpdateItem{
				ID:       t.SubstID,
				Target:   substrate.SPSAborted,
				Behavior: store.PendingSPSUpdate | store.BasicSPSLists,
			}}
		}
		return nil
	case substrate.SJSAborted:
		return finalSPSPattern(substrate.SPSAborted)
	case substrate.SJSSkipped:
		return finalSPSPattern(substrate.SPSSkipped)
	case substrate.SJSLost:
		return []store.Item{store.SPSUpdateItem{
			ID:       t.SubstID,
			Target:   substrate.SPSLost,
			Behavior: store.StandardSPSUpdate | store.BasicSPSLists,
		}}
	default:
		// Stopping, Returned, Returning, Held, RoutingAlarm, etc: no extra items.
		return nil
	}
}
