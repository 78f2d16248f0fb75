// SPDX-License-Identifier: Apache-2.0

// Package tracker implements the per-substrate state machine: SubstrateTracker
// and its process-aware variant SubstrateAndProcessTracker (§3, §4).
package tracker

// JobTrackerLinkage is the external back-reference (§3, §9) from a tracker to
// whatever job object the hosting scheduler has linked it to. It is a
// relation, never ownership: the tracker only ever reads IsDropRequested and
// writes SubstrateTrackerHasBeenUpdated.
type JobTrackerLinkage struct {
	ID string

	// SubstrateTrackerHasBeenUpdated is a single-writer (tracker)/
	// single-reader (linked job) flag: the tracker sets it true whenever its
	// observer reports a changed snapshot; the job owner reads and clears
	// it.
	SubstrateTrackerHasBeenUpdated bool

	// IsDropRequested and DropRequestReason are set by the linked job to
	// ask the tracker to request its own drop (§4.2).
	IsDropRequested   bool
	DropRequestReason string
}

// ClearUpdated clears SubstrateTrackerHasBeenUpdated. Called by the linked
// job reader, never by the tracker.
func (l *JobTrackerLinkage) ClearUpdated() {
	l.SubstrateTrackerHasBeenUpdated = false
}
