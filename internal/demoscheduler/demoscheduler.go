// SPDX-License-Identifier: Apache-2.0

// Package demoscheduler provides a minimal but real scheduler.Tool
// implementation: it tracks a set of SubstrateTrackers by name, services all
// of them on each tick, and folds their state into a scheduler.Tally (§11
// Domain Stack, §12 Supplemented Features). Grounded on the teacher's
// BasePipelineController map-of-managed-items shape, with the Kubernetes
// reconciliation loop stripped out in favor of direct Service calls.
package demoscheduler

import (
	"log/slog"
	"sync"

	"github.com/semi-e090/substrate-core/pkg/scheduler"
	"github.com/semi-e090/substrate-core/pkg/substrate"
	"github.com/semi-e090/substrate-core/pkg/tracker"
)

// Scheduler manages a set of SubstrateTrackers keyed by their substrate's
// full name and implements scheduler.Tool[*tracker.SubstrateTracker].
type Scheduler struct {
	mu       sync.Mutex
	trackers scheduler.TrackerMap
	flags    substrate.TriggerFlags
	notifier scheduler.Notifier
	logger   *slog.Logger
}

var _ scheduler.Tool[*tracker.SubstrateTracker] = (*Scheduler)(nil)

// New builds a Scheduler that services every managed tracker with flags on
// each tick and notifies via notifier whenever a tick produces changes.
func New(flags substrate.TriggerFlags, notifier scheduler.Notifier, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		trackers: make(scheduler.TrackerMap),
		flags:    flags,
		notifier: notifier,
		logger:   logger,
	}
}

// Trackers exposes the shared full_name→tracker map so
// SubstLocObserverWithTrackerLookup instances can resolve occupants against
// it (§4.6).
func (s *Scheduler) Trackers() scheduler.TrackerMap {
	return s.trackers
}

// HostingPartNotifier implements scheduler.Tool.
func (s *Scheduler) HostingPartNotifier() scheduler.Notifier {
	return s.notifier
}

// Add implements scheduler.Tool.
func (s *Scheduler) Add(t *tracker.SubstrateTracker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers[t.SubstID.FullName] = t
	s.logger.Info("demoscheduler: tracker added", "substrate", t.SubstID.FullName)
}

// Drop implements scheduler.Tool.
func (s *Scheduler) Drop(t *tracker.SubstrateTracker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trackers, t.SubstID.FullName)
	s.logger.Info("demoscheduler: tracker dropped", "substrate", t.SubstID.FullName, "reason", t.DropRequestReason)
}

// VerifyUseStateChange implements scheduler.Tool. The demo has no base-state
// dependent scheduling logic of its own, so it never blocks a transition.
func (s *Scheduler) VerifyUseStateChange(_, _ scheduler.BaseState, _ bool) []string {
	return nil
}

// Service implements scheduler.Tool: it services every managed tracker,
// drops any that have requested it, folds the survivors into tally, and
// notifies when anything changed.
func (s *Scheduler) Service(_ bool, tally *scheduler.Tally, _ scheduler.BaseState) (countOfChanges int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var toDrop []*tracker.SubstrateTracker
	for _, t := range s.trackers {
		changes, err := t.Service(false, s.flags)
		if err != nil {
			s.logger.Error("demoscheduler: service failed", "substrate", t.SubstID.FullName, "error", err)
			continue
		}
		countOfChanges += changes
		if t.DropRequestReason != "" {
			toDrop = append(toDrop, t)
			continue
		}
		tally.Add(t)
	}

	for _, t := range toDrop {
		delete(s.trackers, t.SubstID.FullName)
		s.logger.Info("demoscheduler: tracker dropped", "substrate", t.SubstID.FullName, "reason", t.DropRequestReason)
		countOfChanges++
	}

	if countOfChanges > 0 && s.notifier != nil {
		s.notifier.Notify(tally.Render())
	}
	return countOfChanges
}
