// SPDX-License-Identifier: Apache-2.0

// Package scheduler declares the contract a pluggable scheduling tool
// implements (§4.7), plus two small leaf components the tool relies on:
// SubstLocObserverWithTrackerLookup (§4.6) and SubstrateStateTally (§4.8).
package scheduler

import (
	"github.com/majewsky/gg/option"
	"github.com/semi-e090/substrate-core/pkg/tracker"
)

// LocationInfo is the observed snapshot of one location's contents.
type LocationInfo struct {
	OccupantFullName option.Option[string]
}

// LocationPublisher is a sequenced source of LocationInfo snapshots,
// analogous to store.Publisher but for locations rather than substrates.
type LocationPublisher interface {
	IsUpdateNeeded() bool
	Refresh(force bool) (changed bool, err error)
	Info() LocationInfo
}

// TrackerMap is the shared full_name→tracker mapping (§4.6, §5, §9): owned
// by the scheduler and mutated only when trackers are added/dropped by the
// service loop. Location observers hold a relation to it, never ownership.
type TrackerMap map[string]*tracker.SubstrateTracker

// SubstLocObserverWithTrackerLookup wraps a location publisher and, on every
// refresh that reports a change, resolves the new occupant's full_name to a
// tracker via the shared TrackerMap (§4.6).
type SubstLocObserverWithTrackerLookup struct {
	Publisher LocationPublisher
	Trackers  TrackerMap

	// Tracker is the resolved occupant tracker, or None if the location is
	// empty or its occupant has no known tracker.
	Tracker option.Option[*tracker.SubstrateTracker]
}

// NewSubstLocObserverWithTrackerLookup wraps publisher with tracker
// resolution against the shared map.
func NewSubstLocObserverWithTrackerLookup(publisher LocationPublisher, trackers TrackerMap) *SubstLocObserverWithTrackerLookup {
	return &SubstLocObserverWithTrackerLookup{Publisher: publisher, Trackers: trackers}
}

// Refresh refreshes the wrapped publisher and re-resolves Tracker whenever
// the location's contents changed.
func (o *SubstLocObserverWithTrackerLookup) Refresh(force bool) (changed bool, err error) {
	changed, err = o.Publisher.Refresh(force)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	o.resolve()
	return true, nil
}

func (o *SubstLocObserverWithTrackerLookup) resolve() {
	info := o.Publisher.Info()
	if info.OccupantFullName.IsNone() {
		o.Tracker = option.None[*tracker.SubstrateTracker]()
		return
	}
	fullName := info.OccupantFullName.Unwrap()
	if t, found := o.Trackers[fullName]; found {
		o.Tracker = option.Some(t)
	} else {
		o.Tracker = option.None[*tracker.SubstrateTracker]()
	}
}

// IsUpdateNeeded delegates to the wrapped publisher.
func (o *SubstLocObserverWithTrackerLookup) IsUpdateNeeded() bool {
	return o.Publisher.IsUpdateNeeded()
}
