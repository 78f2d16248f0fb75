// SPDX-License-Identifier: Apache-2.0

package e039store

import (
	"fmt"
	"sync"

	"github.com/majewsky/gg/option"
	"github.com/semi-e090/substrate-core/pkg/scheduler"
)

// locationObject mirrors object but for a location's occupant.
type locationObject struct {
	occupant option.Option[string]
	revision int
}

// LocationStore is an in-memory reference implementation of
// scheduler.LocationPublisher, one per location.
type LocationStore struct {
	mu        sync.Mutex
	locations map[string]*locationObject
}

// NewLocationStore creates an empty LocationStore.
func NewLocationStore() *LocationStore {
	return &LocationStore{locations: make(map[string]*locationObject)}
}

// Seed registers a location, initially empty.
func (s *LocationStore) Seed(locID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[locID] = &locationObject{occupant: option.None[string]()}
}

// SetOccupant records a new occupant (or empties the location when
// occupantFullName is None), bumping the location's revision.
func (s *LocationStore) SetOccupant(locID string, occupantFullName option.Option[string]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[locID]
	if !ok {
		return fmt.Errorf("e039store: location %s not found", locID)
	}
	loc.occupant = occupantFullName
	loc.revision++
	return nil
}

// Publisher returns the scheduler.LocationPublisher for locID.
func (s *LocationStore) Publisher(locID string) (scheduler.LocationPublisher, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[locID]; !ok {
		return nil, false
	}
	return &locationPublisher{store: s, locID: locID, seenRevision: -1}, true
}

type locationPublisher struct {
	store        *LocationStore
	locID        string
	seenRevision int
	snapshot     scheduler.LocationInfo
}

func (p *locationPublisher) IsUpdateNeeded() bool {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	loc, ok := p.store.locations[p.locID]
	return ok && loc.revision != p.seenRevision
}

func (p *locationPublisher) Refresh(force bool) (changed bool, err error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	loc, ok := p.store.locations[p.locID]
	if !ok {
		return false, fmt.Errorf("e039store: refresh location %s: not found", p.locID)
	}
	if !force && loc.revision == p.seenRevision {
		return false, nil
	}
	p.snapshot = scheduler.LocationInfo{OccupantFullName: loc.occupant}
	p.seenRevision = loc.revision
	return true, nil
}

func (p *locationPublisher) Info() scheduler.LocationInfo {
	return p.snapshot
}
