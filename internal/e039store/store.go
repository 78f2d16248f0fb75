// SPDX-License-Identifier: Apache-2.0

// Package e039store is an in-memory reference implementation of the
// store.Store/store.Publisher contracts (§6). A durable E039 object store
// is out of scope for this module (§1 Non-goals: "persistence of history
// beyond the object store"); this package exists so the demo and tests have
// something concrete to run the tracker core against.
package e039store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/semi-e090/substrate-core/pkg/store"
	"github.com/semi-e090/substrate-core/pkg/substrate"
)

// object is the store's mutable record for one substrate. revision is bumped
// on every external mutation or accepted Update, and is how Publisher.Refresh
// detects whether a newer snapshot exists.
type object struct {
	info     substrate.Info
	revision int
}

// Store is an in-memory E039 object store. Safe for concurrent use, though
// the tracker core itself is meant to be driven single-threaded (§5).
type Store struct {
	mu              sync.Mutex
	objects         map[string]*object
	useExternalSync bool
	Logger          *slog.Logger

	// SyncLog records every SyncExternalItem submitted, for test assertions.
	SyncLog []substrate.ID
}

// NewStore creates an empty Store.
func NewStore(logger *slog.Logger, useExternalSync bool) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		objects:         make(map[string]*object),
		useExternalSync: useExternalSync,
		Logger:          logger,
	}
}

// Seed registers a substrate with an initial snapshot, as if it had just
// been created by the E039 layer. Used by the demo and tests to set up
// fixtures; not part of store.Store.
func (s *Store) Seed(id substrate.ID, info substrate.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[id.FullName] = &object{info: info, revision: 1}
}

// Mutate applies an external change (e.g. a transport move or equipment
// event) to a substrate's Info, bumping its revision so observers see it on
// their next refresh. Used by the demo and tests to drive scenarios; not
// part of store.Store.
func (s *Store) Mutate(id substrate.ID, fn func(*substrate.Info)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id.FullName]
	if !ok {
		return fmt.Errorf("e039store: mutate %s: %w", id, store.ErrSubstrateNotFound)
	}
	fn(&obj.info)
	obj.revision++
	return nil
}

// GetPublisher implements store.Store.
func (s *Store) GetPublisher(id substrate.ID) (store.Publisher, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id.FullName]; !ok {
		return nil, false
	}
	return &publisher{store: s, id: id, seenRevision: -1}, true
}

// GetUseExternalSync implements store.Store. The in-memory store does not
// distinguish between addition classes; a single toggle governs all of
// them.
func (s *Store) GetUseExternalSync(_, _, _ bool) bool {
	return s.useExternalSync
}

// Update implements store.TableUpdater.
func (s *Store) Update(items []store.Item) store.Action {
	return &action{store: s, items: items}
}

type action struct {
	store *Store
	items []store.Item
}

// Run applies the batch in order, matching the "submitted atomically in the
// order they are constructed" guarantee (§5).
func (a *action) Run(_ context.Context) error {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	for _, item := range a.items {
		switch it := item.(type) {
		case store.SetAttributesItem:
			obj, ok := a.store.objects[it.ID.FullName]
			if !ok {
				return fmt.Errorf("e039store: update %s: %w", it.ID, store.ErrSubstrateNotFound)
			}
			if sjs, ok := it.Attrs["SJS"]; ok {
				_ = sjs // the in-memory store does not itself track SJS; the tracker is authoritative
			}
			obj.revision++
		case store.SPSUpdateItem:
			obj, ok := a.store.objects[it.ID.FullName]
			if !ok {
				return fmt.Errorf("e039store: update %s: %w", it.ID, store.ErrSubstrateNotFound)
			}
			if it.Behavior.Has(store.PendingSPSUpdate) {
				obj.info.InferredSPS = it.Target
			} else {
				obj.info.SPS = it.Target
				obj.info.InferredSPS = it.Target
			}
			obj.revision++
		case store.SyncExternalItem:
			a.store.SyncLog = append(a.store.SyncLog, it.ID)
		default:
			return fmt.Errorf("e039store: update: unrecognized item type %T", item)
		}
	}
	a.store.Logger.Debug("e039store: applied update batch", "items", len(a.items))
	return nil
}

// publisher is the store.Publisher handed out by GetPublisher. It caches the
// last-observed revision/snapshot so Refresh can report whether anything
// changed.
type publisher struct {
	store        *Store
	id           substrate.ID
	seenRevision int
	snapshot     substrate.Info
}

func (p *publisher) IsUpdateNeeded() bool {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	obj, ok := p.store.objects[p.id.FullName]
	return ok && obj.revision != p.seenRevision
}

func (p *publisher) Refresh(force bool) (changed bool, err error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	obj, ok := p.store.objects[p.id.FullName]
	if !ok {
		return false, fmt.Errorf("e039store: refresh %s: %w", p.id, store.ErrSubstrateNotFound)
	}
	if !force && obj.revision == p.seenRevision {
		return false, nil
	}
	p.snapshot = obj.info
	p.seenRevision = obj.revision
	return true, nil
}

func (p *publisher) Info() substrate.Info {
	return p.snapshot
}
