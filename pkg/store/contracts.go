// SPDX-License-Identifier: Apache-2.0

// Package store declares the E039 object store contract the tracker core
// consumes (§6). The store's durable implementation is out of scope for
// this module; internal/e039store ships an in-memory reference
// implementation used by the demo and by tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/semi-e090/substrate-core/pkg/substrate"
)

// ErrSubstrateNotFound reports that no object is registered for a substrate
// id. GetPublisher signals this with its bool result; tracker.Setup wraps
// this error when GetPublisher finds nothing (§7, SetupError).
var ErrSubstrateNotFound = errors.New("store: substrate not found")

// Publisher is a sequenced source of snapshots for one stored object (§6).
// Observers hold a Publisher and refresh from it; no store-diffing logic
// lives in the tracker itself (§9).
type Publisher interface {
	// IsUpdateNeeded reports whether a newer snapshot is available without
	// necessarily fetching it.
	IsUpdateNeeded() bool
	// Refresh pulls the latest snapshot. changed is true when the snapshot
	// differs from the previously observed one.
	Refresh(force bool) (changed bool, err error)
	// Info returns the most recently refreshed snapshot.
	Info() substrate.Info
}

// UpdateBehavior flags parameterize the helper-generated "E090 update
// items" (§6). They are bit flags so a caller can combine them, e.g.
// StandardSPSUpdate|BasicSPSLists.
type UpdateBehavior uint8

const (
	StandardSPSUpdate UpdateBehavior = 1 << iota
	PendingSPSUpdate
	BasicSPSLists
)

// Has reports whether all bits of want are set.
func (b UpdateBehavior) Has(want UpdateBehavior) bool { return b&want == want }

// Item is one entry of an update batch submitted to a TableUpdater. The
// concrete item kinds below are the only ones the tracker core emits (§6).
type Item interface {
	isUpdateItem()
}

// SetAttributesItem sets attribute(s) on a stored object, e.g. SJS.
type SetAttributesItem struct {
	ID    substrate.ID
	Attrs map[string]string
}

func (SetAttributesItem) isUpdateItem() {}

// SPSUpdateItem is a helper-generated "E090 update item": it asks the store
// to move the substrate's SPS to Target, following Behavior.
type SPSUpdateItem struct {
	ID       substrate.ID
	Target   substrate.SPS
	Behavior UpdateBehavior
}

func (SPSUpdateItem) isUpdateItem() {}

// SyncExternalItem is an external-sync marker appended to a batch when the
// store's external-sync setting is enabled for the batch's class (§4.4.3).
type SyncExternalItem struct {
	ID substrate.ID
}

func (SyncExternalItem) isUpdateItem() {}

// Action is the pending result of an Update call: synchronous from the
// caller's perspective (§4.4.4), awaited via Run.
type Action interface {
	Run(ctx context.Context) error
}

// TableUpdater submits update batches to the E039 store (§6).
type TableUpdater interface {
	// Update submits an ordered batch of items.
	Update(items []Item) Action

	// GetUseExternalSync probes the process-wide "use external sync"
	// setting for a class of additions (§6, §9: injected rather than read
	// from a singleton, to keep tests deterministic).
	GetUseExternalSync(checkNoteMovedAdditions, checkSetSPSAdditions, checkGenerateUpdateAdditions bool) bool
}

// Store combines publisher lookup with update submission: the full E039
// contract a tracker's Setup binds against.
type Store interface {
	GetPublisher(id substrate.ID) (Publisher, bool)
	TableUpdater
}

// Clock is the monotonic timestamp source used for LastUpdateTimestamp
// (§6).
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall-clock Clock implementation.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
