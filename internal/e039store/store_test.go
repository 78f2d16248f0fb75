// SPDX-License-Identifier: Apache-2.0

package e039store

import (
	"context"
	"errors"
	"testing"

	"github.com/majewsky/gg/option"
	"github.com/semi-e090/substrate-core/pkg/store"
	"github.com/semi-e090/substrate-core/pkg/substrate"
)

func TestStore_GetPublisher_NotFound(t *testing.T) {
	st := NewStore(nil, false)
	if _, ok := st.GetPublisher(substrate.ID{FullName: "Wafer001"}); ok {
		t.Error("expected GetPublisher to report not-found for an unseeded substrate")
	}
}

func TestStore_PublisherTracksRevisions(t *testing.T) {
	st := NewStore(nil, false)
	id := substrate.ID{FullName: "Wafer001"}
	st.Seed(id, substrate.Info{STS: substrate.STSAtSource})

	pub, ok := st.GetPublisher(id)
	if !ok {
		t.Fatal("expected GetPublisher to succeed")
	}
	if !pub.IsUpdateNeeded() {
		t.Error("expected IsUpdateNeeded() true before the first refresh")
	}
	changed, err := pub.Refresh(false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !changed {
		t.Error("expected the first refresh to report changed=true")
	}
	if pub.IsUpdateNeeded() {
		t.Error("expected IsUpdateNeeded() false immediately after a refresh")
	}

	if err := st.Mutate(id, func(i *substrate.Info) { i.STS = substrate.STSAtWork }); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !pub.IsUpdateNeeded() {
		t.Error("expected IsUpdateNeeded() true after an external mutation")
	}
	changed, err = pub.Refresh(false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !changed {
		t.Error("expected refresh to report changed=true after the mutation")
	}
	if pub.Info().STS != substrate.STSAtWork {
		t.Errorf("Info().STS = %s, want AtWork", pub.Info().STS)
	}
}

func TestStore_Mutate_NotFound(t *testing.T) {
	st := NewStore(nil, false)
	err := st.Mutate(substrate.ID{FullName: "Ghost"}, func(*substrate.Info) {})
	if !errors.Is(err, store.ErrSubstrateNotFound) {
		t.Fatalf("expected ErrSubstrateNotFound, got %v", err)
	}
}

func TestStore_Update_SPSUpdateItem(t *testing.T) {
	st := NewStore(nil, false)
	id := substrate.ID{FullName: "Wafer001"}
	st.Seed(id, substrate.Info{SPS: substrate.SPSInProcess, InferredSPS: substrate.SPSInProcess})

	action := st.Update([]store.Item{
		store.SPSUpdateItem{ID: id, Target: substrate.SPSProcessed, Behavior: store.StandardSPSUpdate},
	})
	if err := action.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	pub, _ := st.GetPublisher(id)
	if _, err := pub.Refresh(true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pub.Info().SPS != substrate.SPSProcessed {
		t.Errorf("SPS = %s, want Processed", pub.Info().SPS)
	}
}

func TestStore_Update_PendingSPSUpdateOnlySetsInferred(t *testing.T) {
	st := NewStore(nil, false)
	id := substrate.ID{FullName: "Wafer001"}
	st.Seed(id, substrate.Info{SPS: substrate.SPSInProcess, InferredSPS: substrate.SPSInProcess})

	action := st.Update([]store.Item{
		store.SPSUpdateItem{ID: id, Target: substrate.SPSAborted, Behavior: store.PendingSPSUpdate},
	})
	if err := action.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	pub, _ := st.GetPublisher(id)
	if _, err := pub.Refresh(true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pub.Info().SPS != substrate.SPSInProcess {
		t.Errorf("SPS = %s, want unchanged InProcess", pub.Info().SPS)
	}
	if pub.Info().InferredSPS != substrate.SPSAborted {
		t.Errorf("InferredSPS = %s, want Aborted", pub.Info().InferredSPS)
	}
}

func TestStore_Update_SyncExternalItemRecorded(t *testing.T) {
	st := NewStore(nil, true)
	id := substrate.ID{FullName: "Wafer001"}
	st.Seed(id, substrate.Info{})

	action := st.Update([]store.Item{store.SyncExternalItem{ID: id}})
	if err := action.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(st.SyncLog) != 1 || st.SyncLog[0] != id {
		t.Errorf("SyncLog = %v, want [%v]", st.SyncLog, id)
	}
}

func TestLocationStore_SetOccupant(t *testing.T) {
	ls := NewLocationStore()
	ls.Seed("LP1")

	pub, ok := ls.Publisher("LP1")
	if !ok {
		t.Fatal("expected Publisher to succeed for a seeded location")
	}
	if _, err := pub.Refresh(true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pub.Info().OccupantFullName.IsSome() {
		t.Error("expected an empty location to report no occupant")
	}

	if err := ls.SetOccupant("LP1", option.Some("Wafer001")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !pub.IsUpdateNeeded() {
		t.Error("expected IsUpdateNeeded() true after SetOccupant")
	}
	if _, err := pub.Refresh(false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := pub.Info().OccupantFullName; got.IsNone() || got.Unwrap() != "Wafer001" {
		t.Errorf("OccupantFullName = %v, want Some(Wafer001)", got)
	}
}
