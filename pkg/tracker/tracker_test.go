// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/semi-e090/substrate-core/pkg/store"
	"github.com/semi-e090/substrate-core/pkg/substrate"
)

func TestSetup_NotFound(t *testing.T) {
	st := newMockStore()
	_, err := Setup(substrate.ID{FullName: "Wafer001"}, st, mockClock{}, nil)
	if !errors.Is(err, store.ErrSubstrateNotFound) {
		t.Fatalf("expected ErrSubstrateNotFound, got %v", err)
	}
}

func TestSetup_InitialSJSIsWaitingForStart(t *testing.T) {
	st := newMockStore()
	st.seed(substrate.ID{FullName: "Wafer001"}, substrate.Info{STS: substrate.STSAtSource, SPS: substrate.SPSNeedsProcessing})
	trk, err := Setup(substrate.ID{FullName: "Wafer001"}, st, mockClock{}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if trk.SJS != substrate.SJSWaitingForStart {
		t.Errorf("SJS = %s, want WaitingForStart", trk.SJS)
	}
}

func TestUpdateIfNeeded(t *testing.T) {
	st := newMockStore()
	id := substrate.ID{FullName: "Wafer001"}
	pub := st.seed(id, substrate.Info{})
	trk, err := Setup(id, st, mockClock{t: time.Unix(100, 0)}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if trk.UpdateIfNeeded(false) {
		t.Error("expected no update when nothing changed and force=false")
	}

	pub.needsUpdate = true
	if !trk.UpdateIfNeeded(false) {
		t.Error("expected an update when IsUpdateNeeded is true")
	}
	if trk.LastUpdateTimestamp != time.Unix(100, 0) {
		t.Errorf("LastUpdateTimestamp = %v, want %v", trk.LastUpdateTimestamp, time.Unix(100, 0))
	}
}

func TestServiceDropReasonAssertion(t *testing.T) {
	tests := []struct {
		name   string
		info   substrate.Info
		expect string
	}{
		{
			name:   "processing done, no linkage",
			info:   substrate.Info{SPS: substrate.SPSProcessed, STS: substrate.STSAtDestination},
			expect: "Substrate processing done and no Job was linked to it",
		},
		{
			name:   "removed, no linkage",
			info:   substrate.Info{IsFinal: true},
			expect: "Substrate Object has been removed and no Job was linked to it",
		},
		{
			name:   "emptied unexpectedly",
			info:   substrate.Info{IsEmpty: true},
			expect: "Substrate Object has been emptied unexpectedly",
		},
		{
			name:   "still processing, no drop",
			info:   substrate.Info{SPS: substrate.SPSInProcess, STS: substrate.STSAtWork},
			expect: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMockStore()
			id := substrate.ID{FullName: "Wafer001"}
			st.seed(id, tt.info)
			trk, err := Setup(id, st, mockClock{}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			n := trk.ServiceDropReasonAssertion()
			if tt.expect == "" {
				if trk.DropRequestReason != "" || n != 0 {
					t.Errorf("expected no drop request, got %q (n=%d)", trk.DropRequestReason, n)
				}
				return
			}
			if trk.DropRequestReason != tt.expect {
				t.Errorf("DropRequestReason = %q, want %q", trk.DropRequestReason, tt.expect)
			}
			if n != 1 {
				t.Errorf("expected change count 1, got %d", n)
			}
			// Re-running must be a no-op (invariant (c): never cleared or reassigned).
			if n2 := trk.ServiceDropReasonAssertion(); n2 != 0 {
				t.Errorf("second call returned %d, want 0", n2)
			}
		})
	}
}

func TestService_ReentrancyGuard(t *testing.T) {
	st := newMockStore()
	id := substrate.ID{FullName: "Wafer001"}
	st.seed(id, substrate.Info{})
	trk, err := Setup(id, st, mockClock{}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	trk.inService = true
	if _, err := trk.Service(false, substrate.TriggerAll); !errors.Is(err, ErrReentrantService) {
		t.Fatalf("expected ErrReentrantService, got %v", err)
	}
}

func TestSetSubstrateJobState_IfNeededNoOp(t *testing.T) {
	st := newMockStore()
	id := substrate.ID{FullName: "Wafer001"}
	st.seed(id, substrate.Info{})
	trk, err := Setup(id, st, mockClock{}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	batchesBefore := len(st.batches)
	trk.SetSubstrateJobState(trk.SJS, "no-op check", true)
	if len(st.batches) != batchesBefore {
		t.Error("expected no new update batch when ifNeeded and SJS unchanged")
	}
}

func TestSetSubstrateJobState_ProcessedLatchesSPS(t *testing.T) {
	st := newMockStore()
	id := substrate.ID{FullName: "Wafer001"}
	st.seed(id, substrate.Info{SPS: substrate.SPSInProcess, InferredSPS: substrate.SPSInProcess})
	trk, err := Setup(id, st, mockClock{}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	trk.SetSubstrateJobState(substrate.SJSProcessed, "done", true)

	last := st.batches[len(st.batches)-1]
	var sawSPSUpdate bool
	for _, item := range last {
		if spsItem, ok := item.(store.SPSUpdateItem); ok {
			sawSPSUpdate = true
			if spsItem.Target != substrate.SPSProcessed {
				t.Errorf("SPS target = %s, want Processed", spsItem.Target)
			}
		}
	}
	if !sawSPSUpdate {
		t.Error("expected an SPSUpdateItem in the batch for SJSProcessed")
	}
}

func TestSetSubstrateJobState_ExternalSyncAppended(t *testing.T) {
	st := newMockStore()
	st.useExternalSync = true
	id := substrate.ID{FullName: "Wafer001"}
	st.seed(id, substrate.Info{SPS: substrate.SPSInProcess, InferredSPS: substrate.SPSInProcess})
	trk, err := Setup(id, st, mockClock{}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	trk.SetSubstrateJobState(substrate.SJSProcessed, "done", true)

	last := st.batches[len(st.batches)-1]
	if _, ok := last[len(last)-1].(store.SyncExternalItem); !ok {
		t.Error("expected SyncExternalItem as the last item in a multi-item batch when external sync is enabled")
	}
}
