// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"testing"

	"github.com/semi-e090/substrate-core/pkg/process"
	"github.com/semi-e090/substrate-core/pkg/store"
	"github.com/semi-e090/substrate-core/pkg/substrate"
)

func newTestSpec(t *testing.T, n int) *process.Spec {
	t.Helper()
	steps := make([]*process.StepSpec, n)
	for i := range steps {
		steps[i] = process.NewStepSpec([]string{"LocA"}, nil)
	}
	spec, err := process.NewSpec("recipeA", nil, steps)
	if err != nil {
		t.Fatalf("expected no error building spec, got %v", err)
	}
	return spec
}

func TestSetupWithProcess_SeedsRemainingSteps(t *testing.T) {
	st := newMockStore()
	id := substrate.ID{FullName: "Wafer001"}
	st.seed(id, substrate.Info{InferredSPS: substrate.SPSNeedsProcessing})
	spec := newTestSpec(t, 3)

	trk, err := SetupWithProcess(id, st, mockClock{}, nil, spec)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(trk.RemainingStepSpecList) != 3 {
		t.Fatalf("RemainingStepSpecList has %d entries, want 3", len(trk.RemainingStepSpecList))
	}
	if trk.NextStepSpec().IsNone() {
		t.Fatal("expected NextStepSpec to be present")
	}
}

func TestAdd_AutoAdvanceConsumesHead(t *testing.T) {
	st := newMockStore()
	id := substrate.ID{FullName: "Wafer001"}
	st.seed(id, substrate.Info{InferredSPS: substrate.SPSNeedsProcessing})
	spec := newTestSpec(t, 2)
	trk, err := SetupWithProcess(id, st, mockClock{}, nil, spec)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	first := trk.NextStepSpec().Unwrap()
	trk.Add(process.TrackerResultItem{
		LocName:  "LocA",
		StepSpec: first,
		Result:   process.NewStepResult("", substrate.SPSUndefined, process.DefaultResultOpts()),
	}, true, true)

	if len(trk.RemainingStepSpecList) != 1 {
		t.Fatalf("RemainingStepSpecList has %d entries, want 1", len(trk.RemainingStepSpecList))
	}
	if len(trk.TrackerStepResultList) != 1 {
		t.Fatalf("TrackerStepResultList has %d entries, want 1", len(trk.TrackerStepResultList))
	}
}

func TestAdd_LatchesFinalSPSOnceStepsExhausted(t *testing.T) {
	st := newMockStore()
	id := substrate.ID{FullName: "Wafer001"}
	st.seed(id, substrate.Info{InferredSPS: substrate.SPSNeedsProcessing})
	spec := newTestSpec(t, 1)
	trk, err := SetupWithProcess(id, st, mockClock{}, nil, spec)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	step := trk.NextStepSpec().Unwrap()
	batchesBefore := len(st.batches)
	trk.Add(process.TrackerResultItem{
		LocName:  "LocA",
		StepSpec: step,
		Result:   process.NewStepResult("", substrate.SPSUndefined, process.DefaultResultOpts()),
	}, true, true)

	if trk.NextStepSpec().IsSome() {
		t.Fatal("expected no remaining steps")
	}
	if len(st.batches) != batchesBefore+1 {
		t.Fatalf("expected exactly one new update batch submitted for the final SPS latch, got %d new", len(st.batches)-batchesBefore)
	}
	last := st.batches[len(st.batches)-1]
	spsItem, ok := last[0].(store.SPSUpdateItem)
	if !ok {
		t.Fatalf("expected an SPSUpdateItem, got %T", last[0])
	}
	if spsItem.Target != substrate.SPSProcessed {
		t.Errorf("final SPS = %s, want Processed (ProcessStepCompleted collapses to Processed)", spsItem.Target)
	}
}

func TestComputeFinalSPS_TerminalFailingWins(t *testing.T) {
	st := newMockStore()
	id := substrate.ID{FullName: "Wafer001"}
	st.seed(id, substrate.Info{InferredSPS: substrate.SPSNeedsProcessing})
	spec := newTestSpec(t, 2)
	trk, err := SetupWithProcess(id, st, mockClock{}, nil, spec)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	trk.TrackerStepResultList = []process.TrackerResultItem{
		{Result: process.StepResult{SPS: substrate.SPSProcessStepCompleted}},
		{Result: process.StepResult{SPS: substrate.SPSRejected}},
	}
	if got := trk.ComputeFinalSPS(); got != substrate.SPSRejected {
		t.Errorf("ComputeFinalSPS() = %s, want Rejected", got)
	}
}
