// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"context"
	"log/slog"

	"github.com/majewsky/gg/option"
	"github.com/semi-e090/substrate-core/pkg/process"
	"github.com/semi-e090/substrate-core/pkg/store"
	"github.com/semi-e090/substrate-core/pkg/substrate"
)

// SubstrateAndProcessTracker layers step-result accumulation and
// remaining-steps bookkeeping on top of SubstrateTracker (§3, §4.5).
type SubstrateAndProcessTracker struct {
	*SubstrateTracker

	ProcessSpec *process.Spec

	// RemainingStepSpecList is initialised to a copy of ProcessSpec.Steps()
	// and strictly decreases by one per Add when auto-advance is enabled
	// (§3, invariant (d)).
	RemainingStepSpecList []*process.StepSpec

	// TrackerStepResultList records every completed step, in completion
	// order.
	TrackerStepResultList []process.TrackerResultItem
}

// SetupWithProcess binds a SubstrateAndProcessTracker the same way Setup
// binds a plain SubstrateTracker, additionally seeding RemainingStepSpecList
// from spec.
func SetupWithProcess(
	substID substrate.ID,
	st store.Store,
	clock store.Clock,
	logger *slog.Logger,
	spec *process.Spec,
) (*SubstrateAndProcessTracker, error) {
	base, err := Setup(substID, st, clock, logger)
	if err != nil {
		return nil, err
	}
	return &SubstrateAndProcessTracker{
		SubstrateTracker:      base,
		ProcessSpec:           spec,
		RemainingStepSpecList: spec.CopySteps(),
	}, nil
}

// NextStepSpec returns the head of RemainingStepSpecList, or None if there
// is none (§3, invariant (e)).
func (t *SubstrateAndProcessTracker) NextStepSpec() option.Option[*process.StepSpec] {
	if len(t.RemainingStepSpecList) == 0 {
		return option.None[*process.StepSpec]()
	}
	return option.Some(t.RemainingStepSpecList[0])
}

// Add records a completed step result (§4.5). When autoAdvance is set, the
// head of RemainingStepSpecList is consumed; once the list empties and
// autoLatchFinalSPS is set, the substrate's SPS is latched to
// ComputeFinalSPS via the table updater.
func (t *SubstrateAndProcessTracker) Add(item process.TrackerResultItem, autoAdvance, autoLatchFinalSPS bool) {
	t.TrackerStepResultList = append(t.TrackerStepResultList, item)
	t.Logger.Info("tracker: recorded step result",
		"loc", item.LocName, "step", item.StepSpec.StepNum(), "resultCode", item.Result.ResultCode, "sps", item.Result.SPS)

	if !autoAdvance {
		return
	}
	if len(t.RemainingStepSpecList) > 0 {
		t.RemainingStepSpecList = t.RemainingStepSpecList[1:]
	}
	if t.NextStepSpec().IsSome() {
		return
	}
	if !autoLatchFinalSPS {
		return
	}

	final := t.ComputeFinalSPS()
	action := t.updater.Update([]store.Item{
		store.SPSUpdateItem{
			ID:       t.SubstID,
			Target:   final,
			Behavior: store.StandardSPSUpdate | store.BasicSPSLists,
		},
	})
	if err := action.Run(context.Background()); err != nil {
		t.Logger.Error("tracker: final SPS submission failed", "error", err)
	}
}

// ComputeFinalSPS reduces TrackerStepResultList left-to-right starting from
// the observer's InferredSPS, merging each step result's SPS with the
// monotone SPS-merge operator (§4.5, §8). A merged ProcessStepCompleted
// collapses to Processed.
func (t *SubstrateAndProcessTracker) ComputeFinalSPS() substrate.SPS {
	merged := t.Observer.Info().InferredSPS
	for _, item := range t.TrackerStepResultList {
		merged = merged.Merge(item.Result.SPS)
	}
	if merged == substrate.SPSProcessStepCompleted {
		return substrate.SPSProcessed
	}
	return merged
}
