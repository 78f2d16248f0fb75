// SPDX-License-Identifier: Apache-2.0

package process

import "github.com/semi-e090/substrate-core/pkg/substrate"

// ResultOpts configures the default-derivation policy used by NewStepResult
// when the caller leaves SPS undefined (§3).
type ResultOpts struct {
	// DefaultSucceededSPS is used when ResultCode is empty and SPS was left
	// Undefined. Defaults to ProcessStepCompleted.
	DefaultSucceededSPS substrate.SPS
	// FallbackFailedSPS is used when ResultCode is non-empty and SPS was
	// left Undefined. Defaults to Rejected.
	FallbackFailedSPS substrate.SPS
}

// DefaultResultOpts returns the spec's stated defaults.
func DefaultResultOpts() ResultOpts {
	return ResultOpts{
		DefaultSucceededSPS: substrate.SPSProcessStepCompleted,
		FallbackFailedSPS:   substrate.SPSRejected,
	}
}

// StepResult is the outcome of running a single process step: an empty
// ResultCode means success.
type StepResult struct {
	ResultCode string
	SPS        substrate.SPS
}

// NewStepResult builds a StepResult, deriving SPS from ResultCode per the
// constructor policy in §3 when the caller leaves sps Undefined.
func NewStepResult(resultCode string, sps substrate.SPS, opts ResultOpts) StepResult {
	if sps != substrate.SPSUndefined {
		return StepResult{ResultCode: resultCode, SPS: sps}
	}
	if resultCode == "" {
		return StepResult{ResultCode: resultCode, SPS: opts.DefaultSucceededSPS}
	}
	return StepResult{ResultCode: resultCode, SPS: opts.FallbackFailedSPS}
}

// Succeeded reports whether this result represents a successful step.
func (r StepResult) Succeeded() bool { return r.ResultCode == "" }

// TrackerResultItem records one completed step for a SubstrateAndProcessTracker.
type TrackerResultItem struct {
	LocName  string
	StepSpec *StepSpec
	Result   StepResult
}
