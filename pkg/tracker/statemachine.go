// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"fmt"

	"github.com/semi-e090/substrate-core/pkg/substrate"
)

// destSPSToSJS maps the SPS observed AtDestination onto the corresponding
// SJS (§4.3, Group A rule 4).
var destSPSToSJS = map[substrate.SPS]substrate.SJS{
	substrate.SPSProcessed: substrate.SJSProcessed,
	substrate.SPSRejected:  substrate.SJSRejected,
	substrate.SPSSkipped:   substrate.SJSSkipped,
	substrate.SPSStopped:   substrate.SJSStopped,
	substrate.SPSAborted:   substrate.SJSAborted,
}

// computeNextSJS is the pure function behind ServiceBasicSJSStateChangeTriggers
// (§4.3, §9 design notes: "model as a pure function (observed, sjs, sjrs,
// flags) → (next_sjs, reason) for testability"). It never mutates anything;
// the caller decides whether and how to apply the result.
func computeNextSJS(info substrate.Info, sjs substrate.SJS, flags substrate.TriggerFlags) (nextSJS substrate.SJS, reason string) {
	nextSJS = substrate.SJSInitial

	stsIsAtSource := info.STS == substrate.STSAtSource
	stsIsAtDestination := info.STS == substrate.STSAtDestination
	stsIsAtWork := info.STS == substrate.STSAtWork
	isAtSrcLoc := info.IsAtSrcLoc()
	isAtDestLoc := info.IsAtDestLoc()
	spsIsNeedsProcessing := info.SPS == substrate.SPSNeedsProcessing

	// Group A: InfoTriggered rules, first-match-wins chain.
	if flags.Has(substrate.TriggerEnableInfoTriggered) {
		switch {
		case info.SPS == substrate.SPSLost:
			nextSJS = substrate.SJSLost
			reason = "Substrate has been marked Lost"
		case info.SJRS == substrate.SJRSReturn:
			if stsIsAtSource || stsIsAtDestination || isAtSrcLoc || isAtDestLoc {
				nextSJS = substrate.SJSReturned
			} else {
				nextSJS = substrate.SJSReturning
			}
		case stsIsAtSource:
			if info.SPS == substrate.SPSSkipped {
				nextSJS = substrate.SJSSkipped
			}
		case stsIsAtDestination:
			if mapped, ok := destSPSToSJS[info.SPS]; ok {
				nextSJS = mapped
			}
		case info.IsFinal:
			nextSJS = substrate.SJSRemoved
			reason = "Substrate has been removed/deleted unexpectedly"
		}
		if nextSJS != substrate.SJSInitial && reason == "" {
			reason = "Substrate reached a final state processing/transport state"
		}
	}

	// Group B: AbortedAtWork override.
	if nextSJS == substrate.SJSInitial &&
		stsIsAtWork && info.SPS == substrate.SPSAborted &&
		flags.Has(substrate.TriggerEnableAborting) && flags.Has(substrate.TriggerEnableAbortedAtWork) {
		nextSJS = substrate.SJSAborted
		reason = "Substrate reached Aborted state AtWork"
	}

	// Group C: per-current-SJS rules.
	if nextSJS == substrate.SJSInitial {
		switch sjs {
		case substrate.SJSWaitingForStart:
			if flags.Has(substrate.TriggerEnableWaitingForStart) {
				switch {
				case info.SJRS == substrate.SJRSRun && flags.Has(substrate.TriggerEnableAutoStart):
					nextSJS = substrate.SJSRunning
				case info.SJRS == substrate.SJRSPause:
					nextSJS = substrate.SJSPausing
				case info.SJRS == substrate.SJRSStop:
					nextSJS = substrate.SJSStopping
				case info.SJRS == substrate.SJRSAbort:
					nextSJS = substrate.SJSAborting
				}
			}
		case substrate.SJSPausing:
			if flags.Has(substrate.TriggerEnablePausing) {
				switch {
				case info.SJRS == substrate.SJRSStop:
					nextSJS = substrate.SJSStopping
				case info.SJRS == substrate.SJRSAbort:
					nextSJS = substrate.SJSAborting
				case spsIsNeedsProcessing && stsIsAtSource:
					nextSJS = substrate.SJSPaused
				}
			}
		case substrate.SJSStopping:
			if flags.Has(substrate.TriggerEnableStopping) {
				switch {
				case info.SJRS == substrate.SJRSAbort:
					nextSJS = substrate.SJSAborting
				case stsIsAtSource:
					nextSJS = substrate.SJSSkipped
					reason = "Stop completed"
				}
			}
		case substrate.SJSAborting:
			if flags.Has(substrate.TriggerEnableAborting) && stsIsAtSource {
				nextSJS = substrate.SJSSkipped
				reason = "Abort completed"
			}
		case substrate.SJSRunning:
			if flags.Has(substrate.TriggerEnableRunning) {
				switch {
				case info.SJRS == substrate.SJRSPause:
					nextSJS = substrate.SJSPausing
				case info.SJRS == substrate.SJRSStop:
					nextSJS = substrate.SJSStopping
				case info.SJRS == substrate.SJRSAbort:
					nextSJS = substrate.SJSAborting
				}
			}
		default:
			// Paused, Initial and the terminal states (Processed, Stopped,
			// Aborted, ...): no transition originates here.
		}
	}

	return nextSJS, reason
}

// annotateReason appends the observed SPS/STS/SJRS to a transition reason,
// matching the "<reason> [<sps> <sts> <sjrs>]" format used when the state
// machine actually applies a transition (§4.3).
func annotateReason(reason string, info substrate.Info) string {
	return fmt.Sprintf("%s [%s %s %s]", reason, info.SPS, info.STS, info.SJRS)
}
