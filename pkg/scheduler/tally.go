// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"fmt"
	"strings"

	"github.com/semi-e090/substrate-core/pkg/substrate"
	"github.com/semi-e090/substrate-core/pkg/tracker"
)

// Tally is the aggregate counter over a collection of trackers (§4.8).
type Tally struct {
	Total int

	AtSource             int
	AtWork               int
	AtDestination        int
	LostAnywhere         int
	RemovedAnywhere      int
	LostOrRemovedAnywhere int
	OtherSTS             int

	SPSNeedsProcessing int
	SPSInProcess       int
	SPSProcessed       int
	SPSRejected        int
	SPSAborted         int
	SPSSkipped         int
	SPSStopped         int
	SPSLost            int
	OtherSPS           int

	SJSInitial        int
	SJSWaitingForStart int
	SJSRunning        int
	SJSPausing        int
	SJSPaused         int
	SJSStopping       int
	SJSStopped        int
	SJSAborting       int
	SJSAborted        int
	SJSProcessed      int
	SJSRejected       int
	SJSSkipped        int
	SJSLost           int
	SJSReturning      int
	SJSReturned       int
	SJSHeld           int
	SJSRoutingAlarm   int
	SJSRemoved        int
	OtherSJS          int

	// AbortedAtDestination is a secondary SJS count (§3, §4.8): of the
	// trackers counted under SJSAborting, how many are AtDestination.
	AbortedAtDestination int
}

// Add folds one tracker's current state into the tally (§4.8).
func (t *Tally) Add(trk *tracker.SubstrateTracker) {
	t.Total++
	info := trk.Observer.Info()

	switch {
	case info.SPS == substrate.SPSLost:
		t.LostAnywhere++
		t.LostOrRemovedAnywhere++
	case info.IsFinal:
		t.RemovedAnywhere++
		t.LostOrRemovedAnywhere++
	default:
		switch info.STS {
		case substrate.STSAtSource:
			t.AtSource++
		case substrate.STSAtWork:
			t.AtWork++
		case substrate.STSAtDestination:
			t.AtDestination++
		default:
			t.OtherSTS++
		}
	}

	switch info.InferredSPS {
	case substrate.SPSNeedsProcessing:
		t.SPSNeedsProcessing++
	case substrate.SPSInProcess:
		t.SPSInProcess++
	case substrate.SPSProcessed:
		t.SPSProcessed++
	case substrate.SPSRejected:
		t.SPSRejected++
	case substrate.SPSAborted:
		t.SPSAborted++
	case substrate.SPSSkipped:
		t.SPSSkipped++
	case substrate.SPSStopped:
		t.SPSStopped++
	case substrate.SPSLost:
		t.SPSLost++
	default:
		t.OtherSPS++
	}

	switch trk.SJS {
	case substrate.SJSInitial:
		t.SJSInitial++
	case substrate.SJSWaitingForStart:
		t.SJSWaitingForStart++
	case substrate.SJSRunning:
		t.SJSRunning++
	case substrate.SJSPausing:
		t.SJSPausing++
	case substrate.SJSPaused:
		t.SJSPaused++
	case substrate.SJSStopping:
		t.SJSStopping++
	case substrate.SJSStopped:
		t.SJSStopped++
	case substrate.SJSAborting:
		t.SJSAborting++
		if info.STS == substrate.STSAtDestination {
			t.AbortedAtDestination++
		}
	case substrate.SJSAborted:
		t.SJSAborted++
	case substrate.SJSProcessed:
		t.SJSProcessed++
	case substrate.SJSRejected:
		t.SJSRejected++
	case substrate.SJSSkipped:
		t.SJSSkipped++
	case substrate.SJSLost:
		t.SJSLost++
	case substrate.SJSReturning:
		t.SJSReturning++
	case substrate.SJSReturned:
		t.SJSReturned++
	case substrate.SJSHeld:
		t.SJSHeld++
	case substrate.SJSRoutingAlarm:
		t.SJSRoutingAlarm++
	case substrate.SJSRemoved:
		t.SJSRemoved++
	default:
		t.OtherSJS++
	}
}

// renderBucket renders a labelled summary, omitting zero-valued entries.
func renderBucket(label string, counts map[string]int, order []string) string {
	var parts []string
	for _, name := range order {
		if v := counts[name]; v != 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", name, v))
		}
	}
	return fmt.Sprintf("%s:[%s]", label, strings.Join(parts, " "))
}

// STSCounts returns the STS bucket as a name→count map.
func (t *Tally) STSCounts() map[string]int {
	return map[string]int{
		"atSource": t.AtSource, "atWork": t.AtWork, "atDestination": t.AtDestination,
		"lost": t.LostAnywhere, "removed": t.RemovedAnywhere, "other": t.OtherSTS,
	}
}

// SPSCounts returns the SPS bucket as a name→count map.
func (t *Tally) SPSCounts() map[string]int {
	return map[string]int{
		"needsProcessing": t.SPSNeedsProcessing, "inProcess": t.SPSInProcess,
		"processed": t.SPSProcessed, "rejected": t.SPSRejected, "aborted": t.SPSAborted,
		"skipped": t.SPSSkipped, "stopped": t.SPSStopped, "lost": t.SPSLost, "other": t.OtherSPS,
	}
}

// SJSCounts returns the SJS bucket as a name→count map.
func (t *Tally) SJSCounts() map[string]int {
	return map[string]int{
		"initial": t.SJSInitial, "waitingForStart": t.SJSWaitingForStart, "running": t.SJSRunning,
		"pausing": t.SJSPausing, "paused": t.SJSPaused, "stopping": t.SJSStopping, "stopped": t.SJSStopped,
		"aborting": t.SJSAborting, "aborted": t.SJSAborted, "processed": t.SJSProcessed,
		"rejected": t.SJSRejected, "skipped": t.SJSSkipped, "lost": t.SJSLost,
		"returning": t.SJSReturning, "returned": t.SJSReturned, "held": t.SJSHeld,
		"routingAlarm": t.SJSRoutingAlarm, "removed": t.SJSRemoved, "other": t.OtherSJS,
	}
}

var stsOrder = []string{"atSource", "atWork", "atDestination", "lost", "removed", "other"}
var spsOrder = []string{"needsProcessing", "inProcess", "processed", "rejected", "aborted", "skipped", "stopped", "lost", "other"}
var sjsOrder = []string{
	"initial", "waitingForStart", "running", "pausing", "paused", "stopping", "stopped",
	"aborting", "aborted", "processed", "rejected", "skipped", "lost", "returning",
	"returned", "held", "routingAlarm", "removed", "other",
}

// Render produces the combined "sts:[…] sps:[…] sjs:[…]" summary (§4.8).
func (t *Tally) Render() string {
	return fmt.Sprintf("%s %s %s",
		renderBucket("sts", t.STSCounts(), stsOrder),
		renderBucket("sps", t.SPSCounts(), spsOrder),
		renderBucket("sjs", t.SJSCounts(), sjsOrder),
	)
}
