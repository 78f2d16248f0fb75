// SPDX-License-Identifier: Apache-2.0

// Command demo hosts a small fleet of SubstrateTrackers against the
// in-memory E039 reference store, servicing them on a jittered interval and
// exposing their aggregate state as Prometheus metrics. It exists to
// exercise pkg/tracker and pkg/scheduler end-to-end; it is not itself part
// of the core library.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/majewsky/gg/option"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sapcc/go-bits/jobloop"

	"github.com/semi-e090/substrate-core/internal/conf"
	"github.com/semi-e090/substrate-core/internal/demoscheduler"
	"github.com/semi-e090/substrate-core/internal/e039store"
	"github.com/semi-e090/substrate-core/internal/logging"
	"github.com/semi-e090/substrate-core/internal/monitoring"
	"github.com/semi-e090/substrate-core/internal/notify"
	"github.com/semi-e090/substrate-core/pkg/scheduler"
	"github.com/semi-e090/substrate-core/pkg/store"
	"github.com/semi-e090/substrate-core/pkg/substrate"
	"github.com/semi-e090/substrate-core/pkg/tracker"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println("substrate-core demo 0.0.1")
		os.Exit(0)
	}

	cfgPath := "/etc/config/conf.json"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	c := conf.GetConfigOrDie(cfgPath)

	log := logging.FromConfig(c.Logging)
	slog.SetDefault(log)

	registry := monitoring.NewRegistry(c.Monitoring)
	tallyMetrics := monitoring.NewTallyCollector("substrate_core_demo")
	registry.MustRegister(tallyMetrics)

	notifier := notify.NewMQTTNotifier(c.MQTT)

	st := e039store.NewStore(log, c.Scheduler.UseExternalSync)
	seedDemoSubstrates(st)

	flags := parseTriggerFlags(c.Scheduler.DefaultTriggerFlags)
	sched := demoscheduler.New(flags, notifier, log)
	seedDemoTrackers(sched, st, log)

	go func() {
		http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", c.Monitoring.Port)
		log.Info("demo: serving metrics", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil { //nolint:gosec // demo binary, no timeouts needed
			log.Error("demo: metrics server failed", "error", err)
		}
	}()

	interval := time.Duration(c.Scheduler.ServiceIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	for {
		tally := &scheduler.Tally{}
		changes := sched.Service(false, tally, scheduler.BaseStateOnline)
		tallyMetrics.Update(tally)
		log.Info("demo: service tick complete", "changes", changes, "tally", tally.Render())
		time.Sleep(jobloop.DefaultJitter(interval))
	}
}

// parseTriggerFlags parses a space-separated list of trigger names. An
// empty string means substrate.TriggerAll.
func parseTriggerFlags(s string) substrate.TriggerFlags {
	if s == "" {
		return substrate.TriggerAll
	}
	names := map[string]substrate.TriggerFlags{
		"InfoTriggered":   substrate.TriggerEnableInfoTriggered,
		"WaitingForStart": substrate.TriggerEnableWaitingForStart,
		"AutoStart":       substrate.TriggerEnableAutoStart,
		"Pausing":         substrate.TriggerEnablePausing,
		"Stopping":        substrate.TriggerEnableStopping,
		"Aborting":        substrate.TriggerEnableAborting,
		"Running":         substrate.TriggerEnableRunning,
		"AbortedAtWork":   substrate.TriggerEnableAbortedAtWork,
	}
	var flags substrate.TriggerFlags
	var word string
	for _, r := range s + " " {
		if r == ' ' {
			if f, ok := names[word]; ok {
				flags |= f
			}
			word = ""
			continue
		}
		word += string(r)
	}
	return flags
}

// seedDemoSubstrates registers a single fixture substrate (Wafer001), standing in
// for what would otherwise arrive from a real E039 object store.
func seedDemoSubstrates(st *e039store.Store) {
	st.Seed(substrate.ID{FullName: "Wafer001"}, substrate.Info{
		STS:         substrate.STSAtSource,
		SPS:         substrate.SPSNeedsProcessing,
		SJRS:        substrate.SJRSNone,
		InferredSPS: substrate.SPSNeedsProcessing,
		LocID:       option.Some("LP1"),
		LinkToSrc:   option.Some("LP1"),
		LinkToDest:  option.Some("LP2"),
	})
}

// seedDemoTrackers binds a SubstrateTracker for every seeded substrate and
// adds it to sched.
func seedDemoTrackers(sched *demoscheduler.Scheduler, st store.Store, log *slog.Logger) {
	id := substrate.ID{FullName: "Wafer001"}
	t, err := tracker.Setup(id, st, store.SystemClock{}, log)
	if err != nil {
		log.Error("demo: failed to set up tracker", "substrate", id.FullName, "error", err)
		return
	}
	sched.Add(t)
}
