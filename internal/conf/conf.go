// SPDX-License-Identifier: Apache-2.0

// Package conf loads the demo's runtime configuration. Durable config
// storage, secret layering, and hot reload are out of scope for the core
// library; this loader exists only to configure cmd/demo.
package conf

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoggingConfig configures the demo's structured logger.
type LoggingConfig struct {
	LevelStr string `json:"level"`
	Format   string `json:"format"`
}

// MonitoringConfig configures the demo's Prometheus registry.
type MonitoringConfig struct {
	Labels map[string]string `json:"labels"`
	Port   int               `json:"port"`
}

// MQTTConfig configures the demo's notifier sink.
type MQTTConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
}

// SchedulerConfig configures the demo scheduling tool's service cadence and
// default trigger flags.
type SchedulerConfig struct {
	// ServiceIntervalSeconds is the base interval of the hosting loop.
	ServiceIntervalSeconds int `json:"serviceIntervalSeconds"`
	// DefaultTriggerFlags is a space-separated list of trigger names, e.g.
	// "InfoTriggered WaitingForStart AutoStart Running". Empty means All.
	DefaultTriggerFlags string `json:"defaultTriggerFlags"`
	// UseExternalSync toggles whether SetSubstrateJobState batches append a
	// SyncExternalItem (§4.4.3).
	UseExternalSync bool `json:"useExternalSync"`
}

// Config is the demo's top-level configuration.
type Config struct {
	Logging    LoggingConfig    `json:"logging"`
	Monitoring MonitoringConfig `json:"monitoring"`
	MQTT       MQTTConfig       `json:"mqtt"`
	Scheduler  SchedulerConfig  `json:"scheduler"`
}

// GetConfigOrDie reads and parses the config file at path, or panics. It
// follows the pack's "fail fast at startup, never at runtime" convention for
// configuration errors.
func GetConfigOrDie(path string) Config {
	c, err := readConfig(path)
	if err != nil {
		panic(fmt.Errorf("conf: loading %s: %w", path, err))
	}
	return c
}

func readConfig(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}
