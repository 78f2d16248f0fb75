// SPDX-License-Identifier: Apache-2.0

// Package notify provides concrete scheduler.Notifier implementations. The
// core state machine only depends on the small scheduler.Notifier
// interface; this package supplies the pack-grounded MQTT wiring used by
// the demo (§11 Domain Stack).
package notify

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sapcc/go-bits/jobloop"

	"github.com/semi-e090/substrate-core/internal/conf"
)

// Client is the subset of an MQTT client the notifier needs.
type Client interface {
	Connect() error
	Publish(topic, reason string)
	Disconnect()
}

type client struct {
	conf    conf.MQTTConfig
	client  mqtt.Client
	lock    sync.Mutex
	retries int
}

// NewClient builds an MQTT-backed Client from conf.
func NewClient(cfg conf.MQTTConfig) Client {
	return &client{conf: cfg, retries: 5}
}

func (c *client) onUnexpectedConnectionLoss(_ mqtt.Client, err error) {
	slog.Error("notify: connection to mqtt broker lost", "error", err)
	c.client = nil
	for retry := range c.retries {
		if connErr := c.Connect(); connErr != nil {
			slog.Error("notify: failed to reconnect", "error", connErr, "attempt", retry+1)
			time.Sleep(jobloop.DefaultJitter(time.Second))
			continue
		}
		slog.Info("notify: reconnected to mqtt broker")
		return
	}
	slog.Error("notify: giving up reconnecting to mqtt broker")
}

func (c *client) Connect() error {
	if c.client != nil {
		return nil
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.conf.URL)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(true)
	opts.SetConnectionLostHandler(c.onUnexpectedConnectionLoss)
	//nolint:gosec // client id uniqueness, not a security boundary
	opts.SetClientID(fmt.Sprintf("substrate-core-%d", rand.Intn(1_000_000)))
	opts.SetUsername(c.conf.Username)
	opts.SetPassword(c.conf.Password)

	cl := mqtt.NewClient(opts)
	if tok := cl.Connect(); tok.Wait() && tok.Error() != nil {
		return tok.Error()
	}
	c.client = cl
	return nil
}

func (c *client) Publish(topic, reason string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.Connect(); err != nil {
		slog.Error("notify: failed to connect before publish", "error", err)
		return
	}
	tok := c.client.Publish(topic, 1, false, reason)
	if tok.Wait() && tok.Error() != nil {
		slog.Error("notify: failed to publish", "error", tok.Error(), "topic", topic)
	}
}

func (c *client) Disconnect() {
	if c.client == nil {
		return
	}
	c.client.Disconnect(1000)
	c.client = nil
}

// MQTTNotifier implements scheduler.Notifier by publishing reason strings to
// a fixed topic whenever Notify is called. Nothing in this module subscribes
// to that topic; the demo's service loop runs on its own timer.
type MQTTNotifier struct {
	Client Client
	Topic  string
}

// NewMQTTNotifier builds an MQTTNotifier from conf.
func NewMQTTNotifier(cfg conf.MQTTConfig) *MQTTNotifier {
	return &MQTTNotifier{Client: NewClient(cfg), Topic: cfg.Topic}
}

// Notify publishes reason to the configured topic.
func (n *MQTTNotifier) Notify(reason string) {
	n.Client.Publish(n.Topic, reason)
}
