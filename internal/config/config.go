// SPDX-License-Identifier: MIT

// Package config loads the optional, non-protocol operational knobs a
// workload binary accepts: broadcast retry timing, the shared
// inbound/outbound queue capacity, and the optional Kafka mirror
// broker address. None of these affect wire-protocol behavior — every
// field defaults to the value spec.md hardcodes, so a node run with no
// config file at all behaves exactly as the specification describes.
package config

import (
	"fmt"
	"os"

	"github.com/lars-t-hansen/ini"
)

// Config holds the tunable operational knobs. The spec-mandated default
// set comes from Defaults(); the zero value has every knob at zero.
type Config struct {
	// RetryBaseDelayMS is the initial broadcast fan-out retry window
	// (spec.md §4.5: "initial window 100ms").
	RetryBaseDelayMS uint64
	// RetryBackoffPermille is the fan-out retry backoff multiplier
	// expressed in thousandths (1500 == 1.5x), since the ini parser
	// used here has no float accessor.
	RetryBackoffPermille uint64
	// QueueCapacity is the bounded inbound/outbound queue size
	// (spec.md §4.2: "capacity 100").
	QueueCapacity uint64
	// KafkaMirrorBroker is the seed broker address for the optional
	// Kafka mirror sink (SPEC_FULL.md §4.9). Empty disables the sink.
	KafkaMirrorBroker string
}

// Defaults returns the spec-mandated defaults.
func Defaults() Config {
	return Config{
		RetryBaseDelayMS:     100,
		RetryBackoffPermille: 1500,
		QueueCapacity:        100,
	}
}

// Load parses at most one positional argument as an ini file path and
// overlays any present keys on top of Defaults(). A missing argument
// leaves every field at its default; a path that cannot be opened is
// an error. Malformed ini content is fatal: like kafka-proxy/kprox.go, a bad
// config file is a deployment mistake, not something to run through.
func Load(args []string) (Config, error) {
	cfg := Defaults()
	if len(args) == 0 {
		return cfg, nil
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	parser := ini.NewParser()
	broadcastSect := parser.AddSection("broadcast")
	baseDelay := broadcastSect.AddUint64("base-delay-ms")
	backoffPermille := broadcastSect.AddUint64("backoff-permille")
	ioSect := parser.AddSection("io")
	queueCapacity := ioSect.AddUint64("queue-capacity")
	mirrorSect := parser.AddSection("kafka-mirror")
	broker := mirrorSect.AddString("broker")

	store, err := parser.Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if baseDelay.Present(store) {
		cfg.RetryBaseDelayMS = baseDelay.Uint64Val(store)
	}
	if backoffPermille.Present(store) {
		cfg.RetryBackoffPermille = backoffPermille.Uint64Val(store)
	}
	if queueCapacity.Present(store) {
		cfg.QueueCapacity = queueCapacity.Uint64Val(store)
	}
	if broker.Present(store) {
		cfg.KafkaMirrorBroker = broker.StringVal(store)
	}

	return cfg, nil
}
