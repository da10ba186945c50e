// SPDX-License-Identifier: MIT

// Package kafkamirror is an optional, best-effort sink that mirrors
// Kafka-workload log appends (SPEC_FULL.md §4.9, §11) to a real Kafka
// broker for operator observability outside the Maelstrom harness. It
// never participates in answering the workload: producer failures are
// logged and otherwise ignored.
//
// Grounded directly on kafka-proxy/kprox.go's runKafkaSender: a
// buffered channel feeds a single goroutine that owns one *kgo.Client
// and calls Produce fire-and-forget, logging only on completion.
package kafkamirror

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Record is one appended message queued for mirroring.
type Record struct {
	Key   string
	Value []byte
}

// Sink owns the mirror goroutine and its Kafka client.
type Sink struct {
	records chan Record
}

// Disabled is a Sink with no broker configured: Send is a cheap no-op.
func Disabled() *Sink { return nil }

// New connects to broker and starts the mirror goroutine. If broker is
// empty, it returns nil (an explicitly disabled sink); callers use
// (*Sink).Send on a nil receiver safely.
func New(broker string, clientID string) *Sink {
	if broker == "" {
		return nil
	}
	s := &Sink{records: make(chan Record, 100)}
	go s.run(broker, clientID)
	return s
}

func (s *Sink) run(broker, clientID string) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ClientID(clientID),
	)
	if err != nil {
		log.Printf("kafkamirror: failed to create client for %s: %v", broker, err)
		// Drain records so Send never blocks even though nothing is
		// actually mirrored.
		for range s.records {
		}
		return
	}
	defer cl.Close()

	for rec := range s.records {
		record := &kgo.Record{
			Topic: "maelstrom." + rec.Key,
			Key:   []byte(rec.Key),
			Value: rec.Value,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		cl.Produce(ctx, record, func(_ *kgo.Record, err error) {
			cancel()
			if err != nil {
				log.Printf("kafkamirror: produce to %s failed: %v", record.Topic, err)
			}
		})
	}
}

// Send enqueues msg appended under key for mirroring. It never blocks
// the caller on network I/O and is a no-op on a nil (disabled) Sink.
func (s *Sink) Send(key string, msg uint32) {
	if s == nil {
		return
	}
	select {
	case s.records <- Record{Key: key, Value: []byte(strconv.FormatUint(uint64(msg), 10))}:
	default:
		log.Printf("kafkamirror: dropping mirror record for key %s, sink backlog full", key)
	}
}
