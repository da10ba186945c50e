// SPDX-License-Identifier: MIT

// Package ioline is the line-oriented glue between stdin/stdout and the
// node runtime: a reader task that decodes envelopes into a bounded
// queue, and a writer task that drains a bounded queue back out.
// Grounded on kafka-proxy/kprox.go's httpListener->channel->kafkaSender
// pipeline: a buffered channel is the queue, a single goroutine owns
// each end.
package ioline

import (
	"bufio"
	"io"
	"log"

	"maelstrom-node/internal/proto"
)

// StartReader reads newline-delimited envelopes from r and pushes them
// onto the returned channel, buffered to capacity. Malformed lines are
// logged and dropped, never sent downstream. The channel is closed when
// r returns an error (including io.EOF), which terminates the reader
// task.
func StartReader(r io.Reader, capacity int) <-chan proto.Envelope {
	out := make(chan proto.Envelope, capacity)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			env, err := proto.ParseLine(line)
			if err != nil {
				log.Printf("ioline: dropping malformed line: %v", err)
				continue
			}
			out <- env
		}
		if err := scanner.Err(); err != nil {
			log.Printf("ioline: reader stopped: %v", err)
		}
	}()
	return out
}
