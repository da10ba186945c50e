// SPDX-License-Identifier: MIT

package ioline

import (
	"bufio"
	"io"
	"log"

	"maelstrom-node/internal/proto"
)

// StartWriter drains envelopes off the returned channel and writes one
// JSON line per message to w, flushed after each line. done is closed
// once the input channel is closed and every buffered envelope has been
// written, so callers can wait for output to drain before exiting.
func StartWriter(w io.Writer, capacity int) (chan<- proto.Envelope, <-chan struct{}) {
	in := make(chan proto.Envelope, capacity)
	done := make(chan struct{})
	go func() {
		defer close(done)
		bw := bufio.NewWriter(w)
		for env := range in {
			line, err := env.Render()
			if err != nil {
				log.Printf("ioline: dropping unrenderable envelope: %v", err)
				continue
			}
			if _, err := bw.Write(line); err != nil {
				log.Fatalf("ioline: writer stopped: %v", err)
			}
			if err := bw.WriteByte('\n'); err != nil {
				log.Fatalf("ioline: writer stopped: %v", err)
			}
			if err := bw.Flush(); err != nil {
				log.Fatalf("ioline: writer stopped: %v", err)
			}
		}
	}()
	return in, done
}
