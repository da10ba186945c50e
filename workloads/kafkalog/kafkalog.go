// Package kafkalog implements the Kafka-style log workload (spec.md
// §4.7, §4.7a): per-key append-only logs with node-assigned offsets,
// polling from an arbitrary offset, and a committed-offset bookmark
// that list_committed_offsets actually reflects rather than echoing
// back each log's current length.
package kafkalog

import (
	"log"
	"sync"

	"maelstrom-node/internal/kafkamirror"
	"maelstrom-node/internal/node"
	"maelstrom-node/internal/proto"
)

// Handler holds every key's log and its committed-offset bookmark.
// mirror is an optional, best-effort observability sink; it is never
// consulted when answering a request.
type Handler struct {
	mirror *kafkamirror.Sink

	mu        sync.RWMutex
	logs      map[string][]uint32
	committed map[string]uint32
}

// New builds an empty Handler, mirroring every append to mirror (which
// may be nil, i.e. disabled).
func New(mirror *kafkamirror.Sink) *Handler {
	return &Handler{
		mirror:    mirror,
		logs:      make(map[string][]uint32),
		committed: make(map[string]uint32),
	}
}

func (h *Handler) Handle(n *node.Node, env proto.Envelope) {
	typ, ok := env.Body.Type()
	if !ok {
		return
	}
	switch typ {
	case "send":
		h.handleSend(n, env)
	case "poll":
		h.handlePoll(n, env)
	case "commit_offsets":
		h.handleCommitOffsets(n, env)
	case "list_committed_offsets":
		h.handleListCommittedOffsets(n, env)
	}
}

type sendRequest struct {
	Key string `json:"key"`
	Msg uint32 `json:"msg"`
}

func (h *Handler) handleSend(n *node.Node, env proto.Envelope) {
	var req sendRequest
	if err := proto.Decode(env.Body, &req); err != nil {
		log.Printf("kafkalog: malformed send request: %v", err)
		return
	}

	h.mu.Lock()
	offset := len(h.logs[req.Key])
	h.logs[req.Key] = append(h.logs[req.Key], req.Msg)
	h.mu.Unlock()

	h.mirror.Send(req.Key, req.Msg)

	if err := n.Reply(env, map[string]any{"offset": offset}); err != nil {
		log.Printf("kafkalog: reply to send failed: %v", err)
	}
}

type pollRequest struct {
	Offsets map[string]uint32 `json:"offsets"`
}

func (h *Handler) handlePoll(n *node.Node, env proto.Envelope) {
	var req pollRequest
	if err := proto.Decode(env.Body, &req); err != nil {
		log.Printf("kafkalog: malformed poll request: %v", err)
		return
	}

	h.mu.RLock()
	msgs := make(map[string][][2]uint32)
	for key, from := range req.Offsets {
		entries, ok := h.logs[key]
		if !ok {
			continue
		}
		for i := int(from); i < len(entries); i++ {
			msgs[key] = append(msgs[key], [2]uint32{uint32(i), entries[i]})
		}
	}
	h.mu.RUnlock()

	if err := n.Reply(env, map[string]any{"msgs": msgs}); err != nil {
		log.Printf("kafkalog: reply to poll failed: %v", err)
	}
}

type commitOffsetsRequest struct {
	Offsets map[string]uint32 `json:"offsets"`
}

func (h *Handler) handleCommitOffsets(n *node.Node, env proto.Envelope) {
	var req commitOffsetsRequest
	if err := proto.Decode(env.Body, &req); err != nil {
		log.Printf("kafkalog: malformed commit_offsets request: %v", err)
		return
	}

	h.mu.Lock()
	for key, offset := range req.Offsets {
		h.committed[key] = offset
	}
	h.mu.Unlock()

	if err := n.Reply(env, map[string]any{}); err != nil {
		log.Printf("kafkalog: reply to commit_offsets failed: %v", err)
	}
}

type listCommittedOffsetsRequest struct {
	Keys []string `json:"keys"`
}

func (h *Handler) handleListCommittedOffsets(n *node.Node, env proto.Envelope) {
	var req listCommittedOffsetsRequest
	if err := proto.Decode(env.Body, &req); err != nil {
		log.Printf("kafkalog: malformed list_committed_offsets request: %v", err)
		return
	}

	h.mu.RLock()
	offsets := make(map[string]uint32)
	for _, key := range req.Keys {
		if _, exists := h.logs[key]; !exists {
			continue
		}
		offsets[key] = h.committed[key]
	}
	h.mu.RUnlock()

	if err := n.Reply(env, map[string]any{"offsets": offsets}); err != nil {
		log.Printf("kafkalog: reply to list_committed_offsets failed: %v", err)
	}
}
