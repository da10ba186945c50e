// Package uniqueids implements the unique-id-generation workload
// (spec.md §4.8): every "generate" reply packs this node's id into the
// high 32 bits and a locally-owned counter into the low 32 bits, so ids
// are globally unique without any coordination between nodes.
package uniqueids

import (
	"log"
	"sync/atomic"

	"maelstrom-node/internal/node"
	"maelstrom-node/internal/proto"
)

// Handler owns the per-node counter half of the id.
type Handler struct {
	counter atomic.Uint64
}

// New returns a Handler with its counter at zero.
func New() *Handler {
	return &Handler{}
}

func (h *Handler) Handle(n *node.Node, env proto.Envelope) {
	typ, ok := env.Body.Type()
	if !ok || typ != "generate" {
		return
	}
	c := h.counter.Add(1) - 1
	id := uint64(n.ID())<<32 | c
	if err := n.Reply(env, map[string]any{"id": id}); err != nil {
		log.Printf("uniqueids: reply failed: %v", err)
	}
}
