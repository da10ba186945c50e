// Package broadcast implements the broadcast/gossip workload (spec.md
// §4.4, §4.5): dedup incoming messages, answer immediately, and fan the
// new ones out to the topology-derived peer set with an indefinite
// retry loop, never blocking the reply on fan-out completing.
package broadcast

import (
	"context"
	"log"
	"sync"
	"time"

	"maelstrom-node/internal/config"
	"maelstrom-node/internal/ids"
	"maelstrom-node/internal/node"
	"maelstrom-node/internal/proto"
	"maelstrom-node/internal/topology"
)

// Handler tracks every message seen so far and the current fan-out
// peer set derived from the last "topology" request.
type Handler struct {
	retryBaseDelay    time.Duration
	retryBackoffRatio float64

	mu          sync.RWMutex
	seen        map[uint64]struct{}
	broadcastTo []ids.NodeID
}

// New builds a Handler using cfg's retry timing (spec.md §4.5: 100ms
// initial window, 1.5x backoff, by default).
func New(cfg config.Config) *Handler {
	return &Handler{
		retryBaseDelay:    time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond,
		retryBackoffRatio: float64(cfg.RetryBackoffPermille) / 1000,
		seen:              make(map[uint64]struct{}),
	}
}

func (h *Handler) Handle(n *node.Node, env proto.Envelope) {
	typ, ok := env.Body.Type()
	if !ok {
		return
	}
	switch typ {
	case "topology":
		h.handleTopology(n, env)
	case "broadcast":
		h.handleBroadcast(n, env)
	case "read":
		h.handleRead(n, env)
	}
}

type topologyRequest struct {
	Topology map[ids.NodeID][]ids.NodeID `json:"topology"`
}

func (h *Handler) handleTopology(n *node.Node, env proto.Envelope) {
	var req topologyRequest
	if err := proto.Decode(env.Body, &req); err != nil {
		log.Printf("broadcast: malformed topology request: %v", err)
		return
	}
	g := topology.New(req.Topology)
	next := g.Next(n.ID())

	h.mu.Lock()
	h.broadcastTo = next
	h.mu.Unlock()

	if err := n.Reply(env, map[string]any{}); err != nil {
		log.Printf("broadcast: reply to topology failed: %v", err)
	}
}

type broadcastRequest struct {
	Message uint64 `json:"message"`
}

// handleBroadcast replies before fan-out completes (spec.md §4.5: the
// reply only confirms receipt, not propagation) and skips fan-out
// entirely for a message this node has already seen.
func (h *Handler) handleBroadcast(n *node.Node, env proto.Envelope) {
	var req broadcastRequest
	if err := proto.Decode(env.Body, &req); err != nil {
		log.Printf("broadcast: malformed broadcast request: %v", err)
		return
	}

	h.mu.Lock()
	_, alreadySeen := h.seen[req.Message]
	if !alreadySeen {
		h.seen[req.Message] = struct{}{}
	}
	h.mu.Unlock()

	if err := n.Reply(env, map[string]any{}); err != nil {
		log.Printf("broadcast: reply to broadcast failed: %v", err)
	}

	if alreadySeen {
		return
	}
	h.fanOut(n, env.Src, req.Message)
}

// fanOut spawns one indefinite retry loop per recipient, excluding
// whichever peer this message arrived from.
func (h *Handler) fanOut(n *node.Node, from ids.PeerID, message uint64) {
	h.mu.RLock()
	recipients := append([]ids.NodeID(nil), h.broadcastTo...)
	h.mu.RUnlock()

	senderNode, senderIsNode := from.AsNode()
	for _, peer := range recipients {
		if senderIsNode && peer == senderNode {
			continue
		}
		peer := peer
		n.Spawn(func() { h.retryBroadcast(n, peer, message) })
	}
}

// retryBroadcast resends message to peer until it gets a non-error
// reply, backing off the per-attempt timeout geometrically (spec.md §4.5).
// Since Send has no built-in retry, this loop owns it; it runs for the
// life of the process on a spawned task, never awaited.
func (h *Handler) retryBroadcast(n *node.Node, peer ids.NodeID, message uint64) {
	delay := h.retryBaseDelay
	for {
		ctx, cancel := context.WithTimeout(context.Background(), delay)
		_, err := node.Send[map[string]any](ctx, n, ids.NodePeer(peer), "broadcast", broadcastRequest{Message: message})
		cancel()
		if err == nil {
			return
		}
		delay = time.Duration(float64(delay) * h.retryBackoffRatio)
	}
}

func (h *Handler) handleRead(n *node.Node, env proto.Envelope) {
	h.mu.RLock()
	messages := make([]uint64, 0, len(h.seen))
	for m := range h.seen {
		messages = append(messages, m)
	}
	h.mu.RUnlock()

	if err := n.Reply(env, map[string]any{"messages": messages}); err != nil {
		log.Printf("broadcast: reply to read failed: %v", err)
	}
}
