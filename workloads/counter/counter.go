// Package counter implements the grow-only counter workload (spec.md
// §4.6, scenario 6): each node keeps its own delta locally and mirrors
// it into the sequentially-consistent store under its own node id, then
// answers "read" by summing every node's delta, forcing a fresh read of
// each via a throwaway write to force the store to linearize it.
package counter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"maelstrom-node/internal/ids"
	"maelstrom-node/internal/mnerr"
	"maelstrom-node/internal/node"
	"maelstrom-node/internal/proto"
	"maelstrom-node/internal/seqkv"
)

// Handler holds this node's running delta and the seq-kv client used to
// publish and fetch every node's contribution.
type Handler struct {
	kv    seqkv.Client
	delta atomic.Int64
	seq   atomic.Int64
}

// New binds a Handler to n's seq-kv client.
func New(n *node.Node) *Handler {
	return &Handler{kv: seqkv.New(n)}
}

func (h *Handler) Handle(n *node.Node, env proto.Envelope) {
	typ, ok := env.Body.Type()
	if !ok {
		return
	}
	switch typ {
	case "add":
		h.handleAdd(n, env)
	case "read":
		h.handleRead(n, env)
	}
}

type addRequest struct {
	Delta int64 `json:"delta"`
}

func (h *Handler) handleAdd(n *node.Node, env proto.Envelope) {
	var req addRequest
	if err := proto.Decode(env.Body, &req); err != nil {
		log.Printf("counter: malformed add request: %v", err)
		return
	}

	newDelta := h.delta.Add(req.Delta)
	if err := h.kv.Write(context.Background(), n.ID().String(), newDelta); err != nil {
		log.Printf("counter: publishing delta for %s failed: %v", n.ID(), err)
	}

	if err := n.Reply(env, map[string]any{}); err != nil {
		log.Printf("counter: reply to add failed: %v", err)
	}
}

func (h *Handler) handleRead(n *node.Node, env proto.Envelope) {
	ctx := context.Background()
	nodeIDs := n.NodeIDs()
	deltas := make([]int64, len(nodeIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range nodeIDs {
		i, id := i, id
		g.Go(func() error {
			d, err := h.fetchNodeDelta(gctx, n, id)
			if err != nil {
				return err
			}
			deltas[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Any other store error is fatal to this request: no reply is
		// sent, and the harness will eventually time it out.
		log.Printf("counter: read failed: %v", err)
		return
	}

	var total int64
	for _, d := range deltas {
		total += d
	}
	if err := n.Reply(env, map[string]any{"value": total}); err != nil {
		log.Printf("counter: reply to read failed: %v", err)
	}
}

// fetchNodeDelta returns id's contribution. For this node it's the
// locally-owned atomic; for a peer, it forces the store to observe a
// fresh value by writing a throwaway key first, then reading the peer's
// published delta. A delta that was never published reads back as
// KeyDoesNotExist, which counts as zero rather than an error.
func (h *Handler) fetchNodeDelta(ctx context.Context, n *node.Node, id ids.NodeID) (int64, error) {
	if id == n.ID() {
		return h.delta.Load(), nil
	}

	seq := h.seq.Add(1)
	if err := h.kv.Write(ctx, fmt.Sprintf("%s_seq", id), seq); err != nil {
		return 0, err
	}

	v, err := seqkv.Read[int64](ctx, h.kv, id.String())
	if err != nil {
		var respErr *node.ResponseError
		if errors.As(err, &respErr) && respErr.Body.Code == mnerr.KeyDoesNotExist {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}
