// Package seqkv is a thin client over the Maelstrom harness's
// sequentially-consistent key-value service, addressed by the
// well-known peer name "seq-kv" (spec.md §4.6, §6). It is a standalone
// adapter over node.Send so any future KV-backed workload can reuse it,
// mirroring kv/src/lib.rs in the original implementation.
package seqkv

import (
	"context"

	"maelstrom-node/internal/ids"
	"maelstrom-node/internal/node"
)

// PeerName is the literal peer id the Maelstrom harness assigns to the
// sequentially-consistent store service.
const PeerName = "seq-kv"

// Client talks to the seq-kv service on behalf of a single node.
type Client struct {
	node *node.Node
}

// New returns a Client bound to n.
func New(n *node.Node) Client {
	return Client{node: n}
}

type readRequest struct {
	Key any `json:"key"`
}

type readResponse[V any] struct {
	Value V `json:"value"`
}

// Read fetches the value stored at key.
func Read[V any](ctx context.Context, c Client, key any) (V, error) {
	resp, err := node.Send[readResponse[V]](ctx, c.node, ids.NamedPeer(PeerName), "read", readRequest{Key: key})
	if err != nil {
		var zero V
		return zero, err
	}
	return resp.Value, nil
}

type writeRequest struct {
	Key   any `json:"key"`
	Value any `json:"value"`
}

type writeResponse struct{}

// Write stores value at key.
func (c Client) Write(ctx context.Context, key, value any) error {
	_, err := node.Send[writeResponse](ctx, c.node, ids.NamedPeer(PeerName), "write", writeRequest{Key: key, Value: value})
	return err
}

type casRequest struct {
	Key              any  `json:"key"`
	From             any  `json:"from"`
	To               any  `json:"to"`
	CreateIfNotExist bool `json:"create_if_not_exists"`
}

type casResponse struct{}

// CAS performs a compare-and-swap at key, creating it first if
// createIfNotExist is set and the key is absent. Exposed for
// completeness even though the counter workload only needs Read/Write;
// any future transactional workload on seq-kv can reuse it.
func (c Client) CAS(ctx context.Context, key, from, to any, createIfNotExist bool) error {
	_, err := node.Send[casResponse](ctx, c.node, ids.NamedPeer(PeerName), "cas", casRequest{
		Key:              key,
		From:             from,
		To:               to,
		CreateIfNotExist: createIfNotExist,
	})
	return err
}
