// Package node implements the Maelstrom node runtime: the init
// handshake, the inbound dispatch loop, reply/send correlation, and the
// handler contract every workload implements against.
package node

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"maelstrom-node/internal/ids"
	"maelstrom-node/internal/mnerr"
	"maelstrom-node/internal/proto"
)

// Handler processes one inbound request envelope. The runtime spawns a
// new task per inbound request and never awaits it, so Handle must be
// safe to run concurrently with itself and with every other method on
// Node.
type Handler interface {
	Handle(n *Node, env proto.Envelope)
}

// Node is the per-process runtime state described in spec.md §3: the
// node's own id, the peer list from init, the msg_id allocator, and the
// pending-reply correlation table.
type Node struct {
	id      ids.NodeID
	nodeIDs []ids.NodeID

	nextMsgID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan proto.Envelope

	out chan<- proto.Envelope

	// tasks launches handler and send-retry goroutines with panic
	// recovery. It is never Wait()ed on: handler tasks and broadcast
	// retries are fire-and-forget by design (spec.md §4.3, §4.5), and
	// the node must return as soon as the inbound stream closes rather
	// than block on stragglers (spec.md §6, "exit code 0 on stream
	// close").
	tasks *errgroup.Group
}

// New creates a Node that writes outbound envelopes to out. The node is
// not usable until Run has processed the init request.
func New(out chan<- proto.Envelope) *Node {
	return &Node{
		pending: make(map[uint64]chan proto.Envelope),
		out:     out,
		tasks:   new(errgroup.Group),
	}
}

// ID returns this node's id. Valid only after Run has observed init.
func (n *Node) ID() ids.NodeID { return n.id }

// NodeIDs returns the full cluster membership from init.
func (n *Node) NodeIDs() []ids.NodeID { return n.nodeIDs }

type initPayload struct {
	NodeID  ids.NodeID   `json:"node_id"`
	NodeIDs []ids.NodeID `json:"node_ids"`
}

// Run awaits the init request, replies to it, and then dispatches
// inbound envelopes until in is closed: responses are correlated to
// their waiter, requests are fanned out to handler on a fresh goroutine
// each. Messages received before init is complete are silently
// skipped, per spec.md §4.3.
func (n *Node) Run(in <-chan proto.Envelope, handler Handler) error {
	if !n.awaitInit(in) {
		return nil
	}
	for env := range in {
		if inReplyTo, ok := env.Body.InReplyTo(); ok {
			n.deliverReply(inReplyTo, env)
			continue
		}
		n.dispatch(handler, env)
	}
	return nil
}

func (n *Node) awaitInit(in <-chan proto.Envelope) bool {
	for env := range in {
		typ, ok := env.Body.Type()
		if !ok || typ != "init" {
			continue
		}
		var p initPayload
		if err := proto.Decode(env.Body, &p); err != nil {
			log.Printf("node: malformed init request: %v", err)
			continue
		}
		n.id = p.NodeID
		n.nodeIDs = p.NodeIDs
		if err := n.Reply(env, map[string]any{}); err != nil {
			log.Printf("node: failed to reply to init: %v", err)
		}
		return true
	}
	return false
}

func (n *Node) dispatch(handler Handler, env proto.Envelope) {
	n.tasks.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("node: recovered handler panic for %v request: %v", env.Body, r)
			}
		}()
		handler.Handle(n, env)
		return nil
	})
}

func (n *Node) deliverReply(msgID uint64, env proto.Envelope) {
	n.mu.Lock()
	ch, found := n.pending[msgID]
	if found {
		delete(n.pending, msgID)
	}
	n.mu.Unlock()
	if !found {
		// Late reply, duplicate, or unsolicited: drop silently.
		return
	}
	ch <- env
}

func (n *Node) clearPending(msgID uint64) {
	n.mu.Lock()
	delete(n.pending, msgID)
	n.mu.Unlock()
}

// Reply sends body as the reply to request, per spec.md §4.3. It fails
// with a MalformedRequestError if the codec cannot build the reply;
// otherwise it blocks until the bounded outbound queue has room.
func (n *Node) Reply(request proto.Envelope, body any) error {
	reply, err := proto.ReplyFor(request, body)
	if err != nil {
		return err
	}
	n.out <- reply
	return nil
}

// ReplyError sends an "error" reply to request carrying errBody.
func (n *Node) ReplyError(request proto.Envelope, errBody mnerr.Body) error {
	reply, err := proto.ErrorReplyFor(request, errBody)
	if err != nil {
		return err
	}
	n.out <- reply
	return nil
}

// ResponseError wraps a peer-reported error body surfaced from Send.
type ResponseError struct {
	Body mnerr.Body
}

func (e *ResponseError) Error() string { return e.Body.Error() }

// DecodeError wraps a reply payload that failed to decode into the
// caller's expected type.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("node: decode reply payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Send allocates a fresh msg_id, enqueues a request of type typ to
// dest, and awaits the correlated reply, decoding its body into R. It
// does not itself implement timeout or retry (spec.md §4.3) — callers
// wrap it (broadcast fan-out does, via context deadlines).
func Send[R any](ctx context.Context, n *Node, dest ids.PeerID, typ string, payload any) (R, error) {
	var zero R

	msgID := n.nextMsgID.Add(1) - 1

	waiter := make(chan proto.Envelope, 1)
	n.mu.Lock()
	n.pending[msgID] = waiter
	n.mu.Unlock()

	req, err := proto.NewRequest(ids.NodePeer(n.id), dest, msgID, typ, payload)
	if err != nil {
		n.clearPending(msgID)
		return zero, err
	}

	select {
	case n.out <- req:
	case <-ctx.Done():
		n.clearPending(msgID)
		return zero, ctx.Err()
	}

	select {
	case reply := <-waiter:
		n.clearPending(msgID)
		if typ, ok := reply.Body.Type(); ok && typ == "error" {
			var body mnerr.Body
			if err := proto.Decode(reply.Body, &body); err != nil {
				return zero, &DecodeError{Err: err}
			}
			return zero, &ResponseError{Body: body}
		}
		var out R
		if err := proto.Decode(reply.Body, &out); err != nil {
			return zero, &DecodeError{Err: err}
		}
		return out, nil
	case <-ctx.Done():
		n.clearPending(msgID)
		return zero, ctx.Err()
	}
}

// Spawn launches fn with panic recovery on the node's shared task pool,
// without ever being awaited — used by workloads (broadcast fan-out)
// whose retry loops run for the life of the process.
func (n *Node) Spawn(fn func()) {
	n.tasks.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("node: recovered task panic: %v", r)
			}
		}()
		fn()
		return nil
	})
}
