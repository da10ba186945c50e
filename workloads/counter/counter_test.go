package counter

import (
	"fmt"
	"sync"
	"testing"

	"maelstrom-node/internal/ids"
	"maelstrom-node/internal/mnerr"
	"maelstrom-node/internal/node"
	"maelstrom-node/internal/proto"
	"maelstrom-node/internal/seqkv"
)

// fakeSeqKV services every request addressed to the seq-kv peer out of an
// in-memory map, and forwards everything else (replies bound for the
// original caller) onto client. It runs until out is closed.
func fakeSeqKV(in chan<- proto.Envelope, out <-chan proto.Envelope, client chan<- proto.Envelope) {
	var mu sync.Mutex
	store := make(map[string]any)

	for env := range out {
		if env.Dest.String() != seqkv.PeerName {
			client <- env
			continue
		}
		typ, _ := env.Body.Type()
		key := fmt.Sprintf("%v", env.Body["key"])
		switch typ {
		case "write":
			mu.Lock()
			store[key] = env.Body["value"]
			mu.Unlock()
			reply, _ := proto.ReplyFor(env, map[string]any{})
			in <- reply
		case "read":
			mu.Lock()
			v, ok := store[key]
			mu.Unlock()
			if !ok {
				reply, _ := proto.ErrorReplyFor(env, mnerr.New(mnerr.KeyDoesNotExist, "key %s not found", key))
				in <- reply
			} else {
				reply, _ := proto.ReplyFor(env, map[string]any{"value": v})
				in <- reply
			}
		}
	}
}

// newTestCluster starts a Node running handler, with a fake seq-kv
// service bridging its outbound KV traffic back to its inbound stream.
// It returns the channel to feed the node requests on and the channel
// client-facing replies arrive on.
func newTestCluster(t *testing.T, nodeIDs []string) (chan<- proto.Envelope, <-chan proto.Envelope) {
	t.Helper()
	in := make(chan proto.Envelope, 16)
	out := make(chan proto.Envelope, 16)
	client := make(chan proto.Envelope, 16)

	n := node.New(out)
	h := New(n)
	go fakeSeqKV(in, out, client)
	go n.Run(in, h)

	nodeIDsField := make([]any, len(nodeIDs))
	for i, id := range nodeIDs {
		nodeIDsField[i] = id
	}
	in <- proto.Envelope{
		Src:  ids.ClientPeer(1),
		Dest: ids.NodePeer(0),
		Body: proto.Body{
			"type":     "init",
			"msg_id":   float64(1),
			"node_id":  nodeIDs[0],
			"node_ids": nodeIDsField,
		},
	}
	<-client // init_ok

	return in, client
}

func TestAddThenReadSumsLocalAndPeerDeltas(t *testing.T) {
	in, client := newTestCluster(t, []string{"n0", "n1"})

	in <- proto.Envelope{
		Src:  ids.ClientPeer(1),
		Dest: ids.NodePeer(0),
		Body: proto.Body{"type": "add", "msg_id": float64(2), "delta": float64(5)},
	}
	addReply := <-client
	if typ, _ := addReply.Body.Type(); typ != "add_ok" {
		t.Fatalf("reply type = %q, want add_ok", typ)
	}

	in <- proto.Envelope{
		Src:  ids.ClientPeer(1),
		Dest: ids.NodePeer(0),
		Body: proto.Body{"type": "read", "msg_id": float64(3)},
	}
	readReply := <-client
	if typ, _ := readReply.Body.Type(); typ != "read_ok" {
		t.Fatalf("reply type = %q, want read_ok", typ)
	}
	// n1 never published a delta, so its contribution reads back as the
	// KeyDoesNotExist-as-zero case; only n0's 5 should show up.
	value, ok := readReply.Body["value"].(float64)
	if !ok || value != 5 {
		t.Fatalf("value = %v, want 5", readReply.Body["value"])
	}
}

func TestReadWithNoAddsReturnsZero(t *testing.T) {
	in, client := newTestCluster(t, []string{"n0"})

	in <- proto.Envelope{
		Src:  ids.ClientPeer(1),
		Dest: ids.NodePeer(0),
		Body: proto.Body{"type": "read", "msg_id": float64(2)},
	}
	reply := <-client
	if typ, _ := reply.Body.Type(); typ != "read_ok" {
		t.Fatalf("reply type = %q, want read_ok", typ)
	}
	value, ok := reply.Body["value"].(float64)
	if !ok || value != 0 {
		t.Fatalf("value = %v, want 0", reply.Body["value"])
	}
}
