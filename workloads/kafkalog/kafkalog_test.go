package kafkalog

import (
	"encoding/json"
	"testing"

	"maelstrom-node/internal/ids"
	"maelstrom-node/internal/node"
	"maelstrom-node/internal/proto"
)

func newTestNode() (*node.Node, <-chan proto.Envelope) {
	out := make(chan proto.Envelope, 16)
	return node.New(out), out
}

func send(t *testing.T, h *Handler, n *node.Node, out <-chan proto.Envelope, msgID float64, key string, msg uint32) float64 {
	t.Helper()
	req := proto.Envelope{
		Src:  ids.ClientPeer(1),
		Dest: ids.NodePeer(0),
		Body: proto.Body{"type": "send", "msg_id": msgID, "key": key, "msg": float64(msg)},
	}
	h.Handle(n, req)
	reply := <-out
	offset, ok := reply.Body["offset"].(float64)
	if !ok {
		t.Fatalf("offset field has unexpected type: %T", reply.Body["offset"])
	}
	return offset
}

func TestSendAssignsSequentialOffsetsPerKey(t *testing.T) {
	n, out := newTestNode()
	h := New(nil)

	if off := send(t, h, n, out, 1, "k1", 100); off != 0 {
		t.Fatalf("first offset for k1 = %v, want 0", off)
	}
	if off := send(t, h, n, out, 2, "k1", 200); off != 1 {
		t.Fatalf("second offset for k1 = %v, want 1", off)
	}
	if off := send(t, h, n, out, 3, "k2", 300); off != 0 {
		t.Fatalf("first offset for k2 = %v, want 0", off)
	}
}

func TestPollReturnsEntriesFromOffset(t *testing.T) {
	n, out := newTestNode()
	h := New(nil)
	send(t, h, n, out, 1, "k1", 100)
	send(t, h, n, out, 2, "k1", 200)
	send(t, h, n, out, 3, "k1", 300)

	req := proto.Envelope{
		Src:  ids.ClientPeer(1),
		Dest: ids.NodePeer(0),
		Body: proto.Body{"type": "poll", "msg_id": float64(4), "offsets": map[string]any{"k1": float64(1)}},
	}
	h.Handle(n, req)
	reply := <-out

	raw, err := json.Marshal(reply.Body["msgs"])
	if err != nil {
		t.Fatal(err)
	}
	var msgs map[string][][2]uint32
	if err := json.Unmarshal(raw, &msgs); err != nil {
		t.Fatal(err)
	}
	want := [][2]uint32{{1, 200}, {2, 300}}
	got := msgs["k1"]
	if len(got) != len(want) {
		t.Fatalf("msgs[k1] = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("msgs[k1][%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestListCommittedOffsetsReflectsCommits(t *testing.T) {
	n, out := newTestNode()
	h := New(nil)
	send(t, h, n, out, 1, "k1", 100)
	send(t, h, n, out, 2, "k1", 200)

	commit := proto.Envelope{
		Src:  ids.ClientPeer(1),
		Dest: ids.NodePeer(0),
		Body: proto.Body{"type": "commit_offsets", "msg_id": float64(3), "offsets": map[string]any{"k1": float64(1)}},
	}
	h.Handle(n, commit)
	<-out

	list := proto.Envelope{
		Src:  ids.ClientPeer(1),
		Dest: ids.NodePeer(0),
		Body: proto.Body{"type": "list_committed_offsets", "msg_id": float64(4), "keys": []any{"k1", "k2"}},
	}
	h.Handle(n, list)
	reply := <-out

	raw, err := json.Marshal(reply.Body["offsets"])
	if err != nil {
		t.Fatal(err)
	}
	var offsets map[string]uint32
	if err := json.Unmarshal(raw, &offsets); err != nil {
		t.Fatal(err)
	}
	if got, want := offsets["k1"], uint32(1); got != want {
		t.Fatalf("offsets[k1] = %d, want %d", got, want)
	}
	if _, exists := offsets["k2"]; exists {
		t.Fatalf("offsets should omit k2, which was never sent to: %v", offsets)
	}
}
