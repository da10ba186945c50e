package topology

import (
	"testing"

	"maelstrom-node/internal/ids"
)

func idList(vals ...int) []ids.NodeID {
	out := make([]ids.NodeID, len(vals))
	for i, v := range vals {
		out[i] = ids.NodeID(v)
	}
	return out
}

func assertNext(t *testing.T, g Graph, node int, want []ids.NodeID) {
	t.Helper()
	got := g.Next(ids.NodeID(node))
	if len(got) != len(want) {
		t.Fatalf("Next(%d) = %v, want %v", node, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("Next(%d) = %v, want %v", node, got, want)
		}
	}
}

func TestEmptyGraph(t *testing.T) {
	g := New(nil)
	if got := g.Next(1); len(got) != 0 {
		t.Fatalf("Next(1) = %v, want empty", got)
	}
}

func TestLineHasNoCycle(t *testing.T) {
	// 1 -> 2
	g := New(map[ids.NodeID][]ids.NodeID{
		1: idList(2),
	})
	assertNext(t, g, 1, idList(2))
	assertNext(t, g, 2, nil)
}

func TestOneNeighborCycle(t *testing.T) {
	// 1 <-> 2
	g := New(map[ids.NodeID][]ids.NodeID{
		1: idList(2),
		2: idList(1),
	})
	assertNext(t, g, 1, idList(2))
	assertNext(t, g, 2, idList(1))
}

// TestGrid2x2 is spec.md scenario 5.
func TestGrid2x2(t *testing.T) {
	g := New(map[ids.NodeID][]ids.NodeID{
		1: idList(2, 3),
		2: idList(1, 4),
		3: idList(1, 4),
		4: idList(2, 3),
	})
	assertNext(t, g, 1, idList(3))
	assertNext(t, g, 2, idList(1))
	assertNext(t, g, 3, idList(4))
	assertNext(t, g, 4, idList(2))
}

func TestTwoNeighbors2(t *testing.T) {
	// 0<->1<->2
	// |    |
	// 3<->4
	g := New(map[ids.NodeID][]ids.NodeID{
		0: idList(1, 3),
		1: idList(0, 2, 4),
		2: idList(1),
		3: idList(0, 4),
		4: idList(1, 3),
	})
	assertNext(t, g, 0, idList(3))
	assertNext(t, g, 1, idList(0, 2))
	assertNext(t, g, 2, idList(1))
	assertNext(t, g, 3, idList(4))
	assertNext(t, g, 4, idList(1))
}

func TestThreeNeighborsGrid(t *testing.T) {
	// 1<->2<->3
	// |   |   |
	// 4<->5<->6
	g := New(map[ids.NodeID][]ids.NodeID{
		1: idList(2, 4),
		2: idList(1, 3, 5),
		3: idList(2, 6),
		4: idList(1, 5),
		5: idList(2, 4, 6),
		6: idList(3, 5),
	})
	assertNext(t, g, 1, idList(4))
	assertNext(t, g, 2, idList(1))
	assertNext(t, g, 3, idList(2))
	assertNext(t, g, 4, idList(5))
	assertNext(t, g, 5, idList(6))
	assertNext(t, g, 6, idList(3))
}

func TestFourNeighbors3x3Grid(t *testing.T) {
	g := New(map[ids.NodeID][]ids.NodeID{
		1: idList(2, 4),
		2: idList(1, 3, 5),
		3: idList(2, 6),
		4: idList(1, 5, 7),
		5: idList(2, 4, 6, 8),
		6: idList(3, 5, 9),
		7: idList(4, 8),
		8: idList(5, 7, 9),
		9: idList(6, 8),
	})
	assertNext(t, g, 1, idList(4))
	assertNext(t, g, 2, idList(1, 3))
	assertNext(t, g, 3, idList(6))
	assertNext(t, g, 4, idList(7))
	assertNext(t, g, 5, idList(2))
	assertNext(t, g, 6, idList(5))
	assertNext(t, g, 7, idList(8))
	assertNext(t, g, 8, idList(9))
	assertNext(t, g, 9, idList(6))
}

func TestNextIsPureFunction(t *testing.T) {
	adj := map[ids.NodeID][]ids.NodeID{
		1: idList(2, 3),
		2: idList(1, 4),
		3: idList(1, 4),
		4: idList(2, 3),
	}
	a := New(adj).Next(1)
	b := New(adj).Next(1)
	if len(a) != len(b) {
		t.Fatalf("Next is not deterministic: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Next is not deterministic: %v vs %v", a, b)
		}
	}
}
