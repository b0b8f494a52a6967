package osm2graph

import (
	"testing"

	"github.com/paulmach/orb"
)

func truncationGraph(t *testing.T) *Graph {
	t.Helper()
	return testGraph(t,
		[]*NodeData{
			testNode(1, 0.005, 0.005),
			testNode(2, 0.02, 0.005),
			testNode(3, 0.03, 0.005),
		},
		[]*WayData{
			testWay(100, "residential", "", 1, 2),
			testWay(200, "residential", "", 2, 3),
		},
	)
}

func truncationExtent() orb.Polygon {
	return orb.Polygon{orb.Ring{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}}
}

func TestTruncateByNode(t *testing.T) {
	graph := truncationGraph(t)
	if err := graph.TruncateToExtent(truncationExtent(), false, false, false, false); err != nil {
		t.Fatal(err)
	}
	// Nodes 2 and 3 are outside, so node 1 loses its last edge too
	if graph.NumConnectedNodes() != 0 {
		t.Errorf("No connected nodes must stay, but got %d", graph.NumConnectedNodes())
	}
	for _, id := range []NodeID{2, 3} {
		if _, ok := graph.Node(id); ok {
			t.Errorf("Outside %s must be removed from the nodes storage", id)
		}
	}
}

func TestTruncateByEdge(t *testing.T) {
	graph := truncationGraph(t)
	if err := graph.TruncateToExtent(truncationExtent(), true, false, false, false); err != nil {
		t.Fatal(err)
	}
	// Boundary-crossing edge 1 <-> 2 survives, fully outside 2 <-> 3 goes
	if len(graph.SegmentsBetween(1, 2)) != 1 || len(graph.SegmentsBetween(2, 1)) != 1 {
		t.Errorf("Boundary-crossing edge must survive")
	}
	if len(graph.SegmentsBetween(2, 3)) != 0 || len(graph.SegmentsBetween(3, 2)) != 0 {
		t.Errorf("Edge with both endpoints outside must be removed")
	}
	if graph.NumConnectedNodes() != 2 {
		t.Errorf("Connected nodes number must be 2, but got %d", graph.NumConnectedNodes())
	}
}

func TestTruncateMultiPolygon(t *testing.T) {
	graph := truncationGraph(t)
	extent := orb.MultiPolygon{
		truncationExtent(),
		{orb.Ring{{0.025, 0}, {0.035, 0}, {0.035, 0.01}, {0.025, 0.01}, {0.025, 0}}},
	}
	if err := graph.TruncateToExtent(extent, false, false, false, false); err != nil {
		t.Fatal(err)
	}
	// Nodes 1 and 3 are covered, node 2 falls between the parts
	if _, ok := graph.Node(2); ok {
		t.Errorf("Node 2 must be removed from the nodes storage")
	}
	if graph.NumConnectedNodes() != 0 {
		t.Errorf("Nodes 1 and 3 must lose their edges, but got %d connected nodes", graph.NumConnectedNodes())
	}
}

func TestTruncateBadExtent(t *testing.T) {
	graph := truncationGraph(t)
	if err := graph.TruncateToExtent(orb.LineString{{0, 0}, {1, 1}}, false, false, false, false); err == nil {
		t.Errorf("Truncation with a non-polygonal extent must fail")
	}
}

func TestTruncateParallel(t *testing.T) {
	graph := truncationGraph(t)
	if err := graph.TruncateToExtent(truncationExtent(), true, false, true, false); err != nil {
		t.Fatal(err)
	}
	if graph.NumConnectedNodes() != 2 {
		t.Errorf("Parallel truncation must yield the same result, but got %d connected nodes", graph.NumConnectedNodes())
	}
}
