package osm2graph

import (
	"math"
	"testing"
)

func TestVectorize(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
			testNode(3, 0.002, 0.0),
		},
		[]*WayData{
			testWay(100, "residential", "", 1, 2),
			testWay(200, "residential", "yes", 2, 3),
		},
	)
	vectorized, err := graph.Vectorize(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectorized.Vertices) != 3 {
		t.Fatalf("Vertices number must be 3, but got %d", len(vectorized.Vertices))
	}
	// Dense indices follow the sorted node order
	for i, id := range []NodeID{1, 2, 3} {
		ref, ok := vectorized.Lookup[id]
		if !ok {
			t.Fatalf("Lookup must contain %s", id)
		}
		if ref.Index != i {
			t.Errorf("Index of %s must be %d, but got %d", id, i, ref.Index)
		}
		if ref.Vertex != vectorized.Vertices[i] {
			t.Errorf("Lookup vertex for %s must match the dense array", id)
		}
	}
	if len(vectorized.Edges) != 3 {
		t.Fatalf("Edges number must be 3, but got %d", len(vectorized.Edges))
	}
	resEdges := []struct {
		source int
		target int
		wayID  WayID
	}{
		{0, 1, 100},
		{1, 0, 100},
		{1, 2, 200},
	}
	resLength := 111.1946977
	for i, res := range resEdges {
		edge := vectorized.Edges[i]
		if edge.Source != res.source || edge.Target != res.target || edge.WayID != res.wayID {
			t.Errorf("Edge %d must be %d -> %d over %s, but got %d -> %d over %s", i, res.source, res.target, res.wayID, edge.Source, edge.Target, edge.WayID)
		}
		if math.Abs(edge.LengthMeters-resLength) > 0.001 {
			t.Errorf("Edge %d length must be %v, but got %v", i, resLength, edge.LengthMeters)
		}
	}
	// Geometry is oriented source to target
	backward := vectorized.Edges[1]
	if backward.Geometry[0] != (graph.nodes[2].Point()) || backward.Geometry[1] != (graph.nodes[1].Point()) {
		t.Errorf("Backward edge geometry must be oriented from node 2 to node 1")
	}
}

func TestVectorizeAggregatedGeometry(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
			testNode(3, 0.002, 0.0),
			testNode(4, 0.003, 0.0),
		},
		[]*WayData{
			testWay(100, "residential", "", 1, 2, 3, 4),
		},
	)
	if err := graph.SimplifyGraph(false); err != nil {
		t.Fatal(err)
	}
	vectorized, err := graph.Vectorize(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectorized.Vertices) != 2 {
		t.Fatalf("Vertices number must be 2, but got %d", len(vectorized.Vertices))
	}
	if len(vectorized.Edges) != 2 {
		t.Fatalf("Edges number must be 2, but got %d", len(vectorized.Edges))
	}
	resLength := 3.0 * 111.1946977
	for i, edge := range vectorized.Edges {
		if len(edge.Geometry) != 4 {
			t.Errorf("Edge %d must keep the frozen 4 points geometry, but got %d points", i, len(edge.Geometry))
		}
		if math.Abs(edge.LengthMeters-resLength) > 0.001 {
			t.Errorf("Edge %d length must be %v, but got %v", i, resLength, edge.LengthMeters)
		}
	}
	// The frozen geometry follows each traversal direction
	forward := vectorized.Edges[0]
	backward := vectorized.Edges[1]
	if forward.Geometry[0] != backward.Geometry[len(backward.Geometry)-1] {
		t.Errorf("Opposite traversals must carry opposite geometry orientations")
	}
}

func TestVectorizeEmptyGraph(t *testing.T) {
	graph := NewEmptyGraph()
	vectorized, err := graph.Vectorize(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectorized.Vertices) != 0 || len(vectorized.Edges) != 0 {
		t.Errorf("Empty graph must vectorize into empty arrays")
	}
}
