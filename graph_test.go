package osm2graph

import (
	"testing"
)

func testNode(id NodeID, lon, lat float64) *NodeData {
	return &NodeData{ID: id, X: float32(lon), Y: float32(lat)}
}

func testWay(id WayID, highway, oneway string, nodes ...NodeID) *WayData {
	return &WayData{ID: id, Nodes: nodes, Highway: highway, Oneway: oneway}
}

func testGraph(t *testing.T, nodes []*NodeData, ways []*WayData) *Graph {
	t.Helper()
	nodesStorage := make(map[NodeID]*NodeData, len(nodes))
	for _, node := range nodes {
		nodesStorage[node.ID] = node
	}
	waysStorage := make(map[WayID]*WayData, len(ways))
	for _, way := range ways {
		waysStorage[way.ID] = way
	}
	graph, err := NewGraph(nodesStorage, waysStorage)
	if err != nil {
		t.Fatal(err)
	}
	return graph
}

func TestBuildAdjacencies(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
			testNode(3, 0.002, 0.0),
			testNode(4, 0.003, 0.0),
		},
		[]*WayData{
			testWay(100, "residential", "yes", 1, 2, 3),
			testWay(200, "service", "", 3, 4),
		},
	)
	if graph.NumConnectedNodes() != 4 {
		t.Errorf("Connected nodes number must be 4, but got %d", graph.NumConnectedNodes())
	}
	// Oneway way yields forward traversals only
	if len(graph.SegmentsBetween(1, 2)) != 1 {
		t.Errorf("Segments number for 1 -> 2 must be 1, but got %d", len(graph.SegmentsBetween(1, 2)))
	}
	if len(graph.SegmentsBetween(2, 1)) != 0 {
		t.Errorf("Segments number for 2 -> 1 must be 0, but got %d", len(graph.SegmentsBetween(2, 1)))
	}
	// Bidirectional way yields both
	if len(graph.SegmentsBetween(3, 4)) != 1 || len(graph.SegmentsBetween(4, 3)) != 1 {
		t.Errorf("Way 200 must be traversable in both directions")
	}
	if graph.NumEdges() != 4 {
		t.Errorf("Edges number must be 4, but got %d", graph.NumEdges())
	}
}

func TestMirrorInvariant(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
			testNode(3, 0.002, 0.0),
		},
		[]*WayData{
			testWay(100, "residential", "yes", 1, 2),
			testWay(200, "service", "", 2, 3),
		},
	)
	for key, neighbors := range graph.adjacency {
		mirrorDirection := DIRECTION_REVERSE
		if key.Direction == DIRECTION_REVERSE {
			mirrorDirection = DIRECTION_FORWARD
		}
		for neighbor, segments := range neighbors {
			mirrored := graph.adjacency[adjacencyKey{neighbor, mirrorDirection}][key.Node]
			if len(mirrored) != len(segments) {
				t.Errorf("Entry (%s, %s) -> %s must be mirrored", key.Node, key.Direction, neighbor)
				continue
			}
			for i := range segments {
				if segments[i] != mirrored[i] {
					t.Errorf("Mirrored segments for (%s, %s) -> %s must be identical", key.Node, key.Direction, neighbor)
				}
			}
		}
	}
}

func TestReversedOneway(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
		},
		[]*WayData{
			testWay(100, "residential", "-1", 1, 2),
		},
	)
	if len(graph.SegmentsBetween(2, 1)) != 1 {
		t.Errorf("Reversed oneway must be traversable against the nodes order")
	}
	if len(graph.SegmentsBetween(1, 2)) != 0 {
		t.Errorf("Reversed oneway must not be traversable along the nodes order")
	}
}

func TestDisconnectNode(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
			testNode(3, 0.002, 0.0),
		},
		[]*WayData{
			testWay(100, "residential", "", 1, 2, 3),
		},
	)
	if err := graph.DisconnectNode(2, true); err != nil {
		t.Error(err)
	}
	if _, ok := graph.Node(2); ok {
		t.Errorf("Node 2 must be removed from the nodes storage")
	}
	if len(graph.OutNeighbors(1)) != 0 || len(graph.InNeighbors(3)) != 0 {
		t.Errorf("Adjacency entries referencing node 2 must be purged")
	}
	// Idempotence
	if err := graph.DisconnectNode(2, false); err != nil {
		t.Errorf("Repeated disconnect must be a no-op, but got %v", err)
	}
	if err := graph.DisconnectNode(2, true); err == nil {
		t.Errorf("Repeated disconnect with failIfMissing must fail")
	}
}

func TestRemoveWay(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
			testNode(3, 0.002, 0.0),
		},
		[]*WayData{
			testWay(100, "residential", "", 1, 2),
			testWay(200, "service", "", 2, 3),
		},
	)
	if err := graph.RemoveWay(1, 2, true); err != nil {
		t.Error(err)
	}
	if len(graph.SegmentsBetween(1, 2)) != 0 {
		t.Errorf("Segments for 1 -> 2 must be removed")
	}
	// Opposite traversal of the bidirectional way stays
	if len(graph.SegmentsBetween(2, 1)) != 1 {
		t.Errorf("Segments for 2 -> 1 must stay")
	}
	if err := graph.RemoveWay(1, 2, false); err != nil {
		t.Errorf("Repeated removal must be a no-op, but got %v", err)
	}
	if err := graph.RemoveWay(1, 2, true); err == nil {
		t.Errorf("Repeated removal with failIfMissing must fail")
	}
	// Node data is untouched by edge removal
	if _, ok := graph.Node(1); !ok {
		t.Errorf("Node 1 must stay in the nodes storage")
	}
}

func TestMultigraphSegmentsOrdering(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
		},
		[]*WayData{
			testWay(100, "service", "", 1, 2),
			testWay(200, "primary", "", 1, 2),
		},
	)
	segments := graph.SegmentsBetween(1, 2)
	if len(segments) != 2 {
		t.Errorf("Parallel segments must be kept, expected 2, but got %d", len(segments))
	}
	if segments[0].WayID != 200 {
		t.Errorf("Best hierarchy segment must come first, but got %s", segments[0].WayID)
	}
}

func TestMintIdentifiers(t *testing.T) {
	graph := NewEmptyGraph()
	if id := graph.MintNodeID(); id != -1 {
		t.Errorf("First minted node identifier must be -1, but got %d", id)
	}
	if id := graph.MintNodeID(); id != -2 {
		t.Errorf("Second minted node identifier must be -2, but got %d", id)
	}
	if id := graph.MintWayID(); id != -1 {
		t.Errorf("First minted way identifier must be -1, but got %d", id)
	}
}

func TestWayTriplets(t *testing.T) {
	graph := testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
			testNode(3, 0.002, 0.0),
		},
		[]*WayData{
			testWay(100, "residential", "yes", 1, 2, 3),
		},
	)
	triplets, err := graph.WayTriplets()
	if err != nil {
		t.Fatal(err)
	}
	if len(triplets) != 2 {
		t.Errorf("Triplets number must be 2, but got %d", len(triplets))
	}
	if triplets[0].Source.ID != 1 || triplets[0].Target.ID != 2 {
		t.Errorf("First triplet must be 1 -> 2, but got %s -> %s", triplets[0].Source.ID, triplets[0].Target.ID)
	}
	if triplets[1].Source.ID != 2 || triplets[1].Target.ID != 3 {
		t.Errorf("Second triplet must be 2 -> 3, but got %s -> %s", triplets[1].Source.ID, triplets[1].Target.ID)
	}
}
