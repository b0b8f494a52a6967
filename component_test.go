package osm2graph

import (
	"testing"
)

// Two components: a 5 nodes chain and a 2 nodes pair
func twoComponentsGraph(t *testing.T) *Graph {
	t.Helper()
	return testGraph(t,
		[]*NodeData{
			testNode(1, 0.0, 0.0),
			testNode(2, 0.001, 0.0),
			testNode(3, 0.002, 0.0),
			testNode(4, 0.003, 0.0),
			testNode(5, 0.004, 0.0),
			testNode(10, 1.0, 1.0),
			testNode(11, 1.001, 1.0),
		},
		[]*WayData{
			testWay(100, "residential", "", 1, 2, 3, 4, 5),
			testWay(200, "service", "", 10, 11),
		},
	)
}

func TestWeaklyConnectedComponents(t *testing.T) {
	graph := twoComponentsGraph(t)
	components := weaklyConnectedComponents(graph)
	if len(components) != 2 {
		t.Fatalf("Components number must be 2, but got %d", len(components))
	}
	if len(components[0]) != 5 {
		t.Errorf("First component size must be 5, but got %d", len(components[0]))
	}
	if len(components[1]) != 2 {
		t.Errorf("Second component size must be 2, but got %d", len(components[1]))
	}
	for i, id := range []NodeID{1, 2, 3, 4, 5} {
		if components[0][i] != id {
			t.Errorf("Component member %d must be %s, but got %s", i, id, components[0][i])
		}
	}
}

func TestBFSDeterminism(t *testing.T) {
	graph := twoComponentsGraph(t)
	first := bfsUndirected(1, graph, nil)
	second := bfsUndirected(1, graph, nil)
	if len(first) != len(second) {
		t.Fatalf("Repeated traversals must visit the same nodes")
	}
	for id := range first {
		if _, ok := second[id]; !ok {
			t.Errorf("Repeated traversal must visit %s", id)
		}
	}
	if len(first) != 5 {
		t.Errorf("Traversal must visit 5 nodes, but got %d", len(first))
	}
}

func TestBFSValidSet(t *testing.T) {
	graph := twoComponentsGraph(t)
	valid := map[NodeID]struct{}{1: {}, 2: {}, 3: {}}
	reached := bfsUndirected(1, graph, valid)
	if len(reached) != 3 {
		t.Errorf("Restricted traversal must visit 3 nodes, but got %d", len(reached))
	}
	if _, ok := reached[4]; ok {
		t.Errorf("Restricted traversal must not leave the valid set")
	}
	outside := bfsUndirected(10, graph, valid)
	if len(outside) != 0 {
		t.Errorf("Traversal from outside the valid set must visit nothing, but got %d nodes", len(outside))
	}
}

func TestFilterComponentsLargest(t *testing.T) {
	graph := twoComponentsGraph(t)
	if err := graph.filterComponents(NewLargestComponent(), false); err != nil {
		t.Fatal(err)
	}
	connected := graph.ConnectedNodes()
	if len(connected) != 5 {
		t.Fatalf("Largest component must keep 5 nodes, but got %d", len(connected))
	}
	if _, ok := graph.Node(10); ok {
		t.Errorf("Node 10 must be removed with its component")
	}
	for _, id := range connected {
		if id > 5 {
			t.Errorf("Kept node %s must belong to the largest component", id)
		}
	}
}

func TestFilterComponentsLeastK(t *testing.T) {
	graph := twoComponentsGraph(t)
	if err := graph.filterComponents(NewLeastKComponents(1), false); err != nil {
		t.Fatal(err)
	}
	connected := graph.ConnectedNodes()
	if len(connected) != 2 {
		t.Fatalf("Smallest component must keep 2 nodes, but got %d", len(connected))
	}
	if connected[0] != 10 || connected[1] != 11 {
		t.Errorf("Kept nodes must be 10 and 11, but got %v", connected)
	}
}

func TestFilterComponentsTopK(t *testing.T) {
	graph := twoComponentsGraph(t)
	if err := graph.filterComponents(NewTopKComponents(2), false); err != nil {
		t.Fatal(err)
	}
	if graph.NumConnectedNodes() != 7 {
		t.Errorf("Both components must be kept, but got %d nodes", graph.NumConnectedNodes())
	}
}

func TestFilterComponentsKeepAll(t *testing.T) {
	graph := twoComponentsGraph(t)
	if err := graph.filterComponents(NewKeepAllComponents(), false); err != nil {
		t.Fatal(err)
	}
	if graph.NumConnectedNodes() != 7 {
		t.Errorf("Keep all must not touch the graph, but got %d nodes", graph.NumConnectedNodes())
	}
}

func TestFilterComponentsBadK(t *testing.T) {
	graph := twoComponentsGraph(t)
	if err := graph.filterComponents(NewTopKComponents(0), false); err == nil {
		t.Errorf("Non-positive components number must fail")
	}
}
