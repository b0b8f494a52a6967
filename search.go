package osm2graph

import (
	"sort"

	"github.com/gammazero/deque"
)

// bfsUndirected traverses the graph from src ignoring edge direction.
// When valid is not nil the traversal never leaves the valid set.
// Neighbors are expanded in sorted order so repeated runs visit nodes
// identically
func bfsUndirected(src NodeID, graph *Graph, valid map[NodeID]struct{}) map[NodeID]struct{} {
	visited := make(map[NodeID]struct{})
	if valid != nil {
		if _, ok := valid[src]; !ok {
			return visited
		}
	}
	var frontier deque.Deque[NodeID]
	frontier.PushBack(src)
	visited[src] = struct{}{}
	for frontier.Len() > 0 {
		current := frontier.PopFront()
		for _, neighbor := range graph.UndirectedNeighbors(current) {
			if _, ok := visited[neighbor]; ok {
				continue
			}
			if valid != nil {
				if _, ok := valid[neighbor]; !ok {
					continue
				}
			}
			visited[neighbor] = struct{}{}
			frontier.PushBack(neighbor)
		}
	}
	return visited
}

// weaklyConnectedComponents enumerates components over the undirected
// view of the graph. Seeds are taken in sorted order, so both the
// components and their members are deterministic
func weaklyConnectedComponents(graph *Graph) [][]NodeID {
	components := [][]NodeID{}
	visited := make(map[NodeID]struct{})
	for _, seed := range graph.ConnectedNodes() {
		if _, ok := visited[seed]; ok {
			continue
		}
		reached := bfsUndirected(seed, graph, nil)
		component := make([]NodeID, 0, len(reached))
		for id := range reached {
			visited[id] = struct{}{}
			component = append(component, id)
		}
		sort.Slice(component, func(i, j int) bool { return component[i] < component[j] })
		components = append(components, component)
	}
	return components
}
