package osm2graph

import (
	"sort"

	"github.com/pkg/errors"
)

// Segment is a single traversal of a way between two adjacent graph
// nodes. Parallel segments between the same pair of nodes are kept,
// ordered by road hierarchy (best first).
type Segment struct {
	WayID    WayID
	Highway  HighwayClass
	IsOneway bool
}

// lessSegments orders segments best hierarchy first, way id as the tie
// break
func lessSegments(a, b Segment) bool {
	if a.Highway != b.Highway {
		return betterHighway(a.Highway, b.Highway)
	}
	return a.WayID < b.WayID
}

type adjacencyKey struct {
	Node      NodeID
	Direction Direction
}

// Graph is a directed multigraph over OSM nodes and ways. Each edge is
// stored twice: under (source, forward) and mirrored under (target,
// reverse) with the identical segments list.
type Graph struct {
	nodes     map[NodeID]*NodeData
	ways      map[WayID]*WayData
	adjacency map[adjacencyKey]map[NodeID][]Segment

	lastSyntheticNodeID NodeID
	lastSyntheticWayID  WayID
}

// NewGraph builds adjacency from parsed nodes and ways. Oneway ways
// yield edges along the travel direction only, bidirectional ways
// yield both directions
func NewGraph(nodes map[NodeID]*NodeData, ways map[WayID]*WayData) (*Graph, error) {
	graph := &Graph{
		nodes:     nodes,
		ways:      ways,
		adjacency: make(map[adjacencyKey]map[NodeID][]Segment),
	}
	wayIDs := make([]WayID, 0, len(ways))
	for id := range ways {
		wayIDs = append(wayIDs, id)
	}
	sort.Slice(wayIDs, func(i, j int) bool { return wayIDs[i] < wayIDs[j] })
	for _, id := range wayIDs {
		way := ways[id]
		if len(way.Nodes) < 2 {
			continue
		}
		oneway := way.IsOneway()
		path := way.Nodes
		if oneway && way.IsReversed() {
			path = reverseNodeIDs(path)
		}
		segment := Segment{WayID: way.ID, Highway: way.HighwayClass(), IsOneway: oneway}
		for i := 1; i < len(path); i++ {
			src, dst := path[i-1], path[i]
			if _, ok := nodes[src]; !ok {
				return nil, errors.Errorf("Way %s references missing %s", way.ID, src)
			}
			if _, ok := nodes[dst]; !ok {
				return nil, errors.Errorf("Way %s references missing %s", way.ID, dst)
			}
			graph.AddSegment(src, dst, segment)
			if !oneway {
				graph.AddSegment(dst, src, segment)
			}
		}
	}
	return graph, nil
}

// NewEmptyGraph returns a graph with no nodes and no ways
func NewEmptyGraph() *Graph {
	return &Graph{
		nodes:     make(map[NodeID]*NodeData),
		ways:      make(map[WayID]*WayData),
		adjacency: make(map[adjacencyKey]map[NodeID][]Segment),
	}
}

// MintNodeID returns a fresh synthetic node identifier. Synthetic
// identifiers are negative so they never collide with OSM ones
func (graph *Graph) MintNodeID() NodeID {
	graph.lastSyntheticNodeID--
	return graph.lastSyntheticNodeID
}

// MintWayID returns a fresh synthetic way identifier
func (graph *Graph) MintWayID() WayID {
	graph.lastSyntheticWayID--
	return graph.lastSyntheticWayID
}

func (graph *Graph) Node(id NodeID) (*NodeData, bool) {
	node, ok := graph.nodes[id]
	return node, ok
}

func (graph *Graph) Way(id WayID) (*WayData, bool) {
	way, ok := graph.ways[id]
	return way, ok
}

func (graph *Graph) AddNode(node *NodeData) {
	graph.nodes[node.ID] = node
}

func (graph *Graph) AddWay(way *WayData) {
	graph.ways[way.ID] = way
}

// NodesStorage exposes the nodes map for read-only enumeration
func (graph *Graph) NodesStorage() map[NodeID]*NodeData {
	return graph.nodes
}

// WaysStorage exposes the ways map for read-only enumeration
func (graph *Graph) WaysStorage() map[WayID]*WayData {
	return graph.ways
}

// AddSegment stores a directed edge src -> dst under both the forward
// and the mirrored reverse adjacency entries
func (graph *Graph) AddSegment(src, dst NodeID, segment Segment) {
	graph.insertSegment(adjacencyKey{src, DIRECTION_FORWARD}, dst, segment)
	graph.insertSegment(adjacencyKey{dst, DIRECTION_REVERSE}, src, segment)
}

func (graph *Graph) insertSegment(key adjacencyKey, neighbor NodeID, segment Segment) {
	neighbors, ok := graph.adjacency[key]
	if !ok {
		neighbors = make(map[NodeID][]Segment)
		graph.adjacency[key] = neighbors
	}
	segments := neighbors[neighbor]
	for _, existing := range segments {
		if existing == segment {
			return
		}
	}
	segments = append(segments, segment)
	sort.Slice(segments, func(i, j int) bool { return lessSegments(segments[i], segments[j]) })
	neighbors[neighbor] = segments
}

// DisconnectNode removes the node and every adjacency entry referencing
// it. Missing nodes are a no-op unless failIfMissing is set
func (graph *Graph) DisconnectNode(id NodeID, failIfMissing bool) error {
	_, hasData := graph.nodes[id]
	outKey := adjacencyKey{id, DIRECTION_FORWARD}
	inKey := adjacencyKey{id, DIRECTION_REVERSE}
	_, hasOut := graph.adjacency[outKey]
	_, hasIn := graph.adjacency[inKey]
	if !hasData && !hasOut && !hasIn {
		if failIfMissing {
			return errors.Errorf("%s is not in the graph", id)
		}
		return nil
	}
	for dst := range graph.adjacency[outKey] {
		graph.dropNeighbor(adjacencyKey{dst, DIRECTION_REVERSE}, id)
	}
	for src := range graph.adjacency[inKey] {
		graph.dropNeighbor(adjacencyKey{src, DIRECTION_FORWARD}, id)
	}
	delete(graph.adjacency, outKey)
	delete(graph.adjacency, inKey)
	delete(graph.nodes, id)
	return nil
}

// RemoveWay removes every segment stored for the ordered pair
// src -> dst, both adjacency sides. Missing pairs are a no-op unless
// failIfMissing is set
func (graph *Graph) RemoveWay(src, dst NodeID, failIfMissing bool) error {
	outKey := adjacencyKey{src, DIRECTION_FORWARD}
	if _, ok := graph.adjacency[outKey][dst]; !ok {
		if failIfMissing {
			return errors.Errorf("There is no edge %s -> %s", src, dst)
		}
		return nil
	}
	graph.dropNeighbor(outKey, dst)
	graph.dropNeighbor(adjacencyKey{dst, DIRECTION_REVERSE}, src)
	return nil
}

func (graph *Graph) dropNeighbor(key adjacencyKey, neighbor NodeID) {
	neighbors, ok := graph.adjacency[key]
	if !ok {
		return
	}
	delete(neighbors, neighbor)
	if len(neighbors) == 0 {
		delete(graph.adjacency, key)
	}
}

// Neighbors returns sorted adjacent node identifiers in the given
// direction
func (graph *Graph) Neighbors(id NodeID, direction Direction) []NodeID {
	neighbors := graph.adjacency[adjacencyKey{id, direction}]
	result := make([]NodeID, 0, len(neighbors))
	for neighbor := range neighbors {
		result = append(result, neighbor)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// OutNeighbors returns sorted successors of the node
func (graph *Graph) OutNeighbors(id NodeID) []NodeID {
	return graph.Neighbors(id, DIRECTION_FORWARD)
}

// InNeighbors returns sorted predecessors of the node
func (graph *Graph) InNeighbors(id NodeID) []NodeID {
	return graph.Neighbors(id, DIRECTION_REVERSE)
}

// UndirectedNeighbors returns sorted distinct neighbors ignoring edge
// direction
func (graph *Graph) UndirectedNeighbors(id NodeID) []NodeID {
	seen := make(map[NodeID]struct{})
	for neighbor := range graph.adjacency[adjacencyKey{id, DIRECTION_FORWARD}] {
		seen[neighbor] = struct{}{}
	}
	for neighbor := range graph.adjacency[adjacencyKey{id, DIRECTION_REVERSE}] {
		seen[neighbor] = struct{}{}
	}
	result := make([]NodeID, 0, len(seen))
	for neighbor := range seen {
		result = append(result, neighbor)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// SegmentsBetween returns a copy of segments stored for the ordered
// pair src -> dst, best hierarchy first
func (graph *Graph) SegmentsBetween(src, dst NodeID) []Segment {
	segments := graph.adjacency[adjacencyKey{src, DIRECTION_FORWARD}][dst]
	result := make([]Segment, len(segments))
	copy(result, segments)
	return result
}

// Degree returns the number of stored segments touching the node in
// the given direction
func (graph *Graph) Degree(id NodeID, direction Direction) int {
	total := 0
	for _, segments := range graph.adjacency[adjacencyKey{id, direction}] {
		total += len(segments)
	}
	return total
}

// ConnectedNodes returns sorted identifiers of nodes with at least one
// adjacency entry
func (graph *Graph) ConnectedNodes() []NodeID {
	seen := make(map[NodeID]struct{})
	for key := range graph.adjacency {
		seen[key.Node] = struct{}{}
	}
	result := make([]NodeID, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ConnectedNodeData returns node data for every connected node, sorted
// by identifier. A connected node without data is an invariant breach
func (graph *Graph) ConnectedNodeData() ([]*NodeData, error) {
	ids := graph.ConnectedNodes()
	result := make([]*NodeData, 0, len(ids))
	for _, id := range ids {
		node, ok := graph.nodes[id]
		if !ok {
			return nil, errors.Errorf("Connected %s has no node data", id)
		}
		result = append(result, node)
	}
	return result, nil
}

// NumConnectedNodes returns the number of nodes with at least one
// adjacency entry
func (graph *Graph) NumConnectedNodes() int {
	seen := make(map[NodeID]struct{})
	for key := range graph.adjacency {
		seen[key.Node] = struct{}{}
	}
	return len(seen)
}

// NumEdges returns the number of stored traversals (parallel segments
// counted separately)
func (graph *Graph) NumEdges() int {
	total := 0
	for key, neighbors := range graph.adjacency {
		if key.Direction != DIRECTION_FORWARD {
			continue
		}
		for _, segments := range neighbors {
			total += len(segments)
		}
	}
	return total
}

// Triplet is a single enumerated traversal: source and target node
// data plus the way the segment came from.
type Triplet struct {
	Source  *NodeData
	Target  *NodeData
	Way     *WayData
	Segment Segment
}

// WayTriplets enumerates every stored traversal in deterministic
// order: source id, then target id, then segment order. Dangling
// references are invariant breaches
func (graph *Graph) WayTriplets() ([]Triplet, error) {
	result := make([]Triplet, 0, graph.NumEdges())
	for _, src := range graph.ConnectedNodes() {
		srcData, ok := graph.nodes[src]
		if !ok {
			return nil, errors.Errorf("Connected %s has no node data", src)
		}
		for _, dst := range graph.OutNeighbors(src) {
			dstData, ok := graph.nodes[dst]
			if !ok {
				return nil, errors.Errorf("Connected %s has no node data", dst)
			}
			for _, segment := range graph.adjacency[adjacencyKey{src, DIRECTION_FORWARD}][dst] {
				way, ok := graph.ways[segment.WayID]
				if !ok {
					return nil, errors.Errorf("Segment %s -> %s references missing %s", src, dst, segment.WayID)
				}
				result = append(result, Triplet{Source: srcData, Target: dstData, Way: way, Segment: segment})
			}
		}
	}
	return result, nil
}
