package osm2graph

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Vertex is a dense routing vertex: position only, identity lives in
// the index.
type Vertex struct {
	X float32
	Y float32
}

// Edge is a dense routing edge between vertex indices.
type Edge struct {
	Source       int
	Target       int
	WayID        WayID
	LengthMeters float64
	Geometry     orb.LineString
}

// VertexRef ties a graph node to its dense index.
type VertexRef struct {
	Index  int
	Vertex Vertex
}

// VertexLookup maps graph node identifiers to dense vertices.
type VertexLookup map[NodeID]VertexRef

// VectorizedGraph is the flat routing form of the graph: contiguous
// vertex and edge arrays plus the identifier lookup.
type VectorizedGraph struct {
	Vertices []Vertex
	Edges    []Edge
	Lookup   VertexLookup
}

// Vectorize flattens the graph. Vertices get dense indices following
// the sorted connected node order, edges follow the deterministic
// traversal enumeration
func (graph *Graph) Vectorize(verbose bool) (*VectorizedGraph, error) {
	if verbose {
		fmt.Printf("Vectorizing graph... ")
	}
	st := time.Now()
	nodes, err := graph.ConnectedNodeData()
	if err != nil {
		return nil, errors.Wrap(err, "Can't collect nodes to vectorize")
	}
	result := &VectorizedGraph{
		Vertices: make([]Vertex, 0, len(nodes)),
		Lookup:   make(VertexLookup, len(nodes)),
	}
	for i, node := range nodes {
		vertex := Vertex{X: node.X, Y: node.Y}
		result.Vertices = append(result.Vertices, vertex)
		result.Lookup[node.ID] = VertexRef{Index: i, Vertex: vertex}
	}
	triplets, err := graph.WayTriplets()
	if err != nil {
		return nil, errors.Wrap(err, "Can't enumerate graph edges")
	}
	result.Edges = make([]Edge, 0, len(triplets))
	for _, triplet := range triplets {
		// A connected way whose endpoints got no vertex cannot be
		// traversed, which breaks the adjacency invariants
		source, ok := result.Lookup[triplet.Source.ID]
		if !ok {
			return nil, errors.Errorf("Connected way %s yields no traversal: %s has no vertex assigned", triplet.Way.ID, triplet.Source.ID)
		}
		target, ok := result.Lookup[triplet.Target.ID]
		if !ok {
			return nil, errors.Errorf("Connected way %s yields no traversal: %s has no vertex assigned", triplet.Way.ID, triplet.Target.ID)
		}
		geometry, err := edgeGeometry(graph, triplet)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't evaluate geometry of edge %s -> %s", triplet.Source.ID, triplet.Target.ID)
		}
		result.Edges = append(result.Edges, Edge{
			Source:       source.Index,
			Target:       target.Index,
			WayID:        triplet.Way.ID,
			LengthMeters: getSphericalLength(geometry),
			Geometry:     geometry,
		})
	}
	if verbose {
		fmt.Printf("Done in %v. Vertices: %d, edges: %d\n", time.Since(st), len(result.Vertices), len(result.Edges))
	}
	return result, nil
}

// edgeGeometry returns the edge coordinates oriented from the triplet
// source to its target. Aggregated ways carry frozen geometry, raw
// ways get the sub-path between the two nodes extracted
func edgeGeometry(graph *Graph, triplet Triplet) (orb.LineString, error) {
	way := triplet.Way
	if way.Geometry != nil {
		if len(way.Nodes) > 0 && way.Nodes[0] == triplet.Target.ID && way.Nodes[len(way.Nodes)-1] == triplet.Source.ID && triplet.Source.ID != triplet.Target.ID {
			reversed := make(orb.LineString, len(way.Geometry))
			for i, pt := range way.Geometry {
				reversed[len(way.Geometry)-1-i] = pt
			}
			return reversed, nil
		}
		return way.Geometry, nil
	}
	path, err := way.extractBetweenNodes(triplet.Source.ID, triplet.Target.ID)
	if err != nil {
		return nil, err
	}
	geometry := make(orb.LineString, 0, len(path))
	for _, id := range path {
		node, ok := graph.Node(id)
		if !ok {
			return nil, errors.Errorf("%s references missing %s", way.ID, id)
		}
		geometry = append(geometry, node.Point())
	}
	return geometry, nil
}
