package osm2graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// SimplifiedPath is a maximal run of interstitial nodes between two
// endpoints, replaced by a single aggregate edge.
type SimplifiedPath struct {
	Source   NodeID
	Target   NodeID
	WayID    WayID
	Path     []NodeID
	Segments []Segment

	// Coordinates of the path nodes, captured while the graph is still
	// unmutated. Interstitial node data disappears once any path gets
	// applied.
	Geometry orb.LineString
}

func NewSimplifiedPath(path []NodeID, segments []Segment) (*SimplifiedPath, error) {
	if len(path) < 2 {
		return nil, errors.Errorf("Simplified path must contain at least 2 nodes, but got %d", len(path))
	}
	if len(segments) == 0 {
		return nil, errors.New("Simplified path must contain at least 1 segment")
	}
	if len(segments) != len(path)-1 {
		return nil, errors.Errorf("Path of %d nodes must carry %d segments, but got %d", len(path), len(path)-1, len(segments))
	}
	return &SimplifiedPath{
		Source:   path[0],
		Target:   path[len(path)-1],
		WayID:    segments[0].WayID,
		Path:     path,
		Segments: segments,
	}, nil
}

// Equal reports whether two paths cover the same traversals: equal
// segment lists, or failing that a positionwise node match of the
// shorter path against the longer
func (p *SimplifiedPath) Equal(other *SimplifiedPath) bool {
	if len(p.Segments) == len(other.Segments) {
		same := true
		for i := range p.Segments {
			if p.Segments[i] != other.Segments[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	shorter := len(p.Path)
	if len(other.Path) < shorter {
		shorter = len(other.Path)
	}
	for i := 0; i < shorter; i++ {
		if p.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// ReverseOf reports whether the other path traverses the same node
// sequence in the opposite direction
func (p *SimplifiedPath) ReverseOf(other *SimplifiedPath) bool {
	if len(p.Path) != len(other.Path) {
		return false
	}
	for i := range p.Path {
		if p.Path[i] != other.Path[len(other.Path)-1-i] {
			return false
		}
	}
	return true
}

// lessSimplifiedPaths orders paths by node sequence, segments as the
// tie break
func lessSimplifiedPaths(a, b *SimplifiedPath) bool {
	for i := 0; i < len(a.Path) && i < len(b.Path); i++ {
		if a.Path[i] != b.Path[i] {
			return a.Path[i] < b.Path[i]
		}
	}
	if len(a.Path) != len(b.Path) {
		return len(a.Path) < len(b.Path)
	}
	for i := 0; i < len(a.Segments) && i < len(b.Segments); i++ {
		if a.Segments[i] != b.Segments[i] {
			return lessSegments(a.Segments[i], b.Segments[i])
		}
	}
	return len(a.Segments) < len(b.Segments)
}

// removeInterstitialNodes disconnects the interior of the path. Nodes
// already removed by a twin path are fine
func (p *SimplifiedPath) removeInterstitialNodes(graph *Graph) error {
	for _, id := range p.Path[1 : len(p.Path)-1] {
		if err := graph.DisconnectNode(id, false); err != nil {
			return errors.Wrapf(err, "Can't disconnect interstitial %s", id)
		}
	}
	return nil
}

// isEndpoint reports whether the node must survive simplification: a
// self loop, an intersection or dead end (anything but the plain
// degree-2 pass-through shape), or a node with retained tags
func (graph *Graph) isEndpoint(id NodeID) bool {
	neighbors := graph.UndirectedNeighbors(id)
	for _, neighbor := range neighbors {
		if neighbor == id {
			return true
		}
	}
	if node, ok := graph.Node(id); ok && node.HasRetainedTags() {
		return true
	}
	if len(neighbors) != 2 {
		return true
	}
	degree := graph.Degree(id, DIRECTION_FORWARD) + graph.Degree(id, DIRECTION_REVERSE)
	return degree != 2 && degree != 4
}

// SimplifyGraph replaces every maximal interstitial run with a single
// aggregate edge. Endpoint nodes, edge end-to-end geometry and total
// length are preserved
func (graph *Graph) SimplifyGraph(verbose bool) error {
	if verbose {
		fmt.Printf("Simplifying graph topology... ")
	}
	st := time.Now()
	paths, err := graph.pathsToSimplify()
	if err != nil {
		return errors.Wrap(err, "Can't collect paths to simplify")
	}
	for _, path := range paths {
		if err := graph.applySimplifiedPath(path); err != nil {
			return errors.Wrapf(err, "Can't apply simplified path %s -> %s over %s", path.Source, path.Target, path.WayID)
		}
	}
	if verbose {
		fmt.Printf("Done in %v. Replaced paths: %d\n", time.Since(st), len(paths))
	}
	return nil
}

// pathsToSimplify walks from every endpoint through interstitial
// successors to the next endpoint. Read-only: the graph is not
// mutated until every path is collected
func (graph *Graph) pathsToSimplify() ([]*SimplifiedPath, error) {
	connected := graph.ConnectedNodes()
	endpoints := make(map[NodeID]struct{})
	for _, id := range connected {
		if graph.isEndpoint(id) {
			endpoints[id] = struct{}{}
		}
	}
	maxLen := len(connected) + 1
	paths := []*SimplifiedPath{}
	for _, endpoint := range connected {
		if _, ok := endpoints[endpoint]; !ok {
			continue
		}
		for _, successor := range graph.OutNeighbors(endpoint) {
			if _, ok := endpoints[successor]; ok {
				continue
			}
			path, err := graph.walkPath(endpoint, successor, endpoints, maxLen)
			if err != nil {
				return nil, err
			}
			if path == nil {
				continue
			}
			// The twin walk of a bidirectional chain arrives from the
			// opposite endpoint, so reversals are duplicates too
			duplicate := false
			for _, known := range paths {
				if known.Equal(path) || known.ReverseOf(path) {
					duplicate = true
					break
				}
			}
			if duplicate {
				continue
			}
			path.Geometry = make(orb.LineString, 0, len(path.Path))
			for _, id := range path.Path {
				node, ok := graph.Node(id)
				if !ok {
					return nil, errors.Errorf("Path references missing %s", id)
				}
				path.Geometry = append(path.Geometry, node.Point())
			}
			paths = append(paths, path)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return lessSimplifiedPaths(paths[i], paths[j]) })
	return paths, nil
}

func (graph *Graph) walkPath(endpoint, successor NodeID, endpoints map[NodeID]struct{}, maxLen int) (*SimplifiedPath, error) {
	path := []NodeID{endpoint, successor}
	for {
		last := path[len(path)-1]
		if _, ok := endpoints[last]; ok {
			break
		}
		previous := path[len(path)-2]
		next := NodeID(0)
		found := 0
		for _, candidate := range graph.OutNeighbors(last) {
			if candidate == previous {
				continue
			}
			next = candidate
			found++
		}
		if found == 0 {
			// Oneway chain running into its own tail, nothing to do
			return nil, nil
		}
		if found > 1 {
			return nil, errors.Errorf("Interstitial %s has %d successors besides %s", last, found, previous)
		}
		path = append(path, next)
		if len(path) > maxLen {
			return nil, errors.Errorf("Path from %s does not terminate", endpoint)
		}
	}
	segments := make([]Segment, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		stored := graph.SegmentsBetween(path[i-1], path[i])
		if len(stored) == 0 {
			return nil, errors.Errorf("No segment stored for hop %s -> %s", path[i-1], path[i])
		}
		segments = append(segments, stored[0])
	}
	return NewSimplifiedPath(path, segments)
}

// applySimplifiedPath replaces the path with one aggregate edge: a
// minted way carrying the merged tags and the exact traversed node
// sequence as geometry
func (graph *Graph) applySimplifiedPath(path *SimplifiedPath) error {
	ways := []*WayData{}
	seen := make(map[WayID]struct{})
	oneway := true
	for _, segment := range path.Segments {
		if !segment.IsOneway {
			oneway = false
		}
		if _, ok := seen[segment.WayID]; ok {
			continue
		}
		seen[segment.WayID] = struct{}{}
		way, ok := graph.Way(segment.WayID)
		if !ok {
			return errors.Errorf("Path segment references missing %s", segment.WayID)
		}
		ways = append(ways, way)
	}
	aggregated, err := mergeWays(graph.MintWayID(), ways)
	if err != nil {
		return errors.Wrap(err, "Can't merge path ways")
	}
	// Aggregate edge geometry is the traversed sequence itself, frozen
	// at collection time
	aggregated.Nodes = path.Path
	aggregated.Geometry = path.Geometry
	if oneway {
		aggregated.Oneway = "yes"
	} else {
		aggregated.Oneway = ""
	}
	graph.AddWay(aggregated)
	if err := path.removeInterstitialNodes(graph); err != nil {
		return err
	}
	segment := Segment{
		WayID:    aggregated.ID,
		Highway:  aggregated.HighwayClass(),
		IsOneway: oneway,
	}
	graph.AddSegment(path.Source, path.Target, segment)
	// Twin directed paths of a bidirectional chain dedup into one, so
	// the opposite traversal is restored here
	if !oneway {
		graph.AddSegment(path.Target, path.Source, segment)
	}
	return nil
}
