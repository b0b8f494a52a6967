package osm2graph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

const (
	// Delimiter for merged tag values on consolidated elements
	mergedValuesDelimiter = "#"

	feetToMeters = 0.3048
)

// NodeData is a graph node: position plus the retained OSM tags. Empty
// string attributes mean the tag was absent.
type NodeData struct {
	ID NodeID
	X  float32
	Y  float32

	Highway   string
	Elevation string
	Junction  string
	Railway   string
	Ref       string

	// Identifiers of the original nodes merged into this one. Empty
	// for nodes taken straight from OSM.
	ConsolidatedIDs []NodeID
}

func newNodeDataFromOSM(node *osm.Node) *NodeData {
	elevation := node.Tags.Find("ele")
	if elevation == "" {
		if feet := node.Tags.Find("ele:ft"); feet != "" {
			if value, err := strconv.ParseFloat(feet, 64); err == nil {
				elevation = strconv.FormatFloat(value*feetToMeters, 'f', -1, 64)
			}
		}
	}
	return &NodeData{
		ID:        NodeID(node.ID),
		X:         float32(node.Lon),
		Y:         float32(node.Lat),
		Highway:   node.Tags.Find("highway"),
		Elevation: elevation,
		Junction:  node.Tags.Find("junction"),
		Railway:   node.Tags.Find("railway"),
		Ref:       node.Tags.Find("ref"),
	}
}

// Point returns node position as (lon, lat)
func (node *NodeData) Point() orb.Point {
	return orb.Point{float64(node.X), float64(node.Y)}
}

// HasRetainedTags reports whether the node carries any tag that makes
// it semantically important (such nodes survive simplification)
func (node *NodeData) HasRetainedTags() bool {
	return node.Highway != "" || node.Elevation != "" || node.Junction != "" || node.Railway != "" || node.Ref != ""
}

// ElevationMeters returns the mean of the parseable elevation values.
// Consolidated nodes can carry several delimited values
func (node *NodeData) ElevationMeters() (float64, error) {
	if node.Elevation == "" {
		return 0, errors.Errorf("Node %s has no elevation", node.ID)
	}
	sum := 0.0
	count := 0
	for _, part := range strings.Split(node.Elevation, mergedValuesDelimiter) {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			continue
		}
		sum += value
		count++
	}
	if count == 0 {
		return 0, errors.Errorf("Node %s elevation '%s' is not a number", node.ID, node.Elevation)
	}
	return sum / float64(count), nil
}

// consolidateNodes merges member nodes into a single node: centroid
// position, union of provenance identifiers, tag values joined sorted
// and deduplicated
func consolidateNodes(newID NodeID, members []*NodeData) (*NodeData, error) {
	if len(members) == 0 {
		return nil, errors.New("Can't consolidate empty nodes set")
	}
	pts := make([]orb.Point, len(members))
	consolidated := make(map[NodeID]struct{})
	highways := make(map[string]struct{})
	elevations := make(map[string]struct{})
	junctions := make(map[string]struct{})
	railways := make(map[string]struct{})
	refs := make(map[string]struct{})
	for i, member := range members {
		pts[i] = member.Point()
		consolidated[member.ID] = struct{}{}
		for _, prev := range member.ConsolidatedIDs {
			consolidated[prev] = struct{}{}
		}
		collectMergedValues(highways, member.Highway)
		collectMergedValues(elevations, member.Elevation)
		collectMergedValues(junctions, member.Junction)
		collectMergedValues(railways, member.Railway)
		collectMergedValues(refs, member.Ref)
	}
	centroid, err := findCentroid(pts)
	if err != nil {
		return nil, errors.Wrap(err, "Can't evaluate consolidated node position")
	}
	ids := make([]NodeID, 0, len(consolidated))
	for id := range consolidated {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &NodeData{
		ID:              newID,
		X:               float32(centroid.Lon()),
		Y:               float32(centroid.Lat()),
		Highway:         joinMergedValues(highways),
		Elevation:       joinMergedValues(elevations),
		Junction:        joinMergedValues(junctions),
		Railway:         joinMergedValues(railways),
		Ref:             joinMergedValues(refs),
		ConsolidatedIDs: ids,
	}, nil
}

func collectMergedValues(dst map[string]struct{}, value string) {
	if value == "" {
		return
	}
	for _, part := range strings.Split(value, mergedValuesDelimiter) {
		if part != "" {
			dst[part] = struct{}{}
		}
	}
}

func splitMergedValues(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, mergedValuesDelimiter)
}

func joinMergedValues(values map[string]struct{}) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for value := range values {
		parts = append(parts, value)
	}
	sort.Strings(parts)
	return strings.Join(parts, mergedValuesDelimiter)
}
