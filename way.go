package osm2graph

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// WayData is a road way: ordered node identifiers plus the retained
// OSM tags. Empty string attributes mean the tag was absent.
type WayData struct {
	ID    WayID
	Nodes []NodeID

	Access   string
	Area     string
	Bridge   string
	Cycleway string
	EstWidth string
	Footway  string
	Highway  string
	Junction string
	Landuse  string
	Lanes    string
	Maxspeed string
	Name     string
	Oneway   string
	Ref      string
	Service  string
	Sidewalk string
	Tunnel   string
	Width    string

	// Identifiers of the original ways merged into this one. Empty for
	// ways taken straight from OSM.
	WayIDs []WayID

	// Captured coordinates for aggregated ways. Interstitial nodes are
	// gone from the nodes storage once simplification ran, so the
	// geometry is frozen at aggregation time. Nil for raw ways.
	Geometry orb.LineString
}

// IsOneway reports whether the way can be traversed in the nodes order
// only. Roundabouts are oneway even without the tag; reversible and
// alternating ways are treated as bidirectional
func (way *WayData) IsOneway() bool {
	if _, ok := onewayReversible[way.Oneway]; ok {
		return false
	}
	if _, ok := onewayTags[way.Oneway]; ok {
		return true
	}
	_, ok := junctionTypes[way.Junction]
	return ok
}

// IsReversed reports whether the nodes order is opposite to the travel
// direction
func (way *WayData) IsReversed() bool {
	_, ok := onewayReversedTags[way.Oneway]
	return ok
}

// HighwayClass returns hierarchy rank of the way. For merged ways the
// best rank among merged values wins
func (way *WayData) HighwayClass() HighwayClass {
	best := HighwayClass(0)
	for _, value := range splitMergedValues(way.Highway) {
		if class := getHighwayClass(value); betterHighway(class, best) {
			best = class
		}
	}
	return best
}

// SourceNodeID returns the first node honoring travel direction
func (way *WayData) SourceNodeID() (NodeID, error) {
	if len(way.Nodes) == 0 {
		return 0, errors.Errorf("Way %s has no nodes", way.ID)
	}
	if way.IsOneway() && way.IsReversed() {
		return way.Nodes[len(way.Nodes)-1], nil
	}
	return way.Nodes[0], nil
}

// TargetNodeID returns the last node honoring travel direction
func (way *WayData) TargetNodeID() (NodeID, error) {
	if len(way.Nodes) == 0 {
		return 0, errors.Errorf("Way %s has no nodes", way.ID)
	}
	if way.IsOneway() && way.IsReversed() {
		return way.Nodes[0], nil
	}
	return way.Nodes[len(way.Nodes)-1], nil
}

// TagValue returns value of the retained tag by its OSM key
func (way *WayData) TagValue(key string) (string, error) {
	switch key {
	case "access":
		return way.Access, nil
	case "area":
		return way.Area, nil
	case "bridge":
		return way.Bridge, nil
	case "cycleway":
		return way.Cycleway, nil
	case "est_width":
		return way.EstWidth, nil
	case "footway":
		return way.Footway, nil
	case "highway":
		return way.Highway, nil
	case "junction":
		return way.Junction, nil
	case "landuse":
		return way.Landuse, nil
	case "lanes":
		return way.Lanes, nil
	case "maxspeed":
		return way.Maxspeed, nil
	case "name":
		return way.Name, nil
	case "oneway":
		return way.Oneway, nil
	case "ref":
		return way.Ref, nil
	case "service":
		return way.Service, nil
	case "sidewalk":
		return way.Sidewalk, nil
	case "tunnel":
		return way.Tunnel, nil
	case "width":
		return way.Width, nil
	default:
		return "", errors.Errorf("Tag '%s' is not retained on ways", key)
	}
}

// extractBetweenNodes returns the sub-path of the way between two of
// its nodes, inclusive, oriented from src to dst
func (way *WayData) extractBetweenNodes(src, dst NodeID) ([]NodeID, error) {
	srcIdx, dstIdx := -1, -1
	for i, id := range way.Nodes {
		if id == src && srcIdx == -1 {
			srcIdx = i
		}
		if id == dst && dstIdx == -1 {
			dstIdx = i
		}
	}
	if srcIdx == -1 {
		return nil, errors.Errorf("Way %s does not contain %s", way.ID, src)
	}
	if dstIdx == -1 {
		return nil, errors.Errorf("Way %s does not contain %s", way.ID, dst)
	}
	if srcIdx <= dstIdx {
		result := make([]NodeID, dstIdx-srcIdx+1)
		copy(result, way.Nodes[srcIdx:dstIdx+1])
		return result, nil
	}
	return reverseNodeIDs(way.Nodes[dstIdx : srcIdx+1]), nil
}

// LineString builds way geometry from the nodes storage
func (way *WayData) LineString(nodes map[NodeID]*NodeData) (orb.LineString, error) {
	line := make(orb.LineString, 0, len(way.Nodes))
	for _, id := range way.Nodes {
		node, ok := nodes[id]
		if !ok {
			return nil, errors.Errorf("Way %s references missing %s", way.ID, id)
		}
		line = append(line, node.Point())
	}
	return line, nil
}

// mergeWays aggregates ways traversed by a simplified path into a
// single way. Node paths are concatenated with consecutive duplicates
// collapsed, tag values are merged sorted and deduplicated
func mergeWays(newID WayID, ways []*WayData) (*WayData, error) {
	if len(ways) == 0 {
		return nil, errors.New("Can't merge empty ways set")
	}
	merged := &WayData{ID: newID}
	tags := map[string]map[string]struct{}{}
	for _, key := range retainedWayTags {
		tags[key] = map[string]struct{}{}
	}
	seenWays := make(map[WayID]struct{})
	for _, way := range ways {
		for _, id := range append([]WayID{way.ID}, way.WayIDs...) {
			if _, ok := seenWays[id]; ok {
				continue
			}
			seenWays[id] = struct{}{}
			merged.WayIDs = append(merged.WayIDs, id)
		}
		for _, nodeID := range way.Nodes {
			if n := len(merged.Nodes); n > 0 && merged.Nodes[n-1] == nodeID {
				continue
			}
			merged.Nodes = append(merged.Nodes, nodeID)
		}
		for _, key := range retainedWayTags {
			value, err := way.TagValue(key)
			if err != nil {
				return nil, err
			}
			collectMergedValues(tags[key], value)
		}
	}
	for _, key := range retainedWayTags {
		if err := merged.setTagValue(key, joinMergedValues(tags[key])); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func (way *WayData) setTagValue(key, value string) error {
	switch key {
	case "access":
		way.Access = value
	case "area":
		way.Area = value
	case "bridge":
		way.Bridge = value
	case "cycleway":
		way.Cycleway = value
	case "est_width":
		way.EstWidth = value
	case "footway":
		way.Footway = value
	case "highway":
		way.Highway = value
	case "junction":
		way.Junction = value
	case "lanes":
		way.Lanes = value
	case "landuse":
		way.Landuse = value
	case "maxspeed":
		way.Maxspeed = value
	case "name":
		way.Name = value
	case "oneway":
		way.Oneway = value
	case "ref":
		way.Ref = value
	case "service":
		way.Service = value
	case "sidewalk":
		way.Sidewalk = value
	case "tunnel":
		way.Tunnel = value
	case "width":
		way.Width = value
	default:
		return errors.Errorf("Tag '%s' is not retained on ways", key)
	}
	return nil
}

var retainedWayTags = []string{
	"access", "area", "bridge", "cycleway", "est_width", "footway",
	"highway", "junction", "landuse", "lanes", "maxspeed", "name",
	"oneway", "ref", "service", "sidewalk", "tunnel", "width",
}
