package osm2graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// attachment is an edge between a consolidation group member and a
// node outside the group, remembered before the members get
// disconnected.
type attachment struct {
	direction Direction
	neighbor  NodeID
	segments  []Segment
}

// ConsolidateGraph merges groups of nearby intersection nodes into
// single nodes. Every connected node is buffered by the threshold
// radius; transitively intersecting buffers form a cluster; inside a
// cluster only members connected to each other through the cluster
// merge together
func (graph *Graph) ConsolidateGraph(thresholdMeters float64, parallel, verbose bool) error {
	if thresholdMeters <= 0 {
		return errors.Errorf("Consolidation threshold must be positive, but got %f", thresholdMeters)
	}
	if verbose {
		fmt.Printf("Consolidating intersections (threshold %.1f m)... ", thresholdMeters)
	}
	st := time.Now()
	nodes, err := graph.ConnectedNodeData()
	if err != nil {
		return errors.Wrap(err, "Can't collect nodes for consolidation")
	}
	clusters := buildClusters(nodes, thresholdMeters, parallel)
	merged := 0
	for _, cluster := range clusters {
		if len(cluster.ids) < 2 {
			continue
		}
		valid := make(map[NodeID]struct{}, len(cluster.ids))
		for _, id := range cluster.ids {
			valid[id] = struct{}{}
		}
		visited := make(map[NodeID]struct{}, len(cluster.ids))
		for _, id := range cluster.ids {
			if _, ok := visited[id]; ok {
				continue
			}
			group := bfsUndirected(id, graph, valid)
			for member := range group {
				visited[member] = struct{}{}
			}
			if len(group) < 2 {
				continue
			}
			if err := graph.consolidateGroup(group); err != nil {
				return errors.Wrap(err, "Can't consolidate nodes group")
			}
			merged++
		}
	}
	if verbose {
		fmt.Printf("Done in %v. Clusters: %d, merged groups: %d\n", time.Since(st), len(clusters), merged)
	}
	return nil
}

// consolidateGroup replaces the group members with a single node:
// centroid position, merged tags, provenance identifiers. Edges
// between members collapse away, edges to the outside re-attach to
// the new node and incident way geometries get their member nodes
// replaced
func (graph *Graph) consolidateGroup(group map[NodeID]struct{}) error {
	members := make([]NodeID, 0, len(group))
	for id := range group {
		members = append(members, id)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	memberData := make([]*NodeData, 0, len(members))
	for _, id := range members {
		node, ok := graph.Node(id)
		if !ok {
			return errors.Errorf("Group member %s has no node data", id)
		}
		memberData = append(memberData, node)
	}
	newID := graph.MintNodeID()
	newNode, err := consolidateNodes(newID, memberData)
	if err != nil {
		return errors.Wrap(err, "Can't merge node data")
	}

	attachments := []attachment{}
	incidentWays := make(map[WayID]struct{})
	for _, member := range members {
		for _, dst := range graph.OutNeighbors(member) {
			segments := graph.SegmentsBetween(member, dst)
			for _, segment := range segments {
				incidentWays[segment.WayID] = struct{}{}
			}
			if _, inside := group[dst]; inside {
				continue
			}
			attachments = append(attachments, attachment{direction: DIRECTION_FORWARD, neighbor: dst, segments: segments})
		}
		for _, src := range graph.InNeighbors(member) {
			segments := graph.SegmentsBetween(src, member)
			for _, segment := range segments {
				incidentWays[segment.WayID] = struct{}{}
			}
			if _, inside := group[src]; inside {
				continue
			}
			attachments = append(attachments, attachment{direction: DIRECTION_REVERSE, neighbor: src, segments: segments})
		}
	}

	// Rewrite incident way geometries before members disappear
	wayIDs := make([]WayID, 0, len(incidentWays))
	for id := range incidentWays {
		wayIDs = append(wayIDs, id)
	}
	sort.Slice(wayIDs, func(i, j int) bool { return wayIDs[i] < wayIDs[j] })
	for _, id := range wayIDs {
		way, ok := graph.Way(id)
		if !ok {
			return errors.Errorf("Incident %s is not in the ways storage", id)
		}
		way.Nodes = replaceNodeRuns(way.Nodes, group, newID)
	}

	for _, member := range members {
		if err := graph.DisconnectNode(member, false); err != nil {
			return errors.Wrapf(err, "Can't disconnect member %s", member)
		}
	}
	graph.AddNode(newNode)
	for _, att := range attachments {
		for _, segment := range att.segments {
			if att.direction == DIRECTION_FORWARD {
				graph.AddSegment(newID, att.neighbor, segment)
			} else {
				graph.AddSegment(att.neighbor, newID, segment)
			}
		}
	}
	return nil
}

// replaceNodeRuns substitutes every run of replaced nodes in the path
// with the replacement identifier, collapsing consecutive duplicates
func replaceNodeRuns(path []NodeID, replaced map[NodeID]struct{}, replacement NodeID) []NodeID {
	result := make([]NodeID, 0, len(path))
	for _, id := range path {
		if _, ok := replaced[id]; ok {
			id = replacement
		}
		if n := len(result); n > 0 && result[n-1] == id {
			continue
		}
		result = append(result, id)
	}
	return result
}
