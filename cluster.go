package osm2graph

import (
	"runtime"
	"sort"
	"sync"

	"github.com/paulmach/orb"
)

// clusteredGeometry is a set of buffered node polygons treated as one
// spatial cluster. Member identifiers are kept sorted.
type clusteredGeometry struct {
	ids      []NodeID
	polygons []orb.Polygon
	bound    orb.Bound
}

func newClusteredGeometry(id NodeID, polygon orb.Polygon) *clusteredGeometry {
	return &clusteredGeometry{
		ids:      []NodeID{id},
		polygons: []orb.Polygon{polygon},
		bound:    polygon.Bound(),
	}
}

// merge absorbs the other cluster keeping member order sorted
func (cluster *clusteredGeometry) merge(other *clusteredGeometry) {
	cluster.ids = append(cluster.ids, other.ids...)
	sort.Slice(cluster.ids, func(i, j int) bool { return cluster.ids[i] < cluster.ids[j] })
	cluster.polygons = append(cluster.polygons, other.polygons...)
	cluster.bound = cluster.bound.Union(other.bound)
}

// intersects reports whether any pair of member polygons intersects.
// Bounding boxes prune most of the candidates
func (cluster *clusteredGeometry) intersects(other *clusteredGeometry) bool {
	if !cluster.bound.Intersects(other.bound) {
		return false
	}
	for i := range cluster.polygons {
		for j := range other.polygons {
			if polygonsIntersect(cluster.polygons[i], other.polygons[j]) {
				return true
			}
		}
	}
	return false
}

// buildClusters buffers every node by the radius and merges buffered
// polygons transitively: a cluster absorbs every cluster it touches,
// then gets re-tested until nothing intersects
func buildClusters(nodes []*NodeData, radiusMeters float64, parallel bool) []*clusteredGeometry {
	polygons := bufferNodes(nodes, radiusMeters, parallel)
	clusters := make([]*clusteredGeometry, 0, len(nodes))
	for i, node := range nodes {
		candidate := newClusteredGeometry(node.ID, polygons[i])
		for {
			found := -1
			for j, cluster := range clusters {
				if cluster.intersects(candidate) {
					found = j
					break
				}
			}
			if found == -1 {
				break
			}
			candidate.merge(clusters[found])
			clusters = append(clusters[:found], clusters[found+1:]...)
		}
		clusters = append(clusters, candidate)
	}
	return clusters
}

func bufferNodes(nodes []*NodeData, radiusMeters float64, parallel bool) []orb.Polygon {
	polygons := make([]orb.Polygon, len(nodes))
	if !parallel || len(nodes) < 2 {
		for i, node := range nodes {
			polygons[i] = bufferPoint(node.Point(), radiusMeters)
		}
		return polygons
	}
	workers := runtime.NumCPU()
	if workers > len(nodes) {
		workers = len(nodes)
	}
	var wg sync.WaitGroup
	chunk := (len(nodes) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(nodes) {
			end = len(nodes)
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				polygons[i] = bufferPoint(nodes[i].Point(), radiusMeters)
			}
		}(start, end)
	}
	wg.Wait()
	return polygons
}
