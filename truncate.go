package osm2graph

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// TruncateToExtent drops graph parts outside the polygonal extent.
// By-node mode disconnects every node outside the extent; by-edge mode
// only removes edges with both endpoints outside, so boundary-crossing
// edges survive and strictly more of the graph is kept
func (graph *Graph) TruncateToExtent(extent orb.Geometry, byEdge, ignoreErrors, parallel, verbose bool) error {
	switch extent.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return errors.Errorf("Truncation extent must be Polygon or MultiPolygon, but got %T", extent)
	}
	if verbose {
		fmt.Printf("Truncating graph to extent (by edge: %t)... ", byEdge)
	}
	st := time.Now()
	var removed int
	var err error
	if byEdge {
		removed, err = graph.truncateByEdge(extent, parallel)
	} else {
		removed, err = graph.truncateByNode(extent, ignoreErrors, parallel)
	}
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Done in %v. Removed: %d\n", time.Since(st), removed)
	}
	return nil
}

func (graph *Graph) truncateByNode(extent orb.Geometry, ignoreErrors, parallel bool) (int, error) {
	connected := graph.ConnectedNodes()
	outside := make([]bool, len(connected))
	check := func(i int) error {
		node, ok := graph.Node(connected[i])
		if !ok {
			if ignoreErrors {
				fmt.Printf("[WARNING]: Connected %s has no node data\n", connected[i])
				return nil
			}
			return errors.Errorf("Connected %s has no node data", connected[i])
		}
		contained, err := geometryContains(extent, node.Point())
		if err != nil {
			return err
		}
		outside[i] = !contained
		return nil
	}
	if err := forEachIndex(len(connected), parallel, check); err != nil {
		return 0, err
	}
	removed := 0
	for i, id := range connected {
		if !outside[i] {
			continue
		}
		if err := graph.DisconnectNode(id, false); err != nil {
			return removed, errors.Wrapf(err, "Can't disconnect %s", id)
		}
		removed++
	}
	return removed, nil
}

func (graph *Graph) truncateByEdge(extent orb.Geometry, parallel bool) (int, error) {
	triplets, err := graph.WayTriplets()
	if err != nil {
		return 0, errors.Wrap(err, "Can't enumerate graph edges")
	}
	outside := make([]bool, len(triplets))
	check := func(i int) error {
		srcInside, err := geometryContains(extent, triplets[i].Source.Point())
		if err != nil {
			return err
		}
		if srcInside {
			return nil
		}
		dstInside, err := geometryContains(extent, triplets[i].Target.Point())
		if err != nil {
			return err
		}
		outside[i] = !dstInside
		return nil
	}
	if err := forEachIndex(len(triplets), parallel, check); err != nil {
		return 0, err
	}
	removed := 0
	for i, triplet := range triplets {
		if !outside[i] {
			continue
		}
		if err := graph.RemoveWay(triplet.Source.ID, triplet.Target.ID, false); err != nil {
			return removed, errors.Wrapf(err, "Can't remove edge %s -> %s", triplet.Source.ID, triplet.Target.ID)
		}
		removed++
	}
	return removed, nil
}

// forEachIndex runs the callback for every index, fanning out over
// workers when parallel is set. The first error wins
func forEachIndex(n int, parallel bool, callback func(i int) error) error {
	if !parallel || n < 2 {
		for i := 0; i < n; i++ {
			if err := callback(i); err != nil {
				return err
			}
		}
		return nil
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if err := callback(i); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, start, end)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
