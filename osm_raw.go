package osm2graph

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// Nodes outside the extent still matter near its border, so the
// read-time prefilter grows the extent bound by this margin (meters)
const extentReadMargin = 500.0

func newOSMScanner(filename string, file *os.File) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf", ".osm.pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	default:
		return nil, errors.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

// readOSM scans the extract twice: ways first to learn which nodes are
// referenced, then nodes. Elements rejected by the filter are skipped;
// with an extent given, nodes far outside of it are skipped on read.
// Ways referencing missing nodes and nodes referenced by no kept way
// are dropped afterwards
func readOSM(filename string, filter ElementFilter, extent orb.Geometry, ignoreErrors, verbose bool) (map[NodeID]*NodeData, map[WayID]*WayData, error) {
	if verbose {
		fmt.Printf("Opening file: '%s'...\n", filename)
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	/* Process ways */
	if verbose {
		fmt.Printf("\tProcessing ways... ")
	}
	st := time.Now()
	ways := make(map[WayID]*WayData)
	nodesSeen := make(map[NodeID]struct{})
	{
		scannerWays, err := newOSMScanner(filename, file)
		if err != nil {
			return nil, nil, err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			if !filter.Accept(obj) {
				continue
			}
			way := obj.(*osm.Way)
			preparedWay := newWayDataFromOSM(way)
			if len(preparedWay.Nodes) < 2 {
				if !ignoreErrors {
					return nil, nil, errors.Errorf("%s has less than 2 distinct nodes", preparedWay.ID)
				}
				fmt.Printf("[WARNING]: %s has less than 2 distinct nodes. Skip it\n", preparedWay.ID)
				continue
			}
			for _, nodeID := range preparedWay.Nodes {
				nodesSeen[nodeID] = struct{}{}
			}
			ways[preparedWay.ID] = preparedWay
		}
		if err := scannerWays.Err(); err != nil {
			return nil, nil, errors.Wrap(err, "Scanner error on ways")
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	// Seek file to start
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	if verbose {
		fmt.Printf("\tProcessing nodes... ")
	}
	st = time.Now()
	nodes := make(map[NodeID]*NodeData)
	var readBound *orb.Bound
	if extent != nil {
		bound := expandBound(extent.Bound(), extentReadMargin)
		readBound = &bound
	}
	{
		scannerNodes, err := newOSMScanner(filename, file)
		if err != nil {
			return nil, nil, err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			if !filter.Accept(obj) {
				continue
			}
			node := obj.(*osm.Node)
			preparedNode := newNodeDataFromOSM(node)
			if _, ok := nodesSeen[preparedNode.ID]; !ok {
				continue
			}
			if readBound != nil && !readBound.Contains(preparedNode.Point()) {
				continue
			}
			nodes[preparedNode.ID] = preparedNode
		}
		if err := scannerNodes.Err(); err != nil {
			return nil, nil, errors.Wrap(err, "Scanner error on nodes")
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	// Drop ways referencing nodes which did not survive the read, then
	// nodes referenced by no way at all
	droppedWays := 0
	for id, way := range ways {
		complete := true
		for _, nodeID := range way.Nodes {
			if _, ok := nodes[nodeID]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			delete(ways, id)
			droppedWays++
		}
	}
	referenced := make(map[NodeID]struct{}, len(nodes))
	for _, way := range ways {
		for _, nodeID := range way.Nodes {
			referenced[nodeID] = struct{}{}
		}
	}
	droppedNodes := 0
	for id := range nodes {
		if _, ok := referenced[id]; !ok {
			delete(nodes, id)
			droppedNodes++
		}
	}

	if verbose {
		fmt.Printf("Number of ways: %d (dropped %d)\n", len(ways), droppedWays)
		fmt.Printf("Number of nodes: %d (dropped %d)\n", len(nodes), droppedNodes)
	}
	return nodes, ways, nil
}
