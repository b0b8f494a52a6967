package osm2graph

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ExportToCSV writes the vectorized graph into two files next to the
// given name: vertices and edges, ';'-separated, geometry in WKT or
// GeoJSON. Posted maxspeed wins, missing values get imputed from the
// lookup
func (vectorized *VectorizedGraph) ExportToCSV(fname string, geomFormat string, graph *Graph, speeds *FillValueLookup, overwrite bool) error {
	if geomFormat != "wkt" && geomFormat != "geojson" {
		return errors.Errorf("Geometry format must be 'wkt' or 'geojson', but got '%s'", geomFormat)
	}
	fnameParts := strings.Split(fname, ".csv")
	fnameVertices := fmt.Sprintf(fnameParts[0] + "_vertices.csv")
	fnameEdges := fmt.Sprintf(fnameParts[0] + "_edges.csv")
	if !overwrite {
		for _, name := range []string{fnameVertices, fnameEdges} {
			if _, err := os.Stat(name); err == nil {
				return errors.Errorf("File '%s' already exists. Use overwrite to replace it", name)
			}
		}
	}

	err := vectorized.exportVerticesToCSV(fnameVertices, geomFormat, graph)
	if err != nil {
		return errors.Wrap(err, "Can't export vertices")
	}

	err = vectorized.exportEdgesToCSV(fnameEdges, geomFormat, graph, speeds)
	if err != nil {
		return errors.Wrap(err, "Can't export edges")
	}

	return nil
}

func (vectorized *VectorizedGraph) exportVerticesToCSV(fname string, geomFormat string, graph *Graph) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"vertex_id", "osm_node_id", "consolidated_ids", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	nodeIDs := make([]NodeID, len(vectorized.Vertices))
	for id, ref := range vectorized.Lookup {
		nodeIDs[ref.Index] = id
	}
	for i, vertex := range vectorized.Vertices {
		consolidated := ""
		if node, ok := graph.Node(nodeIDs[i]); ok {
			parts := make([]string, len(node.ConsolidatedIDs))
			for j, id := range node.ConsolidatedIDs {
				parts[j] = strconv.FormatInt(int64(id), 10)
			}
			consolidated = strings.Join(parts, ",")
		}
		pt := orb.Point{float64(vertex.X), float64(vertex.Y)}
		geom := PrepareWKTPoint(pt)
		if geomFormat == "geojson" {
			geom = PrepareGeoJSONPoint(pt)
		}
		err = writer.Write([]string{
			strconv.Itoa(i),
			strconv.FormatInt(int64(nodeIDs[i]), 10),
			consolidated,
			geom,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write vertex")
		}
	}
	return nil
}

func (vectorized *VectorizedGraph) exportEdgesToCSV(fname string, geomFormat string, graph *Graph, speeds *FillValueLookup) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"edge_id", "source_vertex", "target_vertex", "osm_way_id", "merged_way_ids", "highway", "oneway", "length_meters", "max_speed_kmh", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for i, edge := range vectorized.Edges {
		way, ok := graph.Way(edge.WayID)
		if !ok {
			return errors.Errorf("Edge references missing %s", edge.WayID)
		}
		mergedIDs := make([]string, len(way.WayIDs))
		for j, id := range way.WayIDs {
			mergedIDs[j] = strconv.FormatInt(int64(id), 10)
		}
		maxSpeed := -1.0
		if way.Maxspeed != "" {
			for _, part := range splitMergedValues(way.Maxspeed) {
				if speed, err := parseSpeedKmh(part); err == nil && (maxSpeed < 0 || speed < maxSpeed) {
					maxSpeed = speed
				}
			}
		}
		if maxSpeed < 0 && speeds != nil {
			maxSpeed = speeds.Get(way.Highway)
		}
		geom := PrepareWKTLinestring(edge.Geometry)
		if geomFormat == "geojson" {
			geom = PrepareGeoJSONLinestring(edge.Geometry)
		}
		err = writer.Write([]string{
			strconv.Itoa(i),
			strconv.Itoa(edge.Source),
			strconv.Itoa(edge.Target),
			strconv.FormatInt(int64(edge.WayID), 10),
			strings.Join(mergedIDs, ","),
			way.Highway,
			strconv.FormatBool(way.IsOneway()),
			strconv.FormatFloat(edge.LengthMeters, 'f', 4, 64),
			strconv.FormatFloat(maxSpeed, 'f', 2, 64),
			geom,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write edge")
		}
	}
	return nil
}
