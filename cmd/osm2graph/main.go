package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/LdDl/ch"
	"github.com/LdDl/osm2graph"
)

var (
	osmFileName   = flag.String("file", "my_graph.osm.pbf", "Filename of *.osm.pbf (or *.osm / *.xml) file")
	out           = flag.String("out", "my_graph.csv", "Base filename of 'Comma-Separated Values' (CSV) formatted output. E.g.: if file name is 'map.csv' then files 'map_vertices.csv', 'map_edges.csv' (and 'map_shortcuts.csv' after contraction) will be produced")
	geomFormat    = flag.String("geomf", "wkt", "Format of output geometry. Expected values: wkt / geojson")
	confFileName  = flag.String("conf", "", "Filename of JSON import configuration. Optional")
	extentFile    = flag.String("extent", "", "Filename of WKT file with POLYGON/MULTIPOLYGON truncation extent. Optional")
	tagStr        = flag.String("tags", "", "Keep ways with given set of highway tags only (separated by commas). Overrides element filter from configuration")
	allPublic     = flag.Bool("all-public", false, "Keep the public road network only. Overrides element filter from configuration")
	doContraction = flag.Bool("contract", true, "Prepare contraction hierarchies?")
	verbose       = flag.Bool("verbose", true, "Print progress of the import")
)

func main() {

	flag.Parse()

	config := osm2graph.DefaultImportConfiguration()
	if *confFileName != "" {
		var err error
		config, err = osm2graph.ReadImportConfiguration(*confFileName)
		if err != nil {
			fmt.Println(err)
			return
		}
	}

	options := []func(*osm2graph.Importer){
		osm2graph.WithVerbose(*verbose),
	}
	if *tagStr != "" {
		options = append(options, osm2graph.WithElementFilter(osm2graph.NewHighwayTagsFilter(strings.Split(*tagStr, ","))))
	} else if *allPublic {
		options = append(options, osm2graph.WithElementFilter(osm2graph.NewAllPublicFilter()))
	}
	if *extentFile != "" {
		extent, err := osm2graph.ReadExtentFile(*extentFile)
		if err != nil {
			fmt.Println(err)
			return
		}
		options = append(options, osm2graph.WithExtent(extent))
	}

	importer, err := osm2graph.NewImporterFromConfiguration(*osmFileName, config, options...)
	if err != nil {
		fmt.Println(err)
		return
	}
	if *verbose {
		fmt.Println(importer)
	}

	result, err := importer.Import()
	if err != nil {
		fmt.Println(err)
		return
	}

	err = result.Vectorized.ExportToCSV(*out, strings.ToLower(*geomFormat), result.Graph, result.Speeds, config.Overwrite)
	if err != nil {
		fmt.Println(err)
		return
	}

	/* Feed the routing engine */
	graph := ch.Graph{}
	for _, edge := range result.Vectorized.Edges {
		source := int64(edge.Source)
		target := int64(edge.Target)
		err := graph.CreateVertex(source)
		if err != nil {
			fmt.Println(err)
			return
		}
		err = graph.CreateVertex(target)
		if err != nil {
			fmt.Println(err)
			return
		}
		err = graph.AddEdge(source, target, edge.LengthMeters)
		if err != nil {
			fmt.Println(err)
			return
		}
		if len(edge.Geometry) < 2 {
			fmt.Printf("[WARNING]: Edge %d has degenerate geometry\n", edge.WayID)
			continue
		}
	}

	if *doContraction {
		fmt.Println("Starting contraction process....")
		st := time.Now()
		graph.PrepareContractionHierarchies()
		fmt.Printf("Done contraction process in %v\n", time.Since(st))

		fnamePart := strings.Split(*out, ".csv")
		fnameShortcuts := fmt.Sprintf(fnamePart[0] + "_shortcuts.csv")
		// 	from_vertex_id - int64, ID of source vertex
		// 	to_vertex_id - int64, ID of target vertex
		// 	weight - float64, Weight of an edge
		// 	via_vertex_id - int64, ID of vertex through which the shortcut exists
		err = graph.ExportShortcutsToFile(fnameShortcuts)
		if err != nil {
			fmt.Println(err)
			return
		}
	}
}
