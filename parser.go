package osm2graph

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// Importer runs the whole import pipeline: read the extract, build the
// graph, filter components, consolidate intersections, simplify
// topology, truncate to the extent and vectorize.
type Importer struct {
	filename        string
	extent          orb.Geometry
	elementFilter   ElementFilter
	componentFilter ComponentFilter
	threshold       float64
	consolidate     bool
	simplify        bool
	truncateByEdge  bool
	parallelize     bool
	strictMode      bool
	verbose         bool
}

// ImportResult is everything the pipeline produces.
type ImportResult struct {
	Graph      *Graph
	Vectorized *VectorizedGraph
	Speeds     *FillValueLookup
}

func (importer *Importer) String() string {
	return fmt.Sprintf(`
Import parameters:
	filename: '%s'
	element_filter: '%s'
	component_filter: '%s'
	consolidate?: %t (threshold: %.1f m)
	simplify?: %t
	extent given?: %t (truncate by edge: %t)
	parallelize?: %t
	strict_mode enabled?: %t
	`,
		importer.filename,
		importer.elementFilter.kind,
		importer.componentFilter.kind,
		importer.consolidate,
		importer.threshold,
		importer.simplify,
		importer.extent != nil,
		importer.truncateByEdge,
		importer.parallelize,
		importer.strictMode,
	)
}

func NewImporter(fileName string, options ...func(*Importer)) *Importer {
	defaults := DefaultImportConfiguration()
	importer := &Importer{
		filename:        fileName,
		elementFilter:   NewNoFilter(),
		componentFilter: NewLargestComponent(),
		threshold:       defaults.ConsolidationThresholdMeters,
		consolidate:     defaults.Consolidate,
		simplify:        defaults.Simplify,
		truncateByEdge:  defaults.TruncateByEdge,
		parallelize:     defaults.Parallelize,
		strictMode:      !defaults.IgnoreOSMParsingErrors,
	}
	for _, option := range options {
		option(importer)
	}
	return importer
}

// NewImporterFromConfiguration builds an importer from the decoded
// configuration
func NewImporterFromConfiguration(fileName string, config ImportConfiguration, options ...func(*Importer)) (*Importer, error) {
	elementFilter, err := config.ElementFilter.Build()
	if err != nil {
		return nil, errors.Wrap(err, "Can't build element filter")
	}
	componentFilter, err := config.ComponentFilter.Build()
	if err != nil {
		return nil, errors.Wrap(err, "Can't build component filter")
	}
	base := []func(*Importer){
		WithElementFilter(elementFilter),
		WithComponentFilter(componentFilter),
		WithConsolidation(config.Consolidate),
		WithConsolidationThreshold(config.ConsolidationThresholdMeters),
		WithSimplification(config.Simplify),
		WithTruncateByEdge(config.TruncateByEdge),
		WithParallelism(config.Parallelize),
		WithStrictMode(!config.IgnoreOSMParsingErrors),
	}
	return NewImporter(fileName, append(base, options...)...), nil
}

func WithElementFilter(filter ElementFilter) func(*Importer) {
	return func(importer *Importer) {
		importer.elementFilter = filter
	}
}

func WithComponentFilter(filter ComponentFilter) func(*Importer) {
	return func(importer *Importer) {
		importer.componentFilter = filter
	}
}

func WithConsolidation(consolidate bool) func(*Importer) {
	return func(importer *Importer) {
		importer.consolidate = consolidate
	}
}

func WithConsolidationThreshold(thresholdMeters float64) func(*Importer) {
	return func(importer *Importer) {
		importer.threshold = thresholdMeters
	}
}

func WithSimplification(simplify bool) func(*Importer) {
	return func(importer *Importer) {
		importer.simplify = simplify
	}
}

// WithExtent sets the polygonal extent the graph gets truncated to
func WithExtent(extent orb.Geometry) func(*Importer) {
	return func(importer *Importer) {
		importer.extent = extent
	}
}

func WithTruncateByEdge(truncateByEdge bool) func(*Importer) {
	return func(importer *Importer) {
		importer.truncateByEdge = truncateByEdge
	}
}

func WithParallelism(parallelize bool) func(*Importer) {
	return func(importer *Importer) {
		importer.parallelize = parallelize
	}
}

// WithStrictMode makes element parsing errors fatal. Without it they
// are reported and skipped
func WithStrictMode(strictMode bool) func(*Importer) {
	return func(importer *Importer) {
		importer.strictMode = strictMode
	}
}

func WithVerbose(verbose bool) func(*Importer) {
	return func(importer *Importer) {
		importer.verbose = verbose
	}
}

// Import runs the pipeline end to end
func (importer *Importer) Import() (*ImportResult, error) {
	if importer.extent != nil {
		switch importer.extent.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, errors.Errorf("Extent must be Polygon or MultiPolygon, but got %T", importer.extent)
		}
	}
	st := time.Now()
	ignoreErrors := !importer.strictMode
	nodes, ways, err := readOSM(importer.filename, importer.elementFilter, importer.extent, ignoreErrors, importer.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read OSM data")
	}
	graph, err := NewGraph(nodes, ways)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build graph")
	}
	if err := graph.filterComponents(importer.componentFilter, importer.verbose); err != nil {
		return nil, errors.Wrap(err, "Can't filter components")
	}
	if importer.consolidate {
		if err := graph.ConsolidateGraph(importer.threshold, importer.parallelize, importer.verbose); err != nil {
			return nil, errors.Wrap(err, "Can't consolidate intersections")
		}
	}
	if importer.simplify {
		if err := graph.SimplifyGraph(importer.verbose); err != nil {
			return nil, errors.Wrap(err, "Can't simplify graph")
		}
	}
	if importer.extent != nil {
		if err := graph.TruncateToExtent(importer.extent, importer.truncateByEdge, ignoreErrors, importer.parallelize, importer.verbose); err != nil {
			return nil, errors.Wrap(err, "Can't truncate graph")
		}
		// Truncation can split the graph apart again
		if err := graph.filterComponents(importer.componentFilter, importer.verbose); err != nil {
			return nil, errors.Wrap(err, "Can't filter components after truncation")
		}
	}
	speeds, err := NewFillValueLookup(graph, "highway", "maxspeed", parseSpeedKmh, ignoreErrors)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build speeds lookup")
	}
	vectorized, err := graph.Vectorize(importer.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't vectorize graph")
	}
	if importer.verbose {
		fmt.Printf("Import done in %v\n", time.Since(st))
	}
	return &ImportResult{Graph: graph, Vectorized: vectorized, Speeds: speeds}, nil
}

// ReadExtentFile reads a WKT file holding the truncation extent
func ReadExtentFile(filename string) (orb.Geometry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read extent file '%s'", filename)
	}
	raw := strings.TrimSpace(string(data))
	if polygon, err := wkt.UnmarshalPolygon(raw); err == nil {
		return polygon, nil
	}
	multiPolygon, err := wkt.UnmarshalMultiPolygon(raw)
	if err != nil {
		return nil, errors.Errorf("Extent file '%s' must hold a WKT POLYGON or MULTIPOLYGON", filename)
	}
	return multiPolygon, nil
}
