package osm2graph

import (
	"fmt"

	"github.com/pkg/errors"
)

// FillValueLookup imputes a numeric way attribute from observed ways:
// length-weighted averages grouped by a class attribute plus a global
// fallback. Lookups never fail.
type FillValueLookup struct {
	ClassKey string
	ValueKey string

	classAverages map[string]float64
	globalAverage float64
}

// NewFillValueLookup builds the lookup in one pass over the connected
// ways of the graph. Ways without the value attribute contribute
// nothing; parse failures are recoverable only when ignoreErrors is
// set
func NewFillValueLookup(graph *Graph, classKey, valueKey string, parse func(string) (float64, error), ignoreErrors bool) (*FillValueLookup, error) {
	triplets, err := graph.WayTriplets()
	if err != nil {
		return nil, errors.Wrap(err, "Can't enumerate graph edges")
	}
	type accumulator struct {
		weighted float64
		weight   float64
	}
	byClass := make(map[string]*accumulator)
	global := &accumulator{}
	for _, triplet := range triplets {
		way := triplet.Way
		raw, err := way.TagValue(valueKey)
		if err != nil {
			return nil, err
		}
		if raw == "" {
			continue
		}
		value := -1.0
		for _, part := range splitMergedValues(raw) {
			parsed, err := parse(part)
			if err != nil {
				continue
			}
			if value < 0 || parsed < value {
				value = parsed
			}
		}
		if value < 0 {
			if !ignoreErrors {
				return nil, errors.Errorf("Can't parse '%s' value '%s' of %s", valueKey, raw, way.ID)
			}
			fmt.Printf("[WARNING]: Can't parse '%s' value '%s' of %s\n", valueKey, raw, way.ID)
			continue
		}
		geometry, err := edgeGeometry(graph, triplet)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't evaluate geometry of %s", way.ID)
		}
		length := getSphericalLength(geometry)
		if length <= 0 {
			continue
		}
		label, err := way.TagValue(classKey)
		if err != nil {
			return nil, err
		}
		acc, ok := byClass[label]
		if !ok {
			acc = &accumulator{}
			byClass[label] = acc
		}
		acc.weighted += value * length
		acc.weight += length
		global.weighted += value * length
		global.weight += length
	}
	lookup := &FillValueLookup{
		ClassKey:      classKey,
		ValueKey:      valueKey,
		classAverages: make(map[string]float64, len(byClass)),
	}
	for label, acc := range byClass {
		lookup.classAverages[label] = acc.weighted / acc.weight
	}
	if global.weight > 0 {
		lookup.globalAverage = global.weighted / global.weight
	}
	return lookup, nil
}

// Get returns the imputed value for the class label. Unknown or empty
// labels fall back to the global average
func (lookup *FillValueLookup) Get(label string) float64 {
	if value, ok := lookup.classAverages[label]; ok {
		return value
	}
	return lookup.globalAverage
}
