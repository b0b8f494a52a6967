package osm2graph

import (
	"regexp"
	"strings"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

type FilterKind uint16

const (
	FILTER_NONE = FilterKind(iota + 1)
	FILTER_ALL_PUBLIC
	FILTER_HIGHWAY_TAGS
	FILTER_OVERPASS
)

func (iotaIdx FilterKind) String() string {
	return [...]string{"none", "all_public", "highway_tags", "overpass"}[iotaIdx-1]
}

// ElementFilter decides which OSM elements enter the graph. It is a
// closed set of variants dispatched by kind.
type ElementFilter struct {
	kind        FilterKind
	highwayTags map[string]struct{}
	queries     []FilterQuery
}

// NewNoFilter passes every element through
func NewNoFilter() ElementFilter {
	return ElementFilter{kind: FILTER_NONE}
}

// NewAllPublicFilter keeps the drivable public road network: every
// node, no relations, ways with a parseable non-negligible highway
// value and public access
func NewAllPublicFilter() ElementFilter {
	return ElementFilter{kind: FILTER_ALL_PUBLIC}
}

// NewHighwayTagsFilter keeps ways whose highway value is in the given
// set. Non-way elements pass through
func NewHighwayTagsFilter(tags []string) ElementFilter {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return ElementFilter{kind: FILTER_HIGHWAY_TAGS, highwayTags: set}
}

// NewOverpassFilter keeps ways matching every given query. Non-way
// elements pass through
func NewOverpassFilter(queries ...FilterQuery) ElementFilter {
	return ElementFilter{kind: FILTER_OVERPASS, queries: queries}
}

// Accept reports whether the element should enter the graph
func (filter ElementFilter) Accept(obj osm.Object) bool {
	switch filter.kind {
	case FILTER_ALL_PUBLIC:
		switch elem := obj.(type) {
		case *osm.Node:
			return true
		case *osm.Relation:
			return false
		case *osm.Way:
			return acceptPublicWay(elem)
		default:
			return false
		}
	case FILTER_HIGHWAY_TAGS:
		way, ok := obj.(*osm.Way)
		if !ok {
			return true
		}
		_, found := filter.highwayTags[way.Tags.Find("highway")]
		return found
	case FILTER_OVERPASS:
		way, ok := obj.(*osm.Way)
		if !ok {
			return true
		}
		for _, query := range filter.queries {
			if !query.Matches(way.Tags) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func acceptPublicWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return false
	}
	if _, ok := negligibleHighwayTags[highway]; ok {
		return false
	}
	if getHighwayClass(highway) == 0 {
		return false
	}
	if way.Tags.Find("area") == "yes" {
		return false
	}
	if way.Tags.Find("access") == "private" {
		return false
	}
	if way.Tags.Find("service") == "private" {
		return false
	}
	return true
}

type FilterOp uint16

const (
	FILTER_EQUALS = FilterOp(iota + 1)
	FILTER_NOT_EQUALS
)

func (iotaIdx FilterOp) String() string {
	return [...]string{"=", "!="}[iotaIdx-1]
}

// FilterQuery is a single Overpass-style tag predicate. An empty
// values set turns the predicate into an existence test.
type FilterQuery struct {
	Tag    string
	Op     FilterOp
	Values map[string]struct{}
}

// Matches evaluates the predicate over an element's tags
func (query FilterQuery) Matches(tags osm.Tags) bool {
	value := tags.Find(query.Tag)
	switch query.Op {
	case FILTER_EQUALS:
		if len(query.Values) == 0 {
			return value != ""
		}
		_, found := query.Values[value]
		return found
	case FILTER_NOT_EQUALS:
		if len(query.Values) == 0 {
			return value == ""
		}
		_, found := query.Values[value]
		return !found
	default:
		return false
	}
}

var overpassQueryRegExp = regexp.MustCompile(`^\[\s*"([^"]+)"\s*(?:(!?=)\s*"([^"]*)")?\s*\]$`)

// ParseFilterQuery parses Overpass-style syntax: ["key"="a|b"],
// ["key"!="a"] or bare existence ["key"]
func ParseFilterQuery(str string) (FilterQuery, error) {
	match := overpassQueryRegExp.FindStringSubmatch(strings.TrimSpace(str))
	if match == nil {
		return FilterQuery{}, errors.Errorf("Can't parse overpass query '%s'", str)
	}
	query := FilterQuery{Tag: match[1], Op: FILTER_EQUALS, Values: map[string]struct{}{}}
	if match[2] == "!=" {
		query.Op = FILTER_NOT_EQUALS
	}
	if match[3] != "" {
		for _, value := range strings.Split(match[3], "|") {
			query.Values[value] = struct{}{}
		}
	}
	return query, nil
}
