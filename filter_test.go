package osm2graph

import (
	"testing"

	"github.com/paulmach/osm"
)

func testOSMWay(tags map[string]string) *osm.Way {
	way := &osm.Way{ID: 1}
	for key, value := range tags {
		way.Tags = append(way.Tags, osm.Tag{Key: key, Value: value})
	}
	return way
}

func TestAllPublicFilter(t *testing.T) {
	filter := NewAllPublicFilter()
	cases := []struct {
		tags map[string]string
		res  bool
	}{
		{map[string]string{"highway": "residential"}, true},
		{map[string]string{"highway": "primary", "maxspeed": "60"}, true},
		{map[string]string{"building": "yes"}, false},
		{map[string]string{"highway": "proposed"}, false},
		{map[string]string{"highway": "construction"}, false},
		{map[string]string{"highway": "spaceship"}, false},
		{map[string]string{"highway": "residential", "area": "yes"}, false},
		{map[string]string{"highway": "residential", "access": "private"}, false},
		{map[string]string{"highway": "service", "service": "private"}, false},
		{map[string]string{"highway": "service", "service": "alley"}, true},
	}
	for _, c := range cases {
		if filter.Accept(testOSMWay(c.tags)) != c.res {
			t.Errorf("Acceptance for tags %v must be %v", c.tags, c.res)
		}
	}
	if !filter.Accept(&osm.Node{ID: 1}) {
		t.Errorf("Nodes must pass the public filter")
	}
	if filter.Accept(&osm.Relation{ID: 1}) {
		t.Errorf("Relations must not pass the public filter")
	}
}

func TestHighwayTagsFilter(t *testing.T) {
	filter := NewHighwayTagsFilter([]string{"motorway", "primary"})
	if !filter.Accept(testOSMWay(map[string]string{"highway": "primary"})) {
		t.Errorf("Way with a listed highway value must pass")
	}
	if filter.Accept(testOSMWay(map[string]string{"highway": "residential"})) {
		t.Errorf("Way with an unlisted highway value must not pass")
	}
	if filter.Accept(testOSMWay(map[string]string{"building": "yes"})) {
		t.Errorf("Way without a highway tag must not pass")
	}
	if !filter.Accept(&osm.Node{ID: 1}) {
		t.Errorf("Nodes must pass the highway tags filter")
	}
}

func TestNoFilter(t *testing.T) {
	filter := NewNoFilter()
	if !filter.Accept(testOSMWay(map[string]string{"building": "yes"})) {
		t.Errorf("Every way must pass without filtering")
	}
	if !filter.Accept(&osm.Relation{ID: 1}) {
		t.Errorf("Every relation must pass without filtering")
	}
}

func TestOverpassFilter(t *testing.T) {
	highway, err := ParseFilterQuery(`["highway"="residential|service"]`)
	if err != nil {
		t.Fatal(err)
	}
	noPrivate, err := ParseFilterQuery(`["access"!="private"]`)
	if err != nil {
		t.Fatal(err)
	}
	filter := NewOverpassFilter(highway, noPrivate)
	if !filter.Accept(testOSMWay(map[string]string{"highway": "residential"})) {
		t.Errorf("Way matching every query must pass")
	}
	if !filter.Accept(testOSMWay(map[string]string{"highway": "service", "access": "yes"})) {
		t.Errorf("Way matching every query must pass")
	}
	if filter.Accept(testOSMWay(map[string]string{"highway": "primary"})) {
		t.Errorf("Way outside the values set must not pass")
	}
	if filter.Accept(testOSMWay(map[string]string{"highway": "residential", "access": "private"})) {
		t.Errorf("Way failing any query must not pass")
	}
}

func TestParseFilterQuery(t *testing.T) {
	query, err := ParseFilterQuery(`["highway"="residential|service"]`)
	if err != nil {
		t.Fatal(err)
	}
	if query.Tag != "highway" || query.Op != FILTER_EQUALS {
		t.Errorf("Query must be highway equality, but got tag '%s' op '%s'", query.Tag, query.Op)
	}
	if len(query.Values) != 2 {
		t.Errorf("Values number must be 2, but got %d", len(query.Values))
	}

	negated, err := ParseFilterQuery(`["access"!="private"]`)
	if err != nil {
		t.Fatal(err)
	}
	if negated.Op != FILTER_NOT_EQUALS {
		t.Errorf("Operation must be '!=', but got '%s'", negated.Op)
	}

	// Bare existence test
	existence, err := ParseFilterQuery(`["bridge"]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(existence.Values) != 0 {
		t.Errorf("Existence query must carry no values, but got %d", len(existence.Values))
	}
	if !existence.Matches(osm.Tags{{Key: "bridge", Value: "yes"}}) {
		t.Errorf("Existence query must match a present tag")
	}
	if existence.Matches(osm.Tags{{Key: "tunnel", Value: "yes"}}) {
		t.Errorf("Existence query must not match an absent tag")
	}

	for _, bad := range []string{``, `highway=residential`, `["highway"~"res.*"]`} {
		if _, err := ParseFilterQuery(bad); err == nil {
			t.Errorf("Query '%s' must not be parseable", bad)
		}
	}
}
