package osm2graph

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

var (
	mphRegExp = regexp.MustCompile(`^(\d+\.?\d*)\s*mph$`)
	kmhRegExp = regexp.MustCompile(`^(\d+\.?\d*)(\s*km/h)?$`)

	milesToKilometers = 1.609344
)

func newWayDataFromOSM(way *osm.Way) *WayData {
	prepared := &WayData{
		ID:       WayID(way.ID),
		Nodes:    make([]NodeID, 0, len(way.Nodes)),
		Access:   way.Tags.Find("access"),
		Area:     way.Tags.Find("area"),
		Bridge:   way.Tags.Find("bridge"),
		Cycleway: way.Tags.Find("cycleway"),
		EstWidth: way.Tags.Find("est_width"),
		Footway:  way.Tags.Find("footway"),
		Highway:  way.Tags.Find("highway"),
		Junction: way.Tags.Find("junction"),
		Landuse:  way.Tags.Find("landuse"),
		Lanes:    way.Tags.Find("lanes"),
		Maxspeed: way.Tags.Find("maxspeed"),
		Name:     way.Tags.Find("name"),
		Oneway:   way.Tags.Find("oneway"),
		Ref:      way.Tags.Find("ref"),
		Service:  way.Tags.Find("service"),
		Sidewalk: way.Tags.Find("sidewalk"),
		Tunnel:   way.Tags.Find("tunnel"),
		Width:    way.Tags.Find("width"),
	}
	// Collapse consecutive duplicated node references
	for _, node := range way.Nodes {
		id := NodeID(node.ID)
		if n := len(prepared.Nodes); n > 0 && prepared.Nodes[n-1] == id {
			continue
		}
		prepared.Nodes = append(prepared.Nodes, id)
	}
	return prepared
}

// parseSpeedKmh parses an OSM `maxspeed` value into km/h. Handles bare
// numbers, explicit km/h and mph units, pedestrian 'walk' speed and
// multi-valued entries (minimum wins)
func parseSpeedKmh(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("Empty speed value")
	}
	if strings.Contains(value, ";") {
		best := -1.0
		for _, part := range strings.Split(value, ";") {
			speed, err := parseSpeedKmh(part)
			if err != nil {
				continue
			}
			if best < 0 || speed < best {
				best = speed
			}
		}
		if best < 0 {
			return 0, errors.Errorf("No parseable speed in '%s'", value)
		}
		return best, nil
	}
	if value == "walk" {
		return 5.0, nil
	}
	if match := mphRegExp.FindStringSubmatch(value); match != nil {
		speed, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, errors.Wrapf(err, "Can't parse mph speed '%s'", value)
		}
		return speed * milesToKilometers, nil
	}
	if match := kmhRegExp.FindStringSubmatch(value); match != nil {
		speed, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, errors.Wrapf(err, "Can't parse km/h speed '%s'", value)
		}
		return speed, nil
	}
	return 0, errors.Errorf("Unhandled speed value '%s'", value)
}
