package osm2graph

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

const (
	earthRadius = 6370.986884258304
	pi180       = math.Pi / 180.0
	pi180Rev    = 180.0 / math.Pi

	// Number of segments used to approximate a circular buffer around
	// a point.
	bufferSegments = 16
)

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// radiansTodegrees r = deg  * 180 / pi
func radiansTodegrees(d float64) float64 {
	return d * pi180Rev
}

// greatCircleDistance returns distance between two geo-points (meters)
func greatCircleDistance(p, q orb.Point) float64 {
	lat1 := degreesToRadians(p.Lat())
	lon1 := degreesToRadians(p.Lon())
	lat2 := degreesToRadians(q.Lat())
	lon2 := degreesToRadians(q.Lon())
	diffLat := lat2 - lat1
	diffLon := lon2 - lon1
	a := math.Pow(math.Sin(diffLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(diffLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return c * earthRadius * 1000.0
}

// getSphericalLength returns length for given line (meters)
func getSphericalLength(line orb.LineString) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += greatCircleDistance(line[i-1], line[i])
	}
	return totalLength
}

// findCentroid returns arithmetic mean of given points
func findCentroid(pts []orb.Point) (orb.Point, error) {
	totalPoints := len(pts)
	if totalPoints == 0 {
		return orb.Point{}, errors.New("Can't find centroid of empty points set")
	}
	x, y := 0.0, 0.0
	for i := 0; i < totalPoints; i++ {
		x += pts[i].Lon()
		y += pts[i].Lat()
	}
	return orb.Point{x / float64(totalPoints), y / float64(totalPoints)}, nil
}

// bufferPoint returns a polygon approximating a circle of the given
// radius (meters) around the point
func bufferPoint(pt orb.Point, radiusMeters float64) orb.Polygon {
	latRad := degreesToRadians(pt.Lat())
	dLat := radiusMeters / (earthRadius * 1000.0) * pi180Rev
	dLon := dLat / math.Cos(latRad)
	ring := make(orb.Ring, bufferSegments+1)
	for i := 0; i < bufferSegments; i++ {
		angle := 2.0 * math.Pi * float64(i) / float64(bufferSegments)
		ring[i] = orb.Point{pt.Lon() + dLon*math.Cos(angle), pt.Lat() + dLat*math.Sin(angle)}
	}
	ring[bufferSegments] = ring[0]
	return orb.Polygon{ring}
}

// segmentsIntersect reports whether segments [p1,p2] and [p3,p4]
// intersect. Euclidean space
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := crossProduct(p3, p4, p1)
	d2 := crossProduct(p3, p4, p2)
	d3 := crossProduct(p1, p2, p3)
	d4 := crossProduct(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func crossProduct(p, q, r orb.Point) float64 {
	return (q[0]-p[0])*(r[1]-p[1]) - (q[1]-p[1])*(r[0]-p[0])
}

func onSegment(p, q, r orb.Point) bool {
	return math.Min(p[0], q[0]) <= r[0] && r[0] <= math.Max(p[0], q[0]) &&
		math.Min(p[1], q[1]) <= r[1] && r[1] <= math.Max(p[1], q[1])
}

// polygonsIntersect reports whether two polygons share any point:
// either one contains a vertex of the other or their boundaries cross
func polygonsIntersect(a, b orb.Polygon) bool {
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}
	ringA := a[0]
	ringB := b[0]
	for i := range ringA {
		if planar.PolygonContains(b, ringA[i]) {
			return true
		}
	}
	for i := range ringB {
		if planar.PolygonContains(a, ringB[i]) {
			return true
		}
	}
	for i := 1; i < len(ringA); i++ {
		for j := 1; j < len(ringB); j++ {
			if segmentsIntersect(ringA[i-1], ringA[i], ringB[j-1], ringB[j]) {
				return true
			}
		}
	}
	return false
}

// geometryContains reports whether the polygonal geometry contains the
// point. Only polygons and multipolygons are meaningful here
func geometryContains(geom orb.Geometry, pt orb.Point) (bool, error) {
	switch g := geom.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt), nil
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt), nil
	default:
		return false, errors.Errorf("Geometry must be Polygon or MultiPolygon, but got %T", geom)
	}
}

// expandBound grows the bound by the given number of meters on each side
func expandBound(b orb.Bound, meters float64) orb.Bound {
	midLat := degreesToRadians((b.Min.Lat() + b.Max.Lat()) / 2.0)
	dLat := meters / (earthRadius * 1000.0) * pi180Rev
	dLon := dLat / math.Cos(midLat)
	return orb.Bound{
		Min: orb.Point{b.Min.Lon() - dLon, b.Min.Lat() - dLat},
		Max: orb.Point{b.Max.Lon() + dLon, b.Max.Lat() + dLat},
	}
}

// reverseNodeIDs reverses order of node identifiers. Returns new slice
func reverseNodeIDs(ids []NodeID) []NodeID {
	inputLen := len(ids)
	output := make([]NodeID, inputLen)
	for i, n := range ids {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}
