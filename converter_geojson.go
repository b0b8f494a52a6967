package osm2graph

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(line orb.LineString) string {
	pts2d := make([][]float64, len(line))
	for i := range line {
		pts2d[i] = []float64{line[i].Lon(), line[i].Lat()}
	}
	b, err := geojson.NewLineStringGeometry(pts2d).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt orb.Point) string {
	b, err := geojson.NewPointGeometry([]float64{pt.Lon(), pt.Lat()}).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}
