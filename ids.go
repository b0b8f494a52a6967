package osm2graph

import "fmt"

// NodeID is a graph node identifier. Positive values come straight from
// OSM, negative values are minted for consolidated nodes.
type NodeID int64

func (id NodeID) String() string {
	return fmt.Sprintf("node#%d", int64(id))
}

// WayID is a way identifier. Positive values come straight from OSM,
// negative values are minted for aggregated ways during simplification.
type WayID int64

func (id WayID) String() string {
	return fmt.Sprintf("way#%d", int64(id))
}

type Direction uint16

const (
	DIRECTION_FORWARD = Direction(iota + 1)
	DIRECTION_REVERSE
)

func (iotaIdx Direction) String() string {
	return [...]string{"forward", "reverse"}[iotaIdx-1]
}
