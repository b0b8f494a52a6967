package osm2graph

var (
	junctionTypes = map[string]struct{}{
		"circular":   {},
		"roundabout": {},
	}

	onewayTags = map[string]struct{}{
		"yes":     {},
		"true":    {},
		"1":       {},
		"-1":      {},
		"reverse": {},
		"T":       {},
		"F":       {},
	}

	onewayReversedTags = map[string]struct{}{
		"-1":      {},
		"reverse": {},
		"T":       {},
	}

	// See ref.: https://wiki.openstreetmap.org/wiki/Tag:oneway%3Dreversible
	onewayReversible = map[string]struct{}{
		"reversible":  {},
		"alternating": {},
	}

	// Highway values rejected by the all-public element filter.
	negligibleHighwayTags = map[string]struct{}{
		"abandoned":    {},
		"construction": {},
		"no":           {},
		"planned":      {},
		"platform":     {},
		"proposed":     {},
		"raceway":      {},
		"razed":        {},
	}
)
