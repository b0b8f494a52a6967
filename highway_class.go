package osm2graph

// HighwayClass is a road hierarchy rank. Smaller value means a more
// important road; the zero value means the classification is missing
// and always sorts last.
type HighwayClass uint16

const (
	HIGHWAY_MOTORWAY = HighwayClass(iota + 1)
	HIGHWAY_MOTORWAY_LINK
	HIGHWAY_TRUNK
	HIGHWAY_TRUNK_LINK
	HIGHWAY_PRIMARY
	HIGHWAY_PRIMARY_LINK
	HIGHWAY_SECONDARY
	HIGHWAY_SECONDARY_LINK
	HIGHWAY_TERTIARY
	HIGHWAY_TERTIARY_LINK
	HIGHWAY_RESIDENTIAL
	HIGHWAY_RESIDENTIAL_LINK
	HIGHWAY_LIVING_STREET
	HIGHWAY_SERVICE
	HIGHWAY_SERVICES
	HIGHWAY_CYCLEWAY
	HIGHWAY_FOOTWAY
	HIGHWAY_PEDESTRIAN
	HIGHWAY_STEPS
	HIGHWAY_TRACK
	HIGHWAY_PATH
	HIGHWAY_BUSWAY
	HIGHWAY_UNCLASSIFIED
)

func (iotaIdx HighwayClass) String() string {
	if iotaIdx == 0 {
		return ""
	}
	return [...]string{"motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link", "secondary", "secondary_link", "tertiary", "tertiary_link", "residential", "residential_link", "living_street", "service", "services", "cycleway", "footway", "pedestrian", "steps", "track", "path", "busway", "unclassified"}[iotaIdx-1]
}

func getHighwayClass(str string) HighwayClass {
	if found, ok := highwayClasses[str]; ok {
		return found
	}
	return 0
}

// betterHighway reports whether class a outranks class b. A missing
// classification never outranks a present one.
func betterHighway(a, b HighwayClass) bool {
	if a == 0 {
		return false
	}
	if b == 0 {
		return true
	}
	return a < b
}

var (
	highwayClasses = map[string]HighwayClass{
		"motorway":         HIGHWAY_MOTORWAY,
		"motorway_link":    HIGHWAY_MOTORWAY_LINK,
		"trunk":            HIGHWAY_TRUNK,
		"trunk_link":       HIGHWAY_TRUNK_LINK,
		"primary":          HIGHWAY_PRIMARY,
		"primary_link":     HIGHWAY_PRIMARY_LINK,
		"secondary":        HIGHWAY_SECONDARY,
		"secondary_link":   HIGHWAY_SECONDARY_LINK,
		"tertiary":         HIGHWAY_TERTIARY,
		"tertiary_link":    HIGHWAY_TERTIARY_LINK,
		"residential":      HIGHWAY_RESIDENTIAL,
		"residential_link": HIGHWAY_RESIDENTIAL_LINK,
		"living_street":    HIGHWAY_LIVING_STREET,
		"service":          HIGHWAY_SERVICE,
		"services":         HIGHWAY_SERVICES,
		"cycleway":         HIGHWAY_CYCLEWAY,
		"footway":          HIGHWAY_FOOTWAY,
		"pedestrian":       HIGHWAY_PEDESTRIAN,
		"steps":            HIGHWAY_STEPS,
		"track":            HIGHWAY_TRACK,
		"path":             HIGHWAY_PATH,
		"busway":           HIGHWAY_BUSWAY,
		"unclassified":     HIGHWAY_UNCLASSIFIED,
	}
)
