package osm2graph

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ImportConfiguration defines behaviors for an OSM network import
type ImportConfiguration struct {
	ComponentFilter              ComponentFilterConfig `json:"component_filter"`
	ElementFilter                ElementFilterConfig   `json:"element_filter"`
	ConsolidationThresholdMeters float64               `json:"consolidation_threshold_meters"`
	IgnoreOSMParsingErrors       bool                  `json:"ignore_osm_parsing_errors"`
	TruncateByEdge               bool                  `json:"truncate_by_edge"`
	Simplify                     bool                  `json:"simplify"`
	Consolidate                  bool                  `json:"consolidate"`
	Parallelize                  bool                  `json:"parallelize"`
	Overwrite                    bool                  `json:"overwrite"`
}

// DefaultImportConfiguration returns the import behavior used when
// nothing is configured explicitly
func DefaultImportConfiguration() ImportConfiguration {
	return ImportConfiguration{
		ComponentFilter:              ComponentFilterConfig{Type: "largest"},
		ElementFilter:                ElementFilterConfig{Type: "none"},
		ConsolidationThresholdMeters: 15.0,
		IgnoreOSMParsingErrors:       false,
		TruncateByEdge:               true,
		Simplify:                     true,
		Consolidate:                  true,
		Parallelize:                  true,
		Overwrite:                    false,
	}
}

// ReadImportConfiguration decodes a JSON configuration file on top of
// the defaults
func ReadImportConfiguration(filename string) (ImportConfiguration, error) {
	config := DefaultImportConfiguration()
	if !strings.HasSuffix(filename, ".json") {
		return config, errors.Errorf("Unsupported configuration file type: '%s'", filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "Can't read configuration file '%s'", filename)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "Can't decode configuration file '%s'", filename)
	}
	return config, nil
}

// ComponentFilterConfig is the serializable form of a component filter
type ComponentFilterConfig struct {
	Type string `json:"type"`
	K    int    `json:"k,omitempty"`
}

func (config ComponentFilterConfig) Build() (ComponentFilter, error) {
	switch config.Type {
	case "", "largest":
		return NewLargestComponent(), nil
	case "keep_all":
		return NewKeepAllComponents(), nil
	case "top_k":
		return NewTopKComponents(config.K), nil
	case "least_k":
		return NewLeastKComponents(config.K), nil
	default:
		return ComponentFilter{}, errors.Errorf("Unknown component filter type: '%s'", config.Type)
	}
}

// ElementFilterConfig is the serializable form of an element filter
type ElementFilterConfig struct {
	Type        string   `json:"type"`
	HighwayTags []string `json:"highway_tags,omitempty"`
	Queries     []string `json:"queries,omitempty"`
}

func (config ElementFilterConfig) Build() (ElementFilter, error) {
	switch config.Type {
	case "", "none":
		return NewNoFilter(), nil
	case "all_public":
		return NewAllPublicFilter(), nil
	case "highway_tags":
		return NewHighwayTagsFilter(config.HighwayTags), nil
	case "overpass":
		queries := make([]FilterQuery, 0, len(config.Queries))
		for _, raw := range config.Queries {
			query, err := ParseFilterQuery(raw)
			if err != nil {
				return ElementFilter{}, err
			}
			queries = append(queries, query)
		}
		return NewOverpassFilter(queries...), nil
	default:
		return ElementFilter{}, errors.Errorf("Unknown element filter type: '%s'", config.Type)
	}
}
