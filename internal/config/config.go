package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the pipeline settings. Every component receives its inputs
// from here; nothing reads hardcoded paths.
type Config struct {
	// Graph inputs: node/edge tables exported by the network build step.
	NodesCSV string `json:"nodes_csv"`
	EdgesCSV string `json:"edges_csv"`

	// Block-group polygons (GeoJSON FeatureCollection keyed by GEOID).
	BlockGroupsPath string `json:"block_groups_path"`

	// Census demographics table used by the join step.
	ACSCSV string `json:"acs_csv"`

	// Outputs.
	OutDir     string `json:"out_dir"`
	MetricsCSV string `json:"metrics_csv"`
	JoinedCSV  string `json:"joined_csv"`
	DBPath     string `json:"db_path"`

	// CRS selects the projection used for every area and length
	// computation. Recognized: "epsg:3857", "local".
	CRS string `json:"crs"`

	// Census fetch geography.
	State      string   `json:"state"`
	County     string   `json:"county"`
	Tracts2020 []string `json:"tracts_2020"`
	Tracts2010 []string `json:"tracts_2010"`

	// Bounded-retry policy for per-tract fetches.
	FetchAttempts  int `json:"fetch_attempts"`
	FetchBackoffMS int `json:"fetch_backoff_ms"`

	// Workers bounds the parallel shortest-path fan-out. 0 = NumCPU.
	Workers int `json:"workers"`
}

// Default returns a Config with the study-area defaults
// (Illinois / Cook County / Community Area 75).
func Default() *Config {
	return &Config{
		NodesCSV:        filepath.Join("outputs", "tables", "nodes.csv"),
		EdgesCSV:        filepath.Join("outputs", "tables", "edges.csv"),
		BlockGroupsPath: filepath.Join("data", "spatial", "ca75_bg_acs.geojson"),
		ACSCSV:          filepath.Join("data", "census", "ca75_acs_blockgroups.csv"),
		OutDir:          filepath.Join("outputs", "tables"),
		MetricsCSV:      filepath.Join("outputs", "tables", "bg_metrics.csv"),
		JoinedCSV:       filepath.Join("outputs", "tables", "bg_joined.csv"),
		DBPath:          "streetnet.db",
		CRS:             "epsg:3857",
		State:           "17",
		County:          "031",
		Tracts2020:      []string{"750100", "750200", "750300", "750400", "750500", "750600"},
		// The 2010 set includes tract 750700, which was merged away in 2020.
		Tracts2010:     []string{"750100", "750200", "750300", "750400", "750500", "750600", "750700"},
		FetchAttempts:  2,
		FetchBackoffMS: 700,
	}
}

// Load reads a JSON config file and overlays it on Default().
// Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.CRS {
	case "epsg:3857", "local":
	default:
		return fmt.Errorf("unrecognized crs %q (want epsg:3857 or local)", c.CRS)
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("fetch_attempts must be >= 1, got %d", c.FetchAttempts)
	}
	return nil
}
