package spatial

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"streetnet/internal/census"
	"streetnet/internal/geo"
	"streetnet/internal/logger"
)

// RawBlockGroup is a block-group footprint as read from disk, still in
// geographic lon/lat coordinates.
type RawBlockGroup struct {
	GEOID    string
	Geometry orb.Geometry
}

// BlockGroup is a projected block-group polygon with its area in km²,
// computed in the run's projected CRS, never in degrees.
type BlockGroup struct {
	GEOID    string
	Geometry orb.Geometry
	AreaKm2  float64
}

// LoadBlockGroups reads a GeoJSON FeatureCollection of block-group polygons.
// The key is taken from the GEOID_BG or GEOID property and normalized to the
// 12-character form. Missing file, unparseable content, zero features, and
// duplicate GEOIDs are all fatal. Results are sorted by GEOID.
func LoadBlockGroups(path string) ([]RawBlockGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read block groups %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse block groups %s: %w", path, err)
	}

	var out []RawBlockGroup
	seen := make(map[string]bool)
	for _, f := range fc.Features {
		geoid := featureGEOID(f)
		if geoid == "" {
			logger.Warn("BG", "Feature without GEOID_BG/GEOID property skipped")
			continue
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			logger.Warn("BG", fmt.Sprintf("Feature %s has non-polygonal geometry, skipped", geoid))
			continue
		}
		if seen[geoid] {
			return nil, fmt.Errorf("block groups %s: duplicate GEOID %s", path, geoid)
		}
		seen[geoid] = true
		out = append(out, RawBlockGroup{GEOID: geoid, Geometry: f.Geometry})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("block groups %s: no usable polygon features", path)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GEOID < out[j].GEOID })
	logger.Info("BG", fmt.Sprintf("Loaded %d block groups from %s", len(out), path))
	return out, nil
}

// featureGEOID extracts and normalizes the block-group key from feature
// properties. GeoJSON encoders sometimes write the code as a number, which
// drops leading zeros; normalization restores them.
func featureGEOID(f *geojson.Feature) string {
	for _, key := range []string{"GEOID_BG", "GEOID"} {
		switch v := f.Properties[key].(type) {
		case string:
			if v != "" {
				return census.NormalizeGEOID(v)
			}
		case float64:
			return census.NormalizeGEOID(strconv.FormatFloat(v, 'f', 0, 64))
		}
	}
	return ""
}

// Center returns the midpoint of the collection's bounding box, used as the
// origin for the local projection.
func Center(raw []RawBlockGroup) orb.Point {
	if len(raw) == 0 {
		return orb.Point{}
	}
	b := raw[0].Geometry.Bound()
	for _, r := range raw[1:] {
		b = b.Union(r.Geometry.Bound())
	}
	return b.Center()
}

// Project converts raw block groups into the run's planar CRS and computes
// each area in km².
func Project(raw []RawBlockGroup, proj *geo.Projection) []BlockGroup {
	out := make([]BlockGroup, 0, len(raw))
	for _, r := range raw {
		g := proj.Geometry(r.Geometry)
		out = append(out, BlockGroup{
			GEOID:    r.GEOID,
			Geometry: g,
			AreaKm2:  geo.AreaKm2(g),
		})
	}
	return out
}
