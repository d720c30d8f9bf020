package spatial

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// Header is the column order of the metrics table consumed by the join,
// plot, and regression steps downstream.
var Header = []string{
	"GEOID_BG", "area_km2", "nodes_in_bg", "edges_km",
	"node_density", "edge_km_density",
	"betweenness_mean", "betweenness_p90", "aspl_mean",
}

// WriteCSV persists the aggregated rows. Undefined values serialize as empty
// cells, never zero. The file is written through a temp file and renamed so
// a failed run leaves no partial output, and identical inputs always produce
// byte-identical files.
func WriteCSV(path string, rows []BGMetric) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bg_metrics-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.GEOID,
			formatCell(r.AreaKm2),
			formatCell(r.NodesInBG),
			formatCell(r.EdgesKm),
			formatCell(r.NodeDensity),
			formatCell(r.EdgeKmDensity),
			formatCell(r.BetweennessMean),
			formatCell(r.BetweennessP90),
			formatCell(r.ASPLMean),
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// formatCell renders a float for CSV output: empty for NaN, otherwise the
// shortest representation that round-trips.
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
