package graph

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"streetnet/internal/logger"
)

// Load reads the persisted graph from a node table and an edge table.
//
// nodes.csv columns: osmid, x (lon), y (lat).
// edges.csv columns: u, v, length, optionally geometry (WKT LINESTRING).
//
// Malformed rows are skipped; edges referencing unknown nodes are skipped
// with a warning. A missing file or a parsed graph with zero nodes is fatal.
func Load(nodesPath, edgesPath string) (*Graph, error) {
	g := New()

	logger.Info("Graph", fmt.Sprintf("Loading nodes from %s", nodesPath))
	if err := readCSV(nodesPath, func(row map[string]string) {
		id, err1 := strconv.ParseInt(row["osmid"], 10, 64)
		lon, err2 := strconv.ParseFloat(row["x"], 64)
		lat, err3 := strconv.ParseFloat(row["y"], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return
		}
		g.AddNode(id, lon, lat)
	}); err != nil {
		return nil, fmt.Errorf("load node table %s: %w", nodesPath, err)
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("node table %s produced zero nodes", nodesPath)
	}

	logger.Info("Graph", fmt.Sprintf("Loading edges from %s", edgesPath))
	skipped := 0
	if err := readCSV(edgesPath, func(row map[string]string) {
		u, err1 := strconv.ParseInt(row["u"], 10, 64)
		v, err2 := strconv.ParseInt(row["v"], 10, 64)
		length, err3 := strconv.ParseFloat(row["length"], 64)
		if err1 != nil || err2 != nil || err3 != nil || length < 0 {
			return
		}
		if _, ok := g.Nodes[u]; !ok {
			skipped++
			return
		}
		if _, ok := g.Nodes[v]; !ok {
			skipped++
			return
		}
		g.AddEdge(u, v, length, parseGeometry(row["geometry"]))
	}); err != nil {
		return nil, fmt.Errorf("load edge table %s: %w", edgesPath, err)
	}
	if skipped > 0 {
		logger.Warn("Graph", fmt.Sprintf("Skipped %d edges referencing unknown nodes", skipped))
	}

	logger.Section("Graph")
	logger.Stats("Nodes", len(g.Nodes))
	logger.Stats("Edges", len(g.Edges))
	return g, nil
}

// parseGeometry decodes an optional WKT LINESTRING cell. Anything that does
// not parse falls back to the straight-segment geometry downstream.
func parseGeometry(cell string) orb.LineString {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	parsed, err := wkt.UnmarshalLineString(cell)
	if err != nil {
		return nil
	}
	return parsed
}

// readCSV streams a headered CSV file, calling fn with a column→value map
// per row. Rows with the wrong field count are skipped.
func readCSV(path string, fn func(map[string]string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(rec) != len(header) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		fn(row)
	}
}
