package db

import (
	"database/sql"
	"log"
	"math"
	"time"

	"streetnet/internal/spatial"
)

// Run is one row of run_history: the provenance record a batch writes
// alongside its metric rows.
type Run struct {
	ID          int64
	Timestamp   string
	CRS         string
	Nodes       int
	Edges       int
	BlockGroups int
	DurationMS  int64
}

// InsertRun records a pipeline run and returns its id (0 on failure).
func (d *DB) InsertRun(crs string, nodes, edges, blockGroups int, duration time.Duration) int64 {
	res, err := d.sql.Exec(`INSERT INTO run_history
		(timestamp, crs, nodes, edges, block_groups, duration_ms)
		VALUES (?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), crs, nodes, edges, blockGroups,
		duration.Milliseconds())
	if err != nil {
		log.Printf("[DB] InsertRun: %v", err)
		return 0
	}
	id, _ := res.LastInsertId()
	return id
}

// InsertMetrics bulk-inserts the aggregated rows linked to a run record.
// NaN cells are stored as NULL so a gap in the data stays a gap in SQL.
func (d *DB) InsertMetrics(runID int64, rows []spatial.BGMetric) {
	if runID == 0 || len(rows) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] InsertMetrics begin tx: %v", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO bg_metrics (
		run_id, geoid_bg, area_km2, nodes_in_bg, edges_km,
		node_density, edge_km_density,
		betweenness_mean, betweenness_p90, aspl_mean
	) VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertMetrics prepare: %v", err)
		return
	}
	defer stmt.Close()

	for _, r := range rows {
		stmt.Exec(
			runID, r.GEOID, nullable(r.AreaKm2), nullable(r.NodesInBG), nullable(r.EdgesKm),
			nullable(r.NodeDensity), nullable(r.EdgeKmDensity),
			nullable(r.BetweennessMean), nullable(r.BetweennessP90), nullable(r.ASPLMean),
		)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] InsertMetrics commit: %v", err)
	}
}

// GetMetrics retrieves the metric rows of a run, NULLs back as NaN, ordered
// by GEOID.
func (d *DB) GetMetrics(runID int64) []spatial.BGMetric {
	rows, err := d.sql.Query(`
		SELECT geoid_bg, area_km2, nodes_in_bg, edges_km,
			node_density, edge_km_density,
			betweenness_mean, betweenness_p90, aspl_mean
		FROM bg_metrics WHERE run_id = ? ORDER BY geoid_bg
	`, runID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []spatial.BGMetric
	for rows.Next() {
		var r spatial.BGMetric
		var area, nodes, edges, nd, ed, bm, bp, am sql.NullFloat64
		rows.Scan(&r.GEOID, &area, &nodes, &edges, &nd, &ed, &bm, &bp, &am)
		r.AreaKm2 = fromNull(area)
		r.NodesInBG = fromNull(nodes)
		r.EdgesKm = fromNull(edges)
		r.NodeDensity = fromNull(nd)
		r.EdgeKmDensity = fromNull(ed)
		r.BetweennessMean = fromNull(bm)
		r.BetweennessP90 = fromNull(bp)
		r.ASPLMean = fromNull(am)
		out = append(out, r)
	}
	return out
}

// GetRuns retrieves the most recent run records, newest first.
func (d *DB) GetRuns(limit int) []Run {
	rows, err := d.sql.Query(`
		SELECT id, timestamp, crs, nodes, edges, block_groups, duration_ms
		FROM run_history ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		rows.Scan(&r.ID, &r.Timestamp, &r.CRS, &r.Nodes, &r.Edges, &r.BlockGroups, &r.DurationMS)
		out = append(out, r)
	}
	return out
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
