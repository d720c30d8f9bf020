package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"streetnet/internal/census"
	"streetnet/internal/config"
	"streetnet/internal/db"
	"streetnet/internal/geo"
	"streetnet/internal/graph"
	"streetnet/internal/logger"
	"streetnet/internal/metrics"
	"streetnet/internal/spatial"
)

// Run executes the metrics pipeline end to end: load the graph, reduce to
// the largest component, compute node metrics, aggregate to block groups,
// normalize into densities, write the CSV, and record the run. A nil
// database skips persistence; any other failure aborts before output is
// touched, so a failed run never leaves a partial CSV behind.
func Run(cfg *config.Config, database *db.DB) error {
	start := time.Now()

	g, err := graph.Load(cfg.NodesCSV, cfg.EdgesCSV)
	if err != nil {
		return err
	}
	full := len(g.Nodes)
	g = g.LargestComponent()
	if len(g.Nodes) < full {
		logger.Info("Graph", fmt.Sprintf("Reduced to largest component: %d of %d nodes", len(g.Nodes), full))
	}

	logger.Section("Metrics")
	nm := metrics.Compute(g, cfg.Workers)
	logger.Stats("Nodes scored", len(nm))

	logger.Section("Aggregation")
	raw, err := spatial.LoadBlockGroups(cfg.BlockGroupsPath)
	if err != nil {
		return err
	}
	proj, err := geo.NewProjection(cfg.CRS, spatial.Center(raw))
	if err != nil {
		return err
	}
	logger.Stats("Projection", proj.Name())

	bgs := spatial.Project(raw, proj)
	rows := spatial.Aggregate(g, nm, bgs, proj)
	spatial.Normalize(rows)

	if err := spatial.WriteCSV(cfg.MetricsCSV, rows); err != nil {
		return fmt.Errorf("write %s: %w", cfg.MetricsCSV, err)
	}
	logger.Success("Pipeline", fmt.Sprintf("Wrote %s (%d block groups)", cfg.MetricsCSV, len(rows)))

	if database != nil {
		runID := database.InsertRun(cfg.CRS, len(g.Nodes), len(g.Edges), len(bgs), time.Since(start))
		database.InsertMetrics(runID, rows)
	}

	logger.Stats("Duration", time.Since(start).Round(time.Millisecond).String())
	return nil
}

// RunFetch pulls block-group demographics for both decennial vintages and
// writes one CSV per vintage. A vintage whose every tract failed is skipped
// with a warning rather than producing an empty file.
func RunFetch(cfg *config.Config) error {
	client := census.NewClient(cfg.FetchAttempts, time.Duration(cfg.FetchBackoffMS)*time.Millisecond)
	g := census.Geography{State: cfg.State, County: cfg.County}

	vintages := []struct {
		name   string
		api    string
		vars   []string
		tracts []string
	}{
		{"2020", census.API2020PL, census.Vars2020, cfg.Tracts2020},
		{"2010", census.API2010SF1, census.Vars2010, cfg.Tracts2010},
	}

	wrote := 0
	for _, v := range vintages {
		logger.Section("Census " + v.name)
		raw := client.FetchBlockGroups(v.api, v.vars, g, v.tracts)
		if len(raw) == 0 {
			logger.Warn("Census", fmt.Sprintf("No %s block groups fetched; skipping output", v.name))
			continue
		}
		tab := census.BuildVintageTable(raw, v.name)
		tab.SortByGEOID()
		path := filepath.Join(cfg.OutDir, fmt.Sprintf("bg_%s_blockgroups.csv", v.name))
		if err := tab.WriteCSV(path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Success("Census", fmt.Sprintf("Wrote %s (%d block groups)", path, len(tab.Rows)))
		wrote++
	}
	if wrote == 0 {
		return fmt.Errorf("census fetch produced no data for any vintage")
	}
	return nil
}

// RunJoin validates the ACS table, recomputes its derived rate columns, and
// left-joins the metrics table onto it.
func RunJoin(cfg *config.Config) error {
	logger.Section("Join")

	acs, err := census.ReadTable(cfg.ACSCSV)
	if err != nil {
		return err
	}
	if err := census.ValidateACS(acs); err != nil {
		return err
	}
	census.ApplyACSRates(acs)

	metricsTab, err := census.ReadTable(cfg.MetricsCSV)
	if err != nil {
		return err
	}

	joined, err := census.Join(acs, metricsTab)
	if err != nil {
		return err
	}
	if err := joined.WriteCSV(cfg.JoinedCSV); err != nil {
		return fmt.Errorf("write %s: %w", cfg.JoinedCSV, err)
	}
	logger.Success("Join", fmt.Sprintf("Wrote %s (%d rows)", cfg.JoinedCSV, len(joined.Rows)))
	return nil
}
