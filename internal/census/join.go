package census

import (
	"fmt"

	"streetnet/internal/logger"
)

// Join left-joins the network metrics table onto the ACS table by
// normalized GEOID_BG. Every ACS row survives; a block group with no
// metrics row keeps empty cells in the metric columns. Metrics rows with no
// ACS counterpart are dropped with a warning.
func Join(acs, metrics *Table) (*Table, error) {
	if !metrics.HasColumn("GEOID_BG") {
		return nil, fmt.Errorf("metrics table missing GEOID_BG column")
	}

	byGEOID := make(map[string]map[string]string, len(metrics.Rows))
	for _, row := range metrics.Rows {
		id := NormalizeGEOID(row["GEOID_BG"])
		if _, dup := byGEOID[id]; dup {
			return nil, fmt.Errorf("duplicate GEOID_BG %s in metrics table", id)
		}
		byGEOID[id] = row
	}

	out := NewTable(acs.Columns...)
	var metricCols []string
	for _, col := range metrics.Columns {
		if col == "GEOID_BG" {
			continue
		}
		metricCols = append(metricCols, col)
		out.EnsureColumn(col)
	}

	matched := 0
	for _, arow := range acs.Rows {
		row := make(map[string]string, len(out.Columns))
		for _, col := range acs.Columns {
			row[col] = arow[col]
		}
		if mrow, ok := byGEOID[arow["GEOID_BG"]]; ok {
			for _, col := range metricCols {
				row[col] = mrow[col]
			}
			matched++
			delete(byGEOID, arow["GEOID_BG"])
		}
		out.Rows = append(out.Rows, row)
	}

	for id := range byGEOID {
		logger.Warn("Census", fmt.Sprintf("Metrics block group %s has no ACS row; dropped from join", id))
	}
	logger.Stats("Joined rows", fmt.Sprintf("%d (%d with metrics)", len(out.Rows), matched))

	out.SortByGEOID()
	return out, nil
}
