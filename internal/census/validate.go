package census

import (
	"fmt"
	"math"
	"strings"

	"streetnet/internal/logger"
)

// requiredACS are the count columns the derivations need. Derived rate
// columns are not required in the input; they are recomputed regardless.
var requiredACS = []string{
	"GEOID_BG", "pop", "black", "asian", "hisp", "hisp_tot",
	"owner", "renter", "units", "vac_units",
	"units_denom", "u_20_49", "u_50p",
}

// ValidateACS checks the ACS extract before it enters the join: required
// columns present, GEOIDs normalized to twelve digits, and no duplicate
// block groups. Rate values outside [0, 100] only warn; they are derived
// output, not join keys.
func ValidateACS(t *Table) error {
	var missing []string
	for _, col := range requiredACS {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("ACS table missing required columns: %s", strings.Join(missing, ", "))
	}

	seen := make(map[string]bool, len(t.Rows))
	for _, row := range t.Rows {
		id := NormalizeGEOID(row["GEOID_BG"])
		if id == "" {
			return fmt.Errorf("ACS table has a row with an empty GEOID_BG")
		}
		if seen[id] {
			return fmt.Errorf("duplicate GEOID_BG %s in ACS table", id)
		}
		seen[id] = true
		row["GEOID_BG"] = id
	}

	for _, col := range []string{"owner_pct", "vac_rate", "black_pct", "asian_pct", "hisp_pct", "u_20plus_pct"} {
		if !t.HasColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			v := Float(row, col)
			if !math.IsNaN(v) && (v < 0 || v > 100) {
				logger.Warn("Census", fmt.Sprintf("%s: %s = %v outside [0, 100]", row["GEOID_BG"], col, v))
			}
		}
	}
	return nil
}
