package census

import (
	"fmt"
	"net/url"
	"strings"

	"streetnet/internal/logger"
)

// Decennial API endpoints and the variables the study pulls from each:
// total population, race counts, and the Hispanic-origin table's
// denominator and estimate.
const (
	API2020PL  = "https://api.census.gov/data/2020/dec/pl"
	API2010SF1 = "https://api.census.gov/data/2010/dec/sf1"
)

var (
	Vars2020 = []string{"P1_001N", "P1_003N", "P1_004N", "P1_006N", "P2_001N", "P2_002N"}
	Vars2010 = []string{"P001001", "P005003", "P005004", "P005006", "P004001", "P004003"}

	rename2020 = map[string]string{
		"P1_001N": "pop", "P1_003N": "white", "P1_004N": "black",
		"P1_006N": "asian", "P2_001N": "hisp_tot", "P2_002N": "hisp",
	}
	rename2010 = map[string]string{
		"P001001": "pop", "P005003": "white", "P005004": "black",
		"P005006": "asian", "P004001": "hisp_tot", "P004003": "hisp",
	}
)

// Geography fixes the state and county the tract queries run under.
type Geography struct {
	State  string
	County string
}

// FetchBlockGroups pulls all block groups for each tract, one request per
// tract. A tract that exhausts the retry budget is skipped with a warning and
// the rest of the batch continues; its absence is a gap in the dataset, never
// a zero. Row keys are the raw API column names plus TRACT, BG, and GEOID_BG.
func (c *Client) FetchBlockGroups(api string, vars []string, g Geography, tracts []string) []map[string]string {
	var out []map[string]string
	for _, tract := range tracts {
		params := url.Values{}
		params.Set("get", strings.Join(append(append([]string{}, vars...), "NAME"), ","))
		params.Set("for", "block group:*")
		params.Set("in", fmt.Sprintf("state:%s county:%s tract:%s", g.State, g.County, tract))
		u := api + "?" + params.Encode()

		rows, err := c.getRows(u)
		if err != nil {
			logger.Warn("Census", fmt.Sprintf("Skipping tract %s: %v", tract, err))
			continue
		}

		cols := rows[0]
		for _, rec := range rows[1:] {
			if len(rec) != len(cols) {
				continue
			}
			row := make(map[string]string, len(cols)+3)
			for i, col := range cols {
				row[col] = rec[i]
			}
			t := row["tract"]
			for len(t) < 6 {
				t = "0" + t
			}
			row["TRACT"] = t
			row["BG"] = row["block group"]
			row["GEOID_BG"] = BuildGEOID(g.State, g.County, t, row["BG"])
			out = append(out, row)
		}
	}
	return out
}

// BuildVintageTable shapes raw API rows into the analysis table for one
// census vintage: renamed count columns, identifier columns, and the
// derived percentage columns computed unconditionally from their inputs.
func BuildVintageTable(rows []map[string]string, vintage string) *Table {
	rename := rename2020
	if vintage == "2010" {
		rename = rename2010
	}

	t := NewTable("GEOID_BG", "TRACT", "BG",
		"pop", "white", "black", "asian", "hisp_tot", "hisp",
		"white_pct", "black_pct", "asian_pct", "hisp_pct")

	for _, raw := range rows {
		row := map[string]string{
			"GEOID_BG": raw["GEOID_BG"],
			"TRACT":    raw["TRACT"],
			"BG":       raw["BG"],
		}
		for apiName, name := range rename {
			row[name] = raw[apiName]
		}
		t.Rows = append(t.Rows, row)
	}

	for _, d := range raceRates {
		applyDerivation(t, d)
	}
	return t
}

// raceRates are the decennial derivations; each percentage is a pure
// function of its declared inputs and is always recomputed.
var raceRates = []Derivation{
	{Column: "white_pct", Deps: []string{"white", "pop"}, Fn: ratio("white", "pop")},
	{Column: "black_pct", Deps: []string{"black", "pop"}, Fn: ratio("black", "pop")},
	{Column: "asian_pct", Deps: []string{"asian", "pop"}, Fn: ratio("asian", "pop")},
	{Column: "hisp_pct", Deps: []string{"hisp", "hisp_tot"}, Fn: ratio("hisp", "hisp_tot")},
}
