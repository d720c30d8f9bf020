package census

import "math"

// Percent is the single shared rate formula: 100*n/d rounded to two
// decimals. Undefined inputs or a non-positive denominator give NaN, so a
// missing count can never masquerade as a zero rate.
func Percent(n, d float64) float64 {
	if math.IsNaN(n) || math.IsNaN(d) || d <= 0 {
		return math.NaN()
	}
	return math.Round(100*n/d*100) / 100
}

// Derivation declares one derived column as a pure function of named input
// columns. Derivations run unconditionally after every load or fetch; a
// stale derived cell in the input is always overwritten.
type Derivation struct {
	Column string
	Deps   []string
	Fn     func(get func(string) float64) float64
}

// ratio builds the common Percent-of-two-columns derivation.
func ratio(num, den string) func(get func(string) float64) float64 {
	return func(get func(string) float64) float64 {
		return Percent(get(num), get(den))
	}
}

func applyDerivation(t *Table, d Derivation) {
	t.EnsureColumn(d.Column)
	for _, row := range t.Rows {
		get := func(col string) float64 { return Float(row, col) }
		SetFloat(row, d.Column, d.Fn(get))
	}
}

// acsRates are the housing and demographic rates derived from the ACS
// extract before it joins the network metrics.
var acsRates = []Derivation{
	{Column: "owner_pct", Deps: []string{"owner", "renter"}, Fn: func(get func(string) float64) float64 {
		return Percent(get("owner"), get("owner")+get("renter"))
	}},
	{Column: "vac_rate", Deps: []string{"vac_units", "units"}, Fn: ratio("vac_units", "units")},
	{Column: "black_pct", Deps: []string{"black", "pop"}, Fn: ratio("black", "pop")},
	{Column: "asian_pct", Deps: []string{"asian", "pop"}, Fn: ratio("asian", "pop")},
	{Column: "hisp_pct", Deps: []string{"hisp", "hisp_tot"}, Fn: ratio("hisp", "hisp_tot")},
	{Column: "u_20plus_pct", Deps: []string{"u_20_49", "u_50p", "units_denom"}, Fn: func(get func(string) float64) float64 {
		return Percent(get("u_20_49")+get("u_50p"), get("units_denom"))
	}},
}

// ApplyACSRates recomputes every derived ACS column from its count inputs.
func ApplyACSRates(t *Table) {
	for _, d := range acsRates {
		applyDerivation(t, d)
	}
}
