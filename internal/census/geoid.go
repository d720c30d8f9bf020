package census

import "strings"

// geoidLen is the block-group identifier width:
// state(2) + county(3) + tract(6) + block group(1).
const geoidLen = 12

// NormalizeGEOID reduces any Census identifier to the canonical 12-character
// block-group code: keep the last 12 characters, left-pad with zeros.
// Longer identifiers (e.g. a full AFFGEOID) shed their prefix; shorter ones
// regain zeros lost to numeric round-tripping.
func NormalizeGEOID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > geoidLen {
		s = s[len(s)-geoidLen:]
	}
	if len(s) < geoidLen {
		s = strings.Repeat("0", geoidLen-len(s)) + s
	}
	return s
}

// TractOf returns the 6-digit tract portion of a normalized GEOID.
func TractOf(geoid string) string {
	geoid = NormalizeGEOID(geoid)
	return geoid[5:11]
}

// BlockGroupOf returns the single block-group digit of a normalized GEOID.
func BlockGroupOf(geoid string) string {
	geoid = NormalizeGEOID(geoid)
	return geoid[11:]
}

// BuildGEOID assembles the canonical code from its parts, zero-padding the
// tract to 6 digits the way the Census API returns it.
func BuildGEOID(state, county, tract, bg string) string {
	for len(tract) < 6 {
		tract = "0" + tract
	}
	return NormalizeGEOID(state + county + tract + bg)
}
