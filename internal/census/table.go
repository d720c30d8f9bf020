package census

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Table is a headered CSV held in memory: an ordered column list and one
// string map per row. Cells that are absent or empty read as NaN through
// Float, keeping "no data" distinct from zero end to end.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends the column to the header if it is not already there.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Float parses the named cell of a row. Missing, empty, or unparseable
// cells are NaN.
func Float(row map[string]string, col string) float64 {
	s := strings.TrimSpace(row[col])
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// SetFloat writes a float cell: NaN becomes the empty string, anything else
// the shortest representation that round-trips.
func SetFloat(row map[string]string, col string, v float64) {
	if math.IsNaN(v) {
		row[col] = ""
		return
	}
	row[col] = strconv.FormatFloat(v, 'g', -1, 64)
}

// SortByGEOID orders rows ascending by GEOID_BG so repeated runs over the
// same inputs serialize identically.
func (t *Table) SortByGEOID() {
	sort.Slice(t.Rows, func(i, j int) bool {
		return t.Rows[i]["GEOID_BG"] < t.Rows[j]["GEOID_BG"]
	})
}

// ReadTable loads a headered CSV into a Table. Rows with a field count that
// does not match the header are skipped.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := NewTable(header...)
	for _, rec := range records[1:] {
		if len(rec) != len(header) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = rec[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV persists the table through a temp file and rename so a failed
// run leaves no partial output.
func (t *Table) WriteCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".table-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns); err != nil {
		tmp.Close()
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			rec[i] = row[col]
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
