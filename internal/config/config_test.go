package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Values(t *testing.T) {
	c := Default()
	if c == nil {
		t.Fatal("Default() returned nil")
	}
	if c.CRS != "epsg:3857" {
		t.Errorf("CRS = %q, want epsg:3857", c.CRS)
	}
	if c.State != "17" || c.County != "031" {
		t.Errorf("State/County = %q/%q, want 17/031", c.State, c.County)
	}
	if len(c.Tracts2020) != 6 || len(c.Tracts2010) != 7 {
		t.Errorf("tract lists = %d/%d, want 6/7", len(c.Tracts2020), len(c.Tracts2010))
	}
	if c.FetchAttempts != 2 {
		t.Errorf("FetchAttempts = %d, want 2", c.FetchAttempts)
	}
	if c.FetchBackoffMS != 700 {
		t.Errorf("FetchBackoffMS = %d, want 700", c.FetchBackoffMS)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"crs":"local","nodes_csv":"n.csv","fetch_attempts":3}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.CRS != "local" {
		t.Errorf("CRS = %q, want local", c.CRS)
	}
	if c.NodesCSV != "n.csv" {
		t.Errorf("NodesCSV = %q, want n.csv", c.NodesCSV)
	}
	if c.FetchAttempts != 3 {
		t.Errorf("FetchAttempts = %d, want 3", c.FetchAttempts)
	}
	// Untouched fields keep defaults.
	if c.County != "031" {
		t.Errorf("County = %q, want default 031", c.County)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if c.CRS != Default().CRS {
		t.Error("Load(\"\") should return defaults")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load of missing file should fail")
	}
}

func TestValidate_RejectsUnknownCRS(t *testing.T) {
	c := Default()
	c.CRS = "epsg:4326"
	if err := c.Validate(); err == nil {
		t.Error("epsg:4326 is geographic and must be rejected")
	}
	c.CRS = ""
	if err := c.Validate(); err == nil {
		t.Error("empty CRS must be rejected")
	}
}
