package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/spikewire/internal/connectivity"
)

// buildDB runs a sparse build into a fresh database and returns its path.
func buildDB(t *testing.T) string {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "net.db")
	if out, err := runCmd(t, newBuildCmd(), "--config", smallConfig(t, dir), "--db", dbPath, "--plastic"); err != nil {
		t.Fatalf("build error = %v\n%s", err, out)
	}
	return dbPath
}

func TestNewExportCmd(t *testing.T) {
	cmd := newExportCmd()
	for _, name := range []string{"db", "list", "group", "out"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s flag", name)
		}
	}
}

func TestExportCmd_List(t *testing.T) {
	dbPath := buildDB(t)

	out, err := runCmd(t, newExportCmd(), "--db", dbPath, "--list")
	if err != nil {
		t.Fatalf("export --list error = %v", err)
	}
	if n := strings.Count(out, "synapses"); n != 6 {
		t.Errorf("listed %d groups, want 6:\n%s", n, out)
	}
	if strings.Count(out, "[plastic]") != 1 {
		t.Errorf("want exactly one plastic group:\n%s", out)
	}
}

func TestExportCmd_GroupRoundTrip(t *testing.T) {
	dbPath := buildDB(t)
	out := filepath.Join(t.TempDir(), "group.wmat")

	// Group 5 is ee, the last pair connected: 80 x 80 with in-degree 8.
	if _, err := runCmd(t, newExportCmd(), "--db", dbPath, "--group", "5", "--out", out); err != nil {
		t.Fatalf("export error = %v", err)
	}

	conn, err := connectivity.LoadWeightMatrix(out, 1.5e-3, 1e-4, 1)
	if err != nil {
		t.Fatalf("LoadWeightMatrix() error = %v", err)
	}
	if conn.Len() != 640 {
		t.Errorf("exported %d synapses, want 640", conn.Len())
	}
	if err := connectivity.CheckBounds(conn, 80, 80); err != nil {
		t.Errorf("CheckBounds() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%%MatrixMarket") {
		t.Errorf("missing banner: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestExportCmd_Errors(t *testing.T) {
	clearEnv(t)
	dbPath := buildDB(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no db", []string{"--list"}, "--db"},
		{"missing db", []string{"--db", filepath.Join(t.TempDir(), "none.db"), "--list"}, "database"},
		{"no action", []string{"--db", dbPath}, "--list or --group"},
		{"no out", []string{"--db", dbPath, "--group", "0"}, "--out"},
		{"unknown group", []string{"--db", dbPath, "--group", "99", "--out", filepath.Join(t.TempDir(), "x.wmat")}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, newExportCmd(), tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
