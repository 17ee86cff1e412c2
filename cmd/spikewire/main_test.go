package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRootCmd creates a root command with persistent flags for testing subcommands
func newTestRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "spikewire",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	return rootCmd
}

// runCmd executes sub under a test root and returns its stdout. Log
// output goes to a separate buffer so JSON output stays parseable.
func runCmd(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()
	root := newTestRootCmd()
	root.AddCommand(sub)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{sub.Name()}, args...))
	err := root.Execute()
	return out.String(), err
}

// smallConfig writes a config for a 100/80/20 network into dir.
func smallConfig(t *testing.T, dir string) string {
	t.Helper()
	content := `simulation:
  timestep: 0.0001
  seed: 7
populations:
  input: {width: 1, height: 100}
  excitatory: {width: 1, height: 80}
  inhibitory: {width: 1, height: 20}
output:
  dir: ` + filepath.Join(dir, "out") + `
`
	path := filepath.Join(dir, "spikewire.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// clearEnv keeps SPIKEWIRE_* variables from the host out of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SPIKEWIRE_TIMESTEP", "SPIKEWIRE_SEED", "SPIKEWIRE_FAST", "SPIKEWIRE_PLASTIC",
		"SPIKEWIRE_SPARSENESS", "SPIKEWIRE_WEIGHT_DIR", "SPIKEWIRE_OUTPUT_DIR", "SPIKEWIRE_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestNewRootCmd(t *testing.T) {
	root := newRootCmd()
	if root.Use != "spikewire" {
		t.Errorf("Use = %q, want spikewire", root.Use)
	}
	for _, name := range []string{"json", "config"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing --%s persistent flag", name)
		}
	}

	want := map[string]bool{"version": false, "build": false, "generate": false, "inspect": false, "export": false, "config": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %q subcommand", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, newVersionCmd())
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "spikewire version "+version) {
		t.Errorf("output = %q", out)
	}

	out, err = runCmd(t, newVersionCmd(), "--json")
	if err != nil {
		t.Fatalf("version --json error = %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got["version"] != version {
		t.Errorf("version = %q, want %q", got["version"], version)
	}
}

func TestPopulationFromConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	root := newTestRootCmd()
	root.SetArgs([]string{"--config", smallConfig(t, dir)})
	root.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		pop := populationFromConfig(cfg, "inhibitory")
		if pop.Size() != 20 || pop.Name != "inhibitory" {
			t.Errorf("inhibitory population = %+v", pop)
		}
		return nil
	}
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestExtent(t *testing.T) {
	tests := []struct {
		idx  []int
		want int
	}{
		{nil, 1},
		{[]int{0}, 1},
		{[]int{3, 9, 1}, 10},
	}
	for _, tt := range tests {
		if got := extent(tt.idx); got != tt.want {
			t.Errorf("extent(%v) = %d, want %d", tt.idx, got, tt.want)
		}
	}
}
