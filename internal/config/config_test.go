package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/spikewire/internal/models"
)

func TestDefault(t *testing.T) {
	config := Default()

	// Simulation defaults
	if config.Simulation.Timestep != 1e-4 {
		t.Errorf("expected Timestep 1e-4, got %g", config.Simulation.Timestep)
	}
	if config.Simulation.Duration != 20 {
		t.Errorf("expected Duration 20, got %g", config.Simulation.Duration)
	}
	if config.Simulation.Fast {
		t.Error("expected Fast to be false by default")
	}

	// Population defaults
	if config.Populations.Input.Size() != 10000 {
		t.Errorf("expected input size 10000, got %d", config.Populations.Input.Size())
	}
	if config.Populations.Excitatory.Size() != 8000 {
		t.Errorf("expected excitatory size 8000, got %d", config.Populations.Excitatory.Size())
	}
	if config.Populations.Inhibitory.Size() != 2000 {
		t.Errorf("expected inhibitory size 2000, got %d", config.Populations.Inhibitory.Size())
	}

	// Synapse defaults
	if config.Synapses.Sparseness != 0.1 {
		t.Errorf("expected Sparseness 0.1, got %g", config.Synapses.Sparseness)
	}
	if config.Synapses.Delay != 1.5e-3 {
		t.Errorf("expected Delay 1.5e-3, got %g", config.Synapses.Delay)
	}
	if config.SkipGroups() != 1 {
		t.Errorf("expected SkipGroups 1, got %d", config.SkipGroups())
	}

	// Plasticity defaults
	if config.Plasticity.Enabled {
		t.Error("expected Plasticity.Enabled to be false by default")
	}
	if config.Plasticity.STDP.Alpha != 2.02 {
		t.Errorf("expected Alpha 2.02, got %g", config.Plasticity.STDP.Alpha)
	}

	// Logging defaults
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
simulation:
  timestep: 0.00005
  seed: 7
populations:
  excitatory:
    width: 10
    height: 80
synapses:
  sparseness: 0.05
  num_synapse_groups: 4
weight_files:
  dir: /data/brunel
  ee: ee.wmat
  ii: ii.wmat
plasticity:
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Simulation.Timestep != 5e-5 {
		t.Errorf("expected Timestep 5e-5, got %g", config.Simulation.Timestep)
	}
	if config.Simulation.Seed != 7 {
		t.Errorf("expected Seed 7, got %d", config.Simulation.Seed)
	}
	if config.Populations.Excitatory.Size() != 800 {
		t.Errorf("expected excitatory size 800, got %d", config.Populations.Excitatory.Size())
	}
	// untouched keys keep defaults
	if config.Populations.Inhibitory.Size() != 2000 {
		t.Errorf("expected inhibitory size 2000, got %d", config.Populations.Inhibitory.Size())
	}
	if config.Synapses.Sparseness != 0.05 {
		t.Errorf("expected Sparseness 0.05, got %g", config.Synapses.Sparseness)
	}
	if config.SkipGroups() != 4 {
		t.Errorf("expected SkipGroups 4, got %d", config.SkipGroups())
	}
	if config.WeightFiles.Path(models.PairEE) != "ee.wmat" {
		t.Errorf("expected ee path 'ee.wmat', got '%s'", config.WeightFiles.Path(models.PairEE))
	}
	if config.WeightFiles.Path(models.PairEI) != "" {
		t.Errorf("expected empty ei path, got '%s'", config.WeightFiles.Path(models.PairEI))
	}
	if !config.Plasticity.Enabled {
		t.Error("expected Plasticity.Enabled to be true")
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
weight_files:
  dir: ${TEST_WEIGHT_DIR}/matrices
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("TEST_WEIGHT_DIR", "/srv/brunel")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.WeightFiles.Dir != "/srv/brunel/matrices" {
		t.Errorf("expected Dir '/srv/brunel/matrices', got '%s'", config.WeightFiles.Dir)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	config, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Synapses.Gamma != 5 {
		t.Errorf("expected Gamma 5, got %g", config.Synapses.Gamma)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPIKEWIRE_TIMESTEP", "0.0002")
	t.Setenv("SPIKEWIRE_SEED", "99")
	t.Setenv("SPIKEWIRE_FAST", "true")
	t.Setenv("SPIKEWIRE_PLASTIC", "1")
	t.Setenv("SPIKEWIRE_SPARSENESS", "0.2")
	t.Setenv("SPIKEWIRE_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.Timestep != 0.0002 {
		t.Errorf("expected Timestep 0.0002, got %g", config.Simulation.Timestep)
	}
	if config.Simulation.Seed != 99 {
		t.Errorf("expected Seed 99, got %d", config.Simulation.Seed)
	}
	if !config.Simulation.Fast {
		t.Error("expected Fast to be true")
	}
	if !config.Plasticity.Enabled {
		t.Error("expected Plasticity.Enabled to be true")
	}
	if config.Synapses.Sparseness != 0.2 {
		t.Errorf("expected Sparseness 0.2, got %g", config.Synapses.Sparseness)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestSkipGroups_NoTimestepGrouping(t *testing.T) {
	config := Default()
	config.Synapses.NumSynapseGroups = 8
	if config.SkipGroups() != 8 {
		t.Errorf("expected SkipGroups 8, got %d", config.SkipGroups())
	}

	config.Synapses.NoTimestepGrouping = true
	if config.SkipGroups() != 1 {
		t.Errorf("expected SkipGroups 1 with no_timestep_grouping, got %d", config.SkipGroups())
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero timestep", func(c *Config) { c.Simulation.Timestep = 0 }},
		{"negative duration", func(c *Config) { c.Simulation.Duration = -1 }},
		{"zero population", func(c *Config) { c.Populations.Inhibitory.Height = 0 }},
		{"zero sparseness", func(c *Config) { c.Synapses.Sparseness = 0 }},
		{"sparseness above one", func(c *Config) { c.Synapses.Sparseness = 1.5 }},
		{"zero delay", func(c *Config) { c.Synapses.Delay = 0 }},
		{"delay below timestep", func(c *Config) { c.Synapses.Delay = 5e-5 }},
		{"negative gamma", func(c *Config) { c.Synapses.Gamma = -1 }},
		{"zero synapse groups", func(c *Config) { c.Synapses.NumSynapseGroups = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	config := Default()
	config.WeightFiles.Set(models.PairIE, "ie.wmat")
	config.Plasticity.Enabled = true
	if err := config.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.WeightFiles.IE != "ie.wmat" {
		t.Errorf("expected ie path 'ie.wmat', got '%s'", loaded.WeightFiles.IE)
	}
	if !loaded.Plasticity.Enabled {
		t.Error("expected Plasticity.Enabled to survive round trip")
	}
}

func TestPlasticityTag(t *testing.T) {
	tag := Default().Plasticity.Tag()
	if tag.Rule != models.RuleWeightDependentSTDP {
		t.Errorf("expected rule %s, got %s", models.RuleWeightDependentSTDP, tag.Rule)
	}
	if tag.Params.WMax != 0.3e-3 {
		t.Errorf("expected WMax 0.3e-3, got %g", tag.Params.WMax)
	}
}
