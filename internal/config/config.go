// Package config provides unified configuration loading for spikewire.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nvandessel/spikewire/internal/constants"
	"github.com/nvandessel/spikewire/internal/models"
	"gopkg.in/yaml.v3"
)

// Config contains all spikewire configuration settings.
type Config struct {
	// Simulation contains timing and reproducibility settings.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Populations declares the neuron group shapes.
	Populations PopulationsConfig `json:"populations" yaml:"populations"`

	// Synapses contains the connectivity policy shared by all pairs.
	Synapses SynapsesConfig `json:"synapses" yaml:"synapses"`

	// WeightFiles maps a population pair to a weight-matrix file.
	// Pairs with a file use it; the rest fall back to sparse connectivity.
	WeightFiles WeightFilesConfig `json:"weight_files" yaml:"weight_files"`

	// Plasticity configures the STDP rule attached to the plastic pair.
	Plasticity PlasticityConfig `json:"plasticity" yaml:"plasticity"`

	// Output contains settings for files written by a build.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig configures the simulation clock and random source.
type SimulationConfig struct {
	// Timestep is the simulation timestep in seconds. It is fixed before any
	// connectivity is generated.
	Timestep float64 `json:"timestep" yaml:"timestep"`

	// Duration is the simulated time in seconds, forwarded to the engine.
	Duration float64 `json:"duration" yaml:"duration"`

	// Seed seeds the sparse-connectivity random source.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Fast suppresses monitor output and records build time instead.
	Fast bool `json:"fast" yaml:"fast"`
}

// PopulationsConfig declares the three benchmark populations.
type PopulationsConfig struct {
	Input      ShapeConfig `json:"input" yaml:"input"`
	Excitatory ShapeConfig `json:"excitatory" yaml:"excitatory"`
	Inhibitory ShapeConfig `json:"inhibitory" yaml:"inhibitory"`

	// InputRate is the Poisson rate in Hz, forwarded to the engine.
	InputRate float64 `json:"input_rate" yaml:"input_rate"`
}

// ShapeConfig is a width x height neuron grid.
type ShapeConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Shape returns the shape as the engine expects it.
func (s ShapeConfig) Shape() [2]int {
	return [2]int{s.Width, s.Height}
}

// Size returns the number of neurons.
func (s ShapeConfig) Size() int {
	return s.Width * s.Height
}

// SynapsesConfig configures connectivity shared across pairs.
type SynapsesConfig struct {
	// Sparseness is the fraction of presynaptic neurons per postsynaptic neuron.
	// Range: (0.0, 1.0]
	Sparseness float64 `json:"sparseness" yaml:"sparseness"`

	// Delay is the nominal synaptic delay in seconds.
	Delay float64 `json:"delay" yaml:"delay"`

	// Weight is the excitatory and input weight used by sparse pairs.
	Weight float64 `json:"weight" yaml:"weight"`

	// Gamma scales inhibitory sparse weights to -Gamma*Weight.
	Gamma float64 `json:"gamma" yaml:"gamma"`

	// NumSynapseGroups is the skip-group count for the plastic ee file.
	NumSynapseGroups int `json:"num_synapse_groups" yaml:"num_synapse_groups"`

	// NoTimestepGrouping forces a skip-group count of 1.
	NoTimestepGrouping bool `json:"no_timestep_grouping" yaml:"no_timestep_grouping"`
}

// WeightFilesConfig holds an optional weight-matrix path per pair.
type WeightFilesConfig struct {
	// Dir resolves relative paths. Empty means the working directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	EE     string `json:"ee,omitempty" yaml:"ee,omitempty"`
	EI     string `json:"ei,omitempty" yaml:"ei,omitempty"`
	IE     string `json:"ie,omitempty" yaml:"ie,omitempty"`
	II     string `json:"ii,omitempty" yaml:"ii,omitempty"`
	InputE string `json:"input_e,omitempty" yaml:"input_e,omitempty"`
	InputI string `json:"input_i,omitempty" yaml:"input_i,omitempty"`
}

// Path returns the configured file for pair, or "".
func (w WeightFilesConfig) Path(pair models.Pair) string {
	switch pair {
	case models.PairEE:
		return w.EE
	case models.PairEI:
		return w.EI
	case models.PairIE:
		return w.IE
	case models.PairII:
		return w.II
	case models.PairInputE:
		return w.InputE
	case models.PairInputI:
		return w.InputI
	default:
		return ""
	}
}

// Set assigns the file for pair.
func (w *WeightFilesConfig) Set(pair models.Pair, path string) {
	switch pair {
	case models.PairEE:
		w.EE = path
	case models.PairEI:
		w.EI = path
	case models.PairIE:
		w.IE = path
	case models.PairII:
		w.II = path
	case models.PairInputE:
		w.InputE = path
	case models.PairInputI:
		w.InputI = path
	}
}

// PlasticityConfig configures STDP on the recurrent excitatory pair.
type PlasticityConfig struct {
	// Enabled attaches the rule to plastic pairs.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// STDP holds the weight-dependent STDP parameters.
	STDP models.STDPParams `json:"stdp" yaml:"stdp"`
}

// Tag returns the plasticity tag attached to plastic pairs.
func (p PlasticityConfig) Tag() models.PlasticityTag {
	return models.PlasticityTag{
		Name:   "ee-stdp",
		Rule:   models.RuleWeightDependentSTDP,
		Params: p.STDP,
	}
}

// OutputConfig configures build artifacts.
type OutputConfig struct {
	// Dir receives the time file, the CSV report and the decision log.
	Dir string `json:"dir" yaml:"dir"`

	// Database is the SQLite connectivity store path. Empty disables it.
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
}

// LoggingConfig configures spikewire's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to <output.dir>/connectivity.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config describing the Brunel benchmark network.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Timestep: constants.DefaultTimestep,
			Duration: constants.DefaultSimTime,
			Seed:     constants.DefaultSeed,
		},
		Populations: PopulationsConfig{
			Input:      ShapeConfig{Width: 1, Height: constants.DefaultInputSize},
			Excitatory: ShapeConfig{Width: 1, Height: constants.DefaultExcitatorySize},
			Inhibitory: ShapeConfig{Width: 1, Height: constants.DefaultInhibitorySize},
			InputRate:  constants.DefaultInputRate,
		},
		Synapses: SynapsesConfig{
			Sparseness:       constants.DefaultSparseness,
			Delay:            constants.DefaultDelay,
			Weight:           constants.DefaultWeight,
			Gamma:            constants.DefaultGamma,
			NumSynapseGroups: constants.DefaultSkipGroups,
		},
		Plasticity: PlasticityConfig{
			STDP: models.STDPParams{
				APlus:    constants.DefaultAPlus,
				AMinus:   constants.DefaultAMinus,
				TauPlus:  constants.DefaultTauPlus,
				TauMinus: constants.DefaultTauMinus,
				Lambda:   constants.DefaultLambda,
				Alpha:    constants.DefaultAlpha,
				WMax:     constants.DefaultWMax,
			},
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from path (when non-empty) and then applies
// environment variable overrides.
// Order: defaults -> config file -> environment variables
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Keys missing from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.WeightFiles.Dir = expandEnvVars(config.WeightFiles.Dir)
	config.Output.Dir = expandEnvVars(config.Output.Dir)

	return config, nil
}

// WriteYAML saves the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SkipGroups returns the skip-group count for the plastic ee weight file.
func (c *Config) SkipGroups() int {
	if c.Synapses.NoTimestepGrouping {
		return 1
	}
	return c.Synapses.NumSynapseGroups
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if !positiveFinite(c.Simulation.Timestep) {
		return fmt.Errorf("timestep must be positive, got %g", c.Simulation.Timestep)
	}
	if c.Simulation.Duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %g", c.Simulation.Duration)
	}

	shapes := map[string]ShapeConfig{
		"input":      c.Populations.Input,
		"excitatory": c.Populations.Excitatory,
		"inhibitory": c.Populations.Inhibitory,
	}
	for name, s := range shapes {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("%s population shape must be positive, got %dx%d", name, s.Width, s.Height)
		}
	}

	if !(c.Synapses.Sparseness > 0 && c.Synapses.Sparseness <= 1) {
		return fmt.Errorf("sparseness must be in (0, 1], got %g", c.Synapses.Sparseness)
	}
	if !positiveFinite(c.Synapses.Delay) {
		return fmt.Errorf("delay must be positive, got %g", c.Synapses.Delay)
	}
	if c.Synapses.Delay < c.Simulation.Timestep {
		return fmt.Errorf("delay %g is shorter than one timestep %g", c.Synapses.Delay, c.Simulation.Timestep)
	}
	if c.Synapses.Gamma < 0 {
		return fmt.Errorf("gamma must be non-negative, got %g", c.Synapses.Gamma)
	}
	if c.Synapses.NumSynapseGroups < 1 {
		return fmt.Errorf("num_synapse_groups must be at least 1, got %d", c.Synapses.NumSynapseGroups)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SPIKEWIRE_TIMESTEP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.Timestep = f
		}
	}

	if v := os.Getenv("SPIKEWIRE_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}

	if v := os.Getenv("SPIKEWIRE_FAST"); v != "" {
		config.Simulation.Fast = v == "true" || v == "1"
	}

	if v := os.Getenv("SPIKEWIRE_PLASTIC"); v != "" {
		config.Plasticity.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("SPIKEWIRE_SPARSENESS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Synapses.Sparseness = f
		}
	}

	if v := os.Getenv("SPIKEWIRE_WEIGHT_DIR"); v != "" {
		config.WeightFiles.Dir = v
	}

	if v := os.Getenv("SPIKEWIRE_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}

	if v := os.Getenv("SPIKEWIRE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}
