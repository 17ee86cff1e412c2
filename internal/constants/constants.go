// Package constants provides named constants used throughout the spikewire codebase.
// Values default to the Brunel (2000) benchmark network with added STDP.
package constants

// Simulation timing constants
const (
	// DefaultTimestep is the simulation timestep in seconds (0.1 ms).
	// Delay staggering and delay quantization both depend on it.
	DefaultTimestep = 1e-4

	// DefaultSimTime is the simulated duration in seconds.
	DefaultSimTime = 20.0

	// DefaultSeed seeds the random source used by sparse connectivity.
	DefaultSeed = 42
)

// Population size constants
const (
	// DefaultInputSize is the number of Poisson input neurons.
	DefaultInputSize = 10000

	// DefaultExcitatorySize is the number of excitatory neurons.
	DefaultExcitatorySize = 8000

	// DefaultInhibitorySize is the number of inhibitory neurons.
	DefaultInhibitorySize = 2000

	// DefaultInputRate is the Poisson input rate in Hz.
	DefaultInputRate = 20.0
)

// Synapse constants
const (
	// DefaultSparseness is the fraction of presynaptic neurons feeding each
	// postsynaptic neuron.
	DefaultSparseness = 0.1

	// DefaultDelay is the nominal synaptic delay in seconds (1.5 ms).
	DefaultDelay = 1.5e-3

	// DefaultWeight is the excitatory PSP size in volts (0.1 mV).
	DefaultWeight = 0.1e-3

	// DefaultGamma scales inhibitory weights relative to excitatory ones.
	// Inhibitory synapses use -Gamma*Weight.
	DefaultGamma = 5.0

	// DefaultWeightScaling is the biological scaling factor applied by the engine.
	DefaultWeightScaling = 1.0

	// DefaultSkipGroups disables delay staggering.
	DefaultSkipGroups = 1
)

// STDP constants for the weight-dependent rule attached to the recurrent
// excitatory pair.
const (
	DefaultAPlus    = 1.0
	DefaultAMinus   = 1.0
	DefaultTauPlus  = 0.02
	DefaultTauMinus = 0.02

	// DefaultLambda is the STDP learning rate.
	DefaultLambda = 1e-2

	// DefaultAlpha is the depression/potentiation asymmetry.
	DefaultAlpha = 2.02

	// DefaultWMax is the weight ceiling (0.3 mV).
	DefaultWMax = 0.3e-3
)

// Output file names
const (
	// TimeFileName receives the build duration in fast mode.
	TimeFileName = "timefile.dat"

	// DecisionFileName receives per-pair connector decisions at debug level.
	DecisionFileName = "connectivity.jsonl"

	// ReportFileName receives the per-group CSV summary.
	ReportFileName = "connectivity.csv"

	// DatabaseFileName is the default SQLite connectivity store.
	DatabaseFileName = "connectivity.db"
)
