package models

// RuleWeightDependentSTDP names the weight-dependent STDP rule, the only rule
// the benchmark attaches.
const RuleWeightDependentSTDP = "weight-dependent-stdp"

// STDPParams are the parameters of a weight-dependent STDP rule.
// Only the engine evaluates them; this module carries them through unchanged.
type STDPParams struct {
	APlus            float64 `json:"a_plus" yaml:"a_plus"`
	AMinus           float64 `json:"a_minus" yaml:"a_minus"`
	TauPlus          float64 `json:"tau_plus" yaml:"tau_plus"`   // seconds
	TauMinus         float64 `json:"tau_minus" yaml:"tau_minus"` // seconds
	Lambda           float64 `json:"lambda" yaml:"lambda"`       // learning rate
	Alpha            float64 `json:"alpha" yaml:"alpha"`         // depression/potentiation asymmetry
	WMax             float64 `json:"w_max" yaml:"w_max"`
	NearestSpikeOnly bool    `json:"nearest_spike_only" yaml:"nearest_spike_only"`
}

// PlasticityTag references a learning-rule configuration applied uniformly
// to all synapses of a Connection.
type PlasticityTag struct {
	Name   string     `json:"name" yaml:"name"`
	Rule   string     `json:"rule" yaml:"rule"`
	Params STDPParams `json:"params" yaml:"params"`
}
