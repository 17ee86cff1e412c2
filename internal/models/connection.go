package models

// Range is a uniform [Min, Max] policy for weights or delays.
// Min == Max means a single fixed value.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Fixed returns a Range holding a single value.
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// IsFixed reports whether the range collapses to one value.
func (r Range) IsFixed() bool {
	return r.Min == r.Max
}

// Connection is the set of directed synapses between one ordered pair of
// populations, in the parallel-slice layout the engine ingests.
//
// Pre, Post, and (when present) Weights and Delays always have equal length.
// Indices are 0-based. When Weights or Delays is nil the engine draws the
// value from WeightRange or DelayRange instead.
type Connection struct {
	Pre     []int     `json:"pre"`
	Post    []int     `json:"post"`
	Weights []float64 `json:"weights,omitempty"`
	Delays  []float64 `json:"delays,omitempty"` // seconds

	WeightRange Range `json:"weight_range"`
	DelayRange  Range `json:"delay_range"`

	// Plasticity rules applied to every synapse. Empty means fixed weights.
	Plasticity []PlasticityTag `json:"plasticity,omitempty"`
}

// Len returns the number of synapses.
func (c *Connection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Pre)
}

// HasWeights reports whether per-synapse weights are present.
func (c *Connection) HasWeights() bool {
	return c != nil && c.Weights != nil
}

// HasDelays reports whether per-synapse delays are present.
func (c *Connection) HasDelays() bool {
	return c != nil && c.Delays != nil
}

// IsPlastic reports whether any plasticity rule is attached.
func (c *Connection) IsPlastic() bool {
	return c != nil && len(c.Plasticity) > 0
}
