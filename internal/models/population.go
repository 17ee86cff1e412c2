package models

import "fmt"

// GroupID is the opaque handle an engine assigns to a registered neuron group.
type GroupID int

// PopulationKind categorizes a neuron group within the benchmark network
type PopulationKind string

const (
	PopulationInput      PopulationKind = "input"      // Poisson drive
	PopulationExcitatory PopulationKind = "excitatory" // LIF, positive weights
	PopulationInhibitory PopulationKind = "inhibitory" // LIF, negative weights
)

// Population describes a neuron group as registered with the engine.
// A Population is immutable once the engine has returned it.
type Population struct {
	ID    GroupID        `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Kind  PopulationKind `json:"kind" yaml:"kind"`
	Shape [2]int         `json:"shape" yaml:"shape"` // width x height
}

// Size returns the number of neurons in the population.
func (p Population) Size() int {
	return p.Shape[0] * p.Shape[1]
}

// String implements fmt.Stringer.
func (p Population) String() string {
	return fmt.Sprintf("%s(%d:%dx%d)", p.Name, p.ID, p.Shape[0], p.Shape[1])
}

// ValidKind reports whether k is a known population kind.
func ValidKind(k PopulationKind) bool {
	switch k {
	case PopulationInput, PopulationExcitatory, PopulationInhibitory:
		return true
	default:
		return false
	}
}
