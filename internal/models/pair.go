package models

import (
	"fmt"
	"strings"
)

// Pair names an ordered (source, target) population pair of the benchmark.
type Pair string

const (
	PairEE     Pair = "ee"      // excitatory -> excitatory (recurrent, plastic)
	PairEI     Pair = "ei"      // excitatory -> inhibitory
	PairIE     Pair = "ie"      // inhibitory -> excitatory
	PairII     Pair = "ii"      // inhibitory -> inhibitory
	PairInputE Pair = "input-e" // input -> excitatory
	PairInputI Pair = "input-i" // input -> inhibitory
)

// Pairs returns every benchmark pair in build order.
// Inhibitory sources go first and the plastic recurrent pair goes last,
// matching the order the benchmark registers synapse groups.
func Pairs() []Pair {
	return []Pair{PairIE, PairII, PairEI, PairInputE, PairInputI, PairEE}
}

// ParsePair maps a pair name to a Pair. Matching is case-insensitive and
// accepts "_" in place of "-".
func ParsePair(s string) (Pair, error) {
	norm := Pair(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, p := range Pairs() {
		if p == norm {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown population pair: %q (valid: ee, ei, ie, ii, input-e, input-i)", s)
}

// String implements fmt.Stringer.
func (p Pair) String() string {
	return string(p)
}

// Source returns the kind of the presynaptic population.
func (p Pair) Source() PopulationKind {
	switch p {
	case PairEE, PairEI:
		return PopulationExcitatory
	case PairIE, PairII:
		return PopulationInhibitory
	default:
		return PopulationInput
	}
}

// Target returns the kind of the postsynaptic population.
func (p Pair) Target() PopulationKind {
	switch p {
	case PairEE, PairIE, PairInputE:
		return PopulationExcitatory
	default:
		return PopulationInhibitory
	}
}
