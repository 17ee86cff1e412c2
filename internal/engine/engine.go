// Package engine defines the Engine interface connectivity is submitted to,
// and an in-memory reference engine that binds synapse groups the way a
// spiking simulator does before it runs.
package engine

import (
	"context"
	"errors"

	"github.com/nvandessel/spikewire/internal/models"
)

var (
	// ErrUnknownGroup reports a neuron-group handle the engine never issued.
	ErrUnknownGroup = errors.New("engine: unknown neuron group")

	// ErrUnknownSynapseGroup reports a synapse-group handle the engine never
	// issued or already removed.
	ErrUnknownSynapseGroup = errors.New("engine: unknown synapse group")
)

// SynapseGroup is a Connection as bound by the engine: uniform policies
// are materialized and delays are expressed in whole timesteps.
type SynapseGroup struct {
	ID         int                    `json:"id"`
	Pre        models.GroupID         `json:"pre"`
	Post       models.GroupID         `json:"post"`
	PreIdx     []int                  `json:"pre_idx"`
	PostIdx    []int                  `json:"post_idx"`
	Weights    []float64              `json:"weights"`
	DelaySteps []int                  `json:"delay_steps"`
	Plasticity []models.PlasticityTag `json:"plasticity,omitempty"`
}

// Len returns the number of synapses.
func (g *SynapseGroup) Len() int {
	return len(g.PreIdx)
}

// Engine accepts neuron and synapse groups and returns opaque handles.
type Engine interface {
	// Neuron group operations
	AddNeuronGroup(ctx context.Context, name string, kind models.PopulationKind, shape [2]int) (models.Population, error)

	// Synapse group operations
	// AddSynapseGroup ingests conn and returns a non-negative handle. The
	// engine keeps its own copy; callers may discard conn afterwards.
	AddSynapseGroup(ctx context.Context, pre, post models.GroupID, conn *models.Connection) (int, error)
	RemoveSynapseGroup(ctx context.Context, id int) error
}
