// Package store persists assembled networks: populations, synapse groups
// with their per-synapse tables, and plasticity tags.
package store

import (
	"context"
	"errors"

	"github.com/nvandessel/spikewire/internal/engine"
	"github.com/nvandessel/spikewire/internal/models"
)

// ErrNotFound reports a synapse group that is not in the store.
var ErrNotFound = errors.New("store: synapse group not found")

// Network is a read-only view of an assembled network.
// *engine.InMemoryEngine satisfies it.
type Network interface {
	Timestep() float64
	NeuronGroups() []models.Population
	SynapseGroups() []*engine.SynapseGroup
}

// GroupSummary describes a stored synapse group without its synapses.
type GroupSummary struct {
	ID       int            `json:"id"`
	Pre      models.GroupID `json:"pre"`
	Post     models.GroupID `json:"post"`
	PreName  string         `json:"pre_name"`
	PostName string         `json:"post_name"`
	Synapses int            `json:"synapses"`
	Plastic  bool           `json:"plastic"`
}

// ConnectivityStore saves and reads back assembled networks.
type ConnectivityStore interface {
	// SaveNetwork replaces the stored network with net.
	SaveNetwork(ctx context.Context, net Network) error

	// Timestep returns the simulation timestep the network was bound with.
	Timestep(ctx context.Context) (float64, error)

	// ListPopulations returns stored populations ordered by ID.
	ListPopulations(ctx context.Context) ([]models.Population, error)

	// ListSynapseGroups returns stored groups ordered by ID.
	ListSynapseGroups(ctx context.Context) ([]GroupSummary, error)

	// LoadSynapseGroup returns one group with all its synapses.
	LoadSynapseGroup(ctx context.Context, id int) (*engine.SynapseGroup, error)

	// Close releases resources.
	Close() error
}
