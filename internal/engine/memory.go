package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"

	"github.com/nvandessel/spikewire/internal/connectivity"
	"github.com/nvandessel/spikewire/internal/models"
)

// InMemoryEngine implements Engine for the CLI and for tests.
type InMemoryEngine struct {
	mu       sync.RWMutex
	timestep float64
	rng      *rand.Rand

	neurons  []models.Population
	synapses map[int]*SynapseGroup
	nextID   int
}

// NewInMemoryEngine creates an engine with the given timestep in seconds.
// seed drives the draws for non-fixed uniform weight and delay ranges.
func NewInMemoryEngine(timestep float64, seed uint64) (*InMemoryEngine, error) {
	if !(timestep > 0) {
		return nil, fmt.Errorf("engine timestep must be positive, got %g", timestep)
	}
	return &InMemoryEngine{
		timestep: timestep,
		rng:      connectivity.NewRand(seed),
		synapses: make(map[int]*SynapseGroup),
	}, nil
}

// Timestep returns the engine timestep in seconds.
func (e *InMemoryEngine) Timestep() float64 {
	return e.timestep
}

// AddNeuronGroup registers a population and assigns its handle.
func (e *InMemoryEngine) AddNeuronGroup(ctx context.Context, name string, kind models.PopulationKind, shape [2]int) (models.Population, error) {
	if name == "" {
		return models.Population{}, fmt.Errorf("neuron group name is required")
	}
	if !models.ValidKind(kind) {
		return models.Population{}, fmt.Errorf("invalid population kind: %s", kind)
	}
	if shape[0] <= 0 || shape[1] <= 0 {
		return models.Population{}, fmt.Errorf("neuron group shape must be positive, got %dx%d", shape[0], shape[1])
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pop := models.Population{
		ID:    models.GroupID(len(e.neurons)),
		Name:  name,
		Kind:  kind,
		Shape: shape,
	}
	e.neurons = append(e.neurons, pop)
	return pop, nil
}

// NeuronGroup returns the population for id.
func (e *InMemoryEngine) NeuronGroup(id models.GroupID) (models.Population, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if id < 0 || int(id) >= len(e.neurons) {
		return models.Population{}, fmt.Errorf("neuron group %d: %w", id, ErrUnknownGroup)
	}
	return e.neurons[id], nil
}

// NeuronGroups returns every registered population in handle order.
func (e *InMemoryEngine) NeuronGroups() []models.Population {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.neurons)
}

// AddSynapseGroup binds conn between pre and post.
// Indices are re-checked against the registered population sizes.
func (e *InMemoryEngine) AddSynapseGroup(ctx context.Context, pre, post models.GroupID, conn *models.Connection) (int, error) {
	if conn == nil {
		return -1, fmt.Errorf("connection is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if pre < 0 || int(pre) >= len(e.neurons) {
		return -1, fmt.Errorf("presynaptic group %d: %w", pre, ErrUnknownGroup)
	}
	if post < 0 || int(post) >= len(e.neurons) {
		return -1, fmt.Errorf("postsynaptic group %d: %w", post, ErrUnknownGroup)
	}
	if err := connectivity.CheckBounds(conn, e.neurons[pre].Size(), e.neurons[post].Size()); err != nil {
		return -1, fmt.Errorf("bind %s -> %s: %w", e.neurons[pre].Name, e.neurons[post].Name, err)
	}

	group := &SynapseGroup{
		ID:         e.nextID,
		Pre:        pre,
		Post:       post,
		PreIdx:     slices.Clone(conn.Pre),
		PostIdx:    slices.Clone(conn.Post),
		Weights:    e.bindWeights(conn),
		DelaySteps: e.bindDelays(conn),
		Plasticity: slices.Clone(conn.Plasticity),
	}
	e.synapses[group.ID] = group
	e.nextID++

	return group.ID, nil
}

// RemoveSynapseGroup drops a synapse group. Handles are never reused.
func (e *InMemoryEngine) RemoveSynapseGroup(ctx context.Context, id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.synapses[id]; !ok {
		return fmt.Errorf("synapse group %d: %w", id, ErrUnknownSynapseGroup)
	}
	delete(e.synapses, id)
	return nil
}

// SynapseGroup returns the bound group for id.
func (e *InMemoryEngine) SynapseGroup(id int) (*SynapseGroup, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	g, ok := e.synapses[id]
	if !ok {
		return nil, fmt.Errorf("synapse group %d: %w", id, ErrUnknownSynapseGroup)
	}
	return g, nil
}

// SynapseGroups returns every live synapse group ordered by handle.
func (e *InMemoryEngine) SynapseGroups() []*SynapseGroup {
	e.mu.RLock()
	defer e.mu.RUnlock()

	groups := make([]*SynapseGroup, 0, len(e.synapses))
	for _, g := range e.synapses {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

// bindWeights copies per-synapse weights or materializes the uniform range.
// Caller must hold e.mu.
func (e *InMemoryEngine) bindWeights(conn *models.Connection) []float64 {
	if conn.HasWeights() {
		return slices.Clone(conn.Weights)
	}
	weights := make([]float64, conn.Len())
	for i := range weights {
		weights[i] = e.draw(conn.WeightRange)
	}
	return weights
}

// bindDelays quantizes per-synapse delays or the uniform range to timesteps.
// Caller must hold e.mu.
func (e *InMemoryEngine) bindDelays(conn *models.Connection) []int {
	if conn.HasDelays() {
		return connectivity.QuantizeDelays(conn.Delays, e.timestep)
	}
	steps := make([]int, conn.Len())
	for i := range steps {
		steps[i] = connectivity.DelaySteps(e.draw(conn.DelayRange), e.timestep)
	}
	return steps
}

func (e *InMemoryEngine) draw(r models.Range) float64 {
	if r.IsFixed() {
		return r.Min
	}
	return r.Min + e.rng.Float64()*(r.Max-r.Min)
}
