package assembly

import (
	"context"
	"fmt"

	"github.com/nvandessel/spikewire/internal/config"
	"github.com/nvandessel/spikewire/internal/engine"
	"github.com/nvandessel/spikewire/internal/models"
	"github.com/nvandessel/spikewire/internal/pathutil"
)

// Populations holds the three registered benchmark populations.
type Populations struct {
	Input      models.Population
	Excitatory models.Population
	Inhibitory models.Population
}

// ByKind returns the population of kind k.
func (p Populations) ByKind(k models.PopulationKind) (models.Population, error) {
	switch k {
	case models.PopulationInput:
		return p.Input, nil
	case models.PopulationExcitatory:
		return p.Excitatory, nil
	case models.PopulationInhibitory:
		return p.Inhibitory, nil
	default:
		return models.Population{}, fmt.Errorf("unknown population kind %q", k)
	}
}

// RegisterPopulations adds the input, excitatory and inhibitory groups to
// eng in that order.
func RegisterPopulations(ctx context.Context, eng engine.Engine, cfg *config.Config) (Populations, error) {
	var pops Populations
	groups := []struct {
		name  string
		kind  models.PopulationKind
		shape config.ShapeConfig
		dst   *models.Population
	}{
		{"input", models.PopulationInput, cfg.Populations.Input, &pops.Input},
		{"excitatory", models.PopulationExcitatory, cfg.Populations.Excitatory, &pops.Excitatory},
		{"inhibitory", models.PopulationInhibitory, cfg.Populations.Inhibitory, &pops.Inhibitory},
	}
	for _, g := range groups {
		pop, err := eng.AddNeuronGroup(ctx, g.name, g.kind, g.shape.Shape())
		if err != nil {
			return Populations{}, fmt.Errorf("register %s population: %w", g.name, err)
		}
		*g.dst = pop
	}
	return pops, nil
}

// Plan returns the six benchmark pair specs in canonical order.
//
// A configured weight file takes precedence over the sparse fallback.
// Sparse pairs use Weight, or -Gamma*Weight when the source population is
// inhibitory. Only the plastic ee file is staggered across synapse groups.
func Plan(cfg *config.Config, pops Populations) ([]PairSpec, error) {
	pairs := models.Pairs()
	specs := make([]PairSpec, 0, len(pairs))
	for _, pair := range pairs {
		pre, err := pops.ByKind(pair.Source())
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", pair, err)
		}
		post, err := pops.ByKind(pair.Target())
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", pair, err)
		}

		weight := cfg.Synapses.Weight
		if pair.Source() == models.PopulationInhibitory {
			weight = -cfg.Synapses.Gamma * cfg.Synapses.Weight
		}

		spec := PairSpec{
			Pair:       pair,
			Pre:        pre,
			Post:       post,
			WeightFile: pathutil.ResolveDataPath(cfg.WeightFiles.Dir, cfg.WeightFiles.Path(pair)),
			Sparseness: cfg.Synapses.Sparseness,
			Weight:     models.Fixed(weight),
			Delay:      models.Fixed(cfg.Synapses.Delay),
			SkipGroups: 1,
			Plastic:    pair == models.PairEE,
		}
		if pair == models.PairEE {
			spec.SkipGroups = cfg.SkipGroups()
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
