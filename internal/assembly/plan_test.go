package assembly

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/spikewire/internal/models"
)

func TestPlan_CanonicalOrderAndWeights(t *testing.T) {
	cfg := smallConfig()
	cfg.Synapses.Weight = 1e-4
	cfg.Synapses.Gamma = 5
	eng := newEngine(t)
	pops := registered(t, eng, cfg)

	specs, err := Plan(cfg, pops)
	require.NoError(t, err)
	require.Len(t, specs, 6)

	for i, pair := range models.Pairs() {
		spec := specs[i]
		assert.Equal(t, pair, spec.Pair)
		assert.Empty(t, spec.WeightFile)
		assert.Equal(t, models.Fixed(cfg.Synapses.Delay), spec.Delay)
		assert.Equal(t, pair == models.PairEE, spec.Plastic)

		if pair.Source() == models.PopulationInhibitory {
			assert.InDelta(t, -5e-4, spec.Weight.Min, 1e-15, pair.String())
		} else {
			assert.InDelta(t, 1e-4, spec.Weight.Min, 1e-15, pair.String())
		}
	}

	assert.Equal(t, pops.Inhibitory, specs[0].Pre)
	assert.Equal(t, pops.Excitatory, specs[0].Post)
	assert.Equal(t, pops.Input, specs[4].Pre)
	assert.Equal(t, pops.Inhibitory, specs[4].Post)
}

func TestPlan_SkipGroups(t *testing.T) {
	tests := []struct {
		name       string
		groups     int
		noGrouping bool
		wantEE     int
	}{
		{"single group", 1, false, 1},
		{"staggered ee", 4, false, 4},
		{"no timestep grouping", 4, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.Synapses.NumSynapseGroups = tt.groups
			cfg.Synapses.NoTimestepGrouping = tt.noGrouping
			pops := registered(t, newEngine(t), cfg)

			specs, err := Plan(cfg, pops)
			require.NoError(t, err)
			for _, spec := range specs {
				if spec.Pair == models.PairEE {
					assert.Equal(t, tt.wantEE, spec.SkipGroups)
				} else {
					assert.Equal(t, 1, spec.SkipGroups, spec.Pair.String())
				}
			}
		})
	}
}

func TestPlan_ResolvesWeightFiles(t *testing.T) {
	cfg := smallConfig()
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "ii.wmat")
	cfg.WeightFiles.Dir = dir
	cfg.WeightFiles.EE = "ee.wmat"
	cfg.WeightFiles.II = abs
	pops := registered(t, newEngine(t), cfg)

	specs, err := Plan(cfg, pops)
	require.NoError(t, err)

	byPair := make(map[models.Pair]PairSpec, len(specs))
	for _, spec := range specs {
		byPair[spec.Pair] = spec
	}
	assert.Equal(t, filepath.Join(dir, "ee.wmat"), byPair[models.PairEE].WeightFile)
	assert.Equal(t, abs, byPair[models.PairII].WeightFile)
	assert.Empty(t, byPair[models.PairEI].WeightFile)
}

func TestPopulations_ByKind(t *testing.T) {
	pops := Populations{
		Input:      models.Population{ID: 0, Name: "input"},
		Excitatory: models.Population{ID: 1, Name: "excitatory"},
		Inhibitory: models.Population{ID: 2, Name: "inhibitory"},
	}
	p, err := pops.ByKind(models.PopulationInhibitory)
	require.NoError(t, err)
	assert.Equal(t, models.GroupID(2), p.ID)

	_, err = pops.ByKind("glia")
	assert.Error(t, err)
}
