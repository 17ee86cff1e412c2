package main

import (
	"github.com/nvandessel/spikewire/internal/config"
	"github.com/nvandessel/spikewire/internal/models"
)

// populationFromConfig describes the configured population of kind k
// without registering it with an engine.
func populationFromConfig(cfg *config.Config, k models.PopulationKind) models.Population {
	var shape config.ShapeConfig
	switch k {
	case models.PopulationInput:
		shape = cfg.Populations.Input
	case models.PopulationExcitatory:
		shape = cfg.Populations.Excitatory
	case models.PopulationInhibitory:
		shape = cfg.Populations.Inhibitory
	}
	return models.Population{Name: string(k), Kind: k, Shape: shape.Shape()}
}
