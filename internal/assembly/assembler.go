// Package assembly connects the benchmark's population pairs and submits
// each finished synapse group to the engine.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/nvandessel/spikewire/internal/connectivity"
	"github.com/nvandessel/spikewire/internal/engine"
	"github.com/nvandessel/spikewire/internal/logging"
	"github.com/nvandessel/spikewire/internal/models"
	"github.com/nvandessel/spikewire/internal/pathutil"
)

// PairSpec declares how one ordered population pair is connected.
type PairSpec struct {
	Pair models.Pair
	Pre  models.Population
	Post models.Population

	// WeightFile selects the file connector when non-empty.
	WeightFile string

	// Sparseness, Weight and Delay drive the sparse fallback. Delay.Min is
	// also the nominal delay staggered by the file connector.
	Sparseness float64
	Weight     models.Range
	Delay      models.Range

	// SkipGroups is the delay-staggering bucket count for WeightFile.
	SkipGroups int

	// Plastic designates the pair for plasticity tags. Tags are attached
	// only while plasticity is enabled on the Assembler.
	Plastic bool
}

// Result describes one synapse group committed to the engine.
type Result struct {
	Pair      models.Pair `json:"pair"`
	GroupID   int         `json:"group_id"`
	Connector string      `json:"connector"`
	Synapses  int         `json:"synapses"`
	Plastic   bool        `json:"plastic"`
}

// Assembler builds connections pair by pair. It is not safe for
// concurrent use: connectors share one random source whose draw order
// determines the topology.
type Assembler struct {
	engine    engine.Engine
	timestep  *connectivity.TimestepContext
	rng       *rand.Rand
	logger    *slog.Logger
	decisions *logging.DecisionLogger

	plasticEnabled bool
	plasticity     []models.PlasticityTag
	rollback       bool
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// WithDecisionLogger records one decision per connected pair.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(a *Assembler) { a.decisions = dl }
}

// WithPlasticity sets the global plasticity flag and the tags attached to
// plastic pairs.
func WithPlasticity(enabled bool, tags ...models.PlasticityTag) Option {
	return func(a *Assembler) {
		a.plasticEnabled = enabled
		a.plasticity = tags
	}
}

// WithRollback makes ConnectAll remove the groups it created when a later
// pair fails.
func WithRollback() Option {
	return func(a *Assembler) { a.rollback = true }
}

// New creates an Assembler. rng is the single random source for every
// sparse pair; seed it once per build.
func New(eng engine.Engine, ts *connectivity.TimestepContext, rng *rand.Rand, opts ...Option) *Assembler {
	a := &Assembler{
		engine:   eng,
		timestep: ts,
		rng:      rng,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Connect builds spec's connection and submits it to the engine.
//
// The timestep must be set beforehand; it is frozen on the first call. The
// engine is called exactly once, and only after the connection has been
// fully built and validated, so a failure leaves the engine untouched.
// Repeated calls with the same spec add independent synapse groups.
func (a *Assembler) Connect(ctx context.Context, spec PairSpec) (Result, error) {
	if _, err := a.timestep.Value(); err != nil {
		return Result{}, fmt.Errorf("connect %s: %w", spec.Pair, err)
	}
	if !a.timestep.Frozen() {
		if err := a.timestep.Freeze(); err != nil {
			return Result{}, fmt.Errorf("connect %s: %w", spec.Pair, err)
		}
	}

	c := a.connector(spec)
	decision := logging.Decision{
		Pair:      spec.Pair.String(),
		Connector: c.Kind(),
		Source:    spec.Pre.Name,
		Target:    spec.Post.Name,
		GroupID:   -1,
	}
	if spec.WeightFile != "" {
		decision.Path = spec.WeightFile
		decision.SkipGroups = spec.SkipGroups
	}

	a.logger.Debug("connecting pair", "pair", spec.Pair, "connector", c.Kind(), "pre", spec.Pre.Name, "post", spec.Post.Name)

	conn, err := c.Connect(spec.Pre, spec.Post)
	if err != nil {
		decision.Error = err.Error()
		a.decisions.LogDecision(decision)
		return Result{}, fmt.Errorf("connect %s: %w", spec.Pair, err)
	}

	plastic := a.plasticEnabled && spec.Plastic && len(a.plasticity) > 0
	if plastic {
		conn.Plasticity = slices.Clone(a.plasticity)
	}

	id, err := a.engine.AddSynapseGroup(ctx, spec.Pre.ID, spec.Post.ID, conn)
	if err != nil {
		decision.Error = err.Error()
		a.decisions.LogDecision(decision)
		return Result{}, fmt.Errorf("connect %s: add synapse group: %w", spec.Pair, err)
	}

	result := Result{
		Pair:      spec.Pair,
		GroupID:   id,
		Connector: c.Kind(),
		Synapses:  conn.Len(),
		Plastic:   plastic,
	}

	decision.GroupID = id
	decision.Synapses = result.Synapses
	decision.Plastic = plastic
	a.decisions.LogDecision(decision)

	attrs := []any{
		"pair", spec.Pair,
		"connector", result.Connector,
		"synapses", result.Synapses,
		"group", id,
		"plastic", plastic,
	}
	if spec.WeightFile != "" {
		attrs = append(attrs, "file", pathutil.RedactPath(spec.WeightFile), "skip_groups", spec.SkipGroups)
	}
	a.logger.Info("synapse group added", attrs...)

	if conn.HasDelays() && a.logger.Enabled(ctx, logging.LevelTrace) {
		a.logger.Log(ctx, logging.LevelTrace, "delay histogram", "pair", spec.Pair, "delays", delayHistogram(conn.Delays))
	}

	return result, nil
}

// delayHistogram counts synapses per distinct delay, keyed in seconds.
func delayHistogram(delays []float64) map[string]int {
	h := make(map[string]int)
	for _, d := range delays {
		h[strconv.FormatFloat(d, 'g', 6, 64)]++
	}
	return h
}

// ConnectAll connects specs in order and stops at the first failure.
// Groups committed before the failure stay registered unless the
// Assembler was built WithRollback. Cancellation is honoured between pairs.
func (a *Assembler) ConnectAll(ctx context.Context, specs []PairSpec) ([]Result, error) {
	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return results, a.abort(ctx, results, fmt.Errorf("connect %s: %w", spec.Pair, err))
		}

		result, err := a.Connect(ctx, spec)
		if err != nil {
			return results, a.abort(ctx, results, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// abort undoes committed groups when rollback is enabled.
func (a *Assembler) abort(ctx context.Context, committed []Result, cause error) error {
	if !a.rollback || len(committed) == 0 {
		return cause
	}

	errs := []error{cause}
	for i := len(committed) - 1; i >= 0; i-- {
		r := committed[i]
		if err := a.engine.RemoveSynapseGroup(context.WithoutCancel(ctx), r.GroupID); err != nil {
			errs = append(errs, fmt.Errorf("rollback %s (group %d): %w", r.Pair, r.GroupID, err))
			continue
		}
		a.logger.Warn("synapse group rolled back", "pair", r.Pair, "group", r.GroupID)
	}
	return errors.Join(errs...)
}

func (a *Assembler) connector(spec PairSpec) connectivity.Connector {
	if spec.WeightFile != "" {
		return &connectivity.FileConnector{
			Path:       spec.WeightFile,
			MinDelay:   spec.Delay.Min,
			SkipGroups: spec.SkipGroups,
			Timestep:   a.timestep,
		}
	}
	return &connectivity.SparseConnector{
		Rand:       a.rng,
		Sparseness: spec.Sparseness,
		Weight:     spec.Weight,
		Delay:      spec.Delay,
	}
}
