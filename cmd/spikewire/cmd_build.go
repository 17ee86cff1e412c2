package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nvandessel/spikewire/internal/assembly"
	"github.com/nvandessel/spikewire/internal/config"
	"github.com/nvandessel/spikewire/internal/connectivity"
	"github.com/nvandessel/spikewire/internal/constants"
	"github.com/nvandessel/spikewire/internal/engine"
	"github.com/nvandessel/spikewire/internal/logging"
	"github.com/nvandessel/spikewire/internal/models"
	"github.com/nvandessel/spikewire/internal/pathutil"
	"github.com/nvandessel/spikewire/internal/report"
	"github.com/nvandessel/spikewire/internal/store"
	"github.com/spf13/cobra"
)

// buildSummary is the JSON output of the build command.
type buildSummary struct {
	Results        []assembly.Result     `json:"results"`
	Stats          []report.GroupStats   `json:"stats"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	SimTime        float64               `json:"sim_time"`
	Database       string                `json:"database,omitempty"`
	Report         string                `json:"report,omitempty"`
	TimeFile       string                `json:"time_file,omitempty"`
	Plasticity     *models.PlasticityTag `json:"plasticity,omitempty"`
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble the benchmark network connectivity",
		Long: `Register the input, excitatory and inhibitory populations and connect
the six population pairs (ie, ii, ei, input-e, input-i, ee).

A pair with a weight-matrix file is loaded from that file; every other pair
gets a randomized sparse topology with a fixed in-degree.

Examples:
  spikewire build
  spikewire build --fee ee.wmat --fei ei.wmat --fie ie.wmat --fii ii.wmat
  spikewire build --plastic --num-synapse-groups 4 --fee ee.wmat
  spikewire build --fast --db out/connectivity.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyBuildFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			summary, err := runBuild(ctx, cmd, cfg)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(summary)
			}

			fmt.Fprintf(out, "Connected %d synapse groups in %.3fs\n", len(summary.Results), summary.ElapsedSeconds)
			if !cfg.Simulation.Fast {
				fmt.Fprintln(out)
				if err := report.Table(out, summary.Stats); err != nil {
					return err
				}
			}
			if summary.Report != "" {
				fmt.Fprintf(out, "Report: %s\n", summary.Report)
			}
			if summary.Database != "" {
				fmt.Fprintf(out, "Database: %s\n", summary.Database)
			}
			if summary.TimeFile != "" {
				fmt.Fprintf(out, "Time file: %s\n", summary.TimeFile)
			}
			return nil
		},
	}

	cmd.Flags().Float64("simtime", constants.DefaultSimTime, "Simulated duration in seconds handed to the engine")
	cmd.Flags().Float64("timestep", constants.DefaultTimestep, "Simulation timestep in seconds")
	cmd.Flags().Bool("fast", false, "Skip the per-group table and write the build time to timefile.dat")
	cmd.Flags().Bool("plastic", false, "Attach weight-dependent STDP to the ee pair")
	cmd.Flags().Bool("notg", false, "Disable timestep grouping (forces one synapse group for ee)")
	cmd.Flags().Int("num-synapse-groups", constants.DefaultSkipGroups, "Delay-staggering groups for the ee weight file")
	cmd.Flags().Float64("sparseness", constants.DefaultSparseness, "Fraction of presynaptic neurons per postsynaptic neuron")
	cmd.Flags().Uint64("seed", constants.DefaultSeed, "Seed for the sparse-connectivity random source")
	cmd.Flags().String("fee", "", "Weight-matrix file for excitatory -> excitatory")
	cmd.Flags().String("fei", "", "Weight-matrix file for excitatory -> inhibitory")
	cmd.Flags().String("fie", "", "Weight-matrix file for inhibitory -> excitatory")
	cmd.Flags().String("fii", "", "Weight-matrix file for inhibitory -> inhibitory")
	cmd.Flags().String("weight-dir", "", "Directory relative weight-matrix paths are resolved against")
	cmd.Flags().String("output", "", "Directory for the report, decision log and time file")
	cmd.Flags().String("db", "", "Save the assembled network to this SQLite file")
	cmd.Flags().Bool("report", false, "Write per-group statistics to connectivity.csv")
	cmd.Flags().Bool("rollback", false, "Remove already connected groups when a later pair fails")

	return cmd
}

// applyBuildFlags copies explicitly set flags over cfg.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("simtime") {
		cfg.Simulation.Duration, _ = flags.GetFloat64("simtime")
	}
	if flags.Changed("timestep") {
		cfg.Simulation.Timestep, _ = flags.GetFloat64("timestep")
	}
	if flags.Changed("fast") {
		cfg.Simulation.Fast, _ = flags.GetBool("fast")
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("plastic") {
		cfg.Plasticity.Enabled, _ = flags.GetBool("plastic")
	}
	if flags.Changed("notg") {
		cfg.Synapses.NoTimestepGrouping, _ = flags.GetBool("notg")
	}
	if flags.Changed("num-synapse-groups") {
		cfg.Synapses.NumSynapseGroups, _ = flags.GetInt("num-synapse-groups")
	}
	if flags.Changed("sparseness") {
		cfg.Synapses.Sparseness, _ = flags.GetFloat64("sparseness")
	}
	if flags.Changed("weight-dir") {
		cfg.WeightFiles.Dir, _ = flags.GetString("weight-dir")
	}
	if flags.Changed("output") {
		cfg.Output.Dir, _ = flags.GetString("output")
	}
	if flags.Changed("db") {
		cfg.Output.Database, _ = flags.GetString("db")
	}

	pairFlags := map[string]models.Pair{
		"fee": models.PairEE,
		"fei": models.PairEI,
		"fie": models.PairIE,
		"fii": models.PairII,
	}
	for name, pair := range pairFlags {
		if flags.Changed(name) {
			path, _ := flags.GetString(name)
			cfg.WeightFiles.Set(pair, path)
		}
	}
}

// runBuild assembles the network described by cfg and writes the
// requested artifacts.
func runBuild(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*buildSummary, error) {
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	decisions := logging.NewDecisionLogger(cfg.Output.Dir, cfg.Logging.Level)
	defer decisions.Close()

	start := time.Now()

	eng, err := engine.NewInMemoryEngine(cfg.Simulation.Timestep, cfg.Simulation.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	timestep := connectivity.NewTimestepContext()
	if err := timestep.Set(cfg.Simulation.Timestep); err != nil {
		return nil, err
	}

	pops, err := assembly.RegisterPopulations(ctx, eng, cfg)
	if err != nil {
		return nil, err
	}
	specs, err := assembly.Plan(cfg, pops)
	if err != nil {
		return nil, err
	}

	opts := []assembly.Option{
		assembly.WithLogger(logger),
		assembly.WithDecisionLogger(decisions),
		assembly.WithPlasticity(cfg.Plasticity.Enabled, cfg.Plasticity.Tag()),
	}
	if rollback, _ := cmd.Flags().GetBool("rollback"); rollback {
		opts = append(opts, assembly.WithRollback())
	}

	a := assembly.New(eng, timestep, connectivity.NewRand(cfg.Simulation.Seed), opts...)
	results, err := a.ConnectAll(ctx, specs)
	if err != nil {
		return nil, err
	}
	logger.Info("connectivity assembled", "groups", len(results), "sim_time", cfg.Simulation.Duration)

	summary := &buildSummary{
		Results: results,
		Stats:   make([]report.GroupStats, 0, len(results)),
		SimTime: cfg.Simulation.Duration,
	}
	if cfg.Plasticity.Enabled {
		tag := cfg.Plasticity.Tag()
		summary.Plasticity = &tag
	}

	for i, res := range results {
		g, err := eng.SynapseGroup(res.GroupID)
		if err != nil {
			return nil, err
		}
		summary.Stats = append(summary.Stats, report.Summarize(res.Pair.String(), g, specs[i].Pre, specs[i].Post))
	}

	if writeReport, _ := cmd.Flags().GetBool("report"); writeReport {
		path, err := writeReportFile(cfg.Output.Dir, summary.Stats)
		if err != nil {
			return nil, err
		}
		summary.Report = path
	}

	if cfg.Output.Database != "" {
		s, err := store.NewSQLiteStore(cfg.Output.Database)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		if err := s.SaveNetwork(ctx, eng); err != nil {
			return nil, fmt.Errorf("failed to save network: %w", err)
		}
		logger.Info("network saved", "db", pathutil.RedactPath(cfg.Output.Database))
		summary.Database = cfg.Output.Database
	}

	summary.ElapsedSeconds = time.Since(start).Seconds()

	if cfg.Simulation.Fast {
		path, err := writeTimeFile(cfg.Output.Dir, summary.ElapsedSeconds)
		if err != nil {
			return nil, err
		}
		summary.TimeFile = path
	}

	return summary, nil
}

func writeReportFile(dir string, rows []report.GroupStats) (string, error) {
	if err := pathutil.EnsureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, constants.ReportFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()
	if err := report.WriteCSV(f, rows); err != nil {
		return "", err
	}
	return path, f.Close()
}

// writeTimeFile records the build duration in seconds, ten significant
// digits, with no trailing newline.
func writeTimeFile(dir string, seconds float64) (string, error) {
	if err := pathutil.EnsureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, constants.TimeFileName)
	if err := os.WriteFile(path, []byte(strconv.FormatFloat(seconds, 'g', 10, 64)), 0644); err != nil {
		return "", fmt.Errorf("failed to write time file: %w", err)
	}
	return path, nil
}
