package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/nvandessel/spikewire/internal/connectivity"
	"github.com/nvandessel/spikewire/internal/engine"
	"github.com/nvandessel/spikewire/internal/models"
	"github.com/nvandessel/spikewire/internal/report"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.wmat>",
		Short: "Load a weight-matrix file and print its statistics",
		Long: `Parse a weight-matrix file the way build does, bind it in an in-memory
engine and print synapse count, in-degree, weight and delay statistics.

Without --pre-size and --post-size the populations are sized from the
largest index in the file.

Examples:
  spikewire inspect ee.wmat
  spikewire inspect ee.wmat --skip-groups 4 --pre-size 8000 --post-size 8000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := args[0]

			minDelay := cfg.Synapses.Delay
			if cmd.Flags().Changed("min-delay") {
				minDelay, _ = cmd.Flags().GetFloat64("min-delay")
			}
			dt := cfg.Simulation.Timestep
			if cmd.Flags().Changed("timestep") {
				dt, _ = cmd.Flags().GetFloat64("timestep")
			}
			skipGroups, _ := cmd.Flags().GetInt("skip-groups")

			conn, err := connectivity.LoadWeightMatrix(path, minDelay, dt, skipGroups)
			if err != nil {
				return err
			}

			preSize, _ := cmd.Flags().GetInt("pre-size")
			postSize, _ := cmd.Flags().GetInt("post-size")
			if preSize == 0 {
				preSize = extent(conn.Pre)
			}
			if postSize == 0 {
				postSize = extent(conn.Post)
			}

			stats, err := inspectConnection(cmd.Context(), filepath.Base(path), conn, preSize, postSize, dt)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"path":        path,
					"pre_size":    preSize,
					"post_size":   postSize,
					"skip_groups": skipGroups,
					"delay_range": conn.DelayRange,
					"stats":       stats,
				})
			}
			fmt.Fprintf(out, "%s: %d synapses, %d -> %d neurons, delays %g..%g s\n\n",
				path, conn.Len(), preSize, postSize, conn.DelayRange.Min, conn.DelayRange.Max)
			return report.Table(out, []report.GroupStats{stats})
		},
	}

	cmd.Flags().Float64("min-delay", 0, "Nominal delay in seconds (default from config)")
	cmd.Flags().Float64("timestep", 0, "Timestep in seconds (default from config)")
	cmd.Flags().Int("skip-groups", 1, "Delay-staggering groups")
	cmd.Flags().Int("pre-size", 0, "Presynaptic population size (default: largest index)")
	cmd.Flags().Int("post-size", 0, "Postsynaptic population size (default: largest index)")

	return cmd
}

// inspectConnection binds conn in a scratch engine so the statistics
// reflect quantized delays.
func inspectConnection(ctx context.Context, label string, conn *models.Connection, preSize, postSize int, dt float64) (report.GroupStats, error) {
	eng, err := engine.NewInMemoryEngine(dt, 0)
	if err != nil {
		return report.GroupStats{}, err
	}
	pre, err := eng.AddNeuronGroup(ctx, "pre", models.PopulationExcitatory, [2]int{1, preSize})
	if err != nil {
		return report.GroupStats{}, err
	}
	post, err := eng.AddNeuronGroup(ctx, "post", models.PopulationExcitatory, [2]int{1, postSize})
	if err != nil {
		return report.GroupStats{}, err
	}
	id, err := eng.AddSynapseGroup(ctx, pre.ID, post.ID, conn)
	if err != nil {
		return report.GroupStats{}, err
	}
	g, err := eng.SynapseGroup(id)
	if err != nil {
		return report.GroupStats{}, err
	}
	return report.Summarize(label, g, pre, post), nil
}

// extent returns one past the largest index, or 1 for an empty slice.
func extent(idx []int) int {
	if len(idx) == 0 {
		return 1
	}
	return slices.Max(idx) + 1
}
