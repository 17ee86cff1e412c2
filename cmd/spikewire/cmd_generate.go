package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/spikewire/internal/connectivity"
	"github.com/nvandessel/spikewire/internal/models"
	"github.com/nvandessel/spikewire/internal/pathutil"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a randomized sparse weight-matrix file",
		Long: `Draw a randomized sparse topology and write it as a weight-matrix file
that build (--fee, --fei, --fie, --fii) can load back.

Population sizes and the weight come from the named --pair and the config,
or from --pre-size, --post-size and --weight.

Examples:
  spikewire generate --pair ee --out ee.wmat
  spikewire generate --pre-size 100 --post-size 50 --sparseness 0.2 --weight 1e-4 --out test.wmat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return fmt.Errorf("--out is required")
			}

			var pre, post models.Population
			weight := cfg.Synapses.Weight
			if pairName, _ := cmd.Flags().GetString("pair"); pairName != "" {
				pair, err := models.ParsePair(pairName)
				if err != nil {
					return err
				}
				pre = populationFromConfig(cfg, pair.Source())
				post = populationFromConfig(cfg, pair.Target())
				if pair.Source() == models.PopulationInhibitory {
					weight = -cfg.Synapses.Gamma * cfg.Synapses.Weight
				}
			}
			if cmd.Flags().Changed("pre-size") {
				n, _ := cmd.Flags().GetInt("pre-size")
				pre = models.Population{Name: "pre", Shape: [2]int{1, n}}
			}
			if cmd.Flags().Changed("post-size") {
				n, _ := cmd.Flags().GetInt("post-size")
				post = models.Population{Name: "post", Shape: [2]int{1, n}}
			}
			if pre.Size() == 0 || post.Size() == 0 {
				return fmt.Errorf("population sizes required: use --pair or --pre-size and --post-size")
			}
			if cmd.Flags().Changed("weight") {
				weight, _ = cmd.Flags().GetFloat64("weight")
			}

			sparseness := cfg.Synapses.Sparseness
			if cmd.Flags().Changed("sparseness") {
				sparseness, _ = cmd.Flags().GetFloat64("sparseness")
			}
			seed := cfg.Simulation.Seed
			if cmd.Flags().Changed("seed") {
				seed, _ = cmd.Flags().GetUint64("seed")
			}

			c := &connectivity.SparseConnector{
				Rand:       connectivity.NewRand(seed),
				Sparseness: sparseness,
				Weight:     models.Fixed(weight),
				Delay:      models.Fixed(cfg.Synapses.Delay),
			}
			conn, err := c.Connect(pre, post)
			if err != nil {
				return err
			}

			if dir := filepath.Dir(out); dir != "." {
				if err := pathutil.EnsureDir(dir); err != nil {
					return err
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", pathutil.RedactPath(out), err)
			}
			defer f.Close()
			if err := connectivity.WriteWeightMatrix(f, conn, pre.Size(), post.Size()); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", pathutil.RedactPath(out), err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			w := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(w).Encode(map[string]any{
					"path":      out,
					"pre_size":  pre.Size(),
					"post_size": post.Size(),
					"synapses":  conn.Len(),
					"in_degree": connectivity.InDegree(pre.Size(), sparseness),
					"seed":      seed,
				})
			}
			fmt.Fprintf(w, "Wrote %d synapses (%d x %d, in-degree %d) to %s\n",
				conn.Len(), pre.Size(), post.Size(), connectivity.InDegree(pre.Size(), sparseness), out)
			return nil
		},
	}

	cmd.Flags().String("pair", "", "Benchmark pair whose population sizes to use (ee, ei, ie, ii, input-e, input-i)")
	cmd.Flags().Int("pre-size", 0, "Presynaptic population size")
	cmd.Flags().Int("post-size", 0, "Postsynaptic population size")
	cmd.Flags().Float64("sparseness", 0, "Fraction of presynaptic neurons per postsynaptic neuron (default from config)")
	cmd.Flags().Float64("weight", 0, "Synaptic weight (default from config)")
	cmd.Flags().Uint64("seed", 0, "Random seed (default from config)")
	cmd.Flags().String("out", "", "Output weight-matrix path")

	return cmd
}
