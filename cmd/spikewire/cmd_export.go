package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/spikewire/internal/connectivity"
	"github.com/nvandessel/spikewire/internal/models"
	"github.com/nvandessel/spikewire/internal/pathutil"
	"github.com/nvandessel/spikewire/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "List stored synapse groups or export one as a weight-matrix file",
		Long: `Read a network saved by "build --db" and either list its synapse groups
or write one group back out as a weight-matrix file.

Examples:
  spikewire export --db out/connectivity.db --list
  spikewire export --db out/connectivity.db --group 5 --out ee.wmat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("database %s: %w", pathutil.RedactPath(dbPath), err)
			}

			s, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			jsonOut, _ := cmd.Flags().GetBool("json")
			w := cmd.OutOrStdout()

			if list, _ := cmd.Flags().GetBool("list"); list {
				groups, err := s.ListSynapseGroups(ctx)
				if err != nil {
					return err
				}
				if jsonOut {
					return json.NewEncoder(w).Encode(map[string]any{"groups": groups, "count": len(groups)})
				}
				if len(groups) == 0 {
					fmt.Fprintln(w, "No synapse groups stored.")
					return nil
				}
				for _, g := range groups {
					plastic := ""
					if g.Plastic {
						plastic = " [plastic]"
					}
					fmt.Fprintf(w, "  %3d  %s -> %s  %d synapses%s\n", g.ID, g.PreName, g.PostName, g.Synapses, plastic)
				}
				return nil
			}

			if !cmd.Flags().Changed("group") {
				return fmt.Errorf("either --list or --group is required")
			}
			id, _ := cmd.Flags().GetInt("group")
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return fmt.Errorf("--out is required with --group")
			}

			g, err := s.LoadSynapseGroup(ctx, id)
			if err != nil {
				return err
			}
			pops, err := s.ListPopulations(ctx)
			if err != nil {
				return err
			}
			sizes := make(map[models.GroupID]int, len(pops))
			for _, p := range pops {
				sizes[p.ID] = p.Size()
			}
			dt, err := s.Timestep(ctx)
			if err != nil {
				return err
			}

			delays := make([]float64, len(g.DelaySteps))
			for i, steps := range g.DelaySteps {
				delays[i] = float64(steps) * dt
			}
			conn := &models.Connection{
				Pre:        g.PreIdx,
				Post:       g.PostIdx,
				Weights:    g.Weights,
				Delays:     delays,
				Plasticity: g.Plasticity,
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
			if err := connectivity.WriteWeightMatrix(f, conn, sizes[g.Pre], sizes[g.Post]); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", pathutil.RedactPath(out), err)
			}

			if jsonOut {
				return json.NewEncoder(w).Encode(map[string]any{
					"group":    id,
					"path":     out,
					"synapses": g.Len(),
				})
			}
			fmt.Fprintf(w, "Exported group %d (%d synapses) to %s\n", id, g.Len(), out)
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite database written by build --db")
	cmd.Flags().Bool("list", false, "List stored synapse groups")
	cmd.Flags().Int("group", 0, "Synapse group to export")
	cmd.Flags().String("out", "", "Output weight-matrix path")

	return cmd
}
