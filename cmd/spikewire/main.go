package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/nvandessel/spikewire/internal/config"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spikewire",
		Short: "Synaptic connectivity builder for spiking network benchmarks",
		Long: `spikewire builds the synaptic connectivity of a Brunel-style spiking
network: input, excitatory and inhibitory populations wired either from
randomized sparse draws or from weight-matrix files.

Each finished synapse group is handed to the simulation engine, and can be
summarized, stored in SQLite and exported back to weight-matrix files.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newBuildCmd(),
		newGenerateCmd(),
		newInspectCmd(),
		newExportCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// loadConfig reads the --config file (if any) and environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(ch)
		cancel()
	}
}
