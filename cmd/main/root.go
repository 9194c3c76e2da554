package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CTAG07/markovdot/pkg/corpus"
	"github.com/CTAG07/markovdot/pkg/markov"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once flags have been parsed.
type app struct {
	configPath string
	logLevel   string
	config     *Config
	logger     *slog.Logger
}

// newRootCmd builds the command tree. A fresh tree is built per execution so
// flag state never leaks between runs.
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "markovdot",
		Short: "Build a Markov chain from text and generate from it",
		Long: `markovdot reads text files, JSON message logs and SQLite message tables,
records every observed word transition in a first-order Markov chain, writes the
chain as a Graphviz graph and generates new text by weighted random walk.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "config.json", "Path to the JSON or YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newExportCmd(a),
		newStatsCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// init loads the configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		config.LogLevel = a.logLevel
	}
	if err = config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.config = config
	a.logger = newLogger(cmd.ErrOrStderr(), config.LogLevel)
	return nil
}

// buildModel loads every file in paths into one model.
func (a *app) buildModel(ctx context.Context, paths []string) (*markov.Model, error) {
	loader := a.config.Corpus.newLoader(corpus.WithLogger(a.logger))
	model, err := loader.LoadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	return model, nil
}
