package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/CTAG07/markovdot/pkg/markov"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <files...>",
		Short: "Write the chain built from the input files as a Graphviz graph",
		Long: `Builds the chain from the input files and writes it as an undirected
Graphviz graph. Use "-" as the output to write to standard output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output") {
				a.config.Generate.GraphPath = output
			}
			model, err := a.buildModel(cmd.Context(), args)
			if err != nil {
				return err
			}
			return writeGraph(cmd.OutOrStdout(), a.config.Generate.GraphPath, model, a.logger)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "markov.dot", `Graph output path, or "-" for standard output`)
	return cmd
}

// writeGraph writes the DOT rendering of model to path, replacing any existing
// file atomically, or to stdout when path is "-".
func writeGraph(stdout io.Writer, path string, model *markov.Model, logger *slog.Logger) error {
	if path == "-" {
		return model.WriteDOT(stdout)
	}

	var buf bytes.Buffer
	if err := model.WriteDOT(&buf); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}

	logger.Info("Graph written", slog.String("path", path), slog.Int("nodes", model.Len()))
	return nil
}
