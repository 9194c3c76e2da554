package main

import (
	"fmt"
	"io"

	"github.com/CTAG07/markovdot/pkg/markov"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <files...>",
		Short: "Print summary counts for the chain built from the input files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.buildModel(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), model.Stats())
		},
	}
}

func printStats(w io.Writer, stats markov.ModelStats) error {
	rows := []struct {
		label string
		value int
	}{
		{"Chains", stats.Chains},
		{"Nodes", stats.Nodes},
		{"Transitions", stats.Transitions},
		{"Total frequency", stats.TotalFrequency},
		{"Starting tokens", stats.StartingTokens},
		{"Ending tokens", stats.EndingTokens},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-16s %s\n", row.label+":", humanize.Comma(int64(row.value))); err != nil {
			return err
		}
	}
	return nil
}
