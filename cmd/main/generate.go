package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/CTAG07/markovdot/pkg/markov"
	"github.com/spf13/cobra"
)

// generateFlags mirrors GenerateConfig; only flags set on the command line
// override the loaded config.
type generateFlags struct {
	output      string
	count       int
	maxLength   int
	temperature float64
	topK        int
	separator   string
	seed        uint64
	noGraph     bool
}

func newGenerateCmd(a *app) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate <files...>",
		Short: "Build the chain, write its graph and print generated text",
		Long: `Builds the chain from the input files, writes it as a Graphviz graph and then
prints generated sentences, each followed by a separator line. With a count of 0
it keeps generating until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a.config.Generate)
			if err := a.config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			model, err := a.buildModel(cmd.Context(), args)
			if err != nil {
				return err
			}
			if !f.noGraph {
				if err = writeGraph(cmd.OutOrStdout(), a.config.Generate.GraphPath, model, a.logger); err != nil {
					return err
				}
			}

			var seed *uint64
			if cmd.Flags().Changed("seed") {
				seed = &f.seed
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), model, a.config.Generate, seed)
		},
	}

	gc := DefaultConfig().Generate
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", gc.GraphPath, `Graph output path, or "-" for standard output`)
	flags.IntVarP(&f.count, "count", "n", gc.Count, "Number of sentences to generate (0 generates until interrupted)")
	flags.IntVar(&f.maxLength, "max-length", gc.MaxLength, "Maximum tokens per sentence (0 for no limit)")
	flags.Float64Var(&f.temperature, "temperature", gc.Temperature, "Sampling temperature (<= 0 always picks the most frequent transition)")
	flags.IntVar(&f.topK, "top-k", gc.TopK, "Only sample among the k most frequent transitions (0 disables)")
	flags.StringVar(&f.separator, "separator", gc.Separator, "Line printed after every sentence")
	flags.Uint64Var(&f.seed, "seed", 0, "Seed for reproducible output; sentence i uses seed+i")
	flags.BoolVar(&f.noGraph, "no-graph", false, "Skip writing the graph")
	return cmd
}

// apply copies every flag the user set into gc.
func (f *generateFlags) apply(cmd *cobra.Command, gc *GenerateConfig) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		gc.GraphPath = f.output
	}
	if flags.Changed("count") {
		gc.Count = f.count
	}
	if flags.Changed("max-length") {
		gc.MaxLength = f.maxLength
	}
	if flags.Changed("temperature") {
		gc.Temperature = f.temperature
	}
	if flags.Changed("top-k") {
		gc.TopK = f.topK
	}
	if flags.Changed("separator") {
		gc.Separator = f.separator
	}
}

// runGenerate prints gc.Count sentences, or sentences until ctx is done when
// gc.Count is 0.
func runGenerate(ctx context.Context, w io.Writer, model *markov.Model, gc *GenerateConfig, seed *uint64) error {
	for i := 0; gc.Count == 0 || i < gc.Count; i++ {
		opts := []markov.GenerateOption{
			markov.WithMaxLength(gc.MaxLength),
			markov.WithTemperature(gc.Temperature),
			markov.WithTopK(gc.TopK),
		}
		if seed != nil {
			opts = append(opts, markov.WithSeed(*seed+uint64(i)))
		}

		tokens, err := model.Generate(ctx, opts...)
		if err != nil {
			if gc.Count == 0 && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return nil
			}
			return fmt.Errorf("generation failed: %w", err)
		}
		if _, err = fmt.Fprintf(w, "%s\n%s\n", strings.Join(tokens, " "), gc.Separator); err != nil {
			return err
		}
	}
	return nil
}
