package markov

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// ErrEmptyModel is returned when generation is requested from a model that
// has never ingested a chain.
var ErrEmptyModel = errors.New("markov: model has no chains")

// generateOptions Is used by the generate functions to configure default options.
type generateOptions struct {
	maxLength   int
	temperature float64
	topK        int
	seed        *uint64
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument in generation functions like Generate and GenerateStream.
type GenerateOption func(*generateOptions)

// WithMaxLength caps the number of tokens a single generation may produce.
// A value of 0 (the default) disables the cap: generation then only stops
// when End is drawn, which on a model with heavily weighted cycles may take
// arbitrarily long. Use the context to bound such walks if no cap is set.
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) { o.maxLength = n }
}

// WithTemperature adjusts the randomness of the token selection.
// A value of 1.0 is standard weighted random selection.
// Values > 1.0 increase randomness (making less frequent tokens more likely).
// Values < 1.0 decrease randomness (making more frequent tokens even more likely).
// A value of 0 or less, or NaN, results in deterministic selection (always choosing the most frequent token).
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithTopK restricts the token selection pool to the top `k` most frequent tokens
// at each step. A value of 0 disables Top-K sampling.
func WithTopK(k int) GenerateOption {
	return func(o *generateOptions) { o.topK = k }
}

// WithSeed makes a generation reproducible by seeding its private random
// source. Without it every call draws a fresh seed.
func WithSeed(seed uint64) GenerateOption {
	return func(o *generateOptions) { o.seed = &seed }
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	options := &generateOptions{
		maxLength:   0,
		temperature: 1.0,
		topK:        0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Generate walks the model from Start, sampling one transition per step, and
// returns the token values visited before End was drawn. The result is empty
// (not nil) when the walk goes straight from Start to End.
//
// The walk is checked against ctx before every step; on cancellation the
// context error is returned.
func (m *Model) Generate(ctx context.Context, opts ...GenerateOption) ([]string, error) {
	w, err := m.newWalker(newGenerateOptions(opts))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, ok, err := w.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, value)
	}

	m.logger.DebugContext(ctx, "Generation finished",
		slog.Int("generated_length", len(out)),
		slog.Bool("reached_end", w.cur.IsEnd()),
	)
	return out, nil
}

// walker holds the state of one generation: the current endpoint, its own
// random source and a cache of sorted candidates per visited source.
type walker struct {
	model   *Model
	options *generateOptions
	rng     *rand.Rand
	cur     Endpoint
	count   int
	done    bool
	choices map[Endpoint][]Transition
}

func (m *Model) newWalker(options *generateOptions) (*walker, error) {
	if len(m.edges[Start]) == 0 {
		return nil, ErrEmptyModel
	}
	return &walker{
		model:   m,
		options: options,
		rng:     newRand(options.seed),
		cur:     Start,
		choices: make(map[Endpoint][]Transition),
	}, nil
}

// next advances the walk by one step. It returns false once End has been
// drawn or the length cap has been reached.
func (w *walker) next() (string, bool, error) {
	if w.done {
		return "", false, nil
	}
	if w.options.maxLength > 0 && w.count >= w.options.maxLength {
		w.done = true
		return "", false, nil
	}

	choices, ok := w.choices[w.cur]
	if !ok {
		choices = w.model.edges[w.cur].Transitions()
		w.choices[w.cur] = choices
	}

	dst, err := chooseNext(choices, w.rng, w.options.temperature, w.options.topK)
	if err != nil {
		return "", false, fmt.Errorf("sampling from %s: %w", w.cur, err)
	}

	w.cur = dst
	if dst.IsEnd() {
		w.done = true
		return "", false, nil
	}

	node, ok := w.model.Node(dst.ID)
	if !ok {
		return "", false, fmt.Errorf("transition to unknown node %d", dst.ID)
	}
	w.count++
	return node.Value, true, nil
}
