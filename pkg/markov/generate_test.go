package markov

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		chains []string
		want   []string
	}{
		{name: "Single chain", chains: []string{"a b c"}, want: []string{"a", "b", "c"}},
		{name: "Repeated chain", chains: []string{"x y", "x y"}, want: []string{"x", "y"}},
		{name: "Single token", chains: []string{"solo"}, want: []string{"solo"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTrainedModel(t, tc.chains...)
			for i := 0; i < 100; i++ {
				got, err := m.Generate(ctx)
				if err != nil {
					t.Fatalf("Generate failed: %v", err)
				}
				if !reflect.DeepEqual(got, tc.want) {
					t.Fatalf("Generate() = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestGenerateAcyclicOutputs(t *testing.T) {
	ctx := context.Background()
	chains := []string{"one two three", "four five", "six", "seven eight nine ten"}
	m := newTrainedModel(t, chains...)

	allowed := make(map[string]bool, len(chains))
	for _, c := range chains {
		allowed[c] = true
	}

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		got, err := m.Generate(ctx)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		joined := strings.Join(got, " ")
		if !allowed[joined] {
			t.Fatalf("Generate() produced %q, which was never ingested", joined)
		}
		seen[joined] = true
	}
	if len(seen) != len(chains) {
		t.Errorf("expected every ingested chain to be generated at least once in 500 runs, saw %d of %d", len(seen), len(chains))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	m := newTrainedModel(t, fishCorpus...)

	// Start is a tie between "one" and "red"; the lower id wins. "fish" leads
	// to End twice and to "two"/"blue" once each, so End wins.
	got, err := m.Generate(context.Background(), WithTemperature(0))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []string{"one", "fish"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want %v", got, want)
	}
}

func TestGenerateSeed(t *testing.T) {
	ctx := context.Background()
	m := newTrainedModel(t, "a b a c a b b c", "c a b", "b b b a")

	for seed := uint64(0); seed < 20; seed++ {
		first, err := m.Generate(ctx, WithSeed(seed))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		second, err := m.Generate(ctx, WithSeed(seed))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("seed %d produced %v then %v", seed, first, second)
		}
	}
}

func TestGenerateMaxLength(t *testing.T) {
	// "a" and "b" alternate a hundred times before End is seen once.
	chain := strings.Repeat("a b ", 100)
	m := newTrainedModel(t, chain)

	for i := 0; i < 50; i++ {
		got, err := m.Generate(context.Background(), WithMaxLength(5))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(got) > 5 {
			t.Fatalf("expected at most 5 tokens, got %d", len(got))
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("Empty model", func(t *testing.T) {
		_, err := NewModel().Generate(context.Background())
		if !errors.Is(err, ErrEmptyModel) {
			t.Errorf("expected ErrEmptyModel, got %v", err)
		}
	})

	t.Run("Dangling node", func(t *testing.T) {
		m := NewModel()
		n := m.GetOrCreate("dangling")
		m.connect(Start, n.Endpoint())

		_, err := m.Generate(context.Background())
		if !errors.Is(err, ErrEmptyEdgeTable) {
			t.Errorf("expected ErrEmptyEdgeTable, got %v", err)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		m := newTrainedModel(t, "a b c")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := m.Generate(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func BenchmarkGenerate(b *testing.B) {
	m := NewModel()
	for i := 0; i < 200; i++ {
		m.AddChain(strings.Fields("the quick brown fox jumps over the lazy dog and the cat"))
		m.AddChain(strings.Fields("a lazy dog sleeps while the quick cat jumps"))
	}
	ctx := context.Background()

	genOpts := map[string][]GenerateOption{
		"Simple":          {WithMaxLength(50)},
		"WithTemp":        {WithMaxLength(50), WithTemperature(0.7)},
		"WithTopK":        {WithMaxLength(50), WithTopK(3)},
		"WithTempAndTopK": {WithMaxLength(50), WithTemperature(0.7), WithTopK(3)},
	}

	for name, opts := range genOpts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := m.Generate(ctx, opts...); err != nil {
					b.Fatalf("Generate() failed: %v", err)
				}
			}
		})
	}
}
