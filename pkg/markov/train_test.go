package markov

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestAddChain(t *testing.T) {
	m := newTrainedModel(t, "a b c")

	if m.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", m.Len())
	}
	a, b, c := mustLookup(t, m, "a"), mustLookup(t, m, "b"), mustLookup(t, m, "c")
	if a.ID != 1 || b.ID != 2 || c.ID != 3 {
		t.Errorf("expected ids 1,2,3 for a,b,c, got %d,%d,%d", a.ID, b.ID, c.ID)
	}

	expected := map[Endpoint]EdgeTable{
		Start: {a: 1},
		a:     {b: 1},
		b:     {c: 1},
		c:     {End: 1},
	}
	for src, want := range expected {
		if got := m.Edges(src); !reflect.DeepEqual(got, want) {
			t.Errorf("edges of %s = %v, want %v", src, got, want)
		}
	}
}

func TestAddChainTwiceDoubles(t *testing.T) {
	m := newTrainedModel(t, "x y", "x y")
	x, y := mustLookup(t, m, "x"), mustLookup(t, m, "y")

	testCases := []struct {
		src, dst Endpoint
		want     int
	}{
		{Start, x, 2},
		{x, y, 2},
		{y, End, 2},
	}
	for _, tc := range testCases {
		if got := m.Count(tc.src, tc.dst); got != tc.want {
			t.Errorf("Count(%s, %s) = %d, want %d", tc.src, tc.dst, got, tc.want)
		}
	}
}

func TestAddChainAdditivity(t *testing.T) {
	chain := strings.Fields("the cat sat on the the mat")

	once := NewModel()
	once.AddChain(chain)
	twice := NewModel()
	twice.AddChain(chain)
	twice.AddChain(chain)

	for _, src := range once.sources() {
		for dst, n := range once.Edges(src) {
			if got := twice.Count(src, dst); got != 2*n {
				t.Errorf("Count(%s, %s) = %d after two ingestions, want %d", src, dst, got, 2*n)
			}
		}
	}
	if once.Stats().Transitions != twice.Stats().Transitions {
		t.Error("ingesting a chain twice created new transitions")
	}
}

func TestAddChainEmpty(t *testing.T) {
	m := NewModel()
	m.AddChain(nil)
	m.AddChain([]string{})

	if m.Len() != 0 {
		t.Errorf("expected no nodes, got %d", m.Len())
	}
	if m.Count(Start, End) != 0 {
		t.Error("an empty chain must not record Start -> End")
	}
	if stats := m.Stats(); stats.Transitions != 0 {
		t.Errorf("expected no transitions, got %d", stats.Transitions)
	}
}

func TestAddChainRevisits(t *testing.T) {
	m := newTrainedModel(t, "the cat sat on the the mat")
	the := mustLookup(t, m, "the")

	if m.Len() != 5 {
		t.Errorf("expected 5 distinct nodes, got %d", m.Len())
	}
	if got := m.Count(the, the); got != 1 {
		t.Errorf("expected self loop the -> the once, got %d", got)
	}
	if got := m.Count(the, mustLookup(t, m, "cat")); got != 1 {
		t.Errorf("expected the -> cat once, got %d", got)
	}
	if got := m.Count(the, mustLookup(t, m, "mat")); got != 1 {
		t.Errorf("expected the -> mat once, got %d", got)
	}
}

// TestAddChainCountInvariant checks that every recorded count equals the number
// of adjacent occurrences of the pair over all ingested chains.
func TestAddChainCountInvariant(t *testing.T) {
	chains := [][]string{
		strings.Fields("a b a b c"),
		strings.Fields("b c"),
		strings.Fields("c"),
		strings.Fields("a a a"),
	}
	m := NewModel()
	expected := make(map[[2]string]int)
	for _, chain := range chains {
		m.AddChain(chain)
		prev := "<start>"
		for _, tok := range chain {
			expected[[2]string{prev, tok}]++
			prev = tok
		}
		expected[[2]string{prev, "<end>"}]++
	}

	name := func(e Endpoint) string {
		switch {
		case e.IsStart():
			return "<start>"
		case e.IsEnd():
			return "<end>"
		}
		n, _ := m.Node(e.ID)
		return n.Value
	}

	got := make(map[[2]string]int)
	for _, src := range m.sources() {
		for dst, n := range m.Edges(src) {
			got[[2]string{name(src), name(dst)}] = n
		}
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("recorded counts = %v, want %v", got, expected)
	}
}

func TestMerge(t *testing.T) {
	partA := newTrainedModel(t, fishCorpus[0])
	partB := newTrainedModel(t, fishCorpus[1], fishCorpus[0])

	merged := NewModel()
	merged.Merge(partA)
	merged.Merge(partB)

	sequential := newTrainedModel(t, fishCorpus[0], fishCorpus[1], fishCorpus[0])

	if !reflect.DeepEqual(merged.Nodes(), sequential.Nodes()) {
		t.Errorf("merged nodes %+v differ from sequential %+v", merged.Nodes(), sequential.Nodes())
	}
	if merged.DOT() != sequential.DOT() {
		t.Errorf("merged model differs from sequential ingestion:\n%s\nvs\n%s", merged.DOT(), sequential.DOT())
	}

	// Merging must not modify the source model.
	if partA.Count(Start, mustLookup(t, partA, "one")) != 1 {
		t.Error("Merge modified its argument")
	}

	merged.Merge(nil)
	merged.Merge(merged)
	if merged.Stats() != sequential.Stats() {
		t.Error("merging nil or self changed the model")
	}
}

func BenchmarkAddChain(b *testing.B) {
	chains := make([][]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		chains = append(chains, strings.Fields(fmt.Sprintf("w%d w%d w%d w%d w%d", i%37, i%11, i%53, i%7, i%19)))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := NewModel()
		for _, chain := range chains {
			m.AddChain(chain)
		}
	}
}
