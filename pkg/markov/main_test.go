package markov

import (
	"strings"
	"testing"
)

// fishCorpus is the shared training data for tests that need a small model
// with branching. "fish" appears in both chains and in several positions.
var fishCorpus = []string{
	"one fish two fish",
	"red fish blue fish",
}

// newTrainedModel returns a model with every line of lines ingested as one
// whitespace-separated chain.
func newTrainedModel(t testing.TB, lines ...string) *Model {
	t.Helper()
	m := NewModel()
	for _, line := range lines {
		m.AddChain(strings.Fields(line))
	}
	return m
}

// mustLookup returns the endpoint of value, failing the test if it is not registered.
func mustLookup(t testing.TB, m *Model, value string) Endpoint {
	t.Helper()
	node, ok := m.Lookup(value)
	if !ok {
		t.Fatalf("expected %q to be registered", value)
	}
	return node.Endpoint()
}
