package markov

import "log/slog"

// AddChain ingests one ordered sequence of tokens. Each token is resolved to
// its node, then the transitions Start -> tokens[0] -> ... -> tokens[n-1] -> End
// are each counted once. An empty sequence is a no-op: no nodes are created and
// no Start -> End transition is recorded.
//
// Calls accumulate, so ingesting the same chain twice doubles every count
// along its path. Values repeated within a chain are kept as transitions.
func (m *Model) AddChain(tokens []string) {
	if len(tokens) == 0 {
		return
	}

	prev := Start
	for _, tok := range tokens {
		next := m.GetOrCreate(tok).Endpoint()
		m.connect(prev, next)
		prev = next
	}
	m.connect(prev, End)

	m.logger.Debug("Chain ingested",
		slog.Int("chain_length", len(tokens)),
		slog.Int("node_count", len(m.nodes)),
	)
}

// Merge adds every count recorded in other into m. Nodes are matched by
// value; values unknown to m are registered in other's id order, so merging
// partial models in a fixed order assigns the same ids as ingesting their
// chains sequentially in that order would. other is not modified.
func (m *Model) Merge(other *Model) {
	if other == nil || other == m {
		return
	}

	remap := make(map[Endpoint]Endpoint, len(other.nodes)+2)
	remap[Start] = Start
	remap[End] = End
	for _, node := range other.nodes {
		remap[node.Endpoint()] = m.GetOrCreate(node.Value).Endpoint()
	}

	var merged int
	for _, src := range other.sources() {
		for _, tr := range other.edges[src].Transitions() {
			from, to := remap[src], remap[tr.To]
			table, ok := m.edges[from]
			if !ok {
				table = make(EdgeTable)
				m.edges[from] = table
			}
			table[to] += tr.Freq
			merged++
		}
	}

	m.logger.Debug("Model merged",
		slog.Int("nodes_merged", len(other.nodes)),
		slog.Int("transitions_merged", merged),
		slog.Int("node_count", len(m.nodes)),
	)
}
