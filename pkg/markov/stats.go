package markov

// ModelStats holds aggregated statistics for a Model.
type ModelStats struct {
	Nodes          int `json:"nodes"`           // The number of distinct token values.
	Transitions    int `json:"transitions"`     // The number of distinct source->destination pairs, including Start and End.
	TotalFrequency int `json:"total_frequency"` // The sum of all transition counts.
	Chains         int `json:"chains"`          // The number of chains ingested; the sum of the Start table.
	StartingTokens int `json:"starting_tokens"` // The number of distinct tokens that can start a chain.
	EndingTokens   int `json:"ending_tokens"`   // The number of distinct tokens that can end a chain.
}

// Stats returns a snapshot of statistics for the model.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{Nodes: len(m.nodes)}
	for src, table := range m.edges {
		stats.Transitions += len(table)
		stats.TotalFrequency += table.Total()
		if src.IsStart() {
			stats.StartingTokens = len(table)
			stats.Chains = table.Total()
		}
		if _, ok := table[End]; ok {
			stats.EndingTokens++
		}
	}
	return stats
}
