package markov

// ModelStats holds aggregated statistics for a single model.
type ModelStats struct {
	Order          int // The k-gram length.
	TextLength     int // The number of windows scanned; the length of the training text.
	DistinctKGrams int // The number of unique k-grams observed.
	Transitions    int // The number of unique kgram->symbol links.
	Symbols        int // The number of unique symbols that follow some k-gram.
	MaxBranching   int // The largest number of distinct successors of a single k-gram.
}

// Stats returns statistics about the model's index.
func (m *Model) Stats() ModelStats {
	var seen Frequencies
	stats := ModelStats{
		Order:          m.index.order,
		TextLength:     m.index.windows,
		DistinctKGrams: len(m.index.counts),
	}
	for _, freqs := range m.index.counts {
		branching := 0
		for symbol, n := range freqs {
			if n > 0 {
				branching++
				seen[symbol]++
			}
		}
		stats.Transitions += branching
		stats.MaxBranching = max(stats.MaxBranching, branching)
	}
	stats.Symbols = seen.Distinct()
	return stats
}
