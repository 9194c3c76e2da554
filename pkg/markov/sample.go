package markov

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
)

// ErrEmptyEdgeTable is returned when a sample is requested from a table with
// no entries. AddChain guarantees every reachable node has at least its End
// entry, so this signals a broken model rather than bad input.
var ErrEmptyEdgeTable = errors.New("markov: sample from empty edge table")

// Sample picks one destination of table with probability count/total. End is
// an ordinary candidate. If rng is nil a private source is seeded for the call.
func Sample(table EdgeTable, rng *rand.Rand) (Endpoint, error) {
	if rng == nil {
		rng = newRand(nil)
	}
	return chooseNext(table.Transitions(), rng, 1.0, 0)
}

// newRand returns a PCG-backed source, seeded from seed if set and from the
// runtime generator otherwise. Each generation owns its source.
func newRand(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// chooseNext selects a destination from choices, which must be ordered by
// destination. With temperature 1 and topK 0 the draw is exactly proportional
// to Freq.
func chooseNext(choices []Transition, rng *rand.Rand, temperature float64, topK int) (Endpoint, error) {
	if len(choices) == 0 {
		return Endpoint{}, ErrEmptyEdgeTable
	}

	// topK filtering
	if topK > 0 && topK < len(choices) {
		ranked := make([]Transition, len(choices))
		copy(ranked, choices)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Freq > ranked[j].Freq
		})
		choices = ranked[:topK]
	}

	var totalFreq int
	for _, c := range choices {
		totalFreq += c.Freq
	}

	switch {
	case temperature <= 0 || math.IsNaN(temperature): // Deterministic
		return mostFrequent(choices), nil

	case temperature == 1.0: // Standard weighted random
		randChoice := rng.IntN(totalFreq)
		for _, c := range choices {
			randChoice -= c.Freq
			if randChoice < 0 {
				return c.To, nil
			}
		}

	default: // Temperature-based sampling
		logProbabilities := make([]float64, len(choices))
		maxLog := math.Inf(-1)
		for i, c := range choices {
			lp := math.Log(float64(c.Freq)) / temperature
			logProbabilities[i] = lp
			if lp > maxLog {
				maxLog = lp
			}
		}
		// A tiny temperature overflows the scaled logs; the limit is argmax.
		if math.IsInf(maxLog, 1) {
			return mostFrequent(choices), nil
		}
		var totalWeight float64
		weights := make([]float64, len(choices))
		for i, lp := range logProbabilities {
			w := math.Exp(lp - maxLog)
			weights[i] = w
			totalWeight += w
		}
		randChoice := rng.Float64() * totalWeight
		for i, c := range choices {
			randChoice -= weights[i]
			if randChoice < 0 {
				return c.To, nil
			}
		}
	}

	// Floating point residue can leave randChoice at exactly zero.
	return choices[len(choices)-1].To, nil
}

// mostFrequent returns the destination with the highest count, the first one
// in order on a tie.
func mostFrequent(choices []Transition) Endpoint {
	best := choices[0]
	for _, c := range choices[1:] {
		if c.Freq > best.Freq {
			best = c
		}
	}
	return best.To
}
