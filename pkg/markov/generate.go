package markov

import (
	"fmt"
	"log/slog"
)

// SampleSuccessor draws a symbol to follow kgram, with probability
// proportional to how often it followed kgram in the training text.
// Symbols never observed after kgram are never returned. If kgram itself
// was never observed, ErrNoSuccessor is returned.
func (m *Model) SampleSuccessor(kgram string) (byte, error) {
	if err := m.checkKGram(kgram); err != nil {
		return 0, err
	}
	symbol, ok := m.sample(m.index.lookup(kgram))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoSuccessor, kgram)
	}
	return symbol, nil
}

// sample performs the weighted draw. It reports false when freqs carries no
// weight at all.
func (m *Model) sample(freqs *Frequencies) (byte, bool) {
	if freqs == nil {
		return 0, false
	}
	total := freqs.Total()
	if total == 0 {
		return 0, false
	}
	choice := m.rng.IntN(total)
	for symbol, n := range freqs {
		choice -= n
		if choice < 0 {
			return byte(symbol), true
		}
	}
	// unreachable while total is the sum of freqs
	return 0, false
}

// Generate returns a text of exactly length symbols that starts with seed.
// Each further symbol is sampled from the k-gram formed by the last Order()
// symbols generated so far, so the window may reach k-grams that only exist
// in the output.
//
// If a window has no observed successor, generation stops and the text
// produced so far is returned along with a *GenerationError wrapping
// ErrNoSuccessor. For a seed that occurs in the training text this cannot
// happen, since the circular text gives every observed window a successor
// whose own window was observed too.
func (m *Model) Generate(seed string, length int) (string, error) {
	order := m.index.order
	if err := m.checkKGram(seed); err != nil {
		return "", err
	}
	if length < order {
		return "", fmt.Errorf("%w: length %d is shorter than order %d", ErrInvalidArgument, length, order)
	}

	out := make([]byte, 0, length)
	out = append(out, seed...)

	for step := 0; step < length-order; step++ {
		window := out[len(out)-order:]
		next, ok := m.sample(m.index.counts[string(window)])
		if !ok {
			m.logger.Debug("Generation terminated due to dead-end",
				slog.String("kgram", string(window)),
				slog.Int("step", step),
				slog.Int("generated_length", len(out)),
			)
			return string(out), &GenerationError{
				Produced: string(out),
				KGram:    string(window),
				Step:     step,
				Err:      ErrNoSuccessor,
			}
		}
		out = append(out, next)
	}

	m.logger.Debug("Generation completed",
		slog.Int("order", order),
		slog.Int("generated_length", len(out)),
	)
	return string(out), nil
}
