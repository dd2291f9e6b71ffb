package markov

import (
	"context"
	"fmt"
	"log/slog"
)

// GenerateStream runs the same loop as Generate but emits symbols on the
// returned channel as they are produced, starting with the symbols of seed.
// The arguments are validated, and the seed checked for a successor, before
// the channel is returned. The channel is closed once length symbols were
// sent, the context is cancelled, or the window reaches a k-gram without
// successors; the last case is logged.
//
// The returned stream owns the model's random source until it is closed.
func (m *Model) GenerateStream(ctx context.Context, seed string, length int) (<-chan byte, error) {
	order := m.index.order
	if err := m.checkKGram(seed); err != nil {
		return nil, err
	}
	if length < order {
		return nil, fmt.Errorf("%w: length %d is shorter than order %d", ErrInvalidArgument, length, order)
	}
	if length > order {
		if m.index.lookup(seed) == nil {
			return nil, &GenerationError{Produced: seed, KGram: seed, Err: ErrNoSuccessor}
		}
	}

	symbolChan := make(chan byte)

	go func() {
		defer close(symbolChan)

		window := make([]byte, 0, order)
		window = append(window, seed...)

		for i := 0; i < order; i++ {
			select {
			case <-ctx.Done():
				return
			case symbolChan <- seed[i]:
			}
		}

		for step := 0; step < length-order; step++ {
			select {
			case <-ctx.Done():
				m.logger.DebugContext(ctx, "Generation stream cancelled by context", slog.Int("step", step))
				return
			default:
				// continue
			}

			next, ok := m.sample(m.index.counts[string(window)])
			if !ok {
				m.logger.ErrorContext(ctx, "generation stream reached a k-gram without successors",
					slog.String("kgram", string(window)),
					slog.Int("step", step),
				)
				return
			}

			select {
			case <-ctx.Done():
				return
			case symbolChan <- next:
			}
			copy(window, window[1:])
			window[order-1] = next
		}
	}()

	return symbolChan, nil
}
