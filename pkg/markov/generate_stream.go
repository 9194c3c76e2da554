package markov

import (
	"context"
	"log/slog"
)

// GenerateStream performs the same walk as Generate but returns a read-only
// channel of token values. Each value is delivered as soon as it is sampled,
// before End is reached. The channel is closed when End is drawn, when the
// length cap is reached, when the context is cancelled, or when sampling
// fails (the failure is logged).
//
// The producing goroutine blocks until each value is received. A caller that
// stops reading before the channel is closed must cancel ctx to release it.
func (m *Model) GenerateStream(ctx context.Context, opts ...GenerateOption) (<-chan string, error) {
	w, err := m.newWalker(newGenerateOptions(opts))
	if err != nil {
		return nil, err
	}

	tokenChan := make(chan string)

	go func() {
		defer close(tokenChan)

		for {
			select {
			case <-ctx.Done():
				m.logger.DebugContext(ctx, "Generation stream cancelled by context")
				return
			default:
				// continue
			}

			value, ok, err := w.next()
			if err != nil {
				m.logger.ErrorContext(ctx, "Generation stream failed", slog.Any("error", err))
				return
			}
			if !ok {
				m.logger.DebugContext(ctx, "Generation stream finished",
					slog.Int("generated_length", w.count),
					slog.Bool("reached_end", w.cur.IsEnd()),
				)
				return
			}

			select {
			case <-ctx.Done():
				return
			case tokenChan <- value:
			}
		}
	}()

	return tokenChan, nil
}
