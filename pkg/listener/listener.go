package listener

import (
	"context"
	"log/slog"
	"sync"
)

type Job interface {
	Start(ctx context.Context)
	Stop()
}

// Listener drains a channel on a background goroutine and passes every value
// to handler. It stops when the channel is closed, the context is cancelled
// or Stop is called.
type Listener[T any] struct {
	handler     func(input T) error
	stopHandler func()

	in     <-chan T
	wg     sync.WaitGroup
	cancel func()
}

var _ Job = (*Listener[struct{}])(nil)

func New[T any](
	in <-chan T,
	handler func(T) error,
	stopHandler ...func(),
) *Listener[T] {
	if len(stopHandler) == 0 {
		stopHandler = []func(){func() {}}
	}

	return &Listener[T]{
		in:          in,
		handler:     handler,
		cancel:      func() {},
		stopHandler: stopHandler[0],
	}
}

func (l *Listener[T]) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)

	go func() {
		defer l.wg.Done()
		for l.run(ctx) {
		}
	}()
}

// run handles one input. It returns false once the listener should exit.
func (l *Listener[T]) run(ctx context.Context) bool {
	select {
	case inp, ok := <-l.in:
		if !ok {
			return false
		}
		if err := l.handler(inp); err != nil {
			slog.Error("listener handler failed", "error", err)
		}
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop cancels the listener, waits for the goroutine and runs the stop handler.
func (l *Listener[T]) Stop() {
	l.cancel()
	l.wg.Wait()
	l.stopHandler()
}

// Wait blocks until the goroutine exits without cancelling it.
func (l *Listener[T]) Wait() {
	l.wg.Wait()
}
