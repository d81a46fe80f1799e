// Package publisher fronts an audit.Store with optional asynchronous
// buffering. Synchronous mode writes through; async mode hands events to a
// background worker and drops them when the buffer is full.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "carelink/pkg/platform/audit"
	"carelink/pkg/platform/audit/worker"
)

// ErrBufferFull is returned by Emit in async mode when the buffer is full.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	bufferSize int
	inbox      chan audit.Event
	done       chan struct{}
	cancel     context.CancelFunc
	closeOnce  sync.Once
	closeErr   error
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.inbox, p.logger)
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		go func() {
			defer close(p.done)
			_ = w.Run(ctx)
		}()
	}
	return p
}

// Emit records an event, stamping the timestamp when it is missing.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Close drains buffered events until ctx expires. On expiry the worker is
// cancelled, any events still buffered are dropped, and ctx's error is
// returned. Emit must not be called after Close.
func (p *Publisher) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		if p.inbox == nil {
			return
		}
		close(p.inbox)
		defer p.cancel()
		select {
		case <-p.done:
		case <-ctx.Done():
			p.closeErr = ctx.Err()
			if p.logger != nil {
				p.logger.Warn("audit drain timed out, dropping buffered events",
					"dropped", len(p.inbox),
				)
			}
		}
	})
	return p.closeErr
}
