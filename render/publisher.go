// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/danielhkuo/secretballot/models"
)

// DefaultInterval is the minimum spacing between two edits of one display.
const DefaultInterval = time.Second

// PublishFunc writes a status to the public display.
type PublishFunc func(ctx context.Context, status models.Status) error

// Options tune a Publisher. The zero value uses DefaultInterval, no metrics
// and slog.Default().
type Options struct {
	Interval time.Duration
	Metrics  *Metrics
	Logger   *slog.Logger
	// Labels are attached to log lines.
	Labels []any
}

// Publisher collapses bursts of render requests for one display into at most
// one in-flight edit plus one pending edit. A newer request replaces the
// pending one; stale intermediate states are never published.
type Publisher struct {
	ctx     context.Context
	publish PublishFunc
	limiter *rate.Limiter
	metrics *Metrics
	log     *slog.Logger

	mu       sync.Mutex
	inFlight bool
	pending  *models.Status
	final    bool
	idle     chan struct{}
}

// NewPublisher returns an idle publisher. ctx bounds every edit it makes.
func NewPublisher(ctx context.Context, publish PublishFunc, opts Options) *Publisher {
	limit := rate.Inf
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if len(opts.Labels) > 0 {
		log = log.With(opts.Labels...)
	}

	return &Publisher{
		ctx:     ctx,
		publish: publish,
		limiter: rate.NewLimiter(limit, 1),
		metrics: opts.Metrics,
		log:     log,
	}
}

// Request asks for status to be published. It never blocks. Requests made
// after RequestFinal are ignored.
func (p *Publisher) Request(status models.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.final {
		return
	}
	p.enqueueLocked(status)
}

// RequestFinal queues the last status for this display. It replaces any
// pending request and is never coalesced away.
func (p *Publisher) RequestFinal(status models.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.final {
		return
	}
	p.final = true
	p.enqueueLocked(status)
}

func (p *Publisher) enqueueLocked(status models.Status) {
	if p.pending != nil {
		p.metrics.coalesce()
	}
	p.pending = &status

	if !p.inFlight {
		p.inFlight = true
		p.idle = make(chan struct{})
		go p.drain()
	}
}

// drain publishes until nothing is pending.
func (p *Publisher) drain() {
	for {
		p.mu.Lock()
		next := p.pending
		p.pending = nil
		if next == nil {
			p.inFlight = false
			close(p.idle)
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		p.render(*next)
	}
}

func (p *Publisher) render(status models.Status) {
	if err := p.limiter.Wait(p.ctx); err != nil {
		p.log.Debug("status render abandoned", "error", err)
		p.metrics.rendered("abandoned")
		return
	}

	if err := p.publish(p.ctx, status); err != nil {
		// The next tick or vote retries implicitly
		p.log.Warn("failed to render status", "final", status.IsFinal, "error", err)
		p.metrics.rendered("error")
		return
	}
	p.metrics.rendered("ok")
}

// Flush waits until no render is pending or in flight.
func (p *Publisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	if !p.inFlight {
		p.mu.Unlock()
		return nil
	}
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
