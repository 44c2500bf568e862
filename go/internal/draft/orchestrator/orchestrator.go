// Package orchestrator drives the per-card countdown of a draft session.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cubedraft/go/internal/draft/session"
	"github.com/rs/zerolog/log"
)

// DefaultPeriod is one countdown second.
const DefaultPeriod = time.Second

// Ticker is what the orchestrator needs from the session engine.
type Ticker interface {
	Tick(ctx context.Context) session.Outcome
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the clock the ticker runs on. In production, use
// clockwork.NewRealClock(). In tests, a FakeClock.
func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithPeriod sets the time between ticks.
func WithPeriod(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.period = d
		}
	}
}

type Orchestrator struct {
	engine     Ticker
	clock      clockwork.Clock
	period     time.Duration
	instanceID string // short ID for logging
}

// NewOrchestrator creates a countdown driver for engine.
func NewOrchestrator(engine Ticker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:     engine,
		clock:      clockwork.NewRealClock(),
		period:     DefaultPeriod,
		instanceID: uuid.New().String()[:8],
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run ticks the engine once per period until ctx ends or the engine is
// closed. Ticks the engine ignores, such as after completion, keep the
// loop running so a reset re-arms the countdown without restarting it.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := o.clock.NewTicker(o.period)
	defer ticker.Stop()

	log.Info().
		Str("instance", o.instanceID).
		Dur("period", o.period).
		Msg("countdown orchestrator started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("instance", o.instanceID).Msg("countdown orchestrator stopped")
			return nil
		case <-ticker.Chan():
			out := o.engine.Tick(ctx)
			switch out {
			case session.OutcomeApplied, session.OutcomeRejectedComplete, session.OutcomeRejectedBusy:
			case session.OutcomeRejectedClosed:
				log.Info().Str("instance", o.instanceID).Msg("draft engine closed, stopping countdown")
				return nil
			default:
				log.Debug().Str("instance", o.instanceID).Stringer("outcome", out).Msg("tick not applied")
			}
		}
	}
}
