// Package session implements the draft session engine: the state machine that
// sequences cards, applies picks and skips, runs the skip economy and the
// per-card countdown, and keeps the persisted state in step with memory.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cubedraft/go/internal/draft/events"
	"github.com/mcdev12/cubedraft/go/internal/draft/reward"
	"github.com/mcdev12/cubedraft/go/internal/draft/shuffle"
	"github.com/mcdev12/cubedraft/go/internal/draft/stats"
	"github.com/mcdev12/cubedraft/go/internal/models"
	"github.com/mcdev12/cubedraft/go/internal/store"
	"github.com/mcdev12/cubedraft/go/internal/store/memory"
	"github.com/rs/zerolog/log"
)

// DefaultNamespace prefixes the persisted keys when none is configured.
const DefaultNamespace = "cubedraft"

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the persistence adapter. Defaults to an in-memory store.
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithShuffler sets the order generator. Defaults to a time-seeded Fisher-Yates.
func WithShuffler(s shuffle.Shuffler) Option {
	return func(e *Engine) { e.shuffler = s }
}

// WithRewardTable sets the skip reward table. Defaults to reward.Standard.
func WithRewardTable(t reward.Table) Option {
	return func(e *Engine) { e.rewards = t }
}

// WithClock sets the clock used for event timestamps and the commit delay.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithCommitDelay holds pick and skip for d between admission and commit,
// the window in which the presentation animates the card away. Other
// requests arriving in the window are rejected as busy.
func WithCommitDelay(d time.Duration) Option {
	return func(e *Engine) { e.commitDelay = d }
}

// WithPublisher sets where committed events go.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithTrackedColors sets the colors reported in statistics.
func WithTrackedColors(colors []string) Option {
	return func(e *Engine) { e.colors = append([]string(nil), colors...) }
}

// WithNamespace sets the prefix of the persisted keys.
func WithNamespace(ns string) Option {
	return func(e *Engine) { e.keys = newKeys(ns) }
}

// Engine owns one draft session.
type Engine struct {
	mu       sync.Mutex
	inFlight bool
	closed   bool
	degraded bool
	epoch    uint64

	draftID         uuid.UUID
	order           []models.Card
	state           models.DraftState
	timeRemaining   int
	countdownActive bool

	pool        []models.Card
	settings    models.DraftSettings
	rewards     reward.Table
	colors      []string
	keys        keys
	commitDelay time.Duration

	store     store.Store
	shuffler  shuffle.Shuffler
	publisher events.Publisher
	clock     clockwork.Clock
}

// New builds an engine over pool. A usable persisted session is resumed
// verbatim; otherwise a fresh session is shuffled and saved.
func New(ctx context.Context, pool []models.Card, settings models.DraftSettings, opts ...Option) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid draft settings: %w", err)
	}

	e := &Engine{
		pool:     append([]models.Card(nil), pool...),
		settings: settings,
		rewards:  reward.Standard,
		colors:   append([]string(nil), models.AllColors...),
		keys:     newKeys(DefaultNamespace),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.New()
	}
	if e.shuffler == nil {
		e.shuffler = shuffle.NewFisherYates()
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}

	e.mu.Lock()
	resumed := e.restoreLocked(ctx)
	if !resumed {
		e.startFreshLocked()
		e.saveLocked(ctx, true)
	}
	started := e.startedEventsLocked(resumed)
	e.mu.Unlock()

	log.Info().
		Str("draft_id", e.draftID.String()).
		Bool("resumed", resumed).
		Int("pool_size", len(e.pool)).
		Int("total_picks", settings.TotalPicks).
		Str("reward_table", e.rewards.Name()).
		Msg("draft session ready")

	e.publish(ctx, started)
	return e, nil
}

// DraftID identifies the current session. It changes on reset.
func (e *Engine) DraftID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draftID
}

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() models.DraftSettings {
	return e.settings
}

// State returns a copy of the draft state.
func (e *Engine) State() models.DraftState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Order returns a copy of the shuffled card order.
func (e *Engine) Order() []models.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Card(nil), e.order...)
}

// TimeRemaining returns the countdown in seconds.
func (e *Engine) TimeRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeRemaining
}

// Snapshot returns a read-only view of the session.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.state.Clone()
	snap := Snapshot{
		DraftID:        e.draftID,
		CardNumber:     state.CurrentCardIndex + 1,
		TotalCards:     len(e.order),
		TotalPicks:     e.settings.TotalPicks,
		PicksRemaining: state.PicksRemaining,
		SkipsRemaining: state.SkipsRemaining,
		TimeRemaining:  e.timeRemaining,
		TimerLevel:     LevelFor(e.timeRemaining),
		PickedCards:    state.PickedCards,
		RecentPicks:    recentPicks(state.PickedCards),
		Stats:          state.Stats,
		IsComplete:     state.IsComplete,
		Persisted:      !e.degraded,
	}
	if !state.IsComplete && state.CurrentCardIndex < len(e.order) {
		card := e.order[state.CurrentCardIndex]
		snap.CurrentCard = &card
	}
	return snap
}

// Pick drafts the current card.
func (e *Engine) Pick(ctx context.Context) Outcome {
	return e.apply(ctx, "pick", e.admitPickLocked, func(now time.Time) []events.Event {
		return e.pickLocked(now, false)
	})
}

// Skip declines the current card, spending or earning skips.
func (e *Engine) Skip(ctx context.Context) Outcome {
	return e.apply(ctx, "skip", e.admitSkipLocked, e.skipLocked)
}

// Tick advances the countdown by one second. When it reaches zero the
// current card is picked on the user's behalf.
func (e *Engine) Tick(ctx context.Context) Outcome {
	e.mu.Lock()
	if out := e.admitPickLocked(); out != OutcomeApplied {
		e.mu.Unlock()
		return out
	}
	if !e.countdownActive {
		e.mu.Unlock()
		return OutcomeRejectedComplete
	}

	now := e.clock.Now()
	e.timeRemaining--
	evs := []events.Event{events.New(e.draftID, events.EventTypeTimerTick, now, events.TimerTickPayload{
		TimeRemainingSec: e.timeRemaining,
		TickedAt:         now,
	})}
	full := false
	if e.timeRemaining <= 0 {
		log.Info().
			Str("draft_id", e.draftID.String()).
			Int("card_index", e.state.CurrentCardIndex).
			Msg("countdown expired, forcing pick")
		evs = append(evs, e.pickLocked(now, true)...)
		full = true
	}
	e.saveLocked(ctx, full)
	e.mu.Unlock()

	e.publish(ctx, evs)
	return OutcomeApplied
}

// Reset abandons the session and starts a fresh one from a new shuffle.
// A pick or skip still waiting out its commit delay is discarded.
func (e *Engine) Reset(ctx context.Context) Outcome {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return OutcomeRejectedClosed
	}

	e.epoch++
	e.inFlight = false
	e.countdownActive = false
	for _, key := range e.keys.all() {
		if err := e.store.Remove(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to remove persisted draft key")
		}
	}

	previous := e.draftID
	e.startFreshLocked()
	e.saveLocked(ctx, true)

	now := e.clock.Now()
	evs := []events.Event{events.New(previous, events.EventTypeDraftReset, now, events.DraftResetPayload{ResetAt: now})}
	evs = append(evs, e.startedEventsLocked(false)...)
	current := e.draftID
	e.mu.Unlock()

	log.Info().
		Str("previous_draft_id", previous.String()).
		Str("draft_id", current.String()).
		Msg("draft session reset")

	e.publish(ctx, evs)
	return OutcomeApplied
}

// Close stops the engine. Every later operation is rejected.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.countdownActive = false
	return nil
}

// apply runs a user operation: admission under the lock, the optional
// commit delay outside it, then the commit and save under the lock again.
func (e *Engine) apply(ctx context.Context, op string, admit func() Outcome, commit func(now time.Time) []events.Event) Outcome {
	e.mu.Lock()
	if out := admit(); out != OutcomeApplied {
		e.mu.Unlock()
		log.Debug().Str("op", op).Stringer("outcome", out).Msg("draft operation rejected")
		return out
	}
	e.inFlight = true
	epoch := e.epoch
	e.mu.Unlock()

	if e.commitDelay > 0 {
		select {
		case <-e.clock.After(e.commitDelay):
		case <-ctx.Done():
			e.mu.Lock()
			if e.epoch == epoch {
				e.inFlight = false
			}
			e.mu.Unlock()
			return OutcomeRejectedCanceled
		}
	}

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		log.Debug().Str("op", op).Msg("discarding operation started before reset")
		return OutcomeRejectedStale
	}
	e.inFlight = false
	if e.closed {
		e.mu.Unlock()
		return OutcomeRejectedClosed
	}
	evs := commit(e.clock.Now())
	e.saveLocked(ctx, true)
	e.mu.Unlock()

	e.publish(ctx, evs)
	return OutcomeApplied
}

func (e *Engine) admitPickLocked() Outcome {
	switch {
	case e.closed:
		return OutcomeRejectedClosed
	case e.state.IsComplete || e.state.CurrentCardIndex >= len(e.order):
		return OutcomeRejectedComplete
	case e.inFlight:
		return OutcomeRejectedBusy
	}
	return OutcomeApplied
}

func (e *Engine) admitSkipLocked() Outcome {
	if out := e.admitPickLocked(); out != OutcomeApplied {
		return out
	}
	if e.state.SkipsRemaining <= 0 {
		return OutcomeRejectedNoSkips
	}
	return OutcomeApplied
}

func (e *Engine) pickLocked(now time.Time, forced bool) []events.Event {
	card := e.order[e.state.CurrentCardIndex]
	e.state.PickedCards = append(e.state.PickedCards, card)
	e.state.PicksRemaining--
	e.state.CurrentCardIndex++

	granted := 0
	if e.rewards.RewardFor(card.Strength) == 0 {
		granted = 1
	}
	e.state.SkipsRemaining += granted

	computed := stats.Compute(e.state.PickedCards, e.colors)
	e.state.Stats = &computed

	log.Info().
		Str("draft_id", e.draftID.String()).
		Str("card", card.Name).
		Bool("forced", forced).
		Int("picks_remaining", e.state.PicksRemaining).
		Int("skips_remaining", e.state.SkipsRemaining).
		Msg("card picked")

	evs := []events.Event{events.New(e.draftID, events.EventTypeCardPicked, now, events.CardPickedPayload{
		CardID:         card.ID,
		CardName:       card.Name,
		PickNumber:     len(e.state.PickedCards),
		Forced:         forced,
		SkipsGranted:   granted,
		PicksRemaining: e.state.PicksRemaining,
		SkipsRemaining: e.state.SkipsRemaining,
		MadeAt:         now,
	})}
	return append(evs, e.settleLocked(now)...)
}

func (e *Engine) skipLocked(now time.Time) []events.Event {
	card := e.order[e.state.CurrentCardIndex]
	delta := e.rewards.RewardFor(card.Strength)
	if delta == 0 {
		delta = -1
	}
	e.state.SkipsRemaining += delta
	e.state.CurrentCardIndex++

	log.Info().
		Str("draft_id", e.draftID.String()).
		Str("card", card.Name).
		Int("skip_delta", delta).
		Int("skips_remaining", e.state.SkipsRemaining).
		Msg("card skipped")

	evs := []events.Event{events.New(e.draftID, events.EventTypeCardSkipped, now, events.CardSkippedPayload{
		CardID:         card.ID,
		CardName:       card.Name,
		SkipDelta:      delta,
		SkipsRemaining: e.state.SkipsRemaining,
		SkippedAt:      now,
	})}
	return append(evs, e.settleLocked(now)...)
}

// settleLocked completes the session when its budget or order is used up,
// otherwise re-arms the countdown for the next card.
func (e *Engine) settleLocked(now time.Time) []events.Event {
	reason, done := e.completionLocked()
	if !done {
		e.timeRemaining = e.settings.TimerSeconds
		e.countdownActive = true
		return nil
	}
	e.state.IsComplete = true
	e.countdownActive = false

	log.Info().
		Str("draft_id", e.draftID.String()).
		Str("reason", reason).
		Int("total_picked", len(e.state.PickedCards)).
		Msg("draft complete")

	return []events.Event{events.New(e.draftID, events.EventTypeDraftCompleted, now, events.DraftCompletedPayload{
		CompletedAt: now,
		TotalPicked: len(e.state.PickedCards),
		CardsSeen:   min(e.state.CurrentCardIndex, len(e.order)),
		Reason:      reason,
	})}
}

func (e *Engine) completionLocked() (string, bool) {
	switch {
	case e.state.PicksRemaining <= 0:
		return events.ReasonPicksExhausted, true
	case e.state.CurrentCardIndex >= len(e.order):
		return events.ReasonPoolExhausted, true
	}
	return "", false
}

// startFreshLocked replaces the session with a new shuffle and default
// counters.
func (e *Engine) startFreshLocked() {
	e.draftID = uuid.New()
	e.order = e.shuffler.Shuffle(e.pool)
	e.state = models.NewDraftState(e.settings)
	e.timeRemaining = e.settings.TimerSeconds
	e.countdownActive = false
	if _, done := e.completionLocked(); done {
		e.state.IsComplete = true
		return
	}
	e.countdownActive = true
}

func (e *Engine) startedEventsLocked(resumed bool) []events.Event {
	now := e.clock.Now()
	evs := []events.Event{events.New(e.draftID, events.EventTypeDraftStarted, now, events.DraftStartedPayload{
		PoolSize:     len(e.order),
		TotalPicks:   e.settings.TotalPicks,
		InitialSkips: e.settings.InitialSkips,
		TimerSeconds: e.settings.TimerSeconds,
		Resumed:      resumed,
		StartedAt:    now,
	})}
	if e.state.IsComplete && !resumed {
		reason, _ := e.completionLocked()
		evs = append(evs, events.New(e.draftID, events.EventTypeDraftCompleted, now, events.DraftCompletedPayload{
			CompletedAt: now,
			Reason:      reason,
		}))
	}
	return evs
}

func (e *Engine) publish(ctx context.Context, evs []events.Event) {
	if e.publisher == nil {
		return
	}
	for _, ev := range evs {
		if err := e.publisher.Publish(ctx, ev); err != nil {
			log.Warn().
				Err(err).
				Str("event_type", string(ev.Type)).
				Str("draft_id", ev.DraftID.String()).
				Msg("failed to publish draft event")
		}
	}
}
