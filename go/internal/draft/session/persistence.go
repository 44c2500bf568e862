package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/cubedraft/go/internal/models"
	"github.com/mcdev12/cubedraft/go/internal/store"
	"github.com/rs/zerolog/log"
)

// Persisted key names, prefixed by the namespace.
const (
	KeyDraftState    = "draft_state"
	KeyShuffledCards = "shuffled_cards"
	KeyTimeRemaining = "time_remaining"
)

type keys struct {
	state string
	order string
	timer string
}

func newKeys(namespace string) keys {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return keys{
		state: namespace + ":" + KeyDraftState,
		order: namespace + ":" + KeyShuffledCards,
		timer: namespace + ":" + KeyTimeRemaining,
	}
}

func (k keys) all() []string {
	return []string{k.state, k.order, k.timer}
}

// persistedState is the draft_state record. The draft ID rides along so a
// resumed session keeps publishing under the same ID.
type persistedState struct {
	DraftID uuid.UUID `json:"draftId"`
	models.DraftState
}

// restoreLocked loads a previous session. It reports false, leaving the
// engine untouched, when any of the three keys is missing or unusable.
func (e *Engine) restoreLocked(ctx context.Context) bool {
	var (
		saved persistedState
		order []models.Card
		timer int
	)
	if err := e.load(ctx, e.keys.state, &saved); err != nil {
		e.logRestoreMiss(e.keys.state, err)
		return false
	}
	if err := e.load(ctx, e.keys.order, &order); err != nil {
		e.logRestoreMiss(e.keys.order, err)
		return false
	}
	if err := e.load(ctx, e.keys.timer, &timer); err != nil {
		e.logRestoreMiss(e.keys.timer, err)
		return false
	}
	if err := e.checkRestored(saved.DraftState); err != nil {
		log.Warn().Err(err).Msg("persisted draft does not match current settings, starting fresh")
		return false
	}

	if saved.DraftID == uuid.Nil {
		saved.DraftID = uuid.New()
	}
	if saved.PickedCards == nil {
		saved.PickedCards = []models.Card{}
	}
	if timer <= 0 || timer > e.settings.TimerSeconds {
		timer = e.settings.TimerSeconds
	}

	e.draftID = saved.DraftID
	e.state = saved.DraftState
	e.order = order
	e.timeRemaining = timer
	e.countdownActive = false

	// A cursor that drifted past the order completes the session here.
	if !e.state.IsComplete {
		if reason, done := e.completionLocked(); done {
			log.Info().Str("draft_id", e.draftID.String()).Str("reason", reason).Msg("restored draft is complete")
			e.state.IsComplete = true
			e.saveLocked(ctx, true)
		}
	}
	e.countdownActive = !e.state.IsComplete
	return true
}

func (e *Engine) checkRestored(state models.DraftState) error {
	switch {
	case state.CurrentCardIndex < 0:
		return fmt.Errorf("negative card index %d", state.CurrentCardIndex)
	case state.PicksRemaining < 0:
		return fmt.Errorf("negative picks remaining %d", state.PicksRemaining)
	case state.SkipsRemaining < 0:
		return fmt.Errorf("negative skips remaining %d", state.SkipsRemaining)
	case state.PicksRemaining+len(state.PickedCards) != e.settings.TotalPicks:
		return fmt.Errorf("picks remaining %d and picked %d do not add up to %d",
			state.PicksRemaining, len(state.PickedCards), e.settings.TotalPicks)
	}
	return nil
}

func (e *Engine) load(ctx context.Context, key string, dst any) error {
	raw, err := e.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (e *Engine) logRestoreMiss(key string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		log.Debug().Str("key", key).Msg("no persisted draft key, starting fresh")
		return
	}
	log.Warn().Err(err).Str("key", key).Msg("failed to read persisted draft, starting fresh")
}

// saveLocked writes the session. A timer-only save still rewrites every key
// while the engine is degraded, so the first successful save after a failure
// resynchronises the store.
func (e *Engine) saveLocked(ctx context.Context, full bool) {
	if e.degraded {
		full = true
	}

	type entry struct {
		key   string
		value any
	}
	entries := []entry{{e.keys.timer, e.timeRemaining}}
	if full {
		entries = append(entries,
			entry{e.keys.state, persistedState{DraftID: e.draftID, DraftState: e.state}},
			entry{e.keys.order, e.order},
		)
	}

	var failed error
	for _, en := range entries {
		raw, err := json.Marshal(en.value)
		if err == nil {
			err = e.store.Set(ctx, en.key, raw)
		}
		if err != nil {
			failed = errors.Join(failed, fmt.Errorf("save %s: %w", en.key, err))
		}
	}

	switch {
	case failed != nil:
		if !e.degraded {
			log.Warn().Err(failed).Str("draft_id", e.draftID.String()).Msg("failed to persist draft, continuing in memory")
		}
		e.degraded = true
	case e.degraded:
		log.Info().Str("draft_id", e.draftID.String()).Msg("draft persistence resynchronised")
		e.degraded = false
	}
}
