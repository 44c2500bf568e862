package events

import (
	"time"

	"github.com/google/uuid"
)

// Event payload types shared between the session engine, the publishers and
// the gateway.

// EventType represents the type of draft event
type EventType string

const (
	EventTypeDraftStarted   EventType = "DraftStarted"
	EventTypeCardPicked     EventType = "CardPicked"
	EventTypeCardSkipped    EventType = "CardSkipped"
	EventTypeDraftCompleted EventType = "DraftCompleted"
	EventTypeDraftReset     EventType = "DraftReset"
	EventTypeTimerTick      EventType = "TimerTick"
)

// Event is the envelope every publisher receives.
type Event struct {
	ID        uuid.UUID `json:"id"`
	DraftID   uuid.UUID `json:"draft_id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New builds an event with a fresh ID.
func New(draftID uuid.UUID, eventType EventType, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.New(),
		DraftID:   draftID,
		Type:      eventType,
		Timestamp: at,
		Payload:   payload,
	}
}

// DraftStartedPayload is the payload for a DraftStarted event
type DraftStartedPayload struct {
	PoolSize     int       `json:"pool_size"`
	TotalPicks   int       `json:"total_picks"`
	InitialSkips int       `json:"initial_skips"`
	TimerSeconds int       `json:"timer_seconds"`
	Resumed      bool      `json:"resumed"`
	StartedAt    time.Time `json:"started_at"`
}

// CardPickedPayload is the payload for a CardPicked event
type CardPickedPayload struct {
	CardID         string    `json:"card_id"`
	CardName       string    `json:"card_name"`
	PickNumber     int       `json:"pick_number"`
	Forced         bool      `json:"forced"`
	SkipsGranted   int       `json:"skips_granted"`
	PicksRemaining int       `json:"picks_remaining"`
	SkipsRemaining int       `json:"skips_remaining"`
	MadeAt         time.Time `json:"made_at"`
}

// CardSkippedPayload is the payload for a CardSkipped event
type CardSkippedPayload struct {
	CardID         string    `json:"card_id"`
	CardName       string    `json:"card_name"`
	SkipDelta      int       `json:"skip_delta"`
	SkipsRemaining int       `json:"skips_remaining"`
	SkippedAt      time.Time `json:"skipped_at"`
}

// Completion reasons
const (
	ReasonPicksExhausted = "picks_exhausted"
	ReasonPoolExhausted  = "pool_exhausted"
)

// DraftCompletedPayload is the payload for a DraftCompleted event
type DraftCompletedPayload struct {
	CompletedAt time.Time `json:"completed_at"`
	TotalPicked int       `json:"total_picked"`
	CardsSeen   int       `json:"cards_seen"`
	Reason      string    `json:"reason"`
}

// DraftResetPayload is the payload for a DraftReset event
type DraftResetPayload struct {
	ResetAt time.Time `json:"reset_at"`
}

// TimerTickPayload contains the countdown after a tick
type TimerTickPayload struct {
	TimeRemainingSec int       `json:"time_remaining_sec"`
	TickedAt         time.Time `json:"ticked_at"`
}
