package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/cubedraft/go/internal/draft/events"
	"github.com/mcdev12/cubedraft/go/internal/draft/session"
)

// DraftEvent is the envelope pushed to websocket clients
type DraftEvent struct {
	ID        string            `json:"id"`        // Event UUID
	DraftID   string            `json:"draft_id"`  // Draft UUID
	Type      events.EventType  `json:"type"`      // Event type
	Timestamp time.Time         `json:"timestamp"` // Event creation time
	Data      json.RawMessage   `json:"data"`      // Event-specific payload
	State     *session.Snapshot `json:"state,omitempty"`
}

// Gateway-only event types
const (
	EventTypeStateSync     events.EventType = "StateSync"
	EventTypeCommandResult events.EventType = "CommandResult"
)

// CommandResultPayload answers a client command on the connection that sent it
type CommandResultPayload struct {
	Command string          `json:"command"`
	Outcome session.Outcome `json:"outcome"`
	Applied bool            `json:"applied"`
	Error   string          `json:"error,omitempty"`
}

// ClientCommand is a message received from a websocket client
type ClientCommand struct {
	Type string `json:"type"`
}

// Client command types
const (
	CommandPick = "pick"
	CommandSkip = "skip"
)

// NewDraftEvent wraps a domain event and the snapshot taken after it
func NewDraftEvent(event events.Event, state *session.Snapshot) (*DraftEvent, error) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.Type, err)
	}
	return &DraftEvent{
		ID:        event.ID.String(),
		DraftID:   event.DraftID.String(),
		Type:      event.Type,
		Timestamp: event.Timestamp,
		Data:      data,
		State:     state,
	}, nil
}

// newStateSync builds the message sent to a client when it connects
func newStateSync(state session.Snapshot, at time.Time) *DraftEvent {
	return &DraftEvent{
		ID:        uuid.New().String(),
		DraftID:   state.DraftID.String(),
		Type:      EventTypeStateSync,
		Timestamp: at,
		Data:      json.RawMessage("{}"),
		State:     &state,
	}
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *DraftEvent) (interface{}, error) {
	var payload interface{}
	switch event.Type {
	case events.EventTypeDraftStarted:
		payload = &events.DraftStartedPayload{}
	case events.EventTypeCardPicked:
		payload = &events.CardPickedPayload{}
	case events.EventTypeCardSkipped:
		payload = &events.CardSkippedPayload{}
	case events.EventTypeDraftCompleted:
		payload = &events.DraftCompletedPayload{}
	case events.EventTypeDraftReset:
		payload = &events.DraftResetPayload{}
	case events.EventTypeTimerTick:
		payload = &events.TimerTickPayload{}
	case EventTypeCommandResult:
		payload = &CommandResultPayload{}
	default:
		return nil, nil // Unknown event type
	}
	if err := json.Unmarshal(event.Data, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
