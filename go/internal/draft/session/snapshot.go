package session

import (
	"github.com/google/uuid"
	"github.com/mcdev12/cubedraft/go/internal/models"
)

// TimerLevel classifies how urgent the countdown is.
type TimerLevel string

const (
	TimerNormal   TimerLevel = "normal"
	TimerWarning  TimerLevel = "warning"
	TimerCritical TimerLevel = "critical"
)

const recentPicksShown = 5

// LevelFor returns the urgency of a countdown value.
func LevelFor(seconds int) TimerLevel {
	switch {
	case seconds <= 3:
		return TimerCritical
	case seconds <= 7:
		return TimerWarning
	default:
		return TimerNormal
	}
}

// Snapshot is a read-only view of the session for presentation.
type Snapshot struct {
	DraftID        uuid.UUID          `json:"draft_id"`
	CurrentCard    *models.Card       `json:"current_card"`
	CardNumber     int                `json:"card_number"`
	TotalCards     int                `json:"total_cards"`
	TotalPicks     int                `json:"total_picks"`
	PicksRemaining int                `json:"picks_remaining"`
	SkipsRemaining int                `json:"skips_remaining"`
	TimeRemaining  int                `json:"time_remaining_sec"`
	TimerLevel     TimerLevel         `json:"timer_level"`
	PickedCards    []models.Card      `json:"picked_cards"`
	RecentPicks    []models.Card      `json:"recent_picks"`
	Stats          *models.Statistics `json:"stats"`
	IsComplete     bool               `json:"is_complete"`
	Persisted      bool               `json:"persisted"`
}

// recentPicks returns the last picks, most recent first.
func recentPicks(picked []models.Card) []models.Card {
	n := min(len(picked), recentPicksShown)
	out := make([]models.Card, 0, n)
	for i := len(picked) - 1; i >= len(picked)-n; i-- {
		out = append(out, picked[i])
	}
	return out
}
