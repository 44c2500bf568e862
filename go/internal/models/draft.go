package models

import "fmt"

// DraftSettings holds the immutable configuration of a draft session.
type DraftSettings struct {
	TimerSeconds int `json:"timer_seconds" yaml:"timer_seconds"`
	TotalPicks   int `json:"total_picks" yaml:"total_picks"`
	InitialSkips int `json:"initial_skips" yaml:"initial_skips"`
}

// DefaultDraftSettings returns the settings used when nothing is configured.
func DefaultDraftSettings() DraftSettings {
	return DraftSettings{
		TimerSeconds: 15,
		TotalPicks:   45,
		InitialSkips: 10,
	}
}

// Validate checks the settings bounds.
func (s DraftSettings) Validate() error {
	if s.TimerSeconds <= 0 {
		return fmt.Errorf("timer_seconds must be greater than 0")
	}
	if s.TotalPicks <= 0 {
		return fmt.Errorf("total_picks must be greater than 0")
	}
	if s.InitialSkips < 0 {
		return fmt.Errorf("initial_skips cannot be negative")
	}
	return nil
}

// ColorPreference is the share of picked cards containing one color.
type ColorPreference struct {
	Color      string  `json:"color"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Statistics holds the derived metrics over the picked cards.
type Statistics struct {
	ColorPrefs []ColorPreference `json:"colorPrefs"`
}

// DraftState is the persisted aggregate of a draft session.
type DraftState struct {
	CurrentCardIndex int         `json:"currentCardIndex"`
	PickedCards      []Card      `json:"pickedCards"`
	PicksRemaining   int         `json:"picksRemaining"`
	SkipsRemaining   int         `json:"skipsRemaining"`
	IsComplete       bool        `json:"isComplete"`
	Stats            *Statistics `json:"stats"`
}

// NewDraftState returns the state of a session that has not seen any card.
func NewDraftState(settings DraftSettings) DraftState {
	return DraftState{
		CurrentCardIndex: 0,
		PickedCards:      []Card{},
		PicksRemaining:   settings.TotalPicks,
		SkipsRemaining:   settings.InitialSkips,
	}
}

// Clone returns a deep copy safe to hand out of the engine.
func (s DraftState) Clone() DraftState {
	out := s
	out.PickedCards = append([]Card(nil), s.PickedCards...)
	if out.PickedCards == nil {
		out.PickedCards = []Card{}
	}
	if s.Stats != nil {
		stats := Statistics{ColorPrefs: append([]ColorPreference(nil), s.Stats.ColorPrefs...)}
		out.Stats = &stats
	}
	return out
}
