package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardImageURL(t *testing.T) {
	c := Card{ID: "0a1b2c3d-0000-0000-0000-000000000000", Name: "Lightning Bolt"}

	assert.Equal(t,
		"https://cards.scryfall.io/normal/front/0/a/0a1b2c3d-0000-0000-0000-000000000000.jpg",
		c.ImageURL(ImageSizeNormal))
	assert.Equal(t,
		"https://cards.scryfall.io/large/front/0/a/0a1b2c3d-0000-0000-0000-000000000000.jpg",
		c.ImageURL(ImageSizeLarge))
	assert.Empty(t, Card{ID: "x"}.ImageURL(ImageSizeSmall))
}

func TestCardValidate(t *testing.T) {
	tests := []struct {
		name    string
		card    Card
		wantErr bool
	}{
		{"valid", Card{ID: "id", Name: "Bolt", Rarity: RarityCommon, Colors: []string{"R"}}, false},
		{"colorless", Card{ID: "id", Name: "Ornithopter", Rarity: RarityUncommon}, false},
		{"missing id", Card{Name: "Bolt", Rarity: RarityCommon}, true},
		{"missing name", Card{ID: "id", Rarity: RarityCommon}, true},
		{"rare", Card{ID: "id", Name: "Bolt", Rarity: "rare"}, true},
		{"bad color", Card{ID: "id", Name: "Bolt", Rarity: RarityCommon, Colors: []string{"X"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDraftSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultDraftSettings().Validate())
	assert.Error(t, DraftSettings{TimerSeconds: 0, TotalPicks: 45}.Validate())
	assert.Error(t, DraftSettings{TimerSeconds: 15, TotalPicks: 0}.Validate())
	assert.Error(t, DraftSettings{TimerSeconds: 15, TotalPicks: 45, InitialSkips: -1}.Validate())
}

func TestDraftStateClone(t *testing.T) {
	s := NewDraftState(DefaultDraftSettings())
	s.PickedCards = append(s.PickedCards, Card{ID: "a"})
	s.Stats = &Statistics{ColorPrefs: []ColorPreference{{Color: "W", Count: 1, Percentage: 1}}}

	c := s.Clone()
	c.PickedCards[0].ID = "b"
	c.Stats.ColorPrefs[0].Count = 9

	assert.Equal(t, "a", s.PickedCards[0].ID)
	assert.Equal(t, 1, s.Stats.ColorPrefs[0].Count)
}
