package scryfall

import (
	"github.com/mcdev12/cubedraft/go/internal/models"
)

// Card is the subset of a Scryfall card object the pool import needs.
type Card struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ManaCost  string     `json:"mana_cost,omitempty"`
	TypeLine  string     `json:"type_line"`
	Colors    []string   `json:"colors,omitempty"`
	Rarity    string     `json:"rarity"`
	CardFaces []CardFace `json:"card_faces,omitempty"`
}

// CardFace is one face of a multi-faced card.
type CardFace struct {
	Name     string   `json:"name"`
	ManaCost string   `json:"mana_cost,omitempty"`
	TypeLine string   `json:"type_line"`
	Colors   []string `json:"colors,omitempty"`
}

// ToModel converts the card to a pool entry named as the cube list names it.
// Multi-faced cards carry colors and mana cost on their front face.
func (c *Card) ToModel(listName string) models.Card {
	out := models.Card{
		ID:       c.ID,
		Name:     listName,
		ManaCost: c.ManaCost,
		Type:     c.TypeLine,
		Rarity:   models.Rarity(c.Rarity),
		Colors:   append([]string{}, c.Colors...),
	}
	if out.Name == "" {
		out.Name = c.Name
	}
	if len(c.CardFaces) > 0 {
		front := c.CardFaces[0]
		if c.Colors == nil {
			out.Colors = append([]string{}, front.Colors...)
		}
		if out.ManaCost == "" {
			out.ManaCost = front.ManaCost
		}
		if out.Type == "" {
			out.Type = front.TypeLine
		}
	}
	return out
}
