package models

import (
	"fmt"
	"slices"
)

// Rarity defines the printed rarity of a card.
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
)

// Color codes in WUBRG order.
const (
	ColorWhite = "W"
	ColorBlue  = "U"
	ColorBlack = "B"
	ColorRed   = "R"
	ColorGreen = "G"
)

// AllColors lists the five colors in WUBRG order.
var AllColors = []string{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen}

// ImageSize selects one of the Scryfall image renditions.
type ImageSize string

const (
	ImageSizeSmall  ImageSize = "small"
	ImageSizeNormal ImageSize = "normal"
	ImageSizeLarge  ImageSize = "large"
)

// Card represents one entry of the cube. The JSON layout matches the cube
// pool files produced by the import tool.
type Card struct {
	ID       string   `json:"scryfallId"`
	Name     string   `json:"name"`
	ManaCost string   `json:"manaCost"`
	Type     string   `json:"type"`
	Rarity   Rarity   `json:"rarity"`
	Colors   []string `json:"colors"`
	Strength *float64 `json:"elo,omitempty"` // nil when the card has no rating
}

// HasColor reports whether the card is of the given color.
func (c Card) HasColor(color string) bool {
	return slices.Contains(c.Colors, color)
}

// ImageURL returns the Scryfall CDN location of the card front.
func (c Card) ImageURL(size ImageSize) string {
	if len(c.ID) < 2 {
		return ""
	}
	return fmt.Sprintf("https://cards.scryfall.io/%s/front/%c/%c/%s.jpg", size, c.ID[0], c.ID[1], c.ID)
}

// Validate checks the fields every pool entry must carry.
func (c Card) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("card %q: id is required", c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("card %s: name is required", c.ID)
	}
	switch c.Rarity {
	case RarityCommon, RarityUncommon:
	default:
		return fmt.Errorf("card %q: invalid rarity %q", c.Name, c.Rarity)
	}
	for _, color := range c.Colors {
		if !slices.Contains(AllColors, color) {
			return fmt.Errorf("card %q: invalid color %q", c.Name, color)
		}
	}
	return nil
}
