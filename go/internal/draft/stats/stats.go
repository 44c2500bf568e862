package stats

import "github.com/mcdev12/cubedraft/go/internal/models"

// Compute returns the color preferences of the picked cards, one entry per
// tracked color in the given order. It is total: an empty pick list yields
// zero counts and zero percentages.
func Compute(picked []models.Card, trackedColors []string) models.Statistics {
	denominator := len(picked)
	if denominator < 1 {
		denominator = 1
	}

	prefs := make([]models.ColorPreference, 0, len(trackedColors))
	for _, color := range trackedColors {
		count := 0
		for _, card := range picked {
			if card.HasColor(color) {
				count++
			}
		}
		prefs = append(prefs, models.ColorPreference{
			Color:      color,
			Count:      count,
			Percentage: float64(count) / float64(denominator),
		})
	}
	return models.Statistics{ColorPrefs: prefs}
}
