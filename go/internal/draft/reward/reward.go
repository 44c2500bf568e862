// Package reward maps a card's strength rating to the number of skips the
// skip economy grants for it.
package reward

import (
	"fmt"
	"sort"
)

// Tier grants Reward skips to cards rated at least MinStrength.
type Tier struct {
	MinStrength float64
	Reward      int
}

// Table is a step function over strength ratings. Tiers are kept sorted by
// MinStrength; a rating below the first tier, or no rating at all, earns 0.
type Table struct {
	name  string
	tiers []Tier
}

// Standard is the canonical reward table.
var Standard = NewTable("standard",
	Tier{MinStrength: 1350, Reward: 1},
	Tier{MinStrength: 1500, Reward: 2},
	Tier{MinStrength: 1650, Reward: 3},
)

// Generous doubles every reward of Standard at the same thresholds.
var Generous = NewTable("generous",
	Tier{MinStrength: 1350, Reward: 2},
	Tier{MinStrength: 1500, Reward: 4},
	Tier{MinStrength: 1650, Reward: 6},
)

// NewTable builds a named table from tiers in any order.
func NewTable(name string, tiers ...Tier) Table {
	sorted := append([]Tier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinStrength < sorted[j].MinStrength })
	return Table{name: name, tiers: sorted}
}

// ByName returns one of the built-in tables.
func ByName(name string) (Table, error) {
	switch name {
	case "", Standard.name:
		return Standard, nil
	case Generous.name:
		return Generous, nil
	default:
		return Table{}, fmt.Errorf("unknown reward table %q", name)
	}
}

// Name identifies the table in config and logs.
func (t Table) Name() string {
	return t.name
}

// RewardFor returns the skip reward for a strength rating.
func (t Table) RewardFor(strength *float64) int {
	if strength == nil {
		return 0
	}
	reward := 0
	for _, tier := range t.tiers {
		if *strength < tier.MinStrength {
			break
		}
		reward = tier.Reward
	}
	if reward < 0 {
		return 0
	}
	return reward
}
