package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rating(v float64) *float64 { return &v }

func TestStandardRewardFor(t *testing.T) {
	tests := []struct {
		name     string
		strength *float64
		want     int
	}{
		{"unrated", nil, 0},
		{"weak", rating(1200), 0},
		{"just below first tier", rating(1349.99), 0},
		{"first tier boundary", rating(1350), 1},
		{"first tier", rating(1499), 1},
		{"second tier boundary", rating(1500), 2},
		{"second tier", rating(1649.5), 2},
		{"top tier boundary", rating(1650), 3},
		{"top tier", rating(2100), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Standard.RewardFor(tt.strength))
		})
	}
}

func TestGenerousRewardFor(t *testing.T) {
	assert.Equal(t, 0, Generous.RewardFor(nil))
	assert.Equal(t, 2, Generous.RewardFor(rating(1400)))
	assert.Equal(t, 4, Generous.RewardFor(rating(1550)))
	assert.Equal(t, 6, Generous.RewardFor(rating(1700)))
}

func TestNewTableSortsTiers(t *testing.T) {
	table := NewTable("custom", Tier{MinStrength: 100, Reward: 5}, Tier{MinStrength: 10, Reward: 1})
	assert.Equal(t, 0, table.RewardFor(rating(9)))
	assert.Equal(t, 1, table.RewardFor(rating(50)))
	assert.Equal(t, 5, table.RewardFor(rating(150)))
}

func TestByName(t *testing.T) {
	table, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "standard", table.Name())

	table, err = ByName("generous")
	require.NoError(t, err)
	assert.Equal(t, "generous", table.Name())

	_, err = ByName("bogus")
	assert.Error(t, err)
}
