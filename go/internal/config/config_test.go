package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcdev12/cubedraft/go/internal/draft/reward"
	"github.com/mcdev12/cubedraft/go/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "LOG_LEVEL", "CARD_SOURCE", "CARD_POOL_PATH",
	"STORE_BACKEND", "STORE_NAMESPACE", "REDIS_ADDR", "REDIS_DB",
	"EVENTS_ENABLED", "DRAFT_CONFIG", "DRAFT_TIMER_SECONDS",
	"DRAFT_TOTAL_PICKS", "DRAFT_INITIAL_SKIPS", "DRAFT_REWARD_TABLE",
	"DRAFT_COMMIT_DELAY_MS", "DRAFT_TICK_PERIOD_MS", "DRAFT_TRACKED_COLORS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, SourceFile, cfg.Cards.Source)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "cubedraft", cfg.Store.Namespace)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, models.DefaultDraftSettings(), cfg.Draft.Settings)
	assert.Equal(t, reward.Standard, cfg.Draft.Reward())
	assert.Equal(t, time.Duration(0), cfg.Draft.CommitDelay())
	assert.Equal(t, time.Second, cfg.Draft.TickPeriod())
	assert.Equal(t, models.AllColors, cfg.Draft.TrackedColors)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("DRAFT_TOTAL_PICKS", "30")
	t.Setenv("DRAFT_REWARD_TABLE", "generous")
	t.Setenv("DRAFT_COMMIT_DELAY_MS", "300")
	t.Setenv("DRAFT_TRACKED_COLORS", "r, g ,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Store.RedisDB)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, 30, cfg.Draft.Settings.TotalPicks)
	assert.Equal(t, reward.Generous, cfg.Draft.Reward())
	assert.Equal(t, 300*time.Millisecond, cfg.Draft.CommitDelay())
	assert.Equal(t, []string{"R", "G"}, cfg.Draft.TrackedColors)
}

func TestFromEnv_DraftFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
draft:
  timer_seconds: 20
  total_picks: 40
  reward_table: generous
  tracked_colors: [W, U]
`), 0o644))
	t.Setenv("DRAFT_CONFIG", path)
	t.Setenv("DRAFT_TOTAL_PICKS", "42")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, models.DraftSettings{TimerSeconds: 20, TotalPicks: 42, InitialSkips: 10}, cfg.Draft.Settings)
	assert.Equal(t, "generous", cfg.Draft.RewardTable)
	assert.Equal(t, []string{"W", "U"}, cfg.Draft.TrackedColors)
	assert.Equal(t, 1000, cfg.Draft.TickPeriodMS)
}

func TestFromEnv_MissingDraftFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DRAFT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := FromEnv()
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"zero timer", "DRAFT_TIMER_SECONDS", "0", "timer_seconds"},
		{"negative skips", "DRAFT_INITIAL_SKIPS", "-1", "initial_skips"},
		{"unknown table", "DRAFT_REWARD_TABLE", "lavish", "unknown reward table"},
		{"unknown backend", "STORE_BACKEND", "etcd", "STORE_BACKEND"},
		{"unknown source", "CARD_SOURCE", "http", "CARD_SOURCE"},
		{"unknown color", "DRAFT_TRACKED_COLORS", "W,P", "tracked color"},
		{"bad level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
