// Package config assembles the draft server configuration from the
// environment, an optional .env file and an optional YAML draft file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/cubedraft/go/internal/dbconfig"
	"github.com/mcdev12/cubedraft/go/internal/draft/reward"
	"github.com/mcdev12/cubedraft/go/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Card sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendNATS     = "nats"
	BackendPostgres = "postgres"
)

// Config is everything the draft server needs at start-up.
type Config struct {
	Port     string
	LogLevel zerolog.Level

	Cards    CardsConfig
	Store    StoreConfig
	Events   EventsConfig
	Draft    DraftConfig
	Database dbconfig.Config
}

type CardsConfig struct {
	Source string
	Path   string
}

type StoreConfig struct {
	Backend       string
	Namespace     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NATSURL       string
	NATSBucket    string
}

type EventsConfig struct {
	Enabled      bool
	NATSURL      string
	IncludeTicks bool
}

// DraftConfig is the part of the configuration a DRAFT_CONFIG file may set.
type DraftConfig struct {
	Settings      models.DraftSettings `yaml:",inline"`
	RewardTable   string               `yaml:"reward_table"`
	CommitDelayMS int                  `yaml:"commit_delay_ms"`
	TickPeriodMS  int                  `yaml:"tick_period_ms"`
	TrackedColors []string             `yaml:"tracked_colors"`
}

type fileConfig struct {
	Draft DraftConfig `yaml:"draft"`
}

// Load reads .env (when present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	return FromEnv()
}

// FromEnv builds the configuration from defaults, then the DRAFT_CONFIG
// file, then environment overrides, and validates the result.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: zerolog.InfoLevel,
		Cards: CardsConfig{
			Source: getEnv("CARD_SOURCE", SourceFile),
			Path:   getEnv("CARD_POOL_PATH", "peasant_cube.json"),
		},
		Store: StoreConfig{
			Backend:       getEnv("STORE_BACKEND", BackendMemory),
			Namespace:     getEnv("STORE_NAMESPACE", "cubedraft"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			NATSURL:       getEnv("NATS_URL", "nats://localhost:4222"),
			NATSBucket:    getEnv("NATS_KV_BUCKET", "CUBE_DRAFT"),
		},
		Events: EventsConfig{
			Enabled:      getEnvAsBool("EVENTS_ENABLED", false),
			NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
			IncludeTicks: getEnvAsBool("EVENTS_INCLUDE_TICKS", false),
		},
		Draft: DraftConfig{
			Settings:      models.DefaultDraftSettings(),
			RewardTable:   reward.Standard.Name(),
			CommitDelayMS: 0,
			TickPeriodMS:  1000,
			TrackedColors: append([]string(nil), models.AllColors...),
		},
		Database: dbconfig.NewConfigFromEnv(),
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if path := os.Getenv("DRAFT_CONFIG"); path != "" {
		if err := loadDraftFile(path, &cfg.Draft); err != nil {
			return nil, err
		}
	}

	d := &cfg.Draft
	d.Settings.TimerSeconds = getEnvAsInt("DRAFT_TIMER_SECONDS", d.Settings.TimerSeconds)
	d.Settings.TotalPicks = getEnvAsInt("DRAFT_TOTAL_PICKS", d.Settings.TotalPicks)
	d.Settings.InitialSkips = getEnvAsInt("DRAFT_INITIAL_SKIPS", d.Settings.InitialSkips)
	d.RewardTable = getEnv("DRAFT_REWARD_TABLE", d.RewardTable)
	d.CommitDelayMS = getEnvAsInt("DRAFT_COMMIT_DELAY_MS", d.CommitDelayMS)
	d.TickPeriodMS = getEnvAsInt("DRAFT_TICK_PERIOD_MS", d.TickPeriodMS)
	if raw := os.Getenv("DRAFT_TRACKED_COLORS"); raw != "" {
		d.TrackedColors = splitList(raw)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDraftFile(path string, draft *DraftConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	file := fileConfig{Draft: *draft}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	*draft = file.Draft
	return nil
}

// Validate rejects configurations the server could not start with.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Draft.Settings.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := reward.ByName(c.Draft.RewardTable); err != nil {
		errs = append(errs, err)
	}
	if c.Draft.CommitDelayMS < 0 {
		errs = append(errs, errors.New("commit_delay_ms cannot be negative"))
	}
	if c.Draft.TickPeriodMS <= 0 {
		errs = append(errs, errors.New("tick_period_ms must be greater than 0"))
	}
	if len(c.Draft.TrackedColors) == 0 {
		errs = append(errs, errors.New("tracked_colors cannot be empty"))
	}
	for _, color := range c.Draft.TrackedColors {
		if !slices.Contains(models.AllColors, color) {
			errs = append(errs, fmt.Errorf("unknown tracked color %q", color))
		}
	}

	switch c.Cards.Source {
	case SourceFile:
		if c.Cards.Path == "" {
			errs = append(errs, errors.New("CARD_POOL_PATH is required for the file source"))
		}
	case SourcePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown CARD_SOURCE %q", c.Cards.Source))
	}

	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendNATS, BackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}
	if c.Store.Namespace == "" {
		errs = append(errs, errors.New("STORE_NAMESPACE cannot be empty"))
	}

	return errors.Join(errs...)
}

// Reward returns the configured reward table.
func (d DraftConfig) Reward() reward.Table {
	table, err := reward.ByName(d.RewardTable)
	if err != nil {
		return reward.Standard
	}
	return table
}

func (d DraftConfig) CommitDelay() time.Duration {
	return time.Duration(d.CommitDelayMS) * time.Millisecond
}

func (d DraftConfig) TickPeriod() time.Duration {
	return time.Duration(d.TickPeriodMS) * time.Millisecond
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-integer environment value")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
