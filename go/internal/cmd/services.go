package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cubedraft/go/internal/cards"
	"github.com/mcdev12/cubedraft/go/internal/config"
	"github.com/mcdev12/cubedraft/go/internal/draft/events"
	"github.com/mcdev12/cubedraft/go/internal/draft/gateway"
	"github.com/mcdev12/cubedraft/go/internal/draft/orchestrator"
	"github.com/mcdev12/cubedraft/go/internal/draft/session"
	"github.com/mcdev12/cubedraft/go/internal/models"
	"github.com/mcdev12/cubedraft/go/internal/store"
	"github.com/mcdev12/cubedraft/go/internal/store/memory"
	"github.com/mcdev12/cubedraft/go/internal/store/natskv"
	"github.com/mcdev12/cubedraft/go/internal/store/pgstore"
	"github.com/mcdev12/cubedraft/go/internal/store/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Gateway      *gateway.Service
	Engine       *session.Engine
	Orchestrator *orchestrator.Orchestrator

	closers []func() error
}

// Close releases everything setupServices opened, newest first.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

func (s *Services) onClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// Card source → Store → Publishers → Engine → Gateway/Orchestrator
	services := &Services{}
	clock := clockwork.NewRealClock()

	pool, err := loadPool(ctx, cfg, services)
	if err != nil {
		services.Close()
		return nil, err
	}

	st, err := setupStore(ctx, cfg, services)
	if err != nil {
		services.Close()
		return nil, err
	}

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.Clock = clock
	services.Gateway = gateway.NewService(gatewayConfig)

	publisher, err := setupPublisher(ctx, cfg, services)
	if err != nil {
		services.Close()
		return nil, err
	}

	engine, err := session.New(ctx, pool, cfg.Draft.Settings,
		session.WithStore(st),
		session.WithRewardTable(cfg.Draft.Reward()),
		session.WithClock(clock),
		session.WithCommitDelay(cfg.Draft.CommitDelay()),
		session.WithPublisher(publisher),
		session.WithTrackedColors(cfg.Draft.TrackedColors),
		session.WithNamespace(cfg.Store.Namespace),
	)
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to create draft engine: %w", err)
	}
	services.Engine = engine
	services.onClose(engine.Close)
	services.Gateway.Attach(engine)

	services.Orchestrator = orchestrator.NewOrchestrator(engine,
		orchestrator.WithClock(clock),
		orchestrator.WithPeriod(cfg.Draft.TickPeriod()),
	)

	log.Info().
		Str("draft_id", engine.DraftID().String()).
		Int("pool_size", len(pool)).
		Msg("draft engine ready")
	return services, nil
}

func loadPool(ctx context.Context, cfg *config.Config, services *Services) ([]models.Card, error) {
	var source cards.Source
	switch cfg.Cards.Source {
	case config.SourcePostgres:
		pgPool, err := setupPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		services.onClose(func() error { pgPool.Close(); return nil })
		pg := cards.NewPostgres(pgPool)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		source = pg
	default:
		source = cards.NewJSONFile(cfg.Cards.Path)
	}

	pool, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load card pool: %w", err)
	}
	log.Info().Str("source", cfg.Cards.Source).Int("cards", len(pool)).Msg("card pool loaded")
	return pool, nil
}

func setupStore(ctx context.Context, cfg *config.Config, services *Services) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		services.onClose(client.Close)
		return redisstore.New(client), nil

	case config.BackendNATS:
		natsConfig := natskv.DefaultConfig()
		natsConfig.URL = cfg.Store.NATSURL
		natsConfig.Bucket = cfg.Store.NATSBucket
		kv, err := natskv.New(ctx, natsConfig)
		if err != nil {
			return nil, err
		}
		services.onClose(kv.Close)
		return kv, nil

	case config.BackendPostgres:
		database, err := setupDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pg := pgstore.New(database, cfg.Store.Namespace)
		services.onClose(pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		return pg, nil

	default:
		log.Warn().Msg("using in-memory store, the draft will not survive a restart")
		return memory.New(), nil
	}
}

// setupPublisher fans every engine event out to the gateway, the log and,
// when enabled, JetStream.
func setupPublisher(ctx context.Context, cfg *config.Config, services *Services) (events.Publisher, error) {
	publishers := events.Multi{services.Gateway, events.LogPublisher{}}
	if !cfg.Events.Enabled {
		return publishers, nil
	}

	jsConfig := events.DefaultJetStreamConfig()
	jsConfig.URL = cfg.Events.NATSURL
	jsConfig.IncludeTicks = cfg.Events.IncludeTicks
	js, err := events.NewJetStreamPublisher(ctx, jsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	services.onClose(js.Close)
	return append(publishers, js), nil
}
