package gateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cubedraft/go/internal/draft/events"
	"github.com/mcdev12/cubedraft/go/internal/draft/session"
	"github.com/rs/zerolog/log"
)

// Engine is what the gateway needs from the draft session engine
type Engine interface {
	Snapshot() session.Snapshot
	Pick(ctx context.Context) session.Outcome
	Skip(ctx context.Context) session.Outcome
	Reset(ctx context.Context) session.Outcome
}

// Service is the presentation boundary of the draft: it serves snapshots
// over HTTP and websocket, forwards pick and skip requests to the engine,
// and re-broadcasts every committed event.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	clock             clockwork.Clock

	mu     sync.RWMutex
	engine Engine
}

// Config holds configuration for the draft gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	Clock            clockwork.Clock
}

// DefaultConfig returns default configuration for the draft gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		Clock:            clockwork.NewRealClock(),
	}
}

// NewService creates a new draft gateway service. The engine is attached
// afterwards because the engine publishes its events to the service.
func NewService(config Config) *Service {
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	s := &Service{clock: config.Clock}
	s.connectionManager = NewConnectionManager(config.ConnectionConfig, s)
	s.wsHandler = NewWebSocketHandler(s.connectionManager, s)
	s.stateHandler = NewStateHandler(s, config.Clock)
	return s
}

// Attach sets the engine served by the gateway
func (s *Service) Attach(engine Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = engine
}

func (s *Service) current() Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Start begins the gateway service
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting draft gateway service")

	s.connectionManager.Start(ctx)

	log.Info().Msg("draft gateway service stopped")
	return nil
}

// Publish implements events.Publisher by broadcasting the event together
// with the snapshot taken right after it.
func (s *Service) Publish(_ context.Context, event events.Event) error {
	var state *session.Snapshot
	if engine := s.current(); engine != nil {
		snap := engine.Snapshot()
		state = &snap
	}
	draftEvent, err := NewDraftEvent(event, state)
	if err != nil {
		return err
	}
	s.connectionManager.Broadcast(draftEvent)
	return nil
}

// HandleCommand implements CommandHandler for websocket clients
func (s *Service) HandleCommand(ctx context.Context, conn *Connection, cmd ClientCommand) {
	result := CommandResultPayload{Command: cmd.Type}
	engine := s.current()

	switch {
	case engine == nil:
		result.Error = errDraftNotReady.Error()
	case cmd.Type == CommandPick:
		result.Outcome = engine.Pick(ctx)
	case cmd.Type == CommandSkip:
		result.Outcome = engine.Skip(ctx)
	default:
		result.Error = "unknown command"
	}
	result.Applied = result.Error == "" && result.Outcome.Applied()

	event, err := NewDraftEvent(events.New(snapshotID(engine), EventTypeCommandResult, s.clock.Now(), result), nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to build command result")
		return
	}
	s.connectionManager.SendTo(conn, event)
}

// RegisterRoutes registers the WebSocket and HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("draft gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "draft_gateway"
	stats["status"] = "running"
	stats["engine_attached"] = s.current() != nil
	return stats
}

func (s *Service) stateSync() *DraftEvent {
	engine := s.current()
	if engine == nil {
		return nil
	}
	return newStateSync(engine.Snapshot(), s.clock.Now())
}

func snapshotID(engine Engine) uuid.UUID {
	if engine == nil {
		return uuid.Nil
	}
	return engine.Snapshot().DraftID
}
