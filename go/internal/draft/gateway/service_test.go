package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cubedraft/go/internal/draft/events"
	"github.com/mcdev12/cubedraft/go/internal/draft/session"
	"github.com/mcdev12/cubedraft/go/internal/export"
	"github.com/mcdev12/cubedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type inOrder struct{}

func (inOrder) Shuffle(pool []models.Card) []models.Card {
	return append([]models.Card(nil), pool...)
}

type GatewayTestSuite struct {
	suite.Suite
	service *Service
	engine  *session.Engine
	server  *httptest.Server
	cancel  context.CancelFunc
}

func (s *GatewayTestSuite) SetupTest() {
	pool := make([]models.Card, 6)
	for i := range pool {
		pool[i] = models.Card{
			ID:     fmt.Sprintf("%02d-card", i),
			Name:   fmt.Sprintf("Card %d", i),
			Rarity: models.RarityCommon,
			Colors: []string{models.ColorRed},
		}
	}

	cfg := DefaultConfig()
	cfg.Clock = clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	s.service = NewService(cfg)

	engine, err := session.New(context.Background(), pool,
		models.DraftSettings{TimerSeconds: 15, TotalPicks: 2, InitialSkips: 0},
		session.WithShuffler(inOrder{}),
		session.WithPublisher(s.service))
	s.Require().NoError(err)
	s.engine = engine
	s.service.Attach(engine)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.service.Start(ctx)

	mux := http.NewServeMux()
	s.service.RegisterRoutes(mux)
	s.server = httptest.NewServer(mux)
}

func (s *GatewayTestSuite) TearDownTest() {
	s.server.Close()
	s.cancel()
	_ = s.engine.Close()
}

func (s *GatewayTestSuite) post(path string) (*http.Response, CommandResponse) {
	resp, err := http.Post(s.server.URL+path, "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var body CommandResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func (s *GatewayTestSuite) TestGetState() {
	resp, err := http.Get(s.server.URL + "/api/draft/state")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	var snap session.Snapshot
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snap))
	s.Equal(2, snap.PicksRemaining)
	s.Require().NotNil(snap.CurrentCard)
	s.Equal("00-card", snap.CurrentCard.ID)
	s.Equal(session.TimerNormal, snap.TimerLevel)
}

func (s *GatewayTestSuite) TestPickApplied() {
	resp, body := s.post("/api/draft/pick")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(session.OutcomeApplied, body.Outcome)
	s.True(body.Applied)
	s.Equal(1, body.State.PicksRemaining)
	s.Equal(1, body.State.SkipsRemaining)
}

func (s *GatewayTestSuite) TestSkipRejectedWithoutSkips() {
	resp, body := s.post("/api/draft/skip")

	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(session.OutcomeRejectedNoSkips, body.Outcome)
	s.False(body.Applied)
	s.Equal(1, body.State.CardNumber)
}

func (s *GatewayTestSuite) TestMethodNotAllowed() {
	resp, err := http.Get(s.server.URL + "/api/draft/pick")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}

func (s *GatewayTestSuite) TestExportRequiresCompleteDraft() {
	resp, err := http.Get(s.server.URL + "/api/draft/export?format=decklist")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusConflict, resp.StatusCode)

	s.post("/api/draft/pick")
	s.post("/api/draft/pick")

	resp, err = http.Get(s.server.URL + "/api/draft/export?format=decklist")
	s.Require().NoError(err)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Deck\n1 Card 0\n1 Card 1\n", string(raw))

	resp, err = http.Get(s.server.URL + "/api/draft/export?format=proxy")
	s.Require().NoError(err)
	defer resp.Body.Close()
	var sheet export.Sheet
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&sheet))
	s.Equal("mtg-draft-proxies-2026-05-01.pdf", sheet.FileName)
	s.Require().Len(sheet.Pages, 1)
	s.Len(sheet.Pages[0].Slots, 2)

	resp2, err := http.Get(s.server.URL + "/api/draft/export?format=pdf")
	s.Require().NoError(err)
	resp2.Body.Close()
	s.Equal(http.StatusBadRequest, resp2.StatusCode)
}

func (s *GatewayTestSuite) TestResetAfterCompletion() {
	s.post("/api/draft/pick")
	_, body := s.post("/api/draft/pick")
	s.True(body.State.IsComplete)

	resp, _ := s.post("/api/draft/pick")
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, body = s.post("/api/draft/reset")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.False(body.State.IsComplete)
	s.Equal(2, body.State.PicksRemaining)
	s.Empty(body.State.PickedCards)
}

func (s *GatewayTestSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/draft"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) DraftEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev DraftEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

// readUntil skips events broadcast before the one the test waits for.
func readUntil(t *testing.T, conn *websocket.Conn, eventType events.EventType) DraftEvent {
	t.Helper()
	for {
		ev := readEvent(t, conn)
		if ev.Type == eventType {
			return ev
		}
	}
}

func (s *GatewayTestSuite) TestWebSocketStateSyncOnConnect() {
	conn := s.dial()

	ev := readUntil(s.T(), conn, EventTypeStateSync)
	s.Require().NotNil(ev.State)
	s.Equal(s.engine.DraftID().String(), ev.DraftID)
	s.Equal(2, ev.State.PicksRemaining)
}

func (s *GatewayTestSuite) TestWebSocketPickCommand() {
	conn := s.dial()
	readUntil(s.T(), conn, EventTypeStateSync)

	s.Require().NoError(conn.WriteJSON(ClientCommand{Type: CommandPick}))

	var gotResult, gotPicked bool
	for !(gotResult && gotPicked) {
		ev := readEvent(s.T(), conn)
		switch ev.Type {
		case EventTypeCommandResult:
			payload, err := ParseEventPayload(&ev)
			s.Require().NoError(err)
			result := payload.(*CommandResultPayload)
			s.Equal(CommandPick, result.Command)
			s.Equal(session.OutcomeApplied, result.Outcome)
			s.True(result.Applied)
			gotResult = true
		case events.EventTypeCardPicked:
			s.Require().NotNil(ev.State)
			s.Len(ev.State.PickedCards, 1)
			payload, err := ParseEventPayload(&ev)
			s.Require().NoError(err)
			s.Equal("00-card", payload.(*events.CardPickedPayload).CardID)
			gotPicked = true
		}
	}
	s.Len(s.engine.State().PickedCards, 1)
}

func (s *GatewayTestSuite) TestWebSocketRejectedCommand() {
	conn := s.dial()
	readUntil(s.T(), conn, EventTypeStateSync)

	s.Require().NoError(conn.WriteJSON(ClientCommand{Type: CommandSkip}))
	ev := readUntil(s.T(), conn, EventTypeCommandResult)
	payload, err := ParseEventPayload(&ev)
	s.Require().NoError(err)
	result := payload.(*CommandResultPayload)
	s.Equal(session.OutcomeRejectedNoSkips, result.Outcome)
	s.False(result.Applied)
}

func (s *GatewayTestSuite) TestWebSocketUnknownCommand() {
	conn := s.dial()
	readUntil(s.T(), conn, EventTypeStateSync)

	s.Require().NoError(conn.WriteJSON(ClientCommand{Type: "shuffle"}))
	ev := readUntil(s.T(), conn, EventTypeCommandResult)
	payload, err := ParseEventPayload(&ev)
	s.Require().NoError(err)
	s.Equal("unknown command", payload.(*CommandResultPayload).Error)
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}

func TestService_NoEngineAttached(t *testing.T) {
	svc := NewService(DefaultConfig())
	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/draft/state", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, svc.GetStats()["engine_attached"])
}

func TestNewDraftEvent(t *testing.T) {
	ev := events.New(uuid.New(), events.EventTypeTimerTick, time.Unix(0, 0).UTC(), events.TimerTickPayload{TimeRemainingSec: 4})
	de, err := NewDraftEvent(ev, nil)
	require.NoError(t, err)
	assert.Equal(t, events.EventTypeTimerTick, de.Type)

	payload, err := ParseEventPayload(de)
	require.NoError(t, err)
	assert.Equal(t, 4, payload.(*events.TimerTickPayload).TimeRemainingSec)
}
