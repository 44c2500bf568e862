package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/cubedraft/go/internal/draft/session"
	"github.com/mcdev12/cubedraft/go/internal/export"
	"github.com/rs/zerolog/log"
)

type engineSource interface {
	current() Engine
}

// CommandResponse is returned by the pick, skip and reset routes
type CommandResponse struct {
	Outcome session.Outcome  `json:"outcome"`
	Applied bool             `json:"applied"`
	State   session.Snapshot `json:"state"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// StateHandler handles HTTP requests for the draft
type StateHandler struct {
	engines engineSource
	clock   clockwork.Clock
}

// NewStateHandler creates a new state handler
func NewStateHandler(engines engineSource, clock clockwork.Clock) *StateHandler {
	return &StateHandler{
		engines: engines,
		clock:   clock,
	}
}

// HandleGetDraftState handles GET /api/draft/state
func (h *StateHandler) HandleGetDraftState(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.Snapshot())
}

// HandlePick handles POST /api/draft/pick
func (h *StateHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, Engine.Pick)
}

// HandleSkip handles POST /api/draft/skip
func (h *StateHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, Engine.Skip)
}

// HandleReset handles POST /api/draft/reset
func (h *StateHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, Engine.Reset)
}

// HandleExport handles GET /api/draft/export?format=decklist|plaintext|proxy
func (h *StateHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	snap := engine.Snapshot()
	if !snap.IsComplete {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: export.ErrDraftIncomplete.Error()})
		return
	}

	if format == export.FormatProxy {
		writeJSON(w, http.StatusOK, export.ProxySheet(snap.PickedCards, h.clock.Now()))
		return
	}

	list, err := export.Decklist(snap.PickedCards, format)
	if err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("failed to export decklist")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to export decklist"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="draft-decklist.txt"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(list)); err != nil {
		log.Error().Err(err).Msg("failed to write decklist response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/draft/state", h.HandleGetDraftState)
	mux.HandleFunc("POST /api/draft/pick", h.HandlePick)
	mux.HandleFunc("POST /api/draft/skip", h.HandleSkip)
	mux.HandleFunc("POST /api/draft/reset", h.HandleReset)
	mux.HandleFunc("GET /api/draft/export", h.HandleExport)
}

func (h *StateHandler) command(w http.ResponseWriter, r *http.Request, op func(Engine, context.Context) session.Outcome) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	outcome := op(engine, r.Context())
	status := http.StatusOK
	if !outcome.Applied() {
		status = http.StatusConflict
	}
	writeJSON(w, status, CommandResponse{
		Outcome: outcome,
		Applied: outcome.Applied(),
		State:   engine.Snapshot(),
	})
}

func (h *StateHandler) engine(w http.ResponseWriter) (Engine, bool) {
	engine := h.engines.current()
	if engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: errDraftNotReady.Error()})
		return nil, false
	}
	return engine, true
}

var errDraftNotReady = errors.New("draft not ready")
