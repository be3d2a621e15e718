package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"NextDay/internal/collector"
	"NextDay/internal/game"
	"NextDay/internal/metrics"
	"NextDay/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

const writeWait = 10 * time.Second

// Server exposes the session manager over HTTP and WebSocket.
type Server struct {
	Manager *session.Manager
	Metrics *metrics.Metrics
	mux     *http.ServeMux
}

// New registers all routes.
func New(mgr *session.Manager, met *metrics.Metrics) *Server {
	s := &Server{Manager: mgr, Metrics: met, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /api/rounds", s.handleStart)
	s.mux.HandleFunc("GET /api/rounds/{id}", s.handleGet)
	s.mux.HandleFunc("POST /api/rounds/{id}/guess", s.handleGuess)
	s.mux.HandleFunc("POST /api/rounds/{id}/end", s.handleEnd)
	s.mux.HandleFunc("GET /api/rounds/{id}/summary", s.handleSummary)
	s.mux.HandleFunc("GET /api/rounds/{id}/ws", s.handleStream)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if met != nil {
		s.mux.Handle("GET /metrics", met.Handler())
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] http server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		log.Println("[INFO] http server stopped")
		return nil
	}
}

type startRequest struct {
	Symbol string `json:"symbol"`
}

type guessRequest struct {
	Direction string `json:"direction"`
}

type outcomeView struct {
	Direction string          `json:"direction"`
	WentUp    bool            `json:"went_up"`
	Correct   bool            `json:"correct"`
	Score     int             `json:"score"`
	PrevDate  string          `json:"prev_date"`
	PrevPrice decimal.Decimal `json:"prev_price"`
	Date      string          `json:"date"`
	Price     decimal.Decimal `json:"price"`
	Exhausted bool            `json:"exhausted"`
}

type roundResponse struct {
	Round   session.View    `json:"round"`
	Outcome *outcomeView    `json:"outcome,omitempty"`
	Ended   *bool           `json:"ended,omitempty"`
	Events  []session.Event `json:"events,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", Kind: "bad_request"})
		return
	}
	view, events, err := s.Manager.Start(r.Context(), "", req.Symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, roundResponse{Round: view, Events: events})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := s.Manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundResponse{Round: view})
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", Kind: "bad_request"})
		return
	}
	var up bool
	switch req.Direction {
	case "up":
		up = true
	case "down":
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: `direction must be "up" or "down"`, Kind: "bad_request"})
		return
	}

	view, out, events, err := s.Manager.Guess(r.PathValue("id"), up)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundResponse{
		Round: view,
		Outcome: &outcomeView{
			Direction: req.Direction,
			WentUp:    out.WentUp,
			Correct:   out.Correct,
			Score:     out.Score,
			PrevDate:  out.PrevDate,
			PrevPrice: out.PrevPrice,
			Date:      out.Revealed.Date,
			Price:     out.Revealed.Price,
			Exhausted: out.Exhausted,
		},
		Events: events,
	})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	view, events, ended, err := s.Manager.End(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundResponse{Round: view, Ended: &ended, Events: events})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Manager.Summary(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.Manager.Len(),
	})
}

// handleStream sends a snapshot of the round, then every event until the
// round is discarded or the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	events, cancel, err := s.Manager.Subscribe(id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()
	view, err := s.Manager.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(map[string]interface{}{"type": "snapshot", "round": view}); err != nil {
		return
	}
	for e := range events {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(e); err != nil {
			log.Printf("[WARN] ws write for round %s: %v", id, err)
			return
		}
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "round closed"))
}

// StatusFor maps an error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, collector.ErrEmptySymbol), errors.Is(err, collector.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, collector.ErrNotFound), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, collector.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, collector.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, game.ErrInsufficientData), errors.Is(err, game.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrRoundNotActive):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	kind := collector.Kind(err)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		kind = "round_not_found"
	case errors.Is(err, game.ErrRoundNotActive):
		kind = "round_not_active"
	case errors.Is(err, game.ErrInsufficientData), errors.Is(err, game.ErrInsufficientHistory):
		kind = "insufficient_data"
	}
	if code >= 500 {
		log.Printf("[ERROR] %v", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}
