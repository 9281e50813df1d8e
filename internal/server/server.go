// Package server exposes the latest scored snapshot over HTTP: a read-only
// score table, a rescoring endpoint, Prometheus metrics, and a websocket
// feed of run summaries.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"defi-credit-scorer/internal/ingestion"
	"defi-credit-scorer/internal/observability"
	"defi-credit-scorer/internal/pipeline"
	"defi-credit-scorer/internal/storage"
)

// Server serves scoring results and accepts rescoring requests.
type Server struct {
	scoreStore storage.ScoreStore
	runner     *pipeline.Runner
	metrics    *observability.Metrics
	logger     zerolog.Logger
	hub        *hub
}

// New creates a server over the given store and pipeline runner.
func New(scoreStore storage.ScoreStore, runner *pipeline.Runner, metrics *observability.Metrics, logger zerolog.Logger) *Server {
	return &Server{
		scoreStore: scoreStore,
		runner:     runner,
		metrics:    metrics,
		logger:     logger,
		hub:        newHub(logger),
	}
}

// Routes builds the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /scores", s.handleScores)
	mux.HandleFunc("GET /scores/{wallet}", s.handleScore)
	mux.HandleFunc("POST /runs", s.handleRun)
	mux.HandleFunc("GET /ws", s.hub.handleWS)
	mux.Handle("GET /metrics", observability.Handler())
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, "/healthz", http.StatusOK, map[string]string{"status": "ok"})
}

// handleScores returns all scores of the latest run in first-seen order.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.scoreStore.GetAll(r.Context())
	if err != nil {
		s.writeError(w, "/scores", http.StatusInternalServerError, err)
		return
	}
	batchID, err := s.scoreStore.BatchID(r.Context())
	if err != nil {
		s.writeError(w, "/scores", http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, "/scores", http.StatusOK, map[string]any{
		"batch_id": batchID,
		"scores":   scores,
	})
}

// handleScore returns one wallet's score.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	wallet := r.PathValue("wallet")
	score, err := s.scoreStore.GetByWallet(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, "/scores/{wallet}", http.StatusNotFound, err)
			return
		}
		s.writeError(w, "/scores/{wallet}", http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, "/scores/{wallet}", http.StatusOK, score)
}

// runSummary is the response body for POST /runs and the websocket payload.
type runSummary struct {
	BatchID          string `json:"batch_id"`
	TransactionsIn   int    `json:"transactions_in"`
	RecordsSkipped   int    `json:"records_skipped"`
	MalformedAmounts int    `json:"malformed_amounts"`
	WalletsScored    int    `json:"wallets_scored"`
	DurationMs       int64  `json:"duration_ms"`
}

// handleRun ingests a raw transaction export from the request body, runs a
// full scoring pass, and replaces the snapshot.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	txs, stats, err := ingestion.Decode(r.Body)
	if err != nil {
		s.writeError(w, "/runs", http.StatusBadRequest, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordIngestion(len(txs), stats.Skipped)
	}

	result, err := s.runner.Run(r.Context(), txs)
	if err != nil {
		s.writeError(w, "/runs", http.StatusInternalServerError, err)
		return
	}

	summary := runSummary{
		BatchID:          result.BatchID,
		TransactionsIn:   result.TransactionsIn,
		RecordsSkipped:   stats.Skipped,
		MalformedAmounts: result.MalformedAmounts,
		WalletsScored:    result.WalletsScored,
		DurationMs:       result.Duration.Milliseconds(),
	}
	s.hub.broadcast(summary)
	s.writeJSON(w, "/runs", http.StatusOK, summary)
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, status int, body any) {
	if s.metrics != nil {
		s.metrics.HTTPRequests.WithLabelValues(endpoint, http.StatusText(status)).Inc()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, err error) {
	s.logger.Warn().Err(err).Str("endpoint", endpoint).Int("status", status).Msg("request failed")
	s.writeJSON(w, endpoint, status, map[string]string{"error": err.Error()})
}
