// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/leaderboard"
	"github.com/okian/arena/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Leaderboard returns the full public standings.
	Leaderboard(ctx context.Context) (types.LeaderboardView, error)

	// DrawBattle opens an anonymized battle session.
	DrawBattle(ctx context.Context) (types.BattleView, error)

	// Vote settles a battle session exactly once.
	Vote(ctx context.Context, battleID, winner string, draw bool) (types.VoteResult, error)

	// Rank returns the standing of a single model.
	Rank(ctx context.Context, modelID string) (leaderboard.Entry, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = leaderboard.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	battleHandler      *BattleHandler
	resultHandler      *ResultHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		battleHandler:      NewBattleHandler(deps),
		resultHandler:      NewResultHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		rankHandler:        NewRankHandler(deps),
		dashboardHandler:   newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/battle", MetricsMiddleware(s.battleHandler.HandleGetBattle, "battle"))
	mux.HandleFunc("/api/battle_result", MetricsMiddleware(s.resultHandler.HandlePostResult, "battle_result"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

// resultRequest mirrors the OpenAPI schema for POST /api/battle_result.
type resultRequest struct {
	BattleID string `json:"battle_id"`
	Winner   string `json:"winner,omitempty"`
	Draw     bool   `json:"draw,omitempty"`
}

func (r resultRequest) validate() error {
	switch {
	case strings.TrimSpace(r.BattleID) == "":
		return errors.New("missing battle_id")
	case r.Draw && strings.TrimSpace(r.Winner) != "":
		return errors.New("winner and draw are mutually exclusive")
	case !r.Draw && strings.TrimSpace(r.Winner) == "":
		return errors.New("either winner or draw is required")
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStateError maps rating-store failures to HTTP statuses shared by
// every handler that reads or writes durable state.
func writeStateError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrLockTimeout):
		writeError(w, http.StatusServiceUnavailable, "lock_timeout", Wrap(op, err))
	case errors.Is(err, repository.ErrStateCorrupt):
		writeError(w, http.StatusInternalServerError, "state_corrupt", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// NewKind tags a sentinel kind with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind attaches both an operation and a sentinel kind to a cause.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap tags an upstream error with the operation that observed it.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
