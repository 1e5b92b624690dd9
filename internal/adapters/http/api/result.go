// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/arena/internal/app"
	"github.com/okian/arena/internal/domain/session"
	"github.com/okian/arena/internal/domain/types"
	"github.com/okian/arena/pkg/metrics"
)

// ResultDependencies defines the interface for settling battle sessions.
type ResultDependencies interface {
	Vote(ctx context.Context, battleID, winner string, draw bool) (types.VoteResult, error)
}

// ResultHandler handles battle result requests.
type ResultHandler struct {
	deps ResultDependencies
}

// NewResultHandler creates a new result handler.
func NewResultHandler(deps ResultDependencies) *ResultHandler {
	return &ResultHandler{deps: deps}
}

// HandlePostResult handles POST /api/battle_result requests. A battle id
// settles exactly once; replays and expired sessions come back 404.
func (h *ResultHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_result"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordVoteRejected("malformed")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		metrics.RecordVoteRejected("malformed")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.Vote(r.Context(), req.BattleID, req.Winner, req.Draw)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "battle_not_found", Wrap(op, err))
		case errors.Is(err, service.ErrInvalidWinner):
			writeError(w, http.StatusBadRequest, "invalid_winner", WrapKind(op, ErrBadRequest, err))
		default:
			writeStateError(w, op, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
