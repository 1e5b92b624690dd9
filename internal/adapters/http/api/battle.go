// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/arena/internal/domain/pairing"
	"github.com/okian/arena/internal/domain/types"
)

// BattleDependencies defines the interface for opening battle sessions.
type BattleDependencies interface {
	DrawBattle(ctx context.Context) (types.BattleView, error)
}

// BattleHandler handles battle draw requests.
type BattleHandler struct {
	deps BattleDependencies
}

// NewBattleHandler creates a new battle handler.
func NewBattleHandler(deps BattleDependencies) *BattleHandler {
	return &BattleHandler{deps: deps}
}

// HandleGetBattle handles GET /api/battle requests. The response carries
// positional contestant handles only; model identity stays server-side
// until the vote lands.
func (h *BattleHandler) HandleGetBattle(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_battle"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.DrawBattle(r.Context())
	if err != nil {
		if errors.Is(err, pairing.ErrNoEligibleCategory) {
			writeError(w, http.StatusConflict, "no_battles_available", Wrap(op, err))
			return
		}
		writeStateError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
