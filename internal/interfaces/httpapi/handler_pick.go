package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	"github.com/riskibarqy/f1-survivor/internal/usecase"
)

type submitPickRequest struct {
	UserID         string `json:"user_id" validate:"required"`
	LeagueID       string `json:"league_id" validate:"required"`
	RoundID        string `json:"round_id" validate:"required"`
	CompetitorID   string `json:"competitor_id" validate:"required"`
	CompetitorName string `json:"competitor_name" validate:"max=100"`
	TeamName       string `json:"team_name" validate:"max=100"`
}

type pickDTO struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	LeagueID       string `json:"league_id"`
	RoundID        string `json:"round_id"`
	CompetitorID   string `json:"competitor_id"`
	CompetitorName string `json:"competitor_name,omitempty"`
	TeamName       string `json:"team_name,omitempty"`
	IsAutoPick     bool   `json:"is_auto_pick"`
	SubmittedAtUTC string `json:"submitted_at_utc"`
}

func (h *Handler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPick")
	defer span.End()

	var req submitPickRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.pickService.Submit(ctx, usecase.SubmitPickInput{
		UserID:         req.UserID,
		LeagueID:       req.LeagueID,
		RoundID:        req.RoundID,
		CompetitorID:   req.CompetitorID,
		CompetitorName: req.CompetitorName,
		TeamName:       req.TeamName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit pick failed",
			"user_id", req.UserID,
			"league_id", req.LeagueID,
			"round_id", req.RoundID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickToDTO(ctx, item))
}

func (h *Handler) ListMemberPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMemberPicks")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	userID := strings.TrimSpace(r.PathValue("userID"))

	items, err := h.pickService.ListByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks failed", "user_id", userID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]pickDTO, 0, len(items))
	for _, item := range items {
		out = append(out, pickToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func pickToDTO(ctx context.Context, item pick.Pick) pickDTO {
	ctx, span := startSpan(ctx, "httpapi.pickToDTO")
	defer span.End()

	return pickDTO{
		ID:             item.ID,
		UserID:         item.UserID,
		LeagueID:       item.LeagueID,
		RoundID:        item.RoundID,
		CompetitorID:   item.CompetitorID,
		CompetitorName: item.CompetitorName,
		TeamName:       item.TeamName,
		IsAutoPick:     item.IsAutoPick,
		SubmittedAtUTC: item.SubmittedAt.UTC().Format(time.RFC3339),
	}
}
