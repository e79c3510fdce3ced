package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/usecase"
)

type leagueDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Season       string `json:"season"`
	Status       string `json:"status"`
	LivesEnabled bool   `json:"lives_enabled"`
	MaxLives     int    `json:"max_lives"`
}

type membershipDTO struct {
	UserID          string `json:"user_id"`
	LeagueID        string `json:"league_id"`
	Status          string `json:"status"`
	MaxLives        int    `json:"max_lives"`
	RemainingLives  int    `json:"remaining_lives"`
	LivesUsed       int    `json:"lives_used"`
	JoinedAtUTC     string `json:"joined_at_utc"`
	EliminatedAtUTC string `json:"eliminated_at_utc,omitempty"`
}

type lifeEventDTO struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	LeagueID      string `json:"league_id"`
	RoundID       string `json:"round_id,omitempty"`
	EventType     string `json:"event_type"`
	LivesBefore   int    `json:"lives_before"`
	LivesAfter    int    `json:"lives_after"`
	AdminUserID   string `json:"admin_user_id,omitempty"`
	AdminReason   string `json:"admin_reason,omitempty"`
	OccurredAtUTC string `json:"occurred_at_utc"`
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, item := range leagues {
		items = append(items, leagueToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	item, err := h.leagueService.GetLeague(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(ctx, item))
}

func (h *Handler) ListLeagueMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueMembers")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	members, err := h.leagueService.ListMembers(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list members failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]membershipDTO, 0, len(members))
	for _, membership := range members {
		items = append(items, membershipToDTO(ctx, membership))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMemberLifeEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMemberLifeEvents")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	userID := strings.TrimSpace(r.PathValue("userID"))

	events, err := h.leagueService.ListLifeEvents(ctx, userID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list life events failed", "user_id", userID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]lifeEventDTO, 0, len(events))
	for _, event := range events {
		items = append(items, lifeEventToDTO(ctx, event))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type restoreLifeRequest struct {
	AdminUserID string `json:"admin_user_id" validate:"required"`
	Reason      string `json:"reason" validate:"max=500"`
}

func (h *Handler) RestoreMemberLife(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RestoreMemberLife")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	userID := strings.TrimSpace(r.PathValue("userID"))

	var req restoreLifeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	membership, err := h.eliminationService.RestoreLife(ctx, usecase.RestoreLifeInput{
		UserID:      userID,
		LeagueID:    leagueID,
		AdminUserID: req.AdminUserID,
		Reason:      req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "restore life failed",
			"user_id", userID,
			"league_id", leagueID,
			"admin_user_id", req.AdminUserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, membershipToDTO(ctx, membership))
}

func leagueToDTO(ctx context.Context, item league.League) leagueDTO {
	ctx, span := startSpan(ctx, "httpapi.leagueToDTO")
	defer span.End()

	return leagueDTO{
		ID:           item.ID,
		Name:         item.Name,
		Season:       item.Season,
		Status:       item.Status,
		LivesEnabled: item.LivesEnabled,
		MaxLives:     item.MaxLives,
	}
}

func membershipToDTO(ctx context.Context, item member.Membership) membershipDTO {
	ctx, span := startSpan(ctx, "httpapi.membershipToDTO")
	defer span.End()

	out := membershipDTO{
		UserID:         item.UserID,
		LeagueID:       item.LeagueID,
		Status:         item.Status,
		MaxLives:       item.MaxLives,
		RemainingLives: item.RemainingLives,
		LivesUsed:      item.LivesUsed,
		JoinedAtUTC:    item.JoinedAt.UTC().Format(time.RFC3339),
	}
	if item.EliminatedAt != nil {
		out.EliminatedAtUTC = item.EliminatedAt.UTC().Format(time.RFC3339)
	}

	return out
}

func lifeEventToDTO(ctx context.Context, event member.LifeEvent) lifeEventDTO {
	ctx, span := startSpan(ctx, "httpapi.lifeEventToDTO")
	defer span.End()

	return lifeEventDTO{
		ID:            event.ID,
		UserID:        event.UserID,
		LeagueID:      event.LeagueID,
		RoundID:       event.RoundID,
		EventType:     event.EventType,
		LivesBefore:   event.LivesBefore,
		LivesAfter:    event.LivesAfter,
		AdminUserID:   event.AdminUserID,
		AdminReason:   event.AdminReason,
		OccurredAtUTC: event.OccurredAt.UTC().Format(time.RFC3339),
	}
}
