package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/qualifying"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
)

type roundDTO struct {
	ID              string `json:"id"`
	Season          string `json:"season"`
	Name            string `json:"name"`
	Circuit         string `json:"circuit,omitempty"`
	QualifyingAtUTC string `json:"qualifying_at_utc"`
	RaceAtUTC       string `json:"race_at_utc"`
	PickDeadlineUTC string `json:"pick_deadline_utc,omitempty"`
	Status          string `json:"status"`
	PicksOpen       bool   `json:"picks_open"`
}

type qualifyingEntryDTO struct {
	CompetitorID   string   `json:"competitor_id"`
	CompetitorName string   `json:"competitor_name"`
	TeamName       string   `json:"team_name,omitempty"`
	Position       int      `json:"position"`
	BestLapSeconds *float64 `json:"best_lap_seconds,omitempty"`
}

type qualifyingSnapshotDTO struct {
	RoundID      string               `json:"round_id"`
	Entries      []qualifyingEntryDTO `json:"entries"`
	Fallback     bool                 `json:"fallback"`
	FetchedAtUTC string               `json:"fetched_at_utc"`
}

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds")
	defer span.End()

	items, err := h.roundService.List(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list rounds failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]roundDTO, 0, len(items))
	for _, item := range items {
		out = append(out, h.roundToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentRound")
	defer span.End()

	item, err := h.roundService.Current(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.roundToDTO(ctx, item))
}

func (h *Handler) GetRoundQualifying(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoundQualifying")
	defer span.End()

	roundID := strings.TrimSpace(r.PathValue("roundID"))
	item, err := h.roundService.GetByID(ctx, roundID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshot := h.qualifyingService.Classification(ctx, item)
	writeSuccess(ctx, w, http.StatusOK, qualifyingToDTO(ctx, snapshot))
}

func (h *Handler) roundToDTO(ctx context.Context, item round.Round) roundDTO {
	ctx, span := startSpan(ctx, "httpapi.roundToDTO")
	defer span.End()

	out := roundDTO{
		ID:              item.ID,
		Season:          item.Season,
		Name:            item.Name,
		Circuit:         item.Circuit,
		QualifyingAtUTC: item.QualifyingAt.UTC().Format(time.RFC3339),
		RaceAtUTC:       item.RaceAt.UTC().Format(time.RFC3339),
		Status:          item.Status,
		PicksOpen:       h.pickService.CanChange(ctx, item.ID),
	}
	if item.PickDeadline != nil {
		out.PickDeadlineUTC = item.PickDeadline.UTC().Format(time.RFC3339)
	}

	return out
}

func qualifyingToDTO(ctx context.Context, snapshot qualifying.Snapshot) qualifyingSnapshotDTO {
	ctx, span := startSpan(ctx, "httpapi.qualifyingToDTO")
	defer span.End()

	entries := make([]qualifyingEntryDTO, 0, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		entries = append(entries, qualifyingEntryDTO{
			CompetitorID:   entry.CompetitorID,
			CompetitorName: entry.CompetitorName,
			TeamName:       entry.TeamName,
			Position:       entry.Position,
			BestLapSeconds: entry.BestLapSeconds,
		})
	}

	return qualifyingSnapshotDTO{
		RoundID:      snapshot.RoundID,
		Entries:      entries,
		Fallback:     snapshot.Fallback,
		FetchedAtUTC: snapshot.FetchedAt.UTC().Format(time.RFC3339),
	}
}
