package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/f1-survivor/internal/usecase"
)

type raceResultPayload struct {
	CompetitorID  string `json:"competitor_id" validate:"required"`
	FinalPosition *int   `json:"final_position" validate:"omitempty,min=1"`
}

type roundResultsRequest struct {
	Results []raceResultPayload `json:"results" validate:"required,min=1,dive"`
}

type roundResultsResponse struct {
	RoundID          string `json:"round_id"`
	LeaguesProcessed int    `json:"leagues_processed"`
	PicksProcessed   int    `json:"picks_processed"`
	LivesLost        int    `json:"lives_lost"`
	Eliminations     int    `json:"eliminations"`
	SkippedNoResult  int    `json:"skipped_no_result"`
	SkippedRecorded  int    `json:"skipped_recorded"`
}

func (h *Handler) RunRoundResultsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRoundResultsJob")
	defer span.End()

	roundID := strings.TrimSpace(r.PathValue("roundID"))

	var req roundResultsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	results := make([]usecase.RaceResult, 0, len(req.Results))
	for _, item := range req.Results {
		results = append(results, usecase.RaceResult{
			CompetitorID:  item.CompetitorID,
			FinalPosition: item.FinalPosition,
		})
	}

	summary, err := h.eliminationService.ProcessRoundResults(ctx, roundID, results)
	if err != nil {
		h.logger.WarnContext(ctx, "round results job failed", "round_id", roundID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundResultsResponse{
		RoundID:          summary.RoundID,
		LeaguesProcessed: summary.LeaguesProcessed,
		PicksProcessed:   summary.PicksProcessed,
		LivesLost:        summary.LivesLost,
		Eliminations:     summary.Eliminations,
		SkippedNoResult:  summary.SkippedNoResult,
		SkippedRecorded:  summary.SkippedRecorded,
	})
}

type autoPickRunResponse struct {
	RoundID        string `json:"round_id"`
	LeaguesSwept   int    `json:"leagues_swept"`
	PicksAssigned  int    `json:"picks_assigned"`
	MembersCovered int    `json:"members_covered"`
}

func (h *Handler) RunAutoPickJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAutoPickJob")
	defer span.End()

	roundID := strings.TrimSpace(r.PathValue("roundID"))

	summary, err := h.autoPickService.RunForRound(ctx, roundID)
	if err != nil {
		h.logger.WarnContext(ctx, "auto pick job failed", "round_id", roundID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, autoPickRunResponse{
		RoundID:        summary.RoundID,
		LeaguesSwept:   summary.LeaguesSwept,
		PicksAssigned:  summary.PicksAssigned,
		MembersCovered: summary.MembersCovered,
	})
}

type backfillRoundPayload struct {
	RoundID string              `json:"round_id" validate:"required"`
	Results []raceResultPayload `json:"results" validate:"required,min=1,dive"`
}

type backfillRequest struct {
	Rounds     []backfillRoundPayload `json:"rounds" validate:"required,min=1,dive"`
	MaxWorkers int                    `json:"max_workers" validate:"omitempty,min=1"`
}

func (h *Handler) RunBackfillJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillJob")
	defer span.End()

	var req backfillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rounds := make([]usecase.BackfillRound, 0, len(req.Rounds))
	for _, item := range req.Rounds {
		results := make([]usecase.RaceResult, 0, len(item.Results))
		for _, result := range item.Results {
			results = append(results, usecase.RaceResult{
				CompetitorID:  result.CompetitorID,
				FinalPosition: result.FinalPosition,
			})
		}
		rounds = append(rounds, usecase.BackfillRound{
			RoundID: item.RoundID,
			Results: results,
		})
	}

	result, err := h.backfillService.Reprocess(ctx, usecase.BackfillInput{
		Rounds:     rounds,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "backfill job failed", "rounds", len(req.Rounds), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// InvalidateQualifyingCache drops the cached classification so the next read
// refetches, used after a stewards' decision changes the grid.
func (h *Handler) InvalidateQualifyingCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InvalidateQualifyingCache")
	defer span.End()

	roundID := strings.TrimSpace(r.PathValue("roundID"))
	if _, err := h.roundService.GetByID(ctx, roundID); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.qualifyingService.Invalidate(ctx, roundID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"round_id": roundID, "status": "invalidated"})
}
