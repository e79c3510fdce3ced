package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
)

type BackfillRound struct {
	RoundID string
	Results []RaceResult
}

type BackfillInput struct {
	Rounds     []BackfillRound
	MaxWorkers int
}

type BackfillResult struct {
	RoundCount   int                  `json:"round_count"`
	SuccessCount int                  `json:"success_count"`
	FailedCount  int                  `json:"failed_count"`
	WorkerCount  int                  `json:"worker_count"`
	Rounds       []BackfillRoundResult `json:"rounds"`
}

type BackfillRoundResult struct {
	RoundID      string `json:"round_id"`
	Status       string `json:"status"`
	Picks        int    `json:"picks"`
	LivesLost    int    `json:"lives_lost"`
	Eliminations int    `json:"eliminations"`
	DurationMs   int64  `json:"duration_ms"`
	Message      string `json:"message,omitempty"`
}

const (
	backfillStatusSuccess = "success"
	backfillStatusFailed  = "failed"
)

// BackfillService replays race results for past rounds, typically after a
// stewards' decision reorders a classification. Replays are safe because the
// elimination engine never deducts the same (user, league, round) loss
// twice.
type BackfillService struct {
	eliminations *EliminationService
	logger       *logging.Logger
}

func NewBackfillService(eliminations *EliminationService, logger *logging.Logger) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BackfillService{
		eliminations: eliminations,
		logger:       logger,
	}
}

// Reprocess runs the elimination engine over every given round on a bounded
// worker pool.
func (s *BackfillService) Reprocess(ctx context.Context, input BackfillInput) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.Reprocess")
	defer span.End()

	seen := make(map[string]struct{}, len(input.Rounds))
	for _, item := range input.Rounds {
		roundID := strings.TrimSpace(item.RoundID)
		if roundID == "" {
			return BackfillResult{}, fmt.Errorf("%w: round_id is required for every round", ErrInvalidInput)
		}
		if _, dup := seen[roundID]; dup {
			return BackfillResult{}, fmt.Errorf("%w: round %s appears more than once", ErrInvalidInput, roundID)
		}
		seen[roundID] = struct{}{}
	}

	workerCount := normalizeBackfillWorkerCount(input.MaxWorkers, len(input.Rounds))
	result := BackfillResult{
		RoundCount:  len(input.Rounds),
		WorkerCount: workerCount,
		Rounds:      make([]BackfillRoundResult, 0, len(input.Rounds)),
	}
	if len(input.Rounds) == 0 {
		return result, nil
	}

	rows := make(chan BackfillRoundResult, len(input.Rounds))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, item := range input.Rounds {
		task := item
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BackfillRoundResult{RoundID: strings.TrimSpace(task.RoundID)}

			summary, runErr := s.eliminations.ProcessRoundResults(ctx, row.RoundID, task.Results)
			row.Picks = summary.PicksProcessed
			row.LivesLost = summary.LivesLost
			row.Eliminations = summary.Eliminations
			row.DurationMs = time.Since(start).Milliseconds()
			if runErr != nil {
				row.Status = backfillStatusFailed
				row.Message = runErr.Error()
				failedCount.Add(1)
			} else {
				row.Status = backfillStatusSuccess
				successCount.Add(1)
			}

			rows <- row
		}); err != nil {
			workers.Done()
			return BackfillResult{}, fmt.Errorf("submit round to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Rounds = append(result.Rounds, row)
	}
	sort.SliceStable(result.Rounds, func(i, j int) bool {
		return result.Rounds[i].RoundID < result.Rounds[j].RoundID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "round backfill finished",
		"rounds", result.RoundCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"workers", result.WorkerCount,
	)

	return result, nil
}

func normalizeBackfillWorkerCount(value int, roundCount int) int {
	if roundCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > 2 {
		value = 2
	}
	if value > roundCount {
		value = roundCount
	}
	return value
}
