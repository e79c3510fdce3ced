package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	idgen "github.com/riskibarqy/f1-survivor/internal/platform/id"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	// survivalThreshold is the worst race finish that still keeps a life.
	survivalThreshold = 10
	// eliminationMaxLeagueWorkers bounds the per-league fan-out so a round
	// with many leagues cannot stampede the stores.
	eliminationMaxLeagueWorkers = 2
)

// RaceResult is one driver's classified race outcome. FinalPosition is nil
// when the driver did not classify; that counts as a life loss.
type RaceResult struct {
	CompetitorID  string
	FinalPosition *int
}

// Survived reports whether the result keeps the picking member's life.
func (r RaceResult) Survived() bool {
	return r.FinalPosition != nil && *r.FinalPosition <= survivalThreshold
}

// LifeEventNotification is the outbound payload published after a lives
// transition.
type LifeEventNotification struct {
	EventType      string    `json:"event_type"`
	UserID         string    `json:"user_id"`
	LeagueID       string    `json:"league_id"`
	RoundID        string    `json:"round_id"`
	CompetitorID   string    `json:"competitor_id,omitempty"`
	RemainingLives int       `json:"remaining_lives"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// EliminationNotifier publishes life events to interested consumers.
// Publishing is best effort: failures are logged, never surfaced.
type EliminationNotifier interface {
	PublishLifeEvent(ctx context.Context, event LifeEventNotification) error
}

// RoundProcessingSummary aggregates what a results run did.
type RoundProcessingSummary struct {
	RoundID          string
	LeaguesProcessed int
	PicksProcessed   int
	LivesLost        int
	Eliminations     int
	SkippedNoResult  int
	SkippedRecorded  int
}

// EliminationService applies race results to survivor leagues: members whose
// pick finished outside the survival cutoff lose a life, members reaching
// zero are eliminated, and a league drops to completed once at most one
// active member remains. Reprocessing a round is a no-op because every loss
// is recorded as a life event keyed by (user, league, round).
type EliminationService struct {
	leagueRepo league.Repository
	memberRepo member.Repository
	pickRepo   pick.Repository
	notifier   EliminationNotifier
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
	maxWorkers int
}

func NewEliminationService(
	leagueRepo league.Repository,
	memberRepo member.Repository,
	pickRepo pick.Repository,
	notifier EliminationNotifier,
	idGen idgen.Generator,
	logger *logging.Logger,
) *EliminationService {
	if logger == nil {
		logger = logging.Default()
	}

	return &EliminationService{
		leagueRepo: leagueRepo,
		memberRepo: memberRepo,
		pickRepo:   pickRepo,
		notifier:   notifier,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
		maxWorkers: eliminationMaxLeagueWorkers,
	}
}

// ProcessRoundResults fans race results out across every lives-enabled
// league. Leagues are processed concurrently; picks within a league are
// processed in order. Store failures do not stop the batch, they are
// collected and returned after every league finished.
func (s *EliminationService) ProcessRoundResults(ctx context.Context, roundID string, results []RaceResult) (RoundProcessingSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EliminationService.ProcessRoundResults")
	defer span.End()

	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return RoundProcessingSummary{}, fmt.Errorf("%w: round_id is required", ErrInvalidInput)
	}

	resultByCompetitor := make(map[string]RaceResult, len(results))
	for _, result := range results {
		if strings.TrimSpace(result.CompetitorID) == "" {
			return RoundProcessingSummary{}, fmt.Errorf("%w: race result competitor_id is required", ErrInvalidInput)
		}
		resultByCompetitor[result.CompetitorID] = result
	}

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return RoundProcessingSummary{}, fmt.Errorf("list leagues: %w", err)
	}

	summary := RoundProcessingSummary{RoundID: roundID}
	var (
		mu        sync.Mutex
		runErrors []error
	)

	workers := pool.New().WithMaxGoroutines(s.maxWorkers)
	for _, item := range leagues {
		if !item.LivesEnabled {
			continue
		}

		currentLeague := item
		workers.Go(func() {
			leagueSummary, leagueErr := s.processLeague(ctx, currentLeague, roundID, resultByCompetitor)

			mu.Lock()
			defer mu.Unlock()
			summary.LeaguesProcessed++
			summary.PicksProcessed += leagueSummary.PicksProcessed
			summary.LivesLost += leagueSummary.LivesLost
			summary.Eliminations += leagueSummary.Eliminations
			summary.SkippedNoResult += leagueSummary.SkippedNoResult
			summary.SkippedRecorded += leagueSummary.SkippedRecorded
			if leagueErr != nil {
				runErrors = append(runErrors, fmt.Errorf("league %s: %w", currentLeague.ID, leagueErr))
			}
		})
	}
	workers.Wait()

	s.logger.InfoContext(ctx, "round results processed",
		"round_id", roundID,
		"leagues", summary.LeaguesProcessed,
		"picks", summary.PicksProcessed,
		"lives_lost", summary.LivesLost,
		"eliminations", summary.Eliminations,
	)

	return summary, errors.Join(runErrors...)
}

func (s *EliminationService) processLeague(ctx context.Context, currentLeague league.League, roundID string, results map[string]RaceResult) (RoundProcessingSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EliminationService.processLeague")
	defer span.End()

	picks, err := s.pickRepo.ListByLeagueAndRound(ctx, currentLeague.ID, roundID)
	if err != nil {
		return RoundProcessingSummary{}, fmt.Errorf("list round picks: %w", err)
	}

	var (
		summary   RoundProcessingSummary
		runErrors []error
	)
	for _, item := range picks {
		result, ok := results[item.CompetitorID]
		if !ok {
			s.logger.WarnContext(ctx, "no race result for picked competitor",
				"league_id", currentLeague.ID,
				"round_id", roundID,
				"user_id", item.UserID,
				"competitor_id", item.CompetitorID,
			)
			summary.SkippedNoResult++
			continue
		}

		summary.PicksProcessed++
		if result.Survived() {
			continue
		}

		outcome, err := s.applyLifeLoss(ctx, currentLeague, item, roundID)
		if err != nil {
			runErrors = append(runErrors, fmt.Errorf("apply life loss for user %s: %w", item.UserID, err))
			continue
		}
		switch outcome {
		case member.EventLifeLost:
			summary.LivesLost++
		case member.EventFinalElimination:
			summary.LivesLost++
			summary.Eliminations++
		case "":
			summary.SkippedRecorded++
		}
	}

	return summary, errors.Join(runErrors...)
}

// applyLifeLoss deducts one life and returns the event type it recorded, or
// an empty string when the loss was already recorded or the member is out.
func (s *EliminationService) applyLifeLoss(ctx context.Context, currentLeague league.League, item pick.Pick, roundID string) (string, error) {
	membership, exists, err := s.memberRepo.GetByUserAndLeague(ctx, item.UserID, currentLeague.ID)
	if err != nil {
		return "", fmt.Errorf("get membership: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: membership for user %s in league %s", ErrNotFound, item.UserID, currentLeague.ID)
	}

	if membership.RemainingLives <= 0 {
		s.logger.DebugContext(ctx, "member already eliminated, skipping life loss",
			"user_id", item.UserID,
			"league_id", currentLeague.ID,
			"round_id", roundID,
		)
		return "", nil
	}

	recorded, err := s.memberRepo.HasLossEvent(ctx, item.UserID, currentLeague.ID, roundID)
	if err != nil {
		return "", fmt.Errorf("check life event: %w", err)
	}
	if recorded {
		s.logger.DebugContext(ctx, "life loss already recorded for round",
			"user_id", item.UserID,
			"league_id", currentLeague.ID,
			"round_id", roundID,
		)
		return "", nil
	}

	now := s.now().UTC()
	livesBefore := membership.RemainingLives
	membership.RemainingLives--
	membership.LivesUsed = membership.MaxLives - membership.RemainingLives
	membership.UpdatedAt = now

	eventType := member.EventLifeLost
	if membership.RemainingLives == 0 {
		eventType = member.EventFinalElimination
		membership.Status = member.StatusEliminated
		eliminatedAt := now
		membership.EliminatedAt = &eliminatedAt
	}

	if err := membership.Validate(); err != nil {
		return "", fmt.Errorf("membership after life loss: %w", err)
	}
	if err := s.memberRepo.Update(ctx, membership); err != nil {
		return "", fmt.Errorf("update membership: %w", err)
	}

	eventID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate life event id: %w", err)
	}
	event := member.LifeEvent{
		ID:          eventID,
		UserID:      item.UserID,
		LeagueID:    currentLeague.ID,
		RoundID:     roundID,
		EventType:   eventType,
		LivesBefore: livesBefore,
		LivesAfter:  membership.RemainingLives,
		OccurredAt:  now,
	}
	if err := s.memberRepo.AppendLifeEvent(ctx, event); err != nil {
		return "", fmt.Errorf("append life event: %w", err)
	}

	s.publishLifeEvent(ctx, LifeEventNotification{
		EventType:      eventType,
		UserID:         item.UserID,
		LeagueID:       currentLeague.ID,
		RoundID:        roundID,
		CompetitorID:   item.CompetitorID,
		RemainingLives: membership.RemainingLives,
		OccurredAt:     now,
	})

	if eventType == member.EventFinalElimination {
		if err := s.refreshLeagueStatus(ctx, currentLeague); err != nil {
			return eventType, fmt.Errorf("refresh league status: %w", err)
		}
	}

	return eventType, nil
}

type RestoreLifeInput struct {
	UserID      string
	LeagueID    string
	AdminUserID string
	Reason      string
}

// RestoreLife grants one life back, capped at the league's maximum. The
// member returns to active and the restoration is recorded with the acting
// admin for the audit trail.
func (s *EliminationService) RestoreLife(ctx context.Context, input RestoreLifeInput) (member.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EliminationService.RestoreLife")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.AdminUserID = strings.TrimSpace(input.AdminUserID)
	if input.UserID == "" || input.LeagueID == "" {
		return member.Membership{}, fmt.Errorf("%w: user_id and league_id are required", ErrInvalidInput)
	}
	if input.AdminUserID == "" {
		return member.Membership{}, fmt.Errorf("%w: admin_user_id is required", ErrInvalidInput)
	}

	currentLeague, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return member.Membership{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return member.Membership{}, fmt.Errorf("%w: league %s", ErrNotFound, input.LeagueID)
	}

	membership, exists, err := s.memberRepo.GetByUserAndLeague(ctx, input.UserID, input.LeagueID)
	if err != nil {
		return member.Membership{}, fmt.Errorf("get membership: %w", err)
	}
	if !exists {
		return member.Membership{}, fmt.Errorf("%w: membership for user %s in league %s", ErrNotFound, input.UserID, input.LeagueID)
	}
	now := s.now().UTC()
	livesBefore := membership.RemainingLives
	// Restoring at full lives keeps the count capped but still forces the
	// member active and records the event.
	if membership.RemainingLives < membership.MaxLives {
		membership.RemainingLives++
	}
	membership.LivesUsed = membership.MaxLives - membership.RemainingLives
	membership.Status = member.StatusActive
	membership.EliminatedAt = nil
	membership.UpdatedAt = now

	if err := membership.Validate(); err != nil {
		return member.Membership{}, fmt.Errorf("membership after restore: %w", err)
	}
	if err := s.memberRepo.Update(ctx, membership); err != nil {
		return member.Membership{}, fmt.Errorf("update membership: %w", err)
	}

	eventID, err := s.idGen.NewID()
	if err != nil {
		return member.Membership{}, fmt.Errorf("generate life event id: %w", err)
	}
	event := member.LifeEvent{
		ID:          eventID,
		UserID:      input.UserID,
		LeagueID:    input.LeagueID,
		EventType:   member.EventLifeRestored,
		LivesBefore: livesBefore,
		LivesAfter:  membership.RemainingLives,
		AdminUserID: input.AdminUserID,
		AdminReason: strings.TrimSpace(input.Reason),
		OccurredAt:  now,
	}
	if err := s.memberRepo.AppendLifeEvent(ctx, event); err != nil {
		return member.Membership{}, fmt.Errorf("append life event: %w", err)
	}

	s.publishLifeEvent(ctx, LifeEventNotification{
		EventType:      member.EventLifeRestored,
		UserID:         input.UserID,
		LeagueID:       input.LeagueID,
		RemainingLives: membership.RemainingLives,
		OccurredAt:     now,
	})

	if err := s.refreshLeagueStatus(ctx, currentLeague); err != nil {
		return membership, fmt.Errorf("refresh league status: %w", err)
	}

	s.logger.InfoContext(ctx, "life restored",
		"user_id", input.UserID,
		"league_id", input.LeagueID,
		"admin_user_id", input.AdminUserID,
		"remaining_lives", membership.RemainingLives,
	)

	return membership, nil
}

// refreshLeagueStatus recomputes the league status from active member
// count: one survivor or fewer completes the league, a restoration that
// brings the count back up reopens it.
func (s *EliminationService) refreshLeagueStatus(ctx context.Context, currentLeague league.League) error {
	members, err := s.memberRepo.ListByLeague(ctx, currentLeague.ID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	activeCount := 0
	lastActiveUserID := ""
	for _, membership := range members {
		if membership.Status == member.StatusActive {
			activeCount++
			lastActiveUserID = membership.UserID
		}
	}

	status := league.StatusActive
	if activeCount <= 1 {
		status = league.StatusCompleted
	}
	if status == currentLeague.Status {
		return nil
	}

	if err := s.leagueRepo.UpdateStatus(ctx, currentLeague.ID, status); err != nil {
		return fmt.Errorf("update league status: %w", err)
	}

	if status == league.StatusCompleted {
		s.logger.InfoContext(ctx, "survivor league completed",
			"league_id", currentLeague.ID,
			"active_members", activeCount,
			"winner_user_id", lastActiveUserID,
		)
	} else {
		s.logger.InfoContext(ctx, "survivor league reopened", "league_id", currentLeague.ID)
	}

	return nil
}

func (s *EliminationService) publishLifeEvent(ctx context.Context, event LifeEventNotification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishLifeEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "life event notification failed",
			"event_type", event.EventType,
			"user_id", event.UserID,
			"league_id", event.LeagueID,
			"error", err,
		)
	}
}
