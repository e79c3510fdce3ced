package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	"github.com/riskibarqy/f1-survivor/internal/domain/qualifying"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	idgen "github.com/riskibarqy/f1-survivor/internal/platform/id"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
)

// autoPickTargetPosition is the preferred grid slot for an automatic pick.
// P15 qualifiers historically finish inside the survival cutoff often
// enough while rarely being a driver the user saved for later.
const autoPickTargetPosition = 15

// SelectFromClassification returns the auto-pick driver from a ranked
// classification, skipping drivers in used. Preference order is the target
// slot, then further back on the grid, then forward from the target.
func SelectFromClassification(entries []qualifying.Entry, used map[string]struct{}) (qualifying.Entry, bool) {
	byPosition := make(map[int]qualifying.Entry, len(entries))
	maxPosition := 0
	for _, entry := range entries {
		byPosition[entry.Position] = entry
		if entry.Position > maxPosition {
			maxPosition = entry.Position
		}
	}

	for _, position := range selectionOrder(maxPosition) {
		entry, ok := byPosition[position]
		if !ok {
			continue
		}
		if _, taken := used[entry.CompetitorID]; taken {
			continue
		}
		return entry, true
	}

	return qualifying.Entry{}, false
}

func selectionOrder(maxPosition int) []int {
	if maxPosition < autoPickTargetPosition {
		maxPosition = qualifying.GridSize
	}

	order := make([]int, 0, maxPosition)
	order = append(order, autoPickTargetPosition)
	for position := autoPickTargetPosition + 1; position <= maxPosition; position++ {
		order = append(order, position)
	}
	for position := autoPickTargetPosition - 1; position >= 1; position-- {
		order = append(order, position)
	}

	return order
}

// AutoPickService assigns picks to users who missed the deadline. Selection
// avoids drivers the user already burned in earlier rounds; when every
// driver is burned the fallback pool decides, surfacing
// ErrNoEligibleCompetitor so callers can log the exhaustion.
type AutoPickService struct {
	leagueRepo league.Repository
	memberRepo member.Repository
	roundRepo  round.Repository
	pickRepo   pick.Repository
	qualifying *QualifyingService
	pool       qualifying.FallbackPool
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewAutoPickService(
	leagueRepo league.Repository,
	memberRepo member.Repository,
	roundRepo round.Repository,
	pickRepo pick.Repository,
	qualifyingService *QualifyingService,
	pool qualifying.FallbackPool,
	idGen idgen.Generator,
	logger *logging.Logger,
) *AutoPickService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AutoPickService{
		leagueRepo: leagueRepo,
		memberRepo: memberRepo,
		roundRepo:  roundRepo,
		pickRepo:   pickRepo,
		qualifying: qualifyingService,
		pool:       pool,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// Select resolves the driver an auto pick would use for the user, without
// persisting anything.
func (s *AutoPickService) Select(ctx context.Context, userID, leagueID string, item round.Round) (qualifying.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AutoPickService.Select")
	defer span.End()

	used, err := s.usedCompetitors(ctx, userID, leagueID, item.ID)
	if err != nil {
		return qualifying.Entry{}, err
	}

	snapshot := s.qualifying.Classification(ctx, item)
	if entry, ok := SelectFromClassification(snapshot.Entries, used); ok {
		return entry, nil
	}

	// Every driver on the grid is burned; hand out the deterministic
	// fallback driver even if it repeats an earlier pick.
	entry, ok := s.pool.Choose(item.Season, item.ID)
	if !ok {
		return qualifying.Entry{}, fmt.Errorf("%w: fallback pool is empty", ErrNoEligibleCompetitor)
	}

	return entry, fmt.Errorf("%w: every classified driver already used by user %s", ErrNoEligibleCompetitor, userID)
}

// Apply persists an auto pick for the user unless a pick already exists for
// the round. It reports whether a new pick was created.
func (s *AutoPickService) Apply(ctx context.Context, userID, leagueID, roundID string) (pick.Pick, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AutoPickService.Apply")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	roundID = strings.TrimSpace(roundID)
	if userID == "" || leagueID == "" || roundID == "" {
		return pick.Pick{}, false, fmt.Errorf("%w: user_id, league_id and round_id are required", ErrInvalidInput)
	}

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return pick.Pick{}, false, fmt.Errorf("%w: round %s", ErrNotFound, roundID)
	}

	existing, hasPick, err := s.pickRepo.GetByUserLeagueRound(ctx, userID, leagueID, roundID)
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("get existing pick: %w", err)
	}
	if hasPick {
		return existing, false, nil
	}

	entry, err := s.Select(ctx, userID, leagueID, item)
	if err != nil {
		if !errors.Is(err, ErrNoEligibleCompetitor) || entry.CompetitorID == "" {
			return pick.Pick{}, false, err
		}
		s.logger.WarnContext(ctx, "auto pick exhausted the grid, using fallback driver",
			"user_id", userID,
			"league_id", leagueID,
			"round_id", roundID,
			"competitor_id", entry.CompetitorID,
		)
	}

	pickID, err := s.idGen.NewID()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("generate pick id: %w", err)
	}

	created := pick.Pick{
		ID:             pickID,
		UserID:         userID,
		LeagueID:       leagueID,
		RoundID:        roundID,
		CompetitorID:   entry.CompetitorID,
		CompetitorName: entry.CompetitorName,
		TeamName:       entry.TeamName,
		IsAutoPick:     true,
		SubmittedAt:    s.now().UTC(),
	}
	if err := s.pickRepo.Upsert(ctx, created); err != nil {
		return pick.Pick{}, false, fmt.Errorf("store auto pick: %w", err)
	}

	s.logger.InfoContext(ctx, "auto pick assigned",
		"user_id", userID,
		"league_id", leagueID,
		"round_id", roundID,
		"competitor_id", created.CompetitorID,
		"grid_position", entry.Position,
	)

	return created, true, nil
}

// ApplyForLeague assigns auto picks to every active member of a league who
// has no pick for the round. It returns the picks that were created.
func (s *AutoPickService) ApplyForLeague(ctx context.Context, leagueID, roundID string, memberUserIDs []string) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AutoPickService.ApplyForLeague")
	defer span.End()

	created := make([]pick.Pick, 0, len(memberUserIDs))
	for _, userID := range memberUserIDs {
		item, wasCreated, err := s.Apply(ctx, userID, leagueID, roundID)
		if err != nil {
			s.logger.WarnContext(ctx, "auto pick failed for member",
				"user_id", userID,
				"league_id", leagueID,
				"round_id", roundID,
				"error", err,
			)
			continue
		}
		if wasCreated {
			created = append(created, item)
		}
	}

	return created, nil
}

// AutoPickRunSummary aggregates one auto-pick sweep over a round.
type AutoPickRunSummary struct {
	RoundID        string
	LeaguesSwept   int
	PicksAssigned  int
	MembersCovered int
}

// RunForRound assigns auto picks to every active member of every active
// survivor league who has no pick for the round. Completed leagues and
// eliminated members are skipped.
func (s *AutoPickService) RunForRound(ctx context.Context, roundID string) (AutoPickRunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AutoPickService.RunForRound")
	defer span.End()

	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return AutoPickRunSummary{}, fmt.Errorf("%w: round_id is required", ErrInvalidInput)
	}

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return AutoPickRunSummary{}, fmt.Errorf("list leagues: %w", err)
	}

	summary := AutoPickRunSummary{RoundID: roundID}
	for _, currentLeague := range leagues {
		if currentLeague.Status == league.StatusCompleted {
			continue
		}

		members, err := s.memberRepo.ListByLeague(ctx, currentLeague.ID)
		if err != nil {
			return summary, fmt.Errorf("list members of league %s: %w", currentLeague.ID, err)
		}

		userIDs := make([]string, 0, len(members))
		for _, membership := range members {
			if membership.Status != member.StatusActive {
				continue
			}
			userIDs = append(userIDs, membership.UserID)
		}
		if len(userIDs) == 0 {
			continue
		}

		created, err := s.ApplyForLeague(ctx, currentLeague.ID, roundID, userIDs)
		if err != nil {
			return summary, fmt.Errorf("auto pick league %s: %w", currentLeague.ID, err)
		}

		summary.LeaguesSwept++
		summary.MembersCovered += len(userIDs)
		summary.PicksAssigned += len(created)
	}

	s.logger.InfoContext(ctx, "auto pick sweep finished",
		"round_id", roundID,
		"leagues", summary.LeaguesSwept,
		"picks_assigned", summary.PicksAssigned,
	)

	return summary, nil
}

func (s *AutoPickService) usedCompetitors(ctx context.Context, userID, leagueID, currentRoundID string) (map[string]struct{}, error) {
	history, err := s.pickRepo.ListByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list pick history: %w", err)
	}

	used := make(map[string]struct{}, len(history))
	for _, item := range history {
		if item.RoundID == currentRoundID {
			continue
		}
		used[item.CompetitorID] = struct{}{}
	}

	return used, nil
}
