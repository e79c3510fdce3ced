package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	idgen "github.com/riskibarqy/f1-survivor/internal/platform/id"
)

type SubmitPickInput struct {
	UserID         string
	LeagueID       string
	RoundID        string
	CompetitorID   string
	CompetitorName string
	TeamName       string
}

// PickService handles manual pick submission. A pick may be replaced freely
// until the round's deadline; each driver may be used once per league.
type PickService struct {
	leagueRepo league.Repository
	memberRepo member.Repository
	roundRepo  round.Repository
	pickRepo   pick.Repository
	idGen      idgen.Generator
	now        func() time.Time
}

func NewPickService(
	leagueRepo league.Repository,
	memberRepo member.Repository,
	roundRepo round.Repository,
	pickRepo pick.Repository,
	idGen idgen.Generator,
) *PickService {
	return &PickService{
		leagueRepo: leagueRepo,
		memberRepo: memberRepo,
		roundRepo:  roundRepo,
		pickRepo:   pickRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

func (s *PickService) Submit(ctx context.Context, input SubmitPickInput) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.Submit")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.RoundID = strings.TrimSpace(input.RoundID)
	input.CompetitorID = strings.TrimSpace(input.CompetitorID)

	if input.UserID == "" || input.LeagueID == "" || input.RoundID == "" {
		return pick.Pick{}, fmt.Errorf("%w: user_id, league_id and round_id are required", ErrInvalidInput)
	}
	if input.CompetitorID == "" {
		return pick.Pick{}, fmt.Errorf("%w: competitor_id is required", ErrInvalidInput)
	}

	currentLeague, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: league %s", ErrNotFound, input.LeagueID)
	}
	if currentLeague.Status == league.StatusCompleted {
		return pick.Pick{}, fmt.Errorf("%w: league %s is completed", ErrInvalidInput, input.LeagueID)
	}

	membership, exists, err := s.memberRepo.GetByUserAndLeague(ctx, input.UserID, input.LeagueID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get membership: %w", err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: user %s is not a member of league %s", ErrNotFound, input.UserID, input.LeagueID)
	}
	if membership.Status == member.StatusEliminated {
		return pick.Pick{}, fmt.Errorf("%w: eliminated members cannot submit picks", ErrInvalidInput)
	}

	currentRound, exists, err := s.roundRepo.GetByID(ctx, input.RoundID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: round %s", ErrNotFound, input.RoundID)
	}

	// No configured deadline blocks submissions rather than leaving them
	// open forever.
	if !currentRound.HasDeadline() {
		return pick.Pick{}, fmt.Errorf("%w: round %s has no deadline", ErrDeadlineUnavailable, input.RoundID)
	}
	if currentRound.DeadlinePassed(s.now()) {
		return pick.Pick{}, fmt.Errorf("%w: round %s", ErrDeadlinePassed, input.RoundID)
	}

	history, err := s.pickRepo.ListByUserAndLeague(ctx, input.UserID, input.LeagueID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("list pick history: %w", err)
	}
	for _, previous := range history {
		if previous.RoundID == input.RoundID {
			continue
		}
		if previous.CompetitorID == input.CompetitorID {
			return pick.Pick{}, fmt.Errorf("%w: competitor %s was picked in round %s", ErrCompetitorAlreadyUsed, input.CompetitorID, previous.RoundID)
		}
	}

	pickID, err := s.idGen.NewID()
	if err != nil {
		return pick.Pick{}, fmt.Errorf("generate pick id: %w", err)
	}

	item := pick.Pick{
		ID:             pickID,
		UserID:         input.UserID,
		LeagueID:       input.LeagueID,
		RoundID:        input.RoundID,
		CompetitorID:   input.CompetitorID,
		CompetitorName: strings.TrimSpace(input.CompetitorName),
		TeamName:       strings.TrimSpace(input.TeamName),
		SubmittedAt:    s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return pick.Pick{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.pickRepo.Upsert(ctx, item); err != nil {
		return pick.Pick{}, fmt.Errorf("store pick: %w", err)
	}

	return item, nil
}

// CanChange reports whether the user may still change their pick for the
// round. Unknown rounds and rounds without a deadline report false.
func (s *PickService) CanChange(ctx context.Context, roundID string) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.CanChange")
	defer span.End()

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil || !exists || !item.HasDeadline() {
		return false
	}

	return !item.DeadlinePassed(s.now())
}

// ListByUserAndLeague returns the user's pick history inside a league.
func (s *PickService) ListByUserAndLeague(ctx context.Context, userID, leagueID string) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListByUserAndLeague")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return nil, fmt.Errorf("%w: user_id and league_id are required", ErrInvalidInput)
	}

	items, err := s.pickRepo.ListByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}

	return items, nil
}
