package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
)

// LeagueService exposes survivor leagues and their standings.
type LeagueService struct {
	leagueRepo league.Repository
	memberRepo member.Repository
}

func NewLeagueService(leagueRepo league.Repository, memberRepo member.Repository) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		memberRepo: memberRepo,
	}
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeagues")
	defer span.End()

	items, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return items, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetLeague")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}

	return item, nil
}

// ListMembers returns the league's standings.
func (s *LeagueService) ListMembers(ctx context.Context, leagueID string) ([]member.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListMembers")
	defer span.End()

	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByLeague(ctx, strings.TrimSpace(leagueID))
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

// ListLifeEvents returns the member's lives audit trail inside a league,
// oldest first.
func (s *LeagueService) ListLifeEvents(ctx context.Context, userID, leagueID string) ([]member.LifeEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLifeEvents")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return nil, fmt.Errorf("%w: user_id and league_id are required", ErrInvalidInput)
	}

	_, exists, err := s.memberRepo.GetByUserAndLeague(ctx, userID, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: membership for user %s in league %s", ErrNotFound, userID, leagueID)
	}

	events, err := s.memberRepo.ListLifeEvents(ctx, userID, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list life events: %w", err)
	}

	return events, nil
}
