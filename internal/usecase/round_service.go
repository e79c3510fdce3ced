package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/f1-survivor/internal/domain/round"
)

// RoundService exposes the race calendar.
type RoundService struct {
	roundRepo round.Repository
}

func NewRoundService(roundRepo round.Repository) *RoundService {
	return &RoundService{roundRepo: roundRepo}
}

func (s *RoundService) List(ctx context.Context) ([]round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.List")
	defer span.End()

	items, err := s.roundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	return items, nil
}

func (s *RoundService) GetByID(ctx context.Context, roundID string) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.GetByID")
	defer span.End()

	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return round.Round{}, fmt.Errorf("%w: round_id is required", ErrInvalidInput)
	}

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: round %s", ErrNotFound, roundID)
	}

	return item, nil
}

// Current returns the next round whose race has not started.
func (s *RoundService) Current(ctx context.Context) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Current")
	defer span.End()

	item, exists, err := s.roundRepo.GetCurrent(ctx)
	if err != nil {
		return round.Round{}, fmt.Errorf("get current round: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: no upcoming round", ErrNotFound)
	}

	return item, nil
}
