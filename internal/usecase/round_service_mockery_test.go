package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	roundmock "github.com/riskibarqy/f1-survivor/internal/mocks/domain/round"
	"github.com/stretchr/testify/mock"
)

func TestRoundService_Current_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	roundRepo := roundmock.NewRepository(t)
	service := NewRoundService(roundRepo)

	deadline := time.Date(2025, 5, 25, 12, 0, 0, 0, time.UTC)
	current := round.Round{
		ID:           "monaco-2025",
		Name:         "Monaco Grand Prix",
		Season:       "2025",
		QualifyingAt: deadline.Add(-22 * time.Hour),
		RaceAt:       deadline.Add(time.Hour),
		PickDeadline: &deadline,
	}

	roundRepo.
		On("GetCurrent", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(current, true, nil).
		Once()

	got, err := service.Current(ctx)
	if err != nil {
		t.Fatalf("current round: %v", err)
	}
	if got.ID != current.ID {
		t.Fatalf("unexpected round id: got=%s want=%s", got.ID, current.ID)
	}
}

func TestRoundService_Current_NoUpcomingRoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	roundRepo := roundmock.NewRepository(t)
	service := NewRoundService(roundRepo)

	roundRepo.
		On("GetCurrent", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(round.Round{}, false, nil).
		Once()

	_, err := service.Current(ctx)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
