package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	"github.com/riskibarqy/f1-survivor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
)

func TestDeadlineService_Start_NoCurrentRound(t *testing.T) {
	svc := NewDeadlineService(memory.NewRoundRepository(), logging.NewNop())

	err := svc.Start(t.Context(), DeadlineCallbacks{})
	if !errors.Is(err, ErrDeadlineUnavailable) {
		t.Fatalf("expected ErrDeadlineUnavailable, got %v", err)
	}
}

func TestDeadlineService_Start_RoundWithoutDeadline(t *testing.T) {
	roundRepo := memory.NewRoundRepository()
	seedWatchedRound(t, roundRepo, time.Now().UTC(), nil)

	svc := NewDeadlineService(roundRepo, logging.NewNop())

	err := svc.Start(t.Context(), DeadlineCallbacks{})
	if !errors.Is(err, ErrDeadlineUnavailable) {
		t.Fatalf("expected ErrDeadlineUnavailable, got %v", err)
	}
}

func TestDeadlineService_Start_DeadlineAlreadyPassed(t *testing.T) {
	base := time.Now().UTC()
	deadline := base.Add(-time.Minute)

	roundRepo := memory.NewRoundRepository()
	seedWatchedRound(t, roundRepo, base, &deadline)

	svc := NewDeadlineService(roundRepo, logging.NewNop())
	svc.clock = clockwork.NewFakeClockAt(base)

	passedCount := 0
	err := svc.Start(t.Context(), DeadlineCallbacks{
		OnPassed: func() { passedCount++ },
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if passedCount != 1 {
		t.Fatalf("expected OnPassed to fire once, fired %d times", passedCount)
	}

	svc.Stop()
}

func TestDeadlineService_WarningThenPassed(t *testing.T) {
	base := time.Now().UTC()
	deadline := base.Add(30 * time.Minute)

	roundRepo := memory.NewRoundRepository()
	seedWatchedRound(t, roundRepo, base, &deadline)

	clock := clockwork.NewFakeClockAt(base)
	svc := NewDeadlineService(roundRepo, logging.NewNop())
	svc.clock = clock

	approaching := make(chan time.Duration, 64)
	passed := make(chan struct{}, 1)
	err := svc.Start(t.Context(), DeadlineCallbacks{
		OnApproaching: func(remaining time.Duration) { approaching <- remaining },
		OnPassed:      func() { passed <- struct{}{} },
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer svc.Stop()

	// 30 minutes out is inside the warning window; the initial evaluation
	// fires a warning before the ticker starts.
	select {
	case remaining := <-approaching:
		if remaining <= 0 || remaining > 30*time.Minute {
			t.Fatalf("unexpected remaining duration: %v", remaining)
		}
	default:
		t.Fatal("expected OnApproaching to fire on start")
	}

	clock.BlockUntil(1)
	clock.Advance(31 * time.Minute)

	select {
	case <-passed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected OnPassed after advancing past the deadline")
	}
}

func TestDeadlineService_IsPassed_FailsClosed(t *testing.T) {
	roundRepo := memory.NewRoundRepository()
	seedWatchedRound(t, roundRepo, time.Now().UTC(), nil)

	svc := NewDeadlineService(roundRepo, logging.NewNop())

	blocked, err := svc.IsPassed(t.Context(), "missing-round")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !blocked {
		t.Fatal("unknown round must report the deadline as passed")
	}

	blocked, err = svc.IsPassed(t.Context(), "watched-round")
	if !errors.Is(err, ErrDeadlineUnavailable) {
		t.Fatalf("expected ErrDeadlineUnavailable, got %v", err)
	}
	if !blocked {
		t.Fatal("a round without a deadline must report as passed")
	}
}

func seedWatchedRound(t *testing.T, repo *memory.RoundRepository, base time.Time, deadline *time.Time) {
	t.Helper()

	err := repo.Upsert(t.Context(), round.Round{
		ID:           "watched-round",
		Season:       "2025",
		Name:         "Monaco Grand Prix",
		Circuit:      "Monte Carlo",
		QualifyingAt: base.Add(-20 * time.Hour),
		RaceAt:       base.Add(2 * time.Hour),
		PickDeadline: deadline,
		Status:       round.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("seed round failed: %v", err)
	}
}
