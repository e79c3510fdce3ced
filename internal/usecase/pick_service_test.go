package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/f1-survivor/internal/platform/id"
)

func newTestPickService(t *testing.T, now time.Time) (*PickService, *memory.RoundRepository, *memory.MemberRepository) {
	t.Helper()

	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	memberRepo := memory.NewMemberRepository()
	roundRepo := memory.NewRoundRepository()
	pickRepo := memory.NewPickRepository()

	for _, membership := range memory.SeedMemberships(now.Add(-30 * 24 * time.Hour)) {
		if err := memberRepo.Update(t.Context(), membership); err != nil {
			t.Fatalf("seed membership failed: %v", err)
		}
	}
	for _, item := range memory.SeedRounds() {
		if err := roundRepo.Upsert(t.Context(), item); err != nil {
			t.Fatalf("seed round failed: %v", err)
		}
	}

	svc := NewPickService(leagueRepo, memberRepo, roundRepo, pickRepo, id.NewRandomGenerator())
	svc.now = func() time.Time { return now }

	return svc, roundRepo, memberRepo
}

func TestPickService_Submit_BeforeDeadline(t *testing.T) {
	// Two hours before the Monaco race, one hour before its deadline.
	now := time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC)
	svc, _, _ := newTestPickService(t, now)

	created, err := svc.Submit(t.Context(), SubmitPickInput{
		UserID:         "user-alpha",
		LeagueID:       memory.LeagueIDPaddockClub,
		RoundID:        "monaco-2025",
		CompetitorID:   "16",
		CompetitorName: "Charles Leclerc",
		TeamName:       "Ferrari",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if created.IsAutoPick {
		t.Fatal("manual picks must not be flagged as auto")
	}
	if created.CompetitorID != "16" {
		t.Fatalf("unexpected competitor: %s", created.CompetitorID)
	}
}

func TestPickService_Submit_ReplacesEarlierPick(t *testing.T) {
	now := time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC)
	svc, _, _ := newTestPickService(t, now)

	input := SubmitPickInput{
		UserID:       "user-alpha",
		LeagueID:     memory.LeagueIDPaddockClub,
		RoundID:      "monaco-2025",
		CompetitorID: "16",
	}
	if _, err := svc.Submit(t.Context(), input); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	input.CompetitorID = "4"
	replaced, err := svc.Submit(t.Context(), input)
	if err != nil {
		t.Fatalf("replacement submit failed: %v", err)
	}
	if replaced.CompetitorID != "4" {
		t.Fatalf("unexpected competitor after replacement: %s", replaced.CompetitorID)
	}

	history, err := svc.ListByUserAndLeague(t.Context(), "user-alpha", memory.LeagueIDPaddockClub)
	if err != nil {
		t.Fatalf("list picks failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one pick for the round, got %d", len(history))
	}
}

func TestPickService_Submit_DeadlinePassed(t *testing.T) {
	// Thirty minutes before the race, past the one hour deadline.
	now := time.Date(2025, 5, 25, 12, 30, 0, 0, time.UTC)
	svc, _, _ := newTestPickService(t, now)

	_, err := svc.Submit(t.Context(), SubmitPickInput{
		UserID:       "user-alpha",
		LeagueID:     memory.LeagueIDPaddockClub,
		RoundID:      "monaco-2025",
		CompetitorID: "16",
	})
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed, got %v", err)
	}
}

func TestPickService_Submit_RoundWithoutDeadline(t *testing.T) {
	now := time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC)
	svc, roundRepo, _ := newTestPickService(t, now)

	item, exists, err := roundRepo.GetByID(t.Context(), "monaco-2025")
	if err != nil || !exists {
		t.Fatalf("seed round missing: exists=%v err=%v", exists, err)
	}
	item.PickDeadline = nil
	if err := roundRepo.Upsert(t.Context(), item); err != nil {
		t.Fatalf("update round failed: %v", err)
	}

	_, err = svc.Submit(t.Context(), SubmitPickInput{
		UserID:       "user-alpha",
		LeagueID:     memory.LeagueIDPaddockClub,
		RoundID:      "monaco-2025",
		CompetitorID: "16",
	})
	if !errors.Is(err, ErrDeadlineUnavailable) {
		t.Fatalf("expected ErrDeadlineUnavailable, got %v", err)
	}
}

func TestPickService_Submit_RejectsReusedCompetitor(t *testing.T) {
	now := time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC)
	svc, _, _ := newTestPickService(t, now)

	if _, err := svc.Submit(t.Context(), SubmitPickInput{
		UserID:       "user-alpha",
		LeagueID:     memory.LeagueIDPaddockClub,
		RoundID:      "monaco-2025",
		CompetitorID: "16",
	}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	svc.now = func() time.Time { return time.Date(2025, 6, 15, 16, 0, 0, 0, time.UTC) }
	_, err := svc.Submit(t.Context(), SubmitPickInput{
		UserID:       "user-alpha",
		LeagueID:     memory.LeagueIDPaddockClub,
		RoundID:      "canada-2025",
		CompetitorID: "16",
	})
	if !errors.Is(err, ErrCompetitorAlreadyUsed) {
		t.Fatalf("expected ErrCompetitorAlreadyUsed, got %v", err)
	}
}

func TestPickService_Submit_RejectsEliminatedMember(t *testing.T) {
	now := time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC)
	svc, _, memberRepo := newTestPickService(t, now)

	membership, exists, err := memberRepo.GetByUserAndLeague(t.Context(), "user-alpha", memory.LeagueIDMidfieldCrew)
	if err != nil || !exists {
		t.Fatalf("seed membership missing: exists=%v err=%v", exists, err)
	}
	eliminatedAt := now.Add(-7 * 24 * time.Hour)
	membership.Status = member.StatusEliminated
	membership.RemainingLives = 0
	membership.LivesUsed = membership.MaxLives
	membership.EliminatedAt = &eliminatedAt
	if err := memberRepo.Update(t.Context(), membership); err != nil {
		t.Fatalf("update membership failed: %v", err)
	}

	_, err = svc.Submit(t.Context(), SubmitPickInput{
		UserID:       "user-alpha",
		LeagueID:     memory.LeagueIDMidfieldCrew,
		RoundID:      "monaco-2025",
		CompetitorID: "16",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPickService_Submit_UnknownLeague(t *testing.T) {
	now := time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC)
	svc, _, _ := newTestPickService(t, now)

	_, err := svc.Submit(t.Context(), SubmitPickInput{
		UserID:       "user-alpha",
		LeagueID:     "no-such-league",
		RoundID:      "monaco-2025",
		CompetitorID: "16",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPickService_CanChange(t *testing.T) {
	now := time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC)
	svc, _, _ := newTestPickService(t, now)

	if !svc.CanChange(t.Context(), "monaco-2025") {
		t.Fatal("picks must be changeable before the deadline")
	}

	svc.now = func() time.Time { return time.Date(2025, 5, 25, 12, 30, 0, 0, time.UTC) }
	if svc.CanChange(t.Context(), "monaco-2025") {
		t.Fatal("picks must be locked after the deadline")
	}

	if svc.CanChange(t.Context(), "no-such-round") {
		t.Fatal("unknown rounds must report locked")
	}
}
