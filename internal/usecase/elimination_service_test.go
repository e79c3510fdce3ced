package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	"github.com/riskibarqy/f1-survivor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/f1-survivor/internal/platform/id"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
)

type capturingNotifier struct {
	mu     sync.Mutex
	events []LifeEventNotification
	err    error
}

func (n *capturingNotifier) PublishLifeEvent(_ context.Context, event LifeEventNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *capturingNotifier) published() []LifeEventNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]LifeEventNotification(nil), n.events...)
}

type eliminationFixture struct {
	svc        *EliminationService
	leagueRepo *memory.LeagueRepository
	memberRepo *memory.MemberRepository
	pickRepo   *memory.PickRepository
	notifier   *capturingNotifier
}

func newEliminationFixture(t *testing.T) eliminationFixture {
	t.Helper()

	joinedAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	memberRepo := memory.NewMemberRepository()
	pickRepo := memory.NewPickRepository()
	notifier := &capturingNotifier{}

	for _, membership := range memory.SeedMemberships(joinedAt) {
		if err := memberRepo.Update(t.Context(), membership); err != nil {
			t.Fatalf("seed membership failed: %v", err)
		}
	}

	svc := NewEliminationService(leagueRepo, memberRepo, pickRepo, notifier, id.NewRandomGenerator(), logging.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 5, 25, 15, 0, 0, 0, time.UTC) }

	return eliminationFixture{
		svc:        svc,
		leagueRepo: leagueRepo,
		memberRepo: memberRepo,
		pickRepo:   pickRepo,
		notifier:   notifier,
	}
}

func (f eliminationFixture) seedPick(t *testing.T, userID, leagueID, roundID, competitorID string) {
	t.Helper()

	err := f.pickRepo.Upsert(t.Context(), pick.Pick{
		ID:           "pick-" + userID + "-" + roundID + "-" + leagueID,
		UserID:       userID,
		LeagueID:     leagueID,
		RoundID:      roundID,
		CompetitorID: competitorID,
		SubmittedAt:  time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed pick failed: %v", err)
	}
}

func intPtr(value int) *int { return &value }

func TestRaceResult_Survived(t *testing.T) {
	cases := []struct {
		name     string
		position *int
		survived bool
	}{
		{name: "race winner", position: intPtr(1), survived: true},
		{name: "exactly tenth", position: intPtr(10), survived: true},
		{name: "eleventh", position: intPtr(11), survived: false},
		{name: "did not classify", position: nil, survived: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := RaceResult{CompetitorID: "16", FinalPosition: tc.position}
			if result.Survived() != tc.survived {
				t.Fatalf("survived = %v, want %v", result.Survived(), tc.survived)
			}
		})
	}
}

func TestEliminationService_ProcessRoundResults_LifeLoss(t *testing.T) {
	f := newEliminationFixture(t)
	f.seedPick(t, "user-alpha", memory.LeagueIDPaddockClub, "monaco-2025", "16")
	f.seedPick(t, "user-bravo", memory.LeagueIDPaddockClub, "monaco-2025", "1")

	summary, err := f.svc.ProcessRoundResults(t.Context(), "monaco-2025", []RaceResult{
		{CompetitorID: "16", FinalPosition: intPtr(14)},
		{CompetitorID: "1", FinalPosition: intPtr(1)},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if summary.LivesLost != 1 {
		t.Fatalf("expected one life lost, got %d", summary.LivesLost)
	}
	if summary.Eliminations != 0 {
		t.Fatalf("expected no eliminations, got %d", summary.Eliminations)
	}

	membership, _, err := f.memberRepo.GetByUserAndLeague(t.Context(), "user-alpha", memory.LeagueIDPaddockClub)
	if err != nil {
		t.Fatalf("get membership failed: %v", err)
	}
	if membership.RemainingLives != 2 {
		t.Fatalf("expected 2 remaining lives, got %d", membership.RemainingLives)
	}
	if membership.Status != member.StatusActive {
		t.Fatalf("member must stay active with lives left, got %s", membership.Status)
	}

	events := f.notifier.published()
	lifeLost := 0
	for _, event := range events {
		if event.EventType == member.EventLifeLost && event.UserID == "user-alpha" {
			lifeLost++
		}
	}
	if lifeLost != 1 {
		t.Fatalf("expected one LIFE_LOST notification for user-alpha, got %d", lifeLost)
	}
}

func TestEliminationService_ProcessRoundResults_NilPositionLosesLife(t *testing.T) {
	f := newEliminationFixture(t)
	f.seedPick(t, "user-alpha", memory.LeagueIDPaddockClub, "monaco-2025", "16")

	summary, err := f.svc.ProcessRoundResults(t.Context(), "monaco-2025", []RaceResult{
		{CompetitorID: "16", FinalPosition: nil},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if summary.LivesLost == 0 {
		t.Fatal("an unclassified driver must cost a life")
	}
}

func TestEliminationService_ProcessRoundResults_Idempotent(t *testing.T) {
	f := newEliminationFixture(t)
	f.seedPick(t, "user-alpha", memory.LeagueIDPaddockClub, "monaco-2025", "16")

	results := []RaceResult{{CompetitorID: "16", FinalPosition: intPtr(18)}}
	if _, err := f.svc.ProcessRoundResults(t.Context(), "monaco-2025", results); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	summary, err := f.svc.ProcessRoundResults(t.Context(), "monaco-2025", results)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if summary.LivesLost != 0 {
		t.Fatalf("replay must not deduct again, got %d lives lost", summary.LivesLost)
	}
	if summary.SkippedRecorded == 0 {
		t.Fatal("replay must report the already recorded loss")
	}

	membership, _, err := f.memberRepo.GetByUserAndLeague(t.Context(), "user-alpha", memory.LeagueIDPaddockClub)
	if err != nil {
		t.Fatalf("get membership failed: %v", err)
	}
	if membership.RemainingLives != 2 {
		t.Fatalf("expected 2 remaining lives after replay, got %d", membership.RemainingLives)
	}
}

func TestEliminationService_ProcessRoundResults_FinalEliminationCompletesLeague(t *testing.T) {
	f := newEliminationFixture(t)
	// Midfield Crew plays with a single life each.
	f.seedPick(t, "user-alpha", memory.LeagueIDMidfieldCrew, "monaco-2025", "16")
	f.seedPick(t, "user-bravo", memory.LeagueIDMidfieldCrew, "monaco-2025", "22")
	f.seedPick(t, "user-charlie", memory.LeagueIDMidfieldCrew, "monaco-2025", "1")

	summary, err := f.svc.ProcessRoundResults(t.Context(), "monaco-2025", []RaceResult{
		{CompetitorID: "16", FinalPosition: intPtr(15)},
		{CompetitorID: "22", FinalPosition: nil},
		{CompetitorID: "1", FinalPosition: intPtr(1)},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if summary.Eliminations != 2 {
		t.Fatalf("expected two eliminations, got %d", summary.Eliminations)
	}

	membership, _, err := f.memberRepo.GetByUserAndLeague(t.Context(), "user-alpha", memory.LeagueIDMidfieldCrew)
	if err != nil {
		t.Fatalf("get membership failed: %v", err)
	}
	if membership.Status != member.StatusEliminated {
		t.Fatalf("expected eliminated member, got %s", membership.Status)
	}
	if membership.EliminatedAt == nil {
		t.Fatal("elimination must stamp EliminatedAt")
	}

	item, _, err := f.leagueRepo.GetByID(t.Context(), memory.LeagueIDMidfieldCrew)
	if err != nil {
		t.Fatalf("get league failed: %v", err)
	}
	if item.Status != league.StatusCompleted {
		t.Fatalf("league with one survivor must complete, got %s", item.Status)
	}
}

func TestEliminationService_ProcessRoundResults_MissingResultSkipsPick(t *testing.T) {
	f := newEliminationFixture(t)
	f.seedPick(t, "user-alpha", memory.LeagueIDPaddockClub, "monaco-2025", "99")

	summary, err := f.svc.ProcessRoundResults(t.Context(), "monaco-2025", []RaceResult{
		{CompetitorID: "1", FinalPosition: intPtr(1)},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if summary.SkippedNoResult != 1 {
		t.Fatalf("expected one skipped pick, got %d", summary.SkippedNoResult)
	}
	if summary.LivesLost != 0 {
		t.Fatal("a pick without a result must not cost a life")
	}
}

func TestEliminationService_ProcessRoundResults_RejectsBlankRoundID(t *testing.T) {
	f := newEliminationFixture(t)

	_, err := f.svc.ProcessRoundResults(t.Context(), "  ", nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEliminationService_ProcessRoundResults_NotifierFailureDoesNotAbort(t *testing.T) {
	f := newEliminationFixture(t)
	f.notifier.err = errors.New("webhook down")
	f.seedPick(t, "user-alpha", memory.LeagueIDPaddockClub, "monaco-2025", "16")

	summary, err := f.svc.ProcessRoundResults(t.Context(), "monaco-2025", []RaceResult{
		{CompetitorID: "16", FinalPosition: intPtr(12)},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if summary.LivesLost != 1 {
		t.Fatalf("expected the life loss to be recorded, got %d", summary.LivesLost)
	}
}

func TestEliminationService_RestoreLife_ReopensLeague(t *testing.T) {
	f := newEliminationFixture(t)
	f.seedPick(t, "user-alpha", memory.LeagueIDMidfieldCrew, "monaco-2025", "16")
	f.seedPick(t, "user-bravo", memory.LeagueIDMidfieldCrew, "monaco-2025", "22")

	if _, err := f.svc.ProcessRoundResults(t.Context(), "monaco-2025", []RaceResult{
		{CompetitorID: "16", FinalPosition: intPtr(15)},
		{CompetitorID: "22", FinalPosition: intPtr(16)},
	}); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	item, _, err := f.leagueRepo.GetByID(t.Context(), memory.LeagueIDMidfieldCrew)
	if err != nil {
		t.Fatalf("get league failed: %v", err)
	}
	if item.Status != league.StatusCompleted {
		t.Fatalf("expected completed league before restore, got %s", item.Status)
	}

	restored, err := f.svc.RestoreLife(t.Context(), RestoreLifeInput{
		UserID:      "user-alpha",
		LeagueID:    memory.LeagueIDMidfieldCrew,
		AdminUserID: "admin-race-control",
		Reason:      "stewards reinstated the classification",
	})
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.Status != member.StatusActive {
		t.Fatalf("restored member must be active, got %s", restored.Status)
	}
	if restored.RemainingLives != 1 {
		t.Fatalf("expected 1 remaining life, got %d", restored.RemainingLives)
	}
	if restored.EliminatedAt != nil {
		t.Fatal("restore must clear EliminatedAt")
	}

	item, _, err = f.leagueRepo.GetByID(t.Context(), memory.LeagueIDMidfieldCrew)
	if err != nil {
		t.Fatalf("get league failed: %v", err)
	}
	if item.Status != league.StatusActive {
		t.Fatalf("restore must reopen the league, got %s", item.Status)
	}

	events, err := f.memberRepo.ListLifeEvents(t.Context(), "user-alpha", memory.LeagueIDMidfieldCrew)
	if err != nil {
		t.Fatalf("list life events failed: %v", err)
	}
	last := events[len(events)-1]
	if last.EventType != member.EventLifeRestored {
		t.Fatalf("expected LIFE_RESTORED event, got %s", last.EventType)
	}
	if last.AdminUserID != "admin-race-control" {
		t.Fatalf("restore event must record the acting admin, got %q", last.AdminUserID)
	}
}

func TestEliminationService_RestoreLife_CapsAtMaximum(t *testing.T) {
	f := newEliminationFixture(t)

	restored, err := f.svc.RestoreLife(t.Context(), RestoreLifeInput{
		UserID:      "user-alpha",
		LeagueID:    memory.LeagueIDPaddockClub,
		AdminUserID: "admin-race-control",
		Reason:      "manual audit",
	})
	if err != nil {
		t.Fatalf("restore at full lives must not fail: %v", err)
	}
	if restored.RemainingLives != 3 || restored.LivesUsed != 0 {
		t.Fatalf("lives must stay capped at the maximum, got %d remaining / %d used", restored.RemainingLives, restored.LivesUsed)
	}
	if restored.Status != member.StatusActive {
		t.Fatalf("restored member must be active, got %s", restored.Status)
	}

	events, err := f.memberRepo.ListLifeEvents(t.Context(), "user-alpha", memory.LeagueIDPaddockClub)
	if err != nil {
		t.Fatalf("list life events failed: %v", err)
	}
	last := events[len(events)-1]
	if last.EventType != member.EventLifeRestored {
		t.Fatalf("capped restore must still record LIFE_RESTORED, got %s", last.EventType)
	}
	if last.LivesBefore != 3 || last.LivesAfter != 3 {
		t.Fatalf("capped restore event must show unchanged lives, got %d -> %d", last.LivesBefore, last.LivesAfter)
	}
}

func TestEliminationService_RestoreLife_RequiresAdmin(t *testing.T) {
	f := newEliminationFixture(t)

	_, err := f.svc.RestoreLife(t.Context(), RestoreLifeInput{
		UserID:   "user-alpha",
		LeagueID: memory.LeagueIDPaddockClub,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without an admin, got %v", err)
	}
}
