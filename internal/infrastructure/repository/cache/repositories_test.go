package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	"github.com/riskibarqy/f1-survivor/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/f1-survivor/internal/platform/cache"
)

type countingLeagueRepo struct {
	league.Repository
	listCalls int
	getCalls  int
}

func (r *countingLeagueRepo) List(ctx context.Context) ([]league.League, error) {
	r.listCalls++
	return r.Repository.List(ctx)
}

func (r *countingLeagueRepo) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	r.getCalls++
	return r.Repository.GetByID(ctx, leagueID)
}

func TestLeagueRepository_ListServedFromCache(t *testing.T) {
	next := &countingLeagueRepo{Repository: memory.NewLeagueRepository(memory.SeedLeagues())}
	repo := NewLeagueRepository(next, basecache.NewStore(time.Minute))

	first, err := repo.List(t.Context())
	if err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	second, err := repo.List(t.Context())
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}

	if next.listCalls != 1 {
		t.Fatalf("expected one source call, got %d", next.listCalls)
	}
	if len(first) != len(second) {
		t.Fatalf("cached list diverged: %d vs %d items", len(first), len(second))
	}
}

func TestLeagueRepository_UpdateStatusInvalidates(t *testing.T) {
	next := &countingLeagueRepo{Repository: memory.NewLeagueRepository(memory.SeedLeagues())}
	repo := NewLeagueRepository(next, basecache.NewStore(time.Minute))

	item, exists, err := repo.GetByID(t.Context(), memory.LeagueIDPaddockClub)
	if err != nil || !exists {
		t.Fatalf("league lookup failed: exists=%v err=%v", exists, err)
	}
	if item.Status != league.StatusActive {
		t.Fatalf("expected active league, got %q", item.Status)
	}

	if err := repo.UpdateStatus(t.Context(), memory.LeagueIDPaddockClub, league.StatusCompleted); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	item, exists, err = repo.GetByID(t.Context(), memory.LeagueIDPaddockClub)
	if err != nil || !exists {
		t.Fatalf("league lookup after update failed: exists=%v err=%v", exists, err)
	}
	if item.Status != league.StatusCompleted {
		t.Fatalf("stale status after invalidation: %q", item.Status)
	}
	if next.getCalls != 2 {
		t.Fatalf("expected two source lookups, got %d", next.getCalls)
	}
}

func TestPickRepository_UpsertInvalidatesRoundList(t *testing.T) {
	repo := NewPickRepository(memory.NewPickRepository(), basecache.NewStore(time.Minute))

	seed := pick.Pick{
		ID:           "pick-1",
		UserID:       "user-1",
		LeagueID:     memory.LeagueIDPaddockClub,
		RoundID:      "monaco-2025",
		CompetitorID: "VER",
		SubmittedAt:  time.Date(2025, 5, 25, 11, 0, 0, 0, time.UTC),
	}
	if err := repo.Upsert(t.Context(), seed); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	items, err := repo.ListByLeagueAndRound(t.Context(), seed.LeagueID, seed.RoundID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one pick, got %d", len(items))
	}

	replacement := seed
	replacement.ID = "pick-2"
	replacement.CompetitorID = "LEC"
	if err := repo.Upsert(t.Context(), replacement); err != nil {
		t.Fatalf("replacement upsert failed: %v", err)
	}

	items, err = repo.ListByLeagueAndRound(t.Context(), seed.LeagueID, seed.RoundID)
	if err != nil {
		t.Fatalf("list after upsert failed: %v", err)
	}
	if len(items) != 1 || items[0].CompetitorID != "LEC" {
		t.Fatalf("stale pick list after invalidation: %+v", items)
	}
}
