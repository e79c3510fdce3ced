package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/qualifying"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
	"github.com/riskibarqy/f1-survivor/internal/platform/resilience"
)

type stubQualifyingSource struct {
	calls int
	fetch func() ([]qualifying.Entry, error)
}

func (s *stubQualifyingSource) FetchClassification(_ context.Context, _ time.Time) ([]qualifying.Entry, error) {
	s.calls++
	return s.fetch()
}

func rankedGrid() []qualifying.Entry {
	return []qualifying.Entry{
		{CompetitorID: "1", CompetitorName: "Max Verstappen", TeamName: "Red Bull Racing", Position: 1},
		{CompetitorID: "16", CompetitorName: "Charles Leclerc", TeamName: "Ferrari", Position: 2},
		{CompetitorID: "4", CompetitorName: "Lando Norris", TeamName: "McLaren", Position: 3},
	}
}

func testRound(qualifyingAt time.Time) round.Round {
	return round.Round{
		ID:           "monaco-2025",
		Season:       "2025",
		Name:         "Monaco Grand Prix",
		QualifyingAt: qualifyingAt,
		RaceAt:       qualifyingAt.Add(23 * time.Hour),
	}
}

func newTestQualifyingService(source QualifyingSource, now time.Time) *QualifyingService {
	svc := NewQualifyingService(source, nil, qualifying.DefaultFallbackPool(), logging.NewNop())
	svc.now = func() time.Time { return now }
	svc.retry = resilience.RetryConfig{MaxAttempts: 3, Delay: 0}
	return svc
}

func TestQualifyingService_Classification_SessionNotRunYet(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	source := &stubQualifyingSource{fetch: func() ([]qualifying.Entry, error) { return rankedGrid(), nil }}
	svc := newTestQualifyingService(source, now)

	snapshot := svc.Classification(t.Context(), testRound(now.Add(4*24*time.Hour)))
	if !snapshot.Fallback {
		t.Fatal("expected fallback snapshot before the session runs")
	}
	if source.calls != 0 {
		t.Fatalf("source must not be called for a future session, got %d calls", source.calls)
	}
	if len(snapshot.Entries) == 0 {
		t.Fatal("fallback snapshot must carry the pool entries")
	}
}

func TestQualifyingService_Classification_CachesFetchedSnapshot(t *testing.T) {
	now := time.Date(2025, 5, 25, 12, 0, 0, 0, time.UTC)
	source := &stubQualifyingSource{fetch: func() ([]qualifying.Entry, error) { return rankedGrid(), nil }}
	svc := newTestQualifyingService(source, now)

	item := testRound(now.Add(-22 * time.Hour))

	first := svc.Classification(t.Context(), item)
	if first.Fallback {
		t.Fatal("expected a real snapshot")
	}
	if len(first.Entries) != 3 {
		t.Fatalf("unexpected entry count: %d", len(first.Entries))
	}

	source.fetch = func() ([]qualifying.Entry, error) { return nil, errors.New("upstream down") }
	second := svc.Classification(t.Context(), item)
	if second.Fallback {
		t.Fatal("cached snapshot must be served even when the source fails")
	}
	if source.calls != 1 {
		t.Fatalf("expected one source call, got %d", source.calls)
	}
}

func TestQualifyingService_Classification_FallbackNotCached(t *testing.T) {
	now := time.Date(2025, 5, 25, 12, 0, 0, 0, time.UTC)
	source := &stubQualifyingSource{fetch: func() ([]qualifying.Entry, error) { return nil, errors.New("upstream down") }}
	svc := newTestQualifyingService(source, now)

	item := testRound(now.Add(-22 * time.Hour))

	first := svc.Classification(t.Context(), item)
	if !first.Fallback {
		t.Fatal("expected fallback snapshot when every fetch attempt fails")
	}

	source.fetch = func() ([]qualifying.Entry, error) { return rankedGrid(), nil }
	second := svc.Classification(t.Context(), item)
	if second.Fallback {
		t.Fatal("recovered source must replace the fallback on the next call")
	}
}

func TestQualifyingService_Classification_RetriesTransientFailures(t *testing.T) {
	now := time.Date(2025, 5, 25, 12, 0, 0, 0, time.UTC)
	source := &stubQualifyingSource{}
	source.fetch = func() ([]qualifying.Entry, error) {
		if source.calls < 3 {
			return nil, errors.New("timeout")
		}
		return rankedGrid(), nil
	}
	svc := newTestQualifyingService(source, now)

	snapshot := svc.Classification(t.Context(), testRound(now.Add(-22*time.Hour)))
	if snapshot.Fallback {
		t.Fatal("expected the retry budget to recover the fetch")
	}
	if source.calls != 3 {
		t.Fatalf("expected three source calls, got %d", source.calls)
	}
}

func TestQualifyingService_Classification_FallbackPinnedSeasonUsesFirstDriver(t *testing.T) {
	now := time.Date(2025, 5, 25, 12, 0, 0, 0, time.UTC)
	source := &stubQualifyingSource{fetch: func() ([]qualifying.Entry, error) { return nil, errors.New("upstream down") }}
	svc := newTestQualifyingService(source, now)

	snapshot := svc.Classification(t.Context(), testRound(now.Add(-22*time.Hour)))
	if !snapshot.Fallback {
		t.Fatal("expected fallback snapshot")
	}
	if len(snapshot.Entries) != 1 {
		t.Fatalf("fallback snapshot must carry exactly one driver, got %d", len(snapshot.Entries))
	}

	pool := qualifying.DefaultFallbackPool()
	if snapshot.Entries[0].CompetitorID != pool.Drivers[0].CompetitorID {
		t.Fatalf("pinned-season round must get the first pool driver %s, got %s",
			pool.Drivers[0].CompetitorID, snapshot.Entries[0].CompetitorID)
	}
}

func TestQualifyingService_Classification_FallbackOtherSeasonHashesRound(t *testing.T) {
	now := time.Date(2024, 5, 26, 12, 0, 0, 0, time.UTC)
	source := &stubQualifyingSource{fetch: func() ([]qualifying.Entry, error) { return nil, errors.New("upstream down") }}
	svc := newTestQualifyingService(source, now)

	item := testRound(now.Add(-22 * time.Hour))
	item.ID = "monaco-2024"
	item.Season = "2024"

	snapshot := svc.Classification(t.Context(), item)
	if !snapshot.Fallback || len(snapshot.Entries) != 1 {
		t.Fatalf("expected a one-driver fallback snapshot, got %+v", snapshot)
	}

	expected, ok := qualifying.DefaultFallbackPool().Choose(item.Season, item.ID)
	if !ok {
		t.Fatal("fallback pool must not be empty")
	}
	if snapshot.Entries[0].CompetitorID != expected.CompetitorID {
		t.Fatalf("expected hash-selected driver %s, got %s", expected.CompetitorID, snapshot.Entries[0].CompetitorID)
	}

	again := svc.Classification(t.Context(), item)
	if again.Entries[0].CompetitorID != expected.CompetitorID {
		t.Fatal("fallback driver must be deterministic per round")
	}
}

func TestQualifyingService_Classification_EmptyClassificationFallsBack(t *testing.T) {
	now := time.Date(2025, 5, 25, 12, 0, 0, 0, time.UTC)
	source := &stubQualifyingSource{fetch: func() ([]qualifying.Entry, error) { return nil, nil }}
	svc := newTestQualifyingService(source, now)

	snapshot := svc.Classification(t.Context(), testRound(now.Add(-22*time.Hour)))
	if !snapshot.Fallback {
		t.Fatal("expected fallback snapshot for an empty classification")
	}
}
