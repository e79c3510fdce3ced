package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/qualifying"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	"github.com/riskibarqy/f1-survivor/internal/platform/cache"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
	"github.com/riskibarqy/f1-survivor/internal/platform/resilience"
)

const (
	qualifyingCacheTTL       = time.Hour
	qualifyingCacheKeyPrefix = "qualifying:"
)

// QualifyingSource fetches the ranked qualifying classification for the
// session held at the given time.
type QualifyingSource interface {
	FetchClassification(ctx context.Context, sessionAt time.Time) ([]qualifying.Entry, error)
}

// QualifyingService resolves the qualifying order for a round. It always
// produces a usable snapshot: sessions that have not run yet, fetch
// failures, and empty classifications all fall back to the curated pool.
type QualifyingService struct {
	source QualifyingSource
	store  *cache.Store
	pool   qualifying.FallbackPool
	retry  resilience.RetryConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewQualifyingService(
	source QualifyingSource,
	store *cache.Store,
	pool qualifying.FallbackPool,
	logger *logging.Logger,
) *QualifyingService {
	if store == nil {
		store = cache.NewStore(qualifyingCacheTTL)
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QualifyingService{
		source: source,
		store:  store,
		pool:   pool,
		retry:  resilience.DefaultRetryConfig(),
		logger: logger,
		now:    time.Now,
	}
}

// SetRetry overrides the retry policy applied to source fetches.
func (s *QualifyingService) SetRetry(cfg resilience.RetryConfig) {
	s.retry = resilience.NormalizeRetryConfig(cfg)
}

// Classification returns the qualifying snapshot for the round. Fallback
// snapshots are never cached so the next call can try the real data again.
func (s *QualifyingService) Classification(ctx context.Context, item round.Round) qualifying.Snapshot {
	ctx, span := startUsecaseSpan(ctx, "usecase.QualifyingService.Classification")
	defer span.End()

	cacheKey := qualifyingCacheKeyPrefix + item.ID
	if cached, ok := s.store.Get(ctx, cacheKey); ok {
		if snapshot, ok := cached.(qualifying.Snapshot); ok && snapshot.RoundID == item.ID {
			return snapshot
		}
	}

	now := s.now()
	if item.QualifyingAt.After(now) {
		s.logger.DebugContext(ctx, "qualifying session has not run yet, using fallback pool",
			"round_id", item.ID,
			"qualifying_at", item.QualifyingAt.UTC().Format(time.RFC3339),
		)
		return s.fallbackSnapshot(item, now)
	}

	var entries []qualifying.Entry
	err := resilience.Retry(ctx, s.retry, func(ctx context.Context) error {
		fetched, fetchErr := s.source.FetchClassification(ctx, item.QualifyingAt)
		if fetchErr != nil {
			return fetchErr
		}
		entries = fetched
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "qualifying fetch failed, using fallback pool",
			"round_id", item.ID,
			"error", err,
		)
		return s.fallbackSnapshot(item, now)
	}
	if len(entries) == 0 {
		s.logger.WarnContext(ctx, "qualifying classification is empty, using fallback pool", "round_id", item.ID)
		return s.fallbackSnapshot(item, now)
	}

	snapshot := qualifying.Snapshot{
		RoundID:   item.ID,
		Entries:   entries,
		FetchedAt: now,
	}
	s.store.Set(ctx, cacheKey, snapshot)

	return snapshot
}

// Invalidate drops the cached snapshot for a round.
func (s *QualifyingService) Invalidate(ctx context.Context, roundID string) {
	s.store.Delete(ctx, qualifyingCacheKeyPrefix+roundID)
}

func (s *QualifyingService) fallbackSnapshot(item round.Round, now time.Time) qualifying.Snapshot {
	snapshot := qualifying.Snapshot{
		RoundID:   item.ID,
		Fallback:  true,
		FetchedAt: now,
	}
	if chosen, ok := s.pool.Choose(item.Season, item.ID); ok {
		snapshot.Entries = []qualifying.Entry{chosen}
	}

	return snapshot
}
