package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/f1-survivor/external/openf1"
	"github.com/riskibarqy/f1-survivor/internal/config"
	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	"github.com/riskibarqy/f1-survivor/internal/domain/qualifying"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	"github.com/riskibarqy/f1-survivor/internal/infrastructure/notify"
	repocache "github.com/riskibarqy/f1-survivor/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/f1-survivor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/f1-survivor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/f1-survivor/internal/interfaces/httpapi"
	"github.com/riskibarqy/f1-survivor/internal/platform/cache"
	idgen "github.com/riskibarqy/f1-survivor/internal/platform/id"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
	"github.com/riskibarqy/f1-survivor/internal/platform/resilience"
	"github.com/riskibarqy/f1-survivor/internal/usecase"
)

// Application owns the wired service graph and the HTTP server built on
// top of it. Close releases the deadline watch and the database handle.
type Application struct {
	Server *http.Server

	deadlineService *usecase.DeadlineService
	autoPickService *usecase.AutoPickService
	db              *sqlx.DB
	logger          *logging.Logger
}

type repositories struct {
	leagues league.Repository
	members member.Repository
	rounds  round.Repository
	picks   pick.Repository
}

func New(cfg config.Config, logger *logging.Logger, httpLogger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	idGen := idgen.NewRandomGenerator()
	pool := qualifying.DefaultFallbackPool()
	pool.PinnedSeason = cfg.FallbackPinnedSeason

	var source usecase.QualifyingSource
	if cfg.OpenF1Enabled {
		source = openf1.NewClient(openf1.ClientConfig{
			BaseURL:    cfg.OpenF1BaseURL,
			Timeout:    cfg.OpenF1Timeout,
			MaxRetries: cfg.OpenF1MaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.OpenF1CircuitEnabled,
				FailureThreshold: cfg.OpenF1CircuitFailureCount,
				OpenTimeout:      cfg.OpenF1CircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.OpenF1CircuitHalfOpenMaxReq,
			},
		})
	} else {
		source = disabledQualifyingSource{}
	}

	var notifier usecase.EliminationNotifier
	if cfg.NotifyEnabled {
		notifier = notify.NewWebhookPublisher(notify.WebhookPublisherConfig{
			Endpoint: cfg.NotifyEndpoint,
			Token:    cfg.NotifyToken,
			Timeout:  cfg.NotifyTimeout,
			Retry: resilience.RetryConfig{
				MaxAttempts: cfg.NotifyMaxRetries,
			},
		}, logger)
	} else {
		notifier = notify.NewNoopPublisher()
	}

	qualifyingSvc := usecase.NewQualifyingService(
		source,
		cache.NewStore(cfg.QualifyingCacheTTL),
		pool,
		logger,
	)
	qualifyingSvc.SetRetry(resilience.RetryConfig{
		MaxAttempts: cfg.OpenF1MaxRetries,
		Delay:       cfg.OpenF1RetryDelay,
	})

	leagueSvc := usecase.NewLeagueService(repos.leagues, repos.members)
	roundSvc := usecase.NewRoundService(repos.rounds)
	pickSvc := usecase.NewPickService(repos.leagues, repos.members, repos.rounds, repos.picks, idGen)
	autoPickSvc := usecase.NewAutoPickService(
		repos.leagues,
		repos.members,
		repos.rounds,
		repos.picks,
		qualifyingSvc,
		pool,
		idGen,
		logger,
	)
	eliminationSvc := usecase.NewEliminationService(
		repos.leagues,
		repos.members,
		repos.picks,
		notifier,
		idGen,
		logger,
	)
	backfillSvc := usecase.NewBackfillService(eliminationSvc, logger)

	deadlineSvc := usecase.NewDeadlineService(repos.rounds, logger)
	deadlineSvc.SetTiming(cfg.DeadlineTickInterval, cfg.DeadlineWarningWindow)

	handler := httpapi.NewHandler(
		leagueSvc,
		roundSvc,
		pickSvc,
		autoPickSvc,
		eliminationSvc,
		backfillSvc,
		qualifyingSvc,
		logger,
	)
	router := httpapi.NewRouter(
		handler,
		httpLogger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.InternalJobToken,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{
		Server:          server,
		deadlineService: deadlineSvc,
		autoPickService: autoPickSvc,
		db:              db,
		logger:          logger,
	}, nil
}

// StartDeadlineWatch begins watching the current round's pick deadline.
// When it passes, the auto-pick sweep covers every league for that round.
// A missing round or deadline is logged and skipped rather than treated
// as a startup failure.
func (a *Application) StartDeadlineWatch(ctx context.Context) {
	err := a.deadlineService.Start(ctx, usecase.DeadlineCallbacks{
		OnApproaching: func(remaining time.Duration) {
			a.logger.Debug("pick deadline approaching", "remaining", remaining.String())
		},
		OnPassed: func() {
			a.runAutoPickSweep()
		},
	})
	if err != nil {
		a.logger.Warn("deadline watch not started", "error", err)
	}
}

func (a *Application) runAutoPickSweep() {
	item, ok := a.deadlineService.Watched()
	if !ok {
		a.logger.Warn("deadline passed but no watched round is recorded")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := a.autoPickService.RunForRound(ctx, item.ID)
	if err != nil {
		a.logger.Error("auto pick sweep failed", "round_id", item.ID, "error", err)
		return
	}

	a.logger.Info("auto pick sweep completed",
		"round_id", summary.RoundID,
		"leagues_swept", summary.LeaguesSwept,
		"picks_assigned", summary.PicksAssigned,
	)
}

// Close stops the deadline watch and releases the database handle.
func (a *Application) Close() error {
	a.deadlineService.Stop()

	if a.db != nil {
		return a.db.Close()
	}

	return nil
}

// repoCacheTTL bounds staleness of read-through repository caches in the
// database-backed path.
const repoCacheTTL = 30 * time.Second

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	if cfg.DBURL == "" {
		logger.Info("DB_URL not set, using in-memory repositories with seed data")
		return seededMemoryRepositories(), nil, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("open database: %w", err)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := db.PingContext(initCtx); err != nil {
		_ = db.Close()
		return repositories{}, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.BootstrapSeed(initCtx, db); err != nil {
		_ = db.Close()
		return repositories{}, nil, fmt.Errorf("bootstrap seed: %w", err)
	}

	store := cache.NewStore(repoCacheTTL)
	return repositories{
		leagues: repocache.NewLeagueRepository(postgres.NewLeagueRepository(db), store),
		members: repocache.NewMemberRepository(postgres.NewMemberRepository(db), store),
		rounds:  repocache.NewRoundRepository(postgres.NewRoundRepository(db), store),
		picks:   repocache.NewPickRepository(postgres.NewPickRepository(db), store),
	}, db, nil
}

func seededMemoryRepositories() repositories {
	ctx := context.Background()

	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	memberRepo := memory.NewMemberRepository()
	roundRepo := memory.NewRoundRepository()
	pickRepo := memory.NewPickRepository()

	joinedAt := time.Now().UTC().Add(-30 * 24 * time.Hour)
	for _, membership := range memory.SeedMemberships(joinedAt) {
		_ = memberRepo.Update(ctx, membership)
	}
	for _, item := range memory.SeedRounds() {
		_ = roundRepo.Upsert(ctx, item)
	}

	return repositories{
		leagues: leagueRepo,
		members: memberRepo,
		rounds:  roundRepo,
		picks:   pickRepo,
	}
}

// disabledQualifyingSource stands in when no provider is configured; the
// qualifying service falls back to the curated pool on every call.
type disabledQualifyingSource struct{}

func (disabledQualifyingSource) FetchClassification(context.Context, time.Time) ([]qualifying.Entry, error) {
	return nil, fmt.Errorf("qualifying data provider is disabled")
}
