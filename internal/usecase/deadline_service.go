package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
)

const (
	deadlineTickInterval  = time.Second
	deadlineWarningWindow = time.Hour
)

// DeadlineCallbacks receive deadline transitions for the watched round.
// OnApproaching fires on every tick inside the warning window; OnPassed
// fires exactly once.
type DeadlineCallbacks struct {
	OnApproaching func(remaining time.Duration)
	OnPassed      func()
}

// DeadlineService watches the current round's pick deadline and drives the
// auto-pick flow when it elapses. One round is watched at a time; starting
// a new watch replaces the previous one.
type DeadlineService struct {
	roundRepo     round.Repository
	logger        *logging.Logger
	clock         clockwork.Clock
	tickInterval  time.Duration
	warningWindow time.Duration

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	watched     round.Round
	passedFired bool
}

func NewDeadlineService(roundRepo round.Repository, logger *logging.Logger) *DeadlineService {
	if logger == nil {
		logger = logging.Default()
	}

	return &DeadlineService{
		roundRepo:     roundRepo,
		logger:        logger,
		clock:         clockwork.NewRealClock(),
		tickInterval:  deadlineTickInterval,
		warningWindow: deadlineWarningWindow,
	}
}

// SetTiming overrides the tick interval and warning window. Call before
// Start; a watch already running keeps its original timing.
func (s *DeadlineService) SetTiming(tick, warningWindow time.Duration) {
	if tick > 0 {
		s.tickInterval = tick
	}
	if warningWindow > 0 {
		s.warningWindow = warningWindow
	}
}

// Watched returns the round currently being watched, when any.
func (s *DeadlineService) Watched() (round.Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.watched, s.watched.ID != ""
}

// Start begins watching the current round's deadline. It returns
// ErrDeadlineUnavailable when no current round exists or the round has no
// configured deadline; no timer runs in that case. A deadline that already
// elapsed fires OnPassed immediately without starting a timer.
func (s *DeadlineService) Start(ctx context.Context, callbacks DeadlineCallbacks) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeadlineService.Start")
	defer span.End()

	item, exists, err := s.roundRepo.GetCurrent(ctx)
	if err != nil {
		return fmt.Errorf("get current round: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: no current round", ErrDeadlineUnavailable)
	}
	if !item.HasDeadline() {
		s.logger.WarnContext(ctx, "round has no pick deadline", "round_id", item.ID)
		return fmt.Errorf("%w: round %s has no deadline", ErrDeadlineUnavailable, item.ID)
	}

	s.Stop()

	s.mu.Lock()
	s.watched = item
	s.passedFired = false
	s.mu.Unlock()

	if s.evaluate(item, callbacks) {
		return nil
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "watching pick deadline",
		"round_id", item.ID,
		"deadline", item.PickDeadline.UTC().Format(time.RFC3339),
	)

	go s.watch(watchCtx, item, callbacks, done)

	return nil
}

func (s *DeadlineService) watch(ctx context.Context, item round.Round, callbacks DeadlineCallbacks, done chan struct{}) {
	defer close(done)

	ticker := s.clock.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if s.evaluate(item, callbacks) {
				return
			}
		}
	}
}

// evaluate fires the callbacks due at the current instant and reports
// whether the deadline has passed.
func (s *DeadlineService) evaluate(item round.Round, callbacks DeadlineCallbacks) bool {
	now := s.clock.Now()
	remaining := item.PickDeadline.Sub(now)

	if remaining > 0 {
		if remaining <= s.warningWindow && callbacks.OnApproaching != nil {
			callbacks.OnApproaching(remaining)
		}
		return false
	}

	s.mu.Lock()
	alreadyFired := s.passedFired
	s.passedFired = true
	s.mu.Unlock()

	if !alreadyFired {
		s.logger.Info("pick deadline passed", "round_id", item.ID)
		if callbacks.OnPassed != nil {
			callbacks.OnPassed()
		}
	}

	return true
}

// Stop ends the current watch and waits for its timer goroutine to exit.
// Safe to call when nothing is being watched.
func (s *DeadlineService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// IsPassed reports whether the round's pick deadline has elapsed. Rounds
// without a configured deadline report true alongside
// ErrDeadlineUnavailable so callers that gate submissions fail closed.
func (s *DeadlineService) IsPassed(ctx context.Context, roundID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DeadlineService.IsPassed")
	defer span.End()

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return true, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return true, fmt.Errorf("%w: round %s", ErrNotFound, roundID)
	}
	if !item.HasDeadline() {
		return true, fmt.Errorf("%w: round %s has no deadline", ErrDeadlineUnavailable, roundID)
	}

	return item.DeadlinePassed(s.clock.Now()), nil
}
