package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/round"
)

type RoundRepository struct {
	mu    sync.RWMutex
	items map[string]round.Round
	now   func() time.Time
}

func NewRoundRepository() *RoundRepository {
	return &RoundRepository{
		items: make(map[string]round.Round),
		now:   time.Now,
	}
}

func (r *RoundRepository) List(_ context.Context) ([]round.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]round.Round, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, cloneRound(item))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RaceAt.Before(out[j].RaceAt) })

	return out, nil
}

func (r *RoundRepository) GetByID(_ context.Context, roundID string) (round.Round, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[roundID]
	if !ok {
		return round.Round{}, false, nil
	}

	return cloneRound(item), true, nil
}

func (r *RoundRepository) GetCurrent(_ context.Context) (round.Round, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	var (
		current round.Round
		found   bool
	)
	for _, item := range r.items {
		if item.RaceAt.Before(now) {
			continue
		}
		if !found || item.RaceAt.Before(current.RaceAt) {
			current = item
			found = true
		}
	}
	if !found {
		return round.Round{}, false, nil
	}

	return cloneRound(current), true, nil
}

func (r *RoundRepository) Upsert(_ context.Context, item round.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneRound(item)
	return nil
}

func cloneRound(item round.Round) round.Round {
	copied := item
	if item.PickDeadline != nil {
		deadline := *item.PickDeadline
		copied.PickDeadline = &deadline
	}
	return copied
}
