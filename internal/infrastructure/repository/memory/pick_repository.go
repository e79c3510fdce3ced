package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	items map[string]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{items: make(map[string]pick.Pick)}
}

func (r *PickRepository) GetByUserLeagueRound(_ context.Context, userID, leagueID, roundID string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[pickKey(userID, leagueID, roundID)]
	if !ok {
		return pick.Pick{}, false, nil
	}

	return item, true, nil
}

func (r *PickRepository) ListByUserAndLeague(_ context.Context, userID, leagueID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 8)
	for _, item := range r.items {
		if item.UserID == userID && item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sortPicks(out)

	return out, nil
}

func (r *PickRepository) ListByLeagueAndRound(_ context.Context, leagueID, roundID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 16)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.RoundID == roundID {
			out = append(out, item)
		}
	}
	sortPicks(out)

	return out, nil
}

func (r *PickRepository) Upsert(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[pickKey(item.UserID, item.LeagueID, item.RoundID)] = item
	return nil
}

func pickKey(userID, leagueID, roundID string) string {
	return userID + "::" + leagueID + "::" + roundID
}

func sortPicks(items []pick.Pick) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].RoundID != items[j].RoundID {
			return items[i].RoundID < items[j].RoundID
		}
		return items[i].UserID < items[j].UserID
	})
}
