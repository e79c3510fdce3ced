package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/f1-survivor/internal/domain/member"
)

type MemberRepository struct {
	mu     sync.RWMutex
	items  map[string]member.Membership
	events []member.LifeEvent
}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{items: make(map[string]member.Membership)}
}

func (r *MemberRepository) GetByUserAndLeague(_ context.Context, userID, leagueID string) (member.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[memberKey(userID, leagueID)]
	if !ok {
		return member.Membership{}, false, nil
	}

	return cloneMembership(item), true, nil
}

func (r *MemberRepository) ListByLeague(_ context.Context, leagueID string) ([]member.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]member.Membership, 0, 16)
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			out = append(out, cloneMembership(item))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

func (r *MemberRepository) Update(_ context.Context, item member.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[memberKey(item.UserID, item.LeagueID)] = cloneMembership(item)
	return nil
}

func (r *MemberRepository) AppendLifeEvent(_ context.Context, event member.LifeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}

func (r *MemberRepository) HasLossEvent(_ context.Context, userID, leagueID, roundID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, event := range r.events {
		if event.UserID == userID && event.LeagueID == leagueID && event.RoundID == roundID && member.IsLoss(event.EventType) {
			return true, nil
		}
	}

	return false, nil
}

func (r *MemberRepository) ListLifeEvents(_ context.Context, userID, leagueID string) ([]member.LifeEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]member.LifeEvent, 0, 8)
	for _, event := range r.events {
		if event.UserID == userID && event.LeagueID == leagueID {
			out = append(out, event)
		}
	}

	return out, nil
}

func memberKey(userID, leagueID string) string {
	return userID + "::" + leagueID
}

func cloneMembership(item member.Membership) member.Membership {
	copied := item
	if item.EliminatedAt != nil {
		eliminatedAt := *item.EliminatedAt
		copied.EliminatedAt = &eliminatedAt
	}
	return copied
}
