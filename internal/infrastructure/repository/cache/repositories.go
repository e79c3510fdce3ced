package cache

import (
	"context"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	basecache "github.com/riskibarqy/f1-survivor/internal/platform/cache"
)

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	key := "league:id:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeagueByID)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) UpdateStatus(ctx context.Context, leagueID, status string) error {
	if err := r.next.UpdateStatus(ctx, leagueID, status); err != nil {
		return err
	}
	r.cache.Delete(ctx, "league:list")
	r.cache.Delete(ctx, "league:id:"+leagueID)
	return nil
}

type cachedLeagueByID struct {
	value  league.League
	exists bool
}

type RoundRepository struct {
	next  round.Repository
	cache *basecache.Store
}

func NewRoundRepository(next round.Repository, cache *basecache.Store) *RoundRepository {
	return &RoundRepository{next: next, cache: cache}
}

func (r *RoundRepository) List(ctx context.Context) ([]round.Round, error) {
	v, err := r.cache.GetOrLoad(ctx, "round:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]round.Round(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]round.Round)
	return append([]round.Round(nil), items...), nil
}

func (r *RoundRepository) GetByID(ctx context.Context, roundID string) (round.Round, bool, error) {
	key := "round:id:" + roundID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, roundID)
		if err != nil {
			return nil, err
		}
		return cachedRoundByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return round.Round{}, false, err
	}

	cached, _ := v.(cachedRoundByID)
	return cached.value, cached.exists, nil
}

// GetCurrent is time dependent, so it always goes to the source.
func (r *RoundRepository) GetCurrent(ctx context.Context) (round.Round, bool, error) {
	return r.next.GetCurrent(ctx)
}

func (r *RoundRepository) Upsert(ctx context.Context, item round.Round) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, "round:list")
	r.cache.Delete(ctx, "round:id:"+item.ID)
	return nil
}

type cachedRoundByID struct {
	value  round.Round
	exists bool
}

type MemberRepository struct {
	next  member.Repository
	cache *basecache.Store
}

func NewMemberRepository(next member.Repository, cache *basecache.Store) *MemberRepository {
	return &MemberRepository{next: next, cache: cache}
}

func (r *MemberRepository) GetByUserAndLeague(ctx context.Context, userID, leagueID string) (member.Membership, bool, error) {
	key := memberKey(userID, leagueID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByUserAndLeague(ctx, userID, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedMemberByUserLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return member.Membership{}, false, err
	}

	cached, _ := v.(cachedMemberByUserLeague)
	return cached.value, cached.exists, nil
}

func (r *MemberRepository) ListByLeague(ctx context.Context, leagueID string) ([]member.Membership, error) {
	key := "member:list:league:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return append([]member.Membership(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]member.Membership)
	return append([]member.Membership(nil), items...), nil
}

func (r *MemberRepository) Update(ctx context.Context, item member.Membership) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, memberKey(item.UserID, item.LeagueID))
	r.cache.Delete(ctx, "member:list:league:"+item.LeagueID)
	return nil
}

// Life events feed the audit trail and elimination idempotency checks, so
// reads always hit the source and the membership entries are invalidated.
func (r *MemberRepository) AppendLifeEvent(ctx context.Context, event member.LifeEvent) error {
	if err := r.next.AppendLifeEvent(ctx, event); err != nil {
		return err
	}
	r.cache.Delete(ctx, memberKey(event.UserID, event.LeagueID))
	r.cache.Delete(ctx, "member:list:league:"+event.LeagueID)
	return nil
}

func (r *MemberRepository) HasLossEvent(ctx context.Context, userID, leagueID, roundID string) (bool, error) {
	return r.next.HasLossEvent(ctx, userID, leagueID, roundID)
}

func (r *MemberRepository) ListLifeEvents(ctx context.Context, userID, leagueID string) ([]member.LifeEvent, error) {
	return r.next.ListLifeEvents(ctx, userID, leagueID)
}

type cachedMemberByUserLeague struct {
	value  member.Membership
	exists bool
}

func memberKey(userID, leagueID string) string {
	return "member:user:" + userID + ":league:" + leagueID
}

type PickRepository struct {
	next  pick.Repository
	cache *basecache.Store
}

func NewPickRepository(next pick.Repository, cache *basecache.Store) *PickRepository {
	return &PickRepository{next: next, cache: cache}
}

func (r *PickRepository) GetByUserLeagueRound(ctx context.Context, userID, leagueID, roundID string) (pick.Pick, bool, error) {
	key := pickKey(userID, leagueID, roundID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByUserLeagueRound(ctx, userID, leagueID, roundID)
		if err != nil {
			return nil, err
		}
		return cachedPickByKey{value: item, exists: exists}, nil
	})
	if err != nil {
		return pick.Pick{}, false, err
	}

	cached, _ := v.(cachedPickByKey)
	return cached.value, cached.exists, nil
}

func (r *PickRepository) ListByUserAndLeague(ctx context.Context, userID, leagueID string) ([]pick.Pick, error) {
	key := "pick:list:user:" + userID + ":league:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByUserAndLeague(ctx, userID, leagueID)
		if err != nil {
			return nil, err
		}
		return append([]pick.Pick(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]pick.Pick)
	return append([]pick.Pick(nil), items...), nil
}

func (r *PickRepository) ListByLeagueAndRound(ctx context.Context, leagueID, roundID string) ([]pick.Pick, error) {
	key := "pick:list:league:" + leagueID + ":round:" + roundID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByLeagueAndRound(ctx, leagueID, roundID)
		if err != nil {
			return nil, err
		}
		return append([]pick.Pick(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]pick.Pick)
	return append([]pick.Pick(nil), items...), nil
}

func (r *PickRepository) Upsert(ctx context.Context, item pick.Pick) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, pickKey(item.UserID, item.LeagueID, item.RoundID))
	r.cache.Delete(ctx, "pick:list:user:"+item.UserID+":league:"+item.LeagueID)
	r.cache.Delete(ctx, "pick:list:league:"+item.LeagueID+":round:"+item.RoundID)
	return nil
}

type cachedPickByKey struct {
	value  pick.Pick
	exists bool
}

func pickKey(userID, leagueID, roundID string) string {
	return "pick:user:" + userID + ":league:" + leagueID + ":round:" + roundID
}
