package member

import "context"

// Repository exposes membership state and the life-event audit trail.
type Repository interface {
	GetByUserAndLeague(ctx context.Context, userID, leagueID string) (Membership, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Membership, error)
	Update(ctx context.Context, item Membership) error

	AppendLifeEvent(ctx context.Context, event LifeEvent) error
	// HasLossEvent reports whether a loss event was already recorded for the
	// (user, league, round) key.
	HasLossEvent(ctx context.Context, userID, leagueID, roundID string) (bool, error)
	ListLifeEvents(ctx context.Context, userID, leagueID string) ([]LifeEvent, error)
}
