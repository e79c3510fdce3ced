package pick

import "context"

// Repository exposes pick persistence operations.
type Repository interface {
	GetByUserLeagueRound(ctx context.Context, userID, leagueID, roundID string) (Pick, bool, error)
	ListByUserAndLeague(ctx context.Context, userID, leagueID string) ([]Pick, error)
	ListByLeagueAndRound(ctx context.Context, leagueID, roundID string) ([]Pick, error)
	// Upsert replaces any existing pick for the same (user, league, round) key.
	Upsert(ctx context.Context, item Pick) error
}
