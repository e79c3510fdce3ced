package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/f1-survivor/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo leagues, rounds, and memberships into an
// empty database. A database that already has leagues is left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range memory.SeedLeagues() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO leagues (public_id, name, season, status, lives_enabled, max_lives)
VALUES (:public_id, :name, :season, :status, :lives_enabled, :max_lives)
ON CONFLICT (public_id) WHERE deleted_at IS NULL DO NOTHING`, map[string]any{
			"public_id":     l.ID,
			"name":          l.Name,
			"season":        l.Season,
			"status":        l.Status,
			"lives_enabled": l.LivesEnabled,
			"max_lives":     l.MaxLives,
		})
		if err != nil {
			return fmt.Errorf("bind seed league %s query: %w", l.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}
	}

	for _, r := range memory.SeedRounds() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO rounds (public_id, season, name, circuit, qualifying_at, race_at, pick_deadline, status)
VALUES (:public_id, :season, :name, :circuit, :qualifying_at, :race_at, :pick_deadline, :status)
ON CONFLICT (public_id) WHERE deleted_at IS NULL DO NOTHING`, map[string]any{
			"public_id":     r.ID,
			"season":        r.Season,
			"name":          r.Name,
			"circuit":       r.Circuit,
			"qualifying_at": r.QualifyingAt.UTC(),
			"race_at":       r.RaceAt.UTC(),
			"pick_deadline": r.PickDeadline,
			"status":        r.Status,
		})
		if err != nil {
			return fmt.Errorf("bind seed round %s query: %w", r.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed round %s: %w", r.ID, err)
		}
	}

	joinedAt := time.Now().UTC().Add(-30 * 24 * time.Hour)
	for _, m := range memory.SeedMemberships(joinedAt) {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO league_members (user_id, league_public_id, status, max_lives, remaining_lives, lives_used, joined_at)
VALUES (:user_id, :league_public_id, :status, :max_lives, :remaining_lives, :lives_used, :joined_at)
ON CONFLICT (user_id, league_public_id) WHERE deleted_at IS NULL DO NOTHING`, map[string]any{
			"user_id":          m.UserID,
			"league_public_id": m.LeagueID,
			"status":           m.Status,
			"max_lives":        m.MaxLives,
			"remaining_lives":  m.RemainingLives,
			"lives_used":       m.LivesUsed,
			"joined_at":        m.JoinedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed membership %s/%s query: %w", m.UserID, m.LeagueID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed membership %s/%s: %w", m.UserID, m.LeagueID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
