package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/f1-survivor/internal/domain/pick"
	qb "github.com/riskibarqy/f1-survivor/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetByUserLeagueRound(ctx context.Context, userID, leagueID, roundID string) (pick.Pick, bool, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("round_public_id", roundID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build get pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("get pick: %w", err)
	}

	return pickFromRow(row), true, nil
}

func (r *PickRepository) ListByUserAndLeague(ctx context.Context, userID, leagueID string) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("submitted_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by user query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks by user: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}

	return out, nil
}

func (r *PickRepository) ListByLeagueAndRound(ctx context.Context, leagueID, roundID string) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("round_public_id", roundID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by round query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks by round: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}

	return out, nil
}

func (r *PickRepository) Upsert(ctx context.Context, item pick.Pick) error {
	insertModel := pickInsertModel{
		PublicID:       item.ID,
		UserID:         item.UserID,
		LeagueID:       item.LeagueID,
		RoundID:        item.RoundID,
		CompetitorID:   item.CompetitorID,
		CompetitorName: item.CompetitorName,
		TeamName:       item.TeamName,
		IsAutoPick:     item.IsAutoPick,
		SubmittedAt:    item.SubmittedAt,
	}

	query, args, err := qb.InsertModel("picks", insertModel, `ON CONFLICT (user_id, league_public_id, round_public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    public_id = EXCLUDED.public_id,
    competitor_id = EXCLUDED.competitor_id,
    competitor_name = EXCLUDED.competitor_name,
    team_name = EXCLUDED.team_name,
    is_auto_pick = EXCLUDED.is_auto_pick,
    submitted_at = EXCLUDED.submitted_at,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build pick upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pick: %w", err)
	}

	return nil
}

func pickFromRow(row pickTableModel) pick.Pick {
	return pick.Pick{
		ID:             row.PublicID,
		UserID:         row.UserID,
		LeagueID:       row.LeagueID,
		RoundID:        row.RoundID,
		CompetitorID:   row.CompetitorID,
		CompetitorName: row.CompetitorName,
		TeamName:       row.TeamName,
		IsAutoPick:     row.IsAutoPick,
		SubmittedAt:    row.SubmittedAt,
	}
}
