package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
	qb "github.com/riskibarqy/f1-survivor/internal/platform/querybuilder"
)

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) List(ctx context.Context) ([]round.Round, error) {
	query, args, err := qb.Select("*").From("rounds").
		Where(qb.IsNull("deleted_at")).
		OrderBy("race_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rounds query: %w", err)
	}

	var rows []roundTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	out := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundFromRow(row))
	}

	return out, nil
}

func (r *RoundRepository) GetByID(ctx context.Context, roundID string) (round.Round, bool, error) {
	query, args, err := qb.Select("*").From("rounds").
		Where(
			qb.Eq("public_id", roundID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build get round by id query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get round by id: %w", err)
	}

	return roundFromRow(row), true, nil
}

func (r *RoundRepository) GetCurrent(ctx context.Context) (round.Round, bool, error) {
	query, args, err := qb.Select("*").From("rounds").
		Where(
			qb.Expr("race_at >= NOW()"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("race_at").
		Limit(1).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build get current round query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get current round: %w", err)
	}

	return roundFromRow(row), true, nil
}

func (r *RoundRepository) Upsert(ctx context.Context, item round.Round) error {
	insertModel := roundInsertModel{
		PublicID:     item.ID,
		Season:       item.Season,
		Name:         item.Name,
		Circuit:      item.Circuit,
		QualifyingAt: item.QualifyingAt,
		RaceAt:       item.RaceAt,
		PickDeadline: item.PickDeadline,
		Status:       item.Status,
	}

	query, args, err := qb.InsertModel("rounds", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    season = EXCLUDED.season,
    name = EXCLUDED.name,
    circuit = EXCLUDED.circuit,
    qualifying_at = EXCLUDED.qualifying_at,
    race_at = EXCLUDED.race_at,
    pick_deadline = EXCLUDED.pick_deadline,
    status = EXCLUDED.status,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build round upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert round: %w", err)
	}

	return nil
}

func roundFromRow(row roundTableModel) round.Round {
	item := round.Round{
		ID:           row.PublicID,
		Season:       row.Season,
		Name:         row.Name,
		Circuit:      row.Circuit,
		QualifyingAt: row.QualifyingAt,
		RaceAt:       row.RaceAt,
		Status:       row.Status,
	}
	if row.PickDeadline != nil {
		deadline := *row.PickDeadline
		item.PickDeadline = &deadline
	}
	return item
}
