package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	qb "github.com/riskibarqy/f1-survivor/internal/platform/querybuilder"
)

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) GetByUserAndLeague(ctx context.Context, userID, leagueID string) (member.Membership, bool, error) {
	query, args, err := qb.Select("*").From("league_members").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return member.Membership{}, false, fmt.Errorf("build get membership query: %w", err)
	}

	var row memberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return member.Membership{}, false, nil
		}
		return member.Membership{}, false, fmt.Errorf("get membership: %w", err)
	}

	return membershipFromRow(row), true, nil
}

func (r *MemberRepository) ListByLeague(ctx context.Context, leagueID string) ([]member.Membership, error) {
	query, args, err := qb.Select("*").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list members query: %w", err)
	}

	var rows []memberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	out := make([]member.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipFromRow(row))
	}

	return out, nil
}

func (r *MemberRepository) Update(ctx context.Context, item member.Membership) error {
	insertModel := memberInsertModel{
		UserID:         item.UserID,
		LeagueID:       item.LeagueID,
		Status:         item.Status,
		MaxLives:       item.MaxLives,
		RemainingLives: item.RemainingLives,
		LivesUsed:      item.LivesUsed,
		JoinedAt:       item.JoinedAt,
		EliminatedAt:   item.EliminatedAt,
	}

	query, args, err := qb.InsertModel("league_members", insertModel, `ON CONFLICT (user_id, league_public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    status = EXCLUDED.status,
    max_lives = EXCLUDED.max_lives,
    remaining_lives = EXCLUDED.remaining_lives,
    lives_used = EXCLUDED.lives_used,
    eliminated_at = EXCLUDED.eliminated_at,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build membership upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}

	return nil
}

func (r *MemberRepository) AppendLifeEvent(ctx context.Context, event member.LifeEvent) error {
	insertModel := lifeEventInsertModel{
		PublicID:    event.ID,
		UserID:      event.UserID,
		LeagueID:    event.LeagueID,
		RoundID:     nullString(event.RoundID),
		EventType:   event.EventType,
		LivesBefore: event.LivesBefore,
		LivesAfter:  event.LivesAfter,
		AdminUserID: nullString(event.AdminUserID),
		AdminReason: nullString(event.AdminReason),
		OccurredAt:  event.OccurredAt,
	}

	query, args, err := qb.InsertModel("life_events", insertModel, "")
	if err != nil {
		return fmt.Errorf("build life event insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert life event: %w", err)
	}

	return nil
}

func (r *MemberRepository) HasLossEvent(ctx context.Context, userID, leagueID, roundID string) (bool, error) {
	query, args, err := qb.Select("COUNT(*)").From("life_events").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
			qb.Eq("round_public_id", roundID),
			qb.In("event_type", []any{member.EventLifeLost, member.EventFinalElimination}),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build loss event count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("count loss events: %w", err)
	}

	return count > 0, nil
}

func (r *MemberRepository) ListLifeEvents(ctx context.Context, userID, leagueID string) ([]member.LifeEvent, error) {
	query, args, err := qb.Select("*").From("life_events").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_public_id", leagueID),
		).
		OrderBy("occurred_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list life events query: %w", err)
	}

	var rows []lifeEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list life events: %w", err)
	}

	out := make([]member.LifeEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, member.LifeEvent{
			ID:          row.PublicID,
			UserID:      row.UserID,
			LeagueID:    row.LeagueID,
			RoundID:     row.RoundID.String,
			EventType:   row.EventType,
			LivesBefore: row.LivesBefore,
			LivesAfter:  row.LivesAfter,
			AdminUserID: row.AdminUserID.String,
			AdminReason: row.AdminReason.String,
			OccurredAt:  row.OccurredAt,
		})
	}

	return out, nil
}

func membershipFromRow(row memberTableModel) member.Membership {
	item := member.Membership{
		UserID:         row.UserID,
		LeagueID:       row.LeagueID,
		Status:         row.Status,
		MaxLives:       row.MaxLives,
		RemainingLives: row.RemainingLives,
		LivesUsed:      row.LivesUsed,
		JoinedAt:       row.JoinedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.EliminatedAt != nil {
		eliminatedAt := *row.EliminatedAt
		item.EliminatedAt = &eliminatedAt
	}
	return item
}
