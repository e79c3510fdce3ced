package postgres

import (
	"database/sql"
	"time"
)

type memberTableModel struct {
	ID             int64      `db:"id"`
	UserID         string     `db:"user_id"`
	LeagueID       string     `db:"league_public_id"`
	Status         string     `db:"status"`
	MaxLives       int        `db:"max_lives"`
	RemainingLives int        `db:"remaining_lives"`
	LivesUsed      int        `db:"lives_used"`
	JoinedAt       time.Time  `db:"joined_at"`
	EliminatedAt   *time.Time `db:"eliminated_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type memberInsertModel struct {
	UserID         string     `db:"user_id"`
	LeagueID       string     `db:"league_public_id"`
	Status         string     `db:"status"`
	MaxLives       int        `db:"max_lives"`
	RemainingLives int        `db:"remaining_lives"`
	LivesUsed      int        `db:"lives_used"`
	JoinedAt       time.Time  `db:"joined_at"`
	EliminatedAt   *time.Time `db:"eliminated_at"`
}

type lifeEventTableModel struct {
	ID          int64          `db:"id"`
	PublicID    string         `db:"public_id"`
	UserID      string         `db:"user_id"`
	LeagueID    string         `db:"league_public_id"`
	RoundID     sql.NullString `db:"round_public_id"`
	EventType   string         `db:"event_type"`
	LivesBefore int            `db:"lives_before"`
	LivesAfter  int            `db:"lives_after"`
	AdminUserID sql.NullString `db:"admin_user_id"`
	AdminReason sql.NullString `db:"admin_reason"`
	OccurredAt  time.Time      `db:"occurred_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

type lifeEventInsertModel struct {
	PublicID    string         `db:"public_id"`
	UserID      string         `db:"user_id"`
	LeagueID    string         `db:"league_public_id"`
	RoundID     sql.NullString `db:"round_public_id"`
	EventType   string         `db:"event_type"`
	LivesBefore int            `db:"lives_before"`
	LivesAfter  int            `db:"lives_after"`
	AdminUserID sql.NullString `db:"admin_user_id"`
	AdminReason sql.NullString `db:"admin_reason"`
	OccurredAt  time.Time      `db:"occurred_at"`
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
