package postgres

import "time"

type pickTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	UserID         string     `db:"user_id"`
	LeagueID       string     `db:"league_public_id"`
	RoundID        string     `db:"round_public_id"`
	CompetitorID   string     `db:"competitor_id"`
	CompetitorName string     `db:"competitor_name"`
	TeamName       string     `db:"team_name"`
	IsAutoPick     bool       `db:"is_auto_pick"`
	SubmittedAt    time.Time  `db:"submitted_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type pickInsertModel struct {
	PublicID       string    `db:"public_id"`
	UserID         string    `db:"user_id"`
	LeagueID       string    `db:"league_public_id"`
	RoundID        string    `db:"round_public_id"`
	CompetitorID   string    `db:"competitor_id"`
	CompetitorName string    `db:"competitor_name"`
	TeamName       string    `db:"team_name"`
	IsAutoPick     bool      `db:"is_auto_pick"`
	SubmittedAt    time.Time `db:"submitted_at"`
}
