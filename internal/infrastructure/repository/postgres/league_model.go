package postgres

import "time"

type leagueTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	Name         string     `db:"name"`
	Season       string     `db:"season"`
	Status       string     `db:"status"`
	LivesEnabled bool       `db:"lives_enabled"`
	MaxLives     int        `db:"max_lives"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}
