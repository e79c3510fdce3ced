package postgres

import "time"

type roundTableModel struct {
	ID           int64      `db:"id"`
	PublicID     string     `db:"public_id"`
	Season       string     `db:"season"`
	Name         string     `db:"name"`
	Circuit      string     `db:"circuit"`
	QualifyingAt time.Time  `db:"qualifying_at"`
	RaceAt       time.Time  `db:"race_at"`
	PickDeadline *time.Time `db:"pick_deadline"`
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

type roundInsertModel struct {
	PublicID     string     `db:"public_id"`
	Season       string     `db:"season"`
	Name         string     `db:"name"`
	Circuit      string     `db:"circuit"`
	QualifyingAt time.Time  `db:"qualifying_at"`
	RaceAt       time.Time  `db:"race_at"`
	PickDeadline *time.Time `db:"pick_deadline"`
	Status       string     `db:"status"`
}
