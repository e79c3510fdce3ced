package pick

import (
	"fmt"
	"time"
)

// Pick is one user's driver selection for a round within a league. A user
// holds at most one pick per (league, round) pair; resubmitting before the
// deadline replaces the previous selection.
type Pick struct {
	ID             string
	UserID         string
	LeagueID       string
	RoundID        string
	CompetitorID   string
	CompetitorName string
	TeamName       string
	IsAutoPick     bool
	SubmittedAt    time.Time
}

func (p Pick) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("pick user id is required")
	}
	if p.LeagueID == "" {
		return fmt.Errorf("pick league id is required")
	}
	if p.RoundID == "" {
		return fmt.Errorf("pick round id is required")
	}
	if p.CompetitorID == "" {
		return fmt.Errorf("pick competitor id is required")
	}

	return nil
}
