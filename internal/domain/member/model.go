package member

import (
	"fmt"
	"time"
)

// Membership tracks one user's survival state inside a league.
// LivesUsed + RemainingLives always equals the league's MaxLives, and
// EliminatedAt is set exactly when Status is eliminated.
type Membership struct {
	UserID         string
	LeagueID       string
	Status         string
	MaxLives       int
	RemainingLives int
	LivesUsed      int
	JoinedAt       time.Time
	EliminatedAt   *time.Time
	UpdatedAt      time.Time
}

const (
	StatusActive     = "ACTIVE"
	StatusEliminated = "ELIMINATED"
)

func (m Membership) Validate() error {
	if m.UserID == "" {
		return fmt.Errorf("membership user id is required")
	}
	if m.LeagueID == "" {
		return fmt.Errorf("membership league id is required")
	}
	if m.RemainingLives < 0 {
		return fmt.Errorf("membership remaining lives must not be negative")
	}
	if m.LivesUsed+m.RemainingLives != m.MaxLives {
		return fmt.Errorf("membership lives do not add up to max lives")
	}
	switch m.Status {
	case StatusActive:
		if m.EliminatedAt != nil {
			return fmt.Errorf("active membership must not carry an elimination timestamp")
		}
	case StatusEliminated:
		if m.EliminatedAt == nil {
			return fmt.Errorf("eliminated membership requires an elimination timestamp")
		}
	default:
		return fmt.Errorf("membership status %q is not known", m.Status)
	}

	return nil
}

// LifeEvent is an append-only audit record of a lives transition. Loss
// events are keyed by (user, league, round) so a replayed round cannot
// deduct the same life twice.
type LifeEvent struct {
	ID          string
	UserID      string
	LeagueID    string
	RoundID     string
	EventType   string
	LivesBefore int
	LivesAfter  int
	AdminUserID string
	AdminReason string
	OccurredAt  time.Time
}

const (
	EventLifeLost         = "LIFE_LOST"
	EventFinalElimination = "FINAL_ELIMINATION"
	EventLifeRestored     = "LIFE_RESTORED"
	EventAdminAdjustment  = "ADMIN_ADJUSTMENT"
)

// IsLoss reports whether the event type deducts a life.
func IsLoss(eventType string) bool {
	return eventType == EventLifeLost || eventType == EventFinalElimination
}
