package league

import "fmt"

// League is a survivor pool playing one season. Lives settings are fixed at
// creation; MaxLives bounds how many eliminations a member can absorb.
type League struct {
	ID           string
	Name         string
	Season       string
	Status       string
	LivesEnabled bool
	MaxLives     int
}

const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
)

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Season == "" {
		return fmt.Errorf("league season is required")
	}
	if l.LivesEnabled && l.MaxLives < 1 {
		return fmt.Errorf("league max lives must be at least 1")
	}

	return nil
}
