package round

import (
	"fmt"
	"time"
)

// Round is one race weekend of a season: qualifying, the race, and the
// pick deadline that gates submissions for it.
type Round struct {
	ID           string
	Season       string
	Name         string
	Circuit      string
	QualifyingAt time.Time
	RaceAt       time.Time
	PickDeadline *time.Time
	Status       string
}

const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
)

func (r Round) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("round id is required")
	}
	if r.Season == "" {
		return fmt.Errorf("round season is required")
	}
	if r.Name == "" {
		return fmt.Errorf("round name is required")
	}

	return nil
}

// HasDeadline reports whether a pick deadline is configured for the round.
func (r Round) HasDeadline() bool {
	return r.PickDeadline != nil && !r.PickDeadline.IsZero()
}

// DeadlinePassed reports whether the pick deadline has elapsed at the given
// instant. Rounds without a configured deadline never report passed here;
// callers decide how to treat that case.
func (r Round) DeadlinePassed(now time.Time) bool {
	if !r.HasDeadline() {
		return false
	}

	return !now.Before(*r.PickDeadline)
}
