package memory

import (
	"time"

	"github.com/riskibarqy/f1-survivor/internal/domain/league"
	"github.com/riskibarqy/f1-survivor/internal/domain/member"
	"github.com/riskibarqy/f1-survivor/internal/domain/round"
)

const (
	LeagueIDPaddockClub  = "paddock-club-2025"
	LeagueIDMidfieldCrew = "midfield-crew-2025"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:           LeagueIDPaddockClub,
			Name:         "Paddock Club",
			Season:       "2025",
			Status:       league.StatusActive,
			LivesEnabled: true,
			MaxLives:     3,
		},
		{
			ID:           LeagueIDMidfieldCrew,
			Name:         "Midfield Crew",
			Season:       "2025",
			Status:       league.StatusActive,
			LivesEnabled: true,
			MaxLives:     1,
		},
	}
}

func SeedRounds() []round.Round {
	return []round.Round{
		seedRound("monaco-2025", "Monaco Grand Prix", "Monte Carlo",
			time.Date(2025, 5, 24, 14, 0, 0, 0, time.UTC),
			time.Date(2025, 5, 25, 13, 0, 0, 0, time.UTC)),
		seedRound("canada-2025", "Canadian Grand Prix", "Montreal",
			time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)),
		seedRound("austria-2025", "Austrian Grand Prix", "Spielberg",
			time.Date(2025, 6, 28, 14, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 29, 13, 0, 0, 0, time.UTC)),
		seedRound("britain-2025", "British Grand Prix", "Silverstone",
			time.Date(2025, 7, 5, 14, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 6, 14, 0, 0, 0, time.UTC)),
	}
}

func seedRound(id, name, circuit string, qualifyingAt, raceAt time.Time) round.Round {
	deadline := raceAt.Add(-time.Hour)
	return round.Round{
		ID:           id,
		Season:       "2025",
		Name:         name,
		Circuit:      circuit,
		QualifyingAt: qualifyingAt,
		RaceAt:       raceAt,
		PickDeadline: &deadline,
		Status:       round.StatusScheduled,
	}
}

func SeedMemberships(joinedAt time.Time) []member.Membership {
	memberships := make([]member.Membership, 0, 6)
	for _, userID := range []string{"user-alpha", "user-bravo", "user-charlie"} {
		memberships = append(memberships, member.Membership{
			UserID:         userID,
			LeagueID:       LeagueIDPaddockClub,
			Status:         member.StatusActive,
			MaxLives:       3,
			RemainingLives: 3,
			JoinedAt:       joinedAt,
			UpdatedAt:      joinedAt,
		})
		memberships = append(memberships, member.Membership{
			UserID:         userID,
			LeagueID:       LeagueIDMidfieldCrew,
			Status:         member.StatusActive,
			MaxLives:       1,
			RemainingLives: 1,
			JoinedAt:       joinedAt,
			UpdatedAt:      joinedAt,
		})
	}
	return memberships
}
