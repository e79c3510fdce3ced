package member

import (
	"testing"
	"time"
)

func TestMembershipValidate(t *testing.T) {
	t.Parallel()

	eliminatedAt := time.Date(2025, 5, 25, 15, 0, 0, 0, time.UTC)
	base := Membership{
		UserID:         "user-1",
		LeagueID:       "league-1",
		Status:         StatusActive,
		MaxLives:       3,
		RemainingLives: 2,
		LivesUsed:      1,
	}

	tests := []struct {
		name    string
		mutate  func(*Membership)
		wantErr bool
	}{
		{
			name:   "valid active membership",
			mutate: func(_ *Membership) {},
		},
		{
			name: "valid eliminated membership",
			mutate: func(m *Membership) {
				m.Status = StatusEliminated
				m.RemainingLives = 0
				m.LivesUsed = 3
				m.EliminatedAt = &eliminatedAt
			},
		},
		{
			name: "lives do not add up",
			mutate: func(m *Membership) {
				m.LivesUsed = 0
			},
			wantErr: true,
		},
		{
			name: "negative remaining lives",
			mutate: func(m *Membership) {
				m.RemainingLives = -1
				m.LivesUsed = 4
			},
			wantErr: true,
		},
		{
			name: "eliminated without timestamp",
			mutate: func(m *Membership) {
				m.Status = StatusEliminated
			},
			wantErr: true,
		},
		{
			name: "active with elimination timestamp",
			mutate: func(m *Membership) {
				m.EliminatedAt = &eliminatedAt
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			mutate: func(m *Membership) {
				m.Status = "PAUSED"
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			item := base
			tc.mutate(&item)

			err := item.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestIsLoss(t *testing.T) {
	t.Parallel()

	if !IsLoss(EventLifeLost) || !IsLoss(EventFinalElimination) {
		t.Fatal("loss event types must report as losses")
	}
	if IsLoss(EventLifeRestored) || IsLoss(EventAdminAdjustment) {
		t.Fatal("restore and adjustment events must not report as losses")
	}
}
