package qualifying

import "time"

// Entry is one driver's place in a qualifying classification. Position is
// 1-based grid order; BestLapSeconds is nil when the driver set no time.
type Entry struct {
	CompetitorID   string
	CompetitorName string
	TeamName       string
	Position       int
	BestLapSeconds *float64
}

// Snapshot is a fetched classification for a round, kept alongside the time
// it was fetched so stale data can be refreshed.
type Snapshot struct {
	RoundID   string
	Entries   []Entry
	Fallback  bool
	FetchedAt time.Time
}

// GridSize is the number of cars in a full classification.
const GridSize = 20
