package qualifying

import "hash/fnv"

// FallbackPool is the set of historically safe mid-field drivers used when
// no real classification can be obtained. Selection is deterministic per
// round so retries and concurrent callers agree on the same driver.
type FallbackPool struct {
	// PinnedSeason names the season the pool's driver list was curated for.
	PinnedSeason string
	Drivers      []Entry
}

// DefaultFallbackPool returns the curated pool. Grid positions reflect a
// typical mid-field qualifying run for these cars.
func DefaultFallbackPool() FallbackPool {
	return FallbackPool{
		PinnedSeason: "2025",
		Drivers: []Entry{
			{CompetitorID: "31", CompetitorName: "Esteban Ocon", TeamName: "Haas F1 Team", Position: 15},
			{CompetitorID: "87", CompetitorName: "Oliver Bearman", TeamName: "Haas F1 Team", Position: 16},
			{CompetitorID: "27", CompetitorName: "Nico Hulkenberg", TeamName: "Kick Sauber", Position: 17},
			{CompetitorID: "5", CompetitorName: "Gabriel Bortoleto", TeamName: "Kick Sauber", Position: 18},
		},
	}
}

// Choose picks one driver from the pool for the given round. Rounds in the
// season the pool was curated for always get the first entry; other seasons
// map the round ID onto the pool. The same round always maps to the same
// driver.
func (p FallbackPool) Choose(season, roundID string) (Entry, bool) {
	if len(p.Drivers) == 0 {
		return Entry{}, false
	}
	if season != "" && season == p.PinnedSeason {
		return p.Drivers[0], true
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(roundID))

	return p.Drivers[int(h.Sum32())%len(p.Drivers)], true
}

// Entries returns the pool as a classification fragment, in pool order.
func (p FallbackPool) Entries() []Entry {
	out := make([]Entry, len(p.Drivers))
	copy(out, p.Drivers)

	return out
}
