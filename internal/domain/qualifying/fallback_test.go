package qualifying

import "testing"

func TestFallbackPoolChoosePinnedSeason(t *testing.T) {
	t.Parallel()

	pool := DefaultFallbackPool()

	for _, roundID := range []string{"monaco-2025", "canada-2025", "austria-2025"} {
		entry, ok := pool.Choose(pool.PinnedSeason, roundID)
		if !ok {
			t.Fatal("expected a driver from the default pool")
		}
		if entry.CompetitorID != pool.Drivers[0].CompetitorID {
			t.Fatalf("pinned season must always use the first entry, got %s for round %s", entry.CompetitorID, roundID)
		}
	}
}

func TestFallbackPoolChooseIsDeterministic(t *testing.T) {
	t.Parallel()

	pool := DefaultFallbackPool()

	first, ok := pool.Choose("2024", "monaco-2024")
	if !ok {
		t.Fatal("expected a driver from the default pool")
	}
	for i := 0; i < 10; i++ {
		again, ok := pool.Choose("2024", "monaco-2024")
		if !ok {
			t.Fatal("expected a driver from the default pool")
		}
		if again.CompetitorID != first.CompetitorID {
			t.Fatalf("choice changed between calls: %s vs %s", again.CompetitorID, first.CompetitorID)
		}
	}
}

func TestFallbackPoolChooseEmptyPool(t *testing.T) {
	t.Parallel()

	pool := FallbackPool{PinnedSeason: "2025"}
	if _, ok := pool.Choose("2025", "monza-2025"); ok {
		t.Fatal("empty pool must not produce a driver")
	}
}

func TestFallbackPoolEntriesCopies(t *testing.T) {
	t.Parallel()

	pool := DefaultFallbackPool()
	entries := pool.Entries()
	if len(entries) != len(pool.Drivers) {
		t.Fatalf("expected %d entries, got %d", len(pool.Drivers), len(entries))
	}

	entries[0].CompetitorID = "mutated"
	if pool.Drivers[0].CompetitorID == "mutated" {
		t.Fatal("Entries must return a copy of the pool")
	}
}
