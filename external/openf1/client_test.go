package openf1

import (
	"testing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func floatPtr(v float64) *float64 { return &v }

func TestRankClassification_OrdersByBestLap(t *testing.T) {
	t.Parallel()

	drivers := []driverRow{
		{DriverNumber: 1, FullName: "Max Verstappen", TeamName: "Red Bull Racing"},
		{DriverNumber: 16, FullName: "Charles Leclerc", TeamName: "Ferrari"},
		{DriverNumber: 4, FullName: "Lando Norris", TeamName: "McLaren"},
	}
	laps := []lapRow{
		{DriverNumber: 1, LapDuration: floatPtr(78.241)},
		{DriverNumber: 1, LapDuration: floatPtr(77.565)},
		{DriverNumber: 16, LapDuration: floatPtr(77.139)},
		{DriverNumber: 4, LapDuration: floatPtr(77.802)},
		{DriverNumber: 4, LapDuration: nil},
	}

	entries := rankClassification(drivers, laps)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantOrder := []string{"16", "1", "4"}
	for i, want := range wantOrder {
		if entries[i].CompetitorID != want {
			t.Fatalf("position %d: expected driver %s, got %s", i+1, want, entries[i].CompetitorID)
		}
		if entries[i].Position != i+1 {
			t.Fatalf("expected position %d, got %d", i+1, entries[i].Position)
		}
	}

	if entries[1].BestLapSeconds == nil || *entries[1].BestLapSeconds != 77.565 {
		t.Fatalf("expected best lap 77.565 for driver 1, got %v", entries[1].BestLapSeconds)
	}
}

func TestRankClassification_DriversWithoutLapsRankLast(t *testing.T) {
	t.Parallel()

	drivers := []driverRow{
		{DriverNumber: 31, FullName: "Esteban Ocon", TeamName: "Haas F1 Team"},
		{DriverNumber: 27, FullName: "Nico Hulkenberg", TeamName: "Kick Sauber"},
		{DriverNumber: 87, FullName: "Oliver Bearman", TeamName: "Haas F1 Team"},
	}
	laps := []lapRow{
		{DriverNumber: 87, LapDuration: floatPtr(79.004)},
	}

	entries := rankClassification(drivers, laps)
	if entries[0].CompetitorID != "87" {
		t.Fatalf("expected timed driver first, got %s", entries[0].CompetitorID)
	}
	// No-time drivers keep provider order between themselves.
	if entries[1].CompetitorID != "31" || entries[2].CompetitorID != "27" {
		t.Fatalf("unexpected tail order: %s, %s", entries[1].CompetitorID, entries[2].CompetitorID)
	}
	if entries[1].BestLapSeconds != nil {
		t.Fatal("driver without laps must not carry a best lap")
	}
}

func TestRankClassification_FallsBackToBroadcastName(t *testing.T) {
	t.Parallel()

	drivers := []driverRow{
		{DriverNumber: 44, BroadcastName: "L HAMILTON", TeamName: "Ferrari"},
	}

	entries := rankClassification(drivers, nil)
	if entries[0].CompetitorName != "L HAMILTON" {
		t.Fatalf("expected broadcast name, got %q", entries[0].CompetitorName)
	}
}

func TestNewClient_DefaultClientUsesTracedTransport(t *testing.T) {
	t.Parallel()

	c := NewClient(ClientConfig{})
	if _, ok := c.httpClient.Transport.(*otelhttp.Transport); !ok {
		t.Fatalf("default client must wrap its transport for tracing, got %T", c.httpClient.Transport)
	}
}
