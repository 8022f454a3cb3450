package leaveby

import (
	"testing"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
	"github.com/KasumiMercury/primind-departure-alerts/internal/service/traveltime"
)

func TestCalculator_FlightExample(t *testing.T) {
	calc := NewCalculator(traveltime.NewEstimator())

	event := domain.DepartureEvent{
		ID:        "booking:1",
		EventTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Category:  domain.CategoryFlight,
	}
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

	got := calc.Compute(event, 60, now)

	if got.EstimatedTravelMinutes != 120 {
		t.Errorf("EstimatedTravelMinutes: got %d, want 120", got.EstimatedTravelMinutes)
	}
	want := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	if !got.LeaveByTime.Equal(want) {
		t.Errorf("LeaveByTime: got %v, want %v", got.LeaveByTime, want)
	}
	if got.IsPast || got.IsUrgent {
		t.Errorf("flags: got past=%v urgent=%v, want false/false", got.IsPast, got.IsUrgent)
	}
}

func TestCalculator_LeaveByPerCategory(t *testing.T) {
	calc := NewCalculator(traveltime.NewEstimator())
	eventTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := eventTime.Add(-48 * time.Hour)

	tests := []struct {
		category domain.Category
		lead     int
		travel   int
	}{
		{category: domain.CategoryFlight, lead: 30, travel: 120},
		{category: domain.CategoryHotel, lead: 60, travel: 30},
		{category: domain.CategoryRestaurant, lead: 90, travel: 30},
		{category: domain.CategoryActivity, lead: 120, travel: 45},
		{category: domain.CategoryTransport, lead: 60, travel: 15},
		{category: "", lead: 60, travel: 30},
		{category: domain.CategoryOther, lead: 60, travel: 30},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			event := domain.DepartureEvent{ID: "e", EventTime: eventTime, Category: tt.category}
			got := calc.Compute(event, tt.lead, now)

			want := eventTime.Add(-time.Duration(tt.lead+tt.travel) * time.Minute)
			if !got.LeaveByTime.Equal(want) {
				t.Errorf("LeaveByTime: got %v, want %v", got.LeaveByTime, want)
			}
			if got.EstimatedTravelMinutes != tt.travel {
				t.Errorf("EstimatedTravelMinutes: got %d, want %d", got.EstimatedTravelMinutes, tt.travel)
			}
		})
	}
}

func TestCalculator_UrgencyBoundaries(t *testing.T) {
	calc := NewCalculator(traveltime.NewEstimator())
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	// Transport: 15 travel + 30 lead = 45 minutes before the event.
	const offset = 45 * time.Minute

	tests := []struct {
		name       string
		untilLeave time.Duration
		wantUrgent bool
		wantPast   bool
	}{
		{name: "well ahead", untilLeave: 5 * time.Hour},
		{name: "exactly two hours is not urgent", untilLeave: 2 * time.Hour},
		{name: "just under two hours", untilLeave: 2*time.Hour - time.Second, wantUrgent: true},
		{name: "ten minutes", untilLeave: 10 * time.Minute, wantUrgent: true},
		{name: "leave by now", untilLeave: 0, wantUrgent: true},
		{name: "leave by passed", untilLeave: -time.Minute, wantPast: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := domain.DepartureEvent{
				ID:        "e",
				EventTime: now.Add(tt.untilLeave + offset),
				Category:  domain.CategoryTransport,
			}

			got := calc.Compute(event, 30, now)

			if got.IsUrgent != tt.wantUrgent {
				t.Errorf("IsUrgent: got %v, want %v", got.IsUrgent, tt.wantUrgent)
			}
			if got.IsPast != tt.wantPast {
				t.Errorf("IsPast: got %v, want %v", got.IsPast, tt.wantPast)
			}
		})
	}
}

func TestCalculator_ComputeAllUsesOneLeadTime(t *testing.T) {
	calc := NewCalculator(traveltime.NewEstimator())
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	events := []domain.DepartureEvent{
		{ID: "a", EventTime: now.Add(10 * time.Hour), Category: domain.CategoryHotel},
		{ID: "b", EventTime: now.Add(20 * time.Hour), Category: domain.CategoryFlight},
	}

	results := calc.ComputeAll(events, 90, now)
	index := Index(results)

	if len(index) != 2 {
		t.Fatalf("got %d results, want 2", len(index))
	}
	if got := events[0].EventTime.Sub(index["a"].LeaveByTime); got != 120*time.Minute {
		t.Errorf("a: lead+travel got %v, want 2h", got)
	}
	if got := events[1].EventTime.Sub(index["b"].LeaveByTime); got != 210*time.Minute {
		t.Errorf("b: lead+travel got %v, want 3h30m", got)
	}
}
