package domain

import "strings"

const (
	BookingStatusConfirmed = "confirmed"

	TripStatusUpcoming = "upcoming"
	TripStatusOngoing  = "ongoing"
)

// Booking is a reservation as reported by the trip source.
type Booking struct {
	ID        string `json:"id"`
	TripID    string `json:"trip_id,omitempty"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	Time      string `json:"time,omitempty"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Location  string `json:"location"`
}

func (b Booking) IsConfirmed() bool {
	return strings.EqualFold(strings.TrimSpace(b.Status), BookingStatusConfirmed)
}

type Activity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

type ItineraryDay struct {
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

type Trip struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Destination string         `json:"destination"`
	Itinerary   []ItineraryDay `json:"itinerary"`
}

// IsActive reports whether the trip's itinerary should produce departures.
func (t Trip) IsActive() bool {
	status := strings.ToLower(strings.TrimSpace(t.Status))
	return status == TripStatusUpcoming || status == TripStatusOngoing
}
