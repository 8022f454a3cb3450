package domain

import (
	"time"
)

// SourceKind tells which upstream record a departure event was derived from.
type SourceKind string

const (
	SourceBooking  SourceKind = "booking"
	SourceActivity SourceKind = "activity"
)

func (k SourceKind) String() string {
	return string(k)
}

// Category is the booking category used for travel-time estimation.
type Category string

const (
	CategoryFlight     Category = "flight"
	CategoryHotel      Category = "hotel"
	CategoryRestaurant Category = "restaurant"
	CategoryActivity   Category = "activity"
	CategoryTransport  Category = "transport"
	CategoryOther      Category = "other"

	// CategoryItineraryActivity applies to itinerary entries, which carry no booking category.
	CategoryItineraryActivity Category = "itinerary-activity"
)

func (c Category) String() string {
	return string(c)
}

// DepartureEvent is an upcoming booking or itinerary activity the user has to travel to.
// It is regenerated on every aggregation pass and never mutated.
type DepartureEvent struct {
	ID         string     `json:"id"`
	SourceKind SourceKind `json:"source_kind"`
	Title      string     `json:"title"`
	Location   string     `json:"location"`
	EventTime  time.Time  `json:"event_time"`
	TripID     string     `json:"trip_id,omitempty"`
	TripName   string     `json:"trip_name,omitempty"`
	Category   Category   `json:"category,omitempty"`
}

// TravelCategory returns the category used for travel-time lookup.
func (e DepartureEvent) TravelCategory() Category {
	if e.Category == "" {
		return CategoryItineraryActivity
	}
	return e.Category
}

func BookingEventID(bookingID string) string {
	return "booking:" + bookingID
}

func ActivityEventID(tripID, activityID string) string {
	return "activity:" + tripID + ":" + activityID
}
