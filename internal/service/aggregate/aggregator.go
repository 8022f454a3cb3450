package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

type dedupKey struct {
	title   string
	instant int64
}

// Aggregator merges confirmed bookings and itinerary activities into one ordered list of
// departure events. Wall-clock fields are resolved in its location.
type Aggregator struct {
	loc *time.Location
}

func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc}
}

// In returns an aggregator that resolves wall-clock fields in loc.
func (a *Aggregator) In(loc *time.Location) *Aggregator {
	return NewAggregator(loc)
}

func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Aggregate never fails: malformed records are skipped with a warning.
func (a *Aggregator) Aggregate(ctx context.Context, bookings []domain.Booking, trips []domain.Trip, now time.Time) []domain.DepartureEvent {
	events := make([]domain.DepartureEvent, 0, len(bookings))
	seen := make(map[dedupKey]bool)
	skipped := 0

	for _, booking := range bookings {
		if !booking.IsConfirmed() {
			continue
		}

		event, err := a.fromBooking(booking)
		if err != nil {
			skipped++
			slog.WarnContext(ctx, "skipping malformed booking",
				slog.String("booking_id", booking.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !event.EventTime.After(now) {
			continue
		}

		seen[keyOf(event)] = true
		events = append(events, event)
	}

	for _, trip := range trips {
		if !trip.IsActive() {
			continue
		}

		for dayIndex, day := range trip.Itinerary {
			for activityIndex, activity := range day.Activities {
				event, err := a.fromActivity(trip, day, activity, dayIndex, activityIndex)
				if err != nil {
					skipped++
					slog.WarnContext(ctx, "skipping malformed itinerary activity",
						slog.String("trip_id", trip.ID),
						slog.String("activity_id", activity.ID),
						slog.String("date", day.Date),
						slog.String("error", err.Error()),
					)
					continue
				}
				if !event.EventTime.After(now) {
					continue
				}

				key := keyOf(event)
				if seen[key] {
					slog.DebugContext(ctx, "dropping duplicate itinerary activity",
						slog.String("event_id", event.ID),
						slog.String("title", event.Title),
						slog.Time("event_time", event.EventTime),
					)
					continue
				}

				seen[key] = true
				events = append(events, event)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventTime.Before(events[j].EventTime)
	})

	slog.DebugContext(ctx, "aggregated departure events",
		slog.Int("event_count", len(events)),
		slog.Int("skipped_count", skipped),
	)

	return events
}

func (a *Aggregator) fromBooking(booking domain.Booking) (domain.DepartureEvent, error) {
	if strings.TrimSpace(booking.ID) == "" {
		return domain.DepartureEvent{}, ErrMissingBookingID
	}

	location := strings.TrimSpace(booking.Location)
	if location == "" {
		return domain.DepartureEvent{}, ErrMissingLocation
	}

	instant, err := domain.ResolveInstant(booking.StartDate, booking.Time, a.loc)
	if err != nil {
		return domain.DepartureEvent{}, err
	}

	return domain.DepartureEvent{
		ID:         domain.BookingEventID(booking.ID),
		SourceKind: domain.SourceBooking,
		Title:      booking.Name,
		Location:   location,
		EventTime:  instant,
		TripID:     booking.TripID,
		Category:   categoryOf(booking.Type),
	}, nil
}

func (a *Aggregator) fromActivity(trip domain.Trip, day domain.ItineraryDay, activity domain.Activity, dayIndex, activityIndex int) (domain.DepartureEvent, error) {
	location := strings.TrimSpace(activity.Location)
	if location == "" {
		return domain.DepartureEvent{}, ErrMissingLocation
	}
	if strings.TrimSpace(activity.Time) == "" {
		return domain.DepartureEvent{}, ErrMissingActivityTime
	}

	instant, err := domain.ResolveInstant(day.Date, activity.Time, a.loc)
	if err != nil {
		return domain.DepartureEvent{}, err
	}

	activityID := activity.ID
	if activityID == "" {
		activityID = syntheticActivityID(dayIndex, activityIndex)
	}

	return domain.DepartureEvent{
		ID:         domain.ActivityEventID(trip.ID, activityID),
		SourceKind: domain.SourceActivity,
		Title:      activity.Name,
		Location:   location,
		EventTime:  instant,
		TripID:     trip.ID,
		TripName:   trip.Destination,
	}, nil
}

func keyOf(event domain.DepartureEvent) dedupKey {
	return dedupKey{title: event.Title, instant: event.EventTime.UnixNano()}
}

func syntheticActivityID(dayIndex, activityIndex int) string {
	return fmt.Sprintf("d%d-a%d", dayIndex, activityIndex)
}

func categoryOf(bookingType string) domain.Category {
	switch c := domain.Category(strings.ToLower(strings.TrimSpace(bookingType))); c {
	case domain.CategoryFlight,
		domain.CategoryHotel,
		domain.CategoryRestaurant,
		domain.CategoryActivity,
		domain.CategoryTransport:
		return c
	default:
		return domain.CategoryOther
	}
}
