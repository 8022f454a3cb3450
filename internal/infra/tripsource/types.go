package tripsource

import "github.com/KasumiMercury/primind-departure-alerts/internal/domain"

type BookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Count    int              `json:"count"`
}

type TripsResponse struct {
	Trips []domain.Trip `json:"trips"`
	Count int           `json:"count"`
}
