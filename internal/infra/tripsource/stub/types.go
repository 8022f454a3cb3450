package stub

import "github.com/KasumiMercury/primind-departure-alerts/internal/domain"

type SeedRequest struct {
	Bookings []domain.Booking `json:"bookings"`
	Trips    []domain.Trip    `json:"trips"`
}
