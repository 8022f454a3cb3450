package tripsource

import (
	"context"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

//go:generate mockgen -source=repository.go -destination=mock.go -package=tripsource

// Repository reads the user's bookings and trips from the trip source.
type Repository interface {
	ListBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	ListTrips(ctx context.Context, userID string) ([]domain.Trip, error)
}
