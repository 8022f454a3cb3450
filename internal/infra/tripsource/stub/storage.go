package stub

import (
	"slices"
	"sync"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

// Storage keeps seeded trip data per user in memory.
type Storage struct {
	mu       sync.RWMutex
	bookings map[string][]domain.Booking // userID -> bookings
	trips    map[string][]domain.Trip    // userID -> trips
}

func NewStorage() *Storage {
	return &Storage{
		bookings: make(map[string][]domain.Booking),
		trips:    make(map[string][]domain.Trip),
	}
}

func (s *Storage) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookings, userID)
	delete(s.trips, userID)
}

func (s *Storage) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = make(map[string][]domain.Booking)
	s.trips = make(map[string][]domain.Trip)
}

func (s *Storage) Seed(userID string, bookings []domain.Booking, trips []domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[userID] = append(s.bookings[userID], bookings...)
	s.trips[userID] = append(s.trips[userID], trips...)
}

func (s *Storage) Bookings(userID string) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b := s.bookings[userID]; b != nil {
		return slices.Clone(b)
	}
	return []domain.Booking{}
}

func (s *Storage) Trips(userID string) []domain.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t := s.trips[userID]; t != nil {
		return slices.Clone(t)
	}
	return []domain.Trip{}
}
