package traveltime

import (
	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

// DefaultMinutes is used for categories without a dedicated estimate.
const DefaultMinutes = 30

var estimates = map[domain.Category]int{
	domain.CategoryFlight:            120,
	domain.CategoryHotel:             30,
	domain.CategoryRestaurant:        30,
	domain.CategoryActivity:          45,
	domain.CategoryTransport:         15,
	domain.CategoryItineraryActivity: 30,
}

// Estimator returns static travel-time estimates per category.
type Estimator struct{}

func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns the minutes needed to reach an event of the given category.
func (e *Estimator) Estimate(category domain.Category) int {
	if minutes, ok := estimates[category]; ok {
		return minutes
	}
	return DefaultMinutes
}
