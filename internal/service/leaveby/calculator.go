package leaveby

import (
	"time"

	"github.com/KasumiMercury/primind-departure-alerts/internal/domain"
)

type TravelTimeEstimator interface {
	Estimate(category domain.Category) int
}

type Calculator struct {
	estimator TravelTimeEstimator
}

func NewCalculator(estimator TravelTimeEstimator) *Calculator {
	return &Calculator{
		estimator: estimator,
	}
}

// Compute derives the leave-by instant of event. The result depends on now and must not
// be cached across clock advances.
func (c *Calculator) Compute(event domain.DepartureEvent, leadTimeMinutes int, now time.Time) domain.LeaveByResult {
	travelMinutes := c.estimator.Estimate(event.TravelCategory())
	leaveBy := event.EventTime.Add(-time.Duration(leadTimeMinutes+travelMinutes) * time.Minute)

	isPast := leaveBy.Before(now)
	isUrgent := !isPast && leaveBy.Sub(now) < domain.UrgencyWindow

	return domain.LeaveByResult{
		Event:                  event,
		LeaveByTime:            leaveBy,
		EstimatedTravelMinutes: travelMinutes,
		IsUrgent:               isUrgent,
		IsPast:                 isPast,
	}
}

// ComputeAll applies one lead time uniformly to every event of a pass.
func (c *Calculator) ComputeAll(events []domain.DepartureEvent, leadTimeMinutes int, now time.Time) []domain.LeaveByResult {
	results := make([]domain.LeaveByResult, 0, len(events))
	for _, event := range events {
		results = append(results, c.Compute(event, leadTimeMinutes, now))
	}
	return results
}

// Index maps event ids to their leave-by results.
func Index(results []domain.LeaveByResult) map[string]domain.LeaveByResult {
	index := make(map[string]domain.LeaveByResult, len(results))
	for _, r := range results {
		index[r.Event.ID] = r
	}
	return index
}
