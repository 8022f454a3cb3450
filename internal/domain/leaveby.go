package domain

import "time"

// UrgencyWindow is the span before a leave-by time during which a departure is urgent.
const UrgencyWindow = 2 * time.Hour

type LeaveByResult struct {
	Event                  DepartureEvent `json:"event"`
	LeaveByTime            time.Time      `json:"leave_by_time"`
	EstimatedTravelMinutes int            `json:"estimated_travel_minutes"`
	IsUrgent               bool           `json:"is_urgent"`
	IsPast                 bool           `json:"is_past"`
}
