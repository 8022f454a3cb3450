package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ReminderTiming is how long before an event a reminder fires.
type ReminderTiming string

const (
	Timing5Min   ReminderTiming = "5min"
	Timing15Min  ReminderTiming = "15min"
	Timing30Min  ReminderTiming = "30min"
	Timing1Hour  ReminderTiming = "1hour"
	Timing2Hours ReminderTiming = "2hours"
	Timing1Day   ReminderTiming = "1day"

	// TimingLeaveBy marks the departure alert anchored on the leave-by time.
	TimingLeaveBy ReminderTiming = "leave_by"
	// TimingImmediate marks notifications that fire as soon as they are scheduled.
	TimingImmediate ReminderTiming = "immediate"
)

var reminderOffsets = map[ReminderTiming]time.Duration{
	Timing5Min:   5 * time.Minute,
	Timing15Min:  15 * time.Minute,
	Timing30Min:  30 * time.Minute,
	Timing1Hour:  time.Hour,
	Timing2Hours: 2 * time.Hour,
	Timing1Day:   24 * time.Hour,
}

func (t ReminderTiming) String() string {
	return string(t)
}

// IsReminder reports whether t is one of the user-selectable reminder timings.
func (t ReminderTiming) IsReminder() bool {
	_, ok := reminderOffsets[t]
	return ok
}

// Offset returns the lead of a reminder timing before the event. Non-reminder timings
// have no fixed offset and return zero.
func (t ReminderTiming) Offset() time.Duration {
	return reminderOffsets[t]
}

func ParseReminderTiming(s string) (ReminderTiming, error) {
	t := ReminderTiming(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsReminder() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTiming, s)
	}
	return t, nil
}

// NormalizeTimings drops unknown and duplicate timings and orders the rest from the
// longest lead to the shortest.
func NormalizeTimings(timings []ReminderTiming) []ReminderTiming {
	seen := make(map[ReminderTiming]bool, len(timings))
	out := make([]ReminderTiming, 0, len(timings))
	for _, t := range timings {
		if !t.IsReminder() || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Offset() > out[j].Offset()
	})
	return out
}
