package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04"
)

// TimeOfDay is a wall-clock time expressed as seconds after local midnight.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parsed, err := time.Parse(timeOfDayLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay(parsed.Hour()*3600 + parsed.Minute()*60), nil
}

// TimeOfDayOf returns the wall-clock time of t in loc.
func TimeOfDayOf(t time.Time, loc *time.Location) TimeOfDay {
	local := t.In(loc)
	return TimeOfDay(local.Hour()*3600 + local.Minute()*60 + local.Second())
}

func (d TimeOfDay) Duration() time.Duration {
	return time.Duration(d) * time.Second
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(d)/3600, int(d)%3600/60)
}

// ResolveInstant combines a calendar date and an optional "HH:MM" time in loc.
// An empty time resolves to local midnight.
func ResolveInstant(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if strings.TrimSpace(clock) == "" {
		return day, nil
	}

	tod, err := ParseTimeOfDay(clock)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(day.Year(), day.Month(), day.Day(), int(tod)/3600, int(tod)%3600/60, 0, 0, loc), nil
}
