package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "evening", input: "22:30", want: TimeOfDay(22*3600 + 30*60)},
		{name: "surrounding spaces", input: " 07:00 ", want: TimeOfDay(7 * 3600)},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "missing minutes", input: "9", wantErr: true},
		{name: "free text", input: "noon", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeOfDay) {
					t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveInstant(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name    string
		date    string
		clock   string
		loc     *time.Location
		want    time.Time
		wantErr error
	}{
		{
			name:  "date and time",
			date:  "2024-06-01",
			clock: "09:00",
			loc:   time.UTC,
			want:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "missing time resolves to local midnight",
			date: "2024-06-01",
			loc:  tokyo,
			want: time.Date(2024, 6, 1, 0, 0, 0, 0, tokyo),
		},
		{
			name:    "malformed time",
			date:    "2024-06-01",
			clock:   "9pm",
			loc:     time.UTC,
			wantErr: ErrInvalidTimeOfDay,
		},
		{
			name:    "malformed date",
			date:    "06/01/2024",
			clock:   "09:00",
			loc:     time.UTC,
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveInstant(tt.date, tt.clock, tt.loc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ResolveInstant() = %v, want %v", got, tt.want)
			}
		})
	}
}
