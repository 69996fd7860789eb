package models

import (
	"testing"
	"time"
)

func TestBookingDurationAndDays(t *testing.T) {
	b := &Booking{StartDate: day("2024-02-27"), EndDate: day("2024-03-02")}
	if got := b.Duration(); got != 4 {
		t.Fatalf("Duration() = %d, want 4", got)
	}
	got := FormatDays(b.Days())
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(got) != len(want) {
		t.Fatalf("Days() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Days() = %v, want %v", got, want)
		}
	}
}

func TestBookingPrePersist(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	b := &Booking{StartDate: day("2024-01-10"), EndDate: day("2024-01-13")}
	b.PrePersist(45.5, now)
	if b.Amount != 136.5 {
		t.Fatalf("Amount = %v, want 136.5", b.Amount)
	}
	if !b.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v", b.CreatedAt)
	}

	b.PrePersist(1000, now.Add(time.Hour))
	if b.Amount != 136.5 || !b.CreatedAt.Equal(now) {
		t.Fatal("PrePersist overwrote existing values")
	}
}

func TestBookingIsBookableDates(t *testing.T) {
	taken := DaysBetween(day("2024-01-10"), day("2024-01-12"))

	tests := []struct {
		start, end string
		want       bool
	}{
		{"2024-01-05", "2024-01-09", true},
		{"2024-01-13", "2024-01-15", true},
		{"2024-01-08", "2024-01-10", false},
		{"2024-01-12", "2024-01-14", false},
		{"2024-01-01", "2024-01-31", false},
	}
	for _, tt := range tests {
		b := &Booking{StartDate: day(tt.start), EndDate: day(tt.end)}
		if got := b.IsBookableDates(taken); got != tt.want {
			t.Errorf("%s..%s bookable = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}

	// a non-UTC timestamp on a taken day still collides
	local := time.Date(2024, 1, 11, 23, 0, 0, 0, time.FixedZone("X", 5*3600))
	b := &Booking{StartDate: day("2024-01-11"), EndDate: day("2024-01-11")}
	if b.IsBookableDates([]time.Time{local}) {
		t.Fatal("collision across time zones not detected")
	}
}

func TestBookingValidate(t *testing.T) {
	today := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	ok := &Booking{StartDate: day("2024-01-10"), EndDate: day("2024-01-11")}
	if err := ok.Validate(today); err != nil {
		t.Fatalf("same-day start rejected: %v", err)
	}

	tests := []struct {
		name  string
		b     Booking
		field string
	}{
		{"no start", Booking{EndDate: day("2024-01-11")}, "start_date"},
		{"no end", Booking{StartDate: day("2024-01-11")}, "end_date"},
		{"past", Booking{StartDate: day("2024-01-09"), EndDate: day("2024-01-11")}, "start_date"},
		{"zero nights", Booking{StartDate: day("2024-01-11"), EndDate: day("2024-01-11")}, "end_date"},
	}
	for _, tt := range tests {
		err := tt.b.Validate(today)
		verr, isValidation := err.(*ValidationError)
		if !isValidation || verr.Field != tt.field {
			t.Errorf("%s: Validate() = %v, want field %s", tt.name, err, tt.field)
		}
	}
}

func TestDaysBetweenReversed(t *testing.T) {
	if got := DaysBetween(day("2024-01-02"), day("2024-01-01")); got != nil {
		t.Fatalf("reversed range = %v", got)
	}
}
