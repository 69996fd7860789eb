package models

import (
	"time"
)

type Booking struct {
	ID        int       `json:"id"`
	AdID      int       `json:"ad_id"`
	BookerID  int       `json:"booker_id"`
	Booker    *User     `json:"booker,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Amount    float64   `json:"amount"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ad        *Ad
}

type BookingRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Comment   string `json:"comment"`
}

func (b *Booking) Ad() *Ad { return b.ad }

// Duration is the number of nights between start and end.
func (b *Booking) Duration() int {
	return int(DateOf(b.EndDate).Sub(DateOf(b.StartDate)).Hours() / 24)
}

// Days lists every calendar day of the stay, start and end included.
func (b *Booking) Days() []time.Time {
	return DaysBetween(b.StartDate, b.EndDate)
}

// PrePersist stamps the creation time and computes the amount from the nightly price.
func (b *Booking) PrePersist(price float64, now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.Amount == 0 {
		b.Amount = price * float64(b.Duration())
	}
}

// IsBookableDates reports whether none of the stay's days is already taken.
func (b *Booking) IsBookableDates(notAvailable []time.Time) bool {
	taken := make(map[time.Time]struct{}, len(notAvailable))
	for _, d := range notAvailable {
		taken[DateOf(d)] = struct{}{}
	}
	for _, d := range b.Days() {
		if _, ok := taken[d]; ok {
			return false
		}
	}
	return true
}

func (b *Booking) Validate(today time.Time) error {
	if b.StartDate.IsZero() {
		return invalid("start_date", "start date is required")
	}
	if b.EndDate.IsZero() {
		return invalid("end_date", "end date is required")
	}
	if DateOf(b.StartDate).Before(DateOf(today)) {
		return invalid("start_date", "start date must not be in the past")
	}
	if !DateOf(b.EndDate).After(DateOf(b.StartDate)) {
		return invalid("end_date", "end date must be after start date")
	}
	return nil
}
