package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"golang.org/x/exp/slices"
)

const (
	MinTitleLength        = 10
	MaxTitleLength        = 255
	MinIntroductionLength = 100
)

type Ad struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Price        float64    `json:"price"`
	Introduction string     `json:"introduction"`
	Content      string     `json:"content"`
	CoverImage   string     `json:"cover_image"`
	AuthorID     int        `json:"author_id"`
	Author       *User      `json:"author,omitempty"`
	Images       []*Image   `json:"images"`
	Bookings     []*Booking `json:"bookings"`
	Comments     []*Comment `json:"comments"`
}

type AdRequest struct {
	Title        string  `json:"title"`
	Slug         string  `json:"slug,omitempty"`
	Price        float64 `json:"price"`
	Introduction string  `json:"introduction"`
	Content      string  `json:"content"`
	CoverImage   string  `json:"cover_image"`
}

type AdListResponse struct {
	Ads   []Ad `json:"ads"`
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
}

type AvailabilityResponse struct {
	AdID             int      `json:"ad_id"`
	NotAvailableDays []string `json:"not_available_days"`
}

type RatingResponse struct {
	AdID          int     `json:"ad_id"`
	AverageRating float64 `json:"average_rating"`
}

// InitializeSlug derives the slug from the title when it is still empty. A slug that is
// already set is kept even if the title changed since.
func (a *Ad) InitializeSlug() {
	if a.Slug == "" {
		a.Slug = slug.Make(a.Title)
	}
}

// PreSave runs before every insert and update.
func (a *Ad) PreSave() {
	a.InitializeSlug()
}

func (a *Ad) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(a.Title))
	if n < MinTitleLength {
		return invalid("title", "title must be at least %d characters", MinTitleLength)
	}
	if n > MaxTitleLength {
		return invalid("title", "title must be at most %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(a.Introduction)) < MinIntroductionLength {
		return invalid("introduction", "introduction must be at least %d characters", MinIntroductionLength)
	}
	if a.Price < 0 {
		return invalid("price", "price must not be negative")
	}
	return nil
}

// AverageRating is the mean rating of the loaded comments, 0 when there are none.
func (a *Ad) AverageRating() float64 {
	if len(a.Comments) == 0 {
		return 0
	}
	var sum float64
	for _, c := range a.Comments {
		sum += float64(c.Rating)
	}
	return sum / float64(len(a.Comments))
}

// NotAvailableDays returns the sorted union of every booked day, start and end included.
func (a *Ad) NotAvailableDays() []time.Time {
	days := []time.Time{}
	for _, b := range a.Bookings {
		days = append(days, b.Days()...)
	}
	slices.SortFunc(days, func(x, y time.Time) int { return x.Compare(y) })
	return slices.CompactFunc(days, func(x, y time.Time) bool { return x.Equal(y) })
}

// CommentFromAuthor returns the first comment written by author on this ad.
func (a *Ad) CommentFromAuthor(author *User) (*Comment, bool) {
	if author == nil {
		return nil, false
	}
	for _, c := range a.Comments {
		if c.AuthorID == author.ID {
			return c, true
		}
	}
	return nil, false
}

func (a *Ad) AddImage(img *Image) *Ad {
	if !slices.Contains(a.Images, img) {
		a.Images = append(a.Images, img)
		img.ad = a
		img.AdID = a.ID
	}
	return a
}

func (a *Ad) RemoveImage(img *Image) *Ad {
	if i := slices.Index(a.Images, img); i >= 0 {
		a.Images = slices.Delete(a.Images, i, i+1)
		if img.ad == a {
			img.ad = nil
			img.AdID = 0
		}
	}
	return a
}

func (a *Ad) AddBooking(b *Booking) *Ad {
	if !slices.Contains(a.Bookings, b) {
		a.Bookings = append(a.Bookings, b)
		b.ad = a
		b.AdID = a.ID
	}
	return a
}

func (a *Ad) RemoveBooking(b *Booking) *Ad {
	if i := slices.Index(a.Bookings, b); i >= 0 {
		a.Bookings = slices.Delete(a.Bookings, i, i+1)
		if b.ad == a {
			b.ad = nil
			b.AdID = 0
		}
	}
	return a
}

func (a *Ad) AddComment(c *Comment) *Ad {
	if !slices.Contains(a.Comments, c) {
		a.Comments = append(a.Comments, c)
		c.ad = a
		c.AdID = a.ID
	}
	return a
}

func (a *Ad) RemoveComment(c *Comment) *Ad {
	if i := slices.Index(a.Comments, c); i >= 0 {
		a.Comments = slices.Delete(a.Comments, i, i+1)
		if c.ad == a {
			c.ad = nil
			c.AdID = 0
		}
	}
	return a
}
