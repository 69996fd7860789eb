package models

import (
	"strings"
	"time"
)

const (
	MinRating = 0
	MaxRating = 5
)

type Comment struct {
	ID        int       `json:"id"`
	AdID      int       `json:"ad_id"`
	AuthorID  int       `json:"author_id"`
	Author    *User     `json:"author,omitempty"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	ad        *Ad
}

func (c *Comment) Ad() *Ad { return c.ad }

func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return invalid("content", "content is required")
	}
	if c.Rating < MinRating || c.Rating > MaxRating {
		return invalid("rating", "rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

type CommentRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}
