package services

import (
	"context"
	"strings"
	"time"

	"bnbBack/internal/cache"
	"bnbBack/internal/models"
	"bnbBack/internal/repositories"
)

type CommentService struct {
	AdRepo      *repositories.AdRepository
	CommentRepo *repositories.CommentRepository
	Cache       cache.Cache
	Now         func() time.Time
}

// CreateComment records a rating. Authors cannot rate their own ad and every user
// comments an ad at most once.
func (s *CommentService) CreateComment(ctx context.Context, authorID, adID int, req models.CommentRequest) (models.Comment, error) {
	ad, err := s.AdRepo.GetAdByID(ctx, adID)
	if err != nil {
		return models.Comment{}, err
	}
	if ad.AuthorID == authorID {
		return models.Comment{}, models.ErrForbidden
	}
	if _, ok := ad.CommentFromAuthor(&models.User{ID: authorID}); ok {
		return models.Comment{}, models.ErrDuplicateComment
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	comment := models.Comment{
		AuthorID:  authorID,
		Content:   strings.TrimSpace(req.Content),
		Rating:    req.Rating,
		CreatedAt: now().UTC().Truncate(time.Second),
	}
	if err := comment.Validate(); err != nil {
		return models.Comment{}, err
	}
	ad.AddComment(&comment)

	comment, err = s.CommentRepo.CreateComment(ctx, comment)
	if err != nil {
		return models.Comment{}, err
	}
	invalidate(ctx, s.Cache, cache.RatingKey(adID))
	return comment, nil
}

func (s *CommentService) GetCommentsByAdID(ctx context.Context, adID int) ([]*models.Comment, error) {
	ad, err := s.AdRepo.GetAdByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	return ad.Comments, nil
}

func (s *CommentService) GetCommentFromAuthor(ctx context.Context, adID, authorID int) (*models.Comment, error) {
	ad, err := s.AdRepo.GetAdByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	comment, ok := ad.CommentFromAuthor(&models.User{ID: authorID})
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actorID, id int) error {
	comment, err := s.CommentRepo.GetCommentByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != actorID {
		return models.ErrForbidden
	}
	if err := s.CommentRepo.DeleteComment(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.Cache, cache.RatingKey(comment.AdID))
	return nil
}
