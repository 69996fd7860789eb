package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gosimple/slug"

	"bnbBack/internal/cache"
	"bnbBack/internal/models"
	"bnbBack/internal/repositories"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

var ErrStorageUnavailable = errors.New("image storage is not configured")

// ImageStorage stores uploaded image bytes and returns their public URL.
type ImageStorage interface {
	Upload(ctx context.Context, data []byte, folder, fileName, contentType string) (string, error)
}

type AdService struct {
	AdRepo    *repositories.AdRepository
	ImageRepo *repositories.ImageRepository
	Storage   ImageStorage
	Cache     cache.Cache
}

func (s *AdService) GetAdByID(ctx context.Context, id int) (*models.Ad, error) {
	return s.AdRepo.GetAdByID(ctx, id)
}

func (s *AdService) GetAdBySlug(ctx context.Context, slug string) (*models.Ad, error) {
	return s.AdRepo.GetAdBySlug(ctx, slug)
}

// ListAds returns one page of ads. page starts at 1; out of range values fall back to defaults.
func (s *AdService) ListAds(ctx context.Context, page, limit int) (models.AdListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	ads, err := s.AdRepo.GetAds(ctx, limit, (page-1)*limit)
	if err != nil {
		return models.AdListResponse{}, err
	}
	return models.AdListResponse{Ads: ads, Page: page, Limit: limit}, nil
}

func (s *AdService) CreateAd(ctx context.Context, authorID int, req models.AdRequest) (*models.Ad, error) {
	ad := &models.Ad{AuthorID: authorID}
	applyAdRequest(ad, req)

	if err := s.prepare(ctx, ad); err != nil {
		return nil, err
	}
	if err := s.AdRepo.CreateAd(ctx, ad); err != nil {
		return nil, err
	}
	return s.AdRepo.GetAdByID(ctx, ad.ID)
}

// UpdateAd applies req to the ad. The slug is only replaced when req names one explicitly.
func (s *AdService) UpdateAd(ctx context.Context, actorID, adID int, req models.AdRequest) (*models.Ad, error) {
	ad, err := s.ownedAd(ctx, actorID, adID)
	if err != nil {
		return nil, err
	}
	applyAdRequest(ad, req)

	if err := s.prepare(ctx, ad); err != nil {
		return nil, err
	}
	if err := s.AdRepo.UpdateAd(ctx, ad); err != nil {
		return nil, err
	}
	return s.AdRepo.GetAdByID(ctx, ad.ID)
}

func (s *AdService) DeleteAd(ctx context.Context, actorID, adID int) error {
	if _, err := s.ownedAd(ctx, actorID, adID); err != nil {
		return err
	}
	if err := s.AdRepo.DeleteAd(ctx, adID); err != nil {
		return err
	}
	invalidate(ctx, s.Cache, cache.AvailabilityKey(adID), cache.RatingKey(adID))
	return nil
}

func (s *AdService) NotAvailableDays(ctx context.Context, adID int) (models.AvailabilityResponse, error) {
	return cached(ctx, s.Cache, cache.AvailabilityKey(adID), func() (models.AvailabilityResponse, error) {
		ad, err := s.AdRepo.GetAdByID(ctx, adID)
		if err != nil {
			return models.AvailabilityResponse{}, err
		}
		return availabilityOf(ad), nil
	})
}

// AverageRating reports the mean comment rating rounded to two decimals.
func (s *AdService) AverageRating(ctx context.Context, adID int) (models.RatingResponse, error) {
	return cached(ctx, s.Cache, cache.RatingKey(adID), func() (models.RatingResponse, error) {
		ad, err := s.AdRepo.GetAdByID(ctx, adID)
		if err != nil {
			return models.RatingResponse{}, err
		}
		return models.RatingResponse{
			AdID:          ad.ID,
			AverageRating: math.Round(ad.AverageRating()*100) / 100,
		}, nil
	})
}

func (s *AdService) AddImage(ctx context.Context, actorID, adID int, req models.ImageRequest) (models.Image, error) {
	if strings.TrimSpace(req.URL) == "" {
		return models.Image{}, models.NewValidationError("url", "url is required")
	}
	ad, err := s.ownedAd(ctx, actorID, adID)
	if err != nil {
		return models.Image{}, err
	}

	img := models.Image{URL: strings.TrimSpace(req.URL), Caption: strings.TrimSpace(req.Caption)}
	ad.AddImage(&img)
	return s.ImageRepo.CreateImage(ctx, img)
}

// UploadImage stores the file in object storage and attaches it to the ad.
func (s *AdService) UploadImage(ctx context.Context, actorID, adID int, data []byte, fileName, contentType, caption string) (models.Image, error) {
	if s.Storage == nil {
		return models.Image{}, ErrStorageUnavailable
	}
	if len(data) == 0 {
		return models.Image{}, models.NewValidationError("file", "file is empty")
	}
	if _, err := s.ownedAd(ctx, actorID, adID); err != nil {
		return models.Image{}, err
	}

	url, err := s.Storage.Upload(ctx, data, fmt.Sprintf("ads/%d", adID), fileName, contentType)
	if err != nil {
		return models.Image{}, err
	}
	return s.AddImage(ctx, actorID, adID, models.ImageRequest{URL: url, Caption: caption})
}

func (s *AdService) RemoveImage(ctx context.Context, actorID, adID, imageID int) error {
	ad, err := s.ownedAd(ctx, actorID, adID)
	if err != nil {
		return err
	}
	for _, img := range ad.Images {
		if img.ID == imageID {
			if err := s.ImageRepo.DeleteImage(ctx, imageID); err != nil {
				return err
			}
			ad.RemoveImage(img)
			return nil
		}
	}
	return models.ErrImageNotFound
}

func (s *AdService) ownedAd(ctx context.Context, actorID, adID int) (*models.Ad, error) {
	ad, err := s.AdRepo.GetAdByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad.AuthorID != actorID {
		return nil, models.ErrForbidden
	}
	return ad, nil
}

// prepare runs the pre-save hook and checks everything the unique indexes would reject.
func (s *AdService) prepare(ctx context.Context, ad *models.Ad) error {
	ad.PreSave()
	if err := ad.Validate(); err != nil {
		return err
	}
	exists, err := s.AdRepo.TitleExists(ctx, ad.Title, ad.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateTitle
	}
	exists, err = s.AdRepo.SlugExists(ctx, ad.Slug, ad.ID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateSlug
	}
	return nil
}

func applyAdRequest(ad *models.Ad, req models.AdRequest) {
	ad.Title = strings.TrimSpace(req.Title)
	ad.Price = req.Price
	ad.Introduction = req.Introduction
	ad.Content = req.Content
	ad.CoverImage = req.CoverImage
	if s := slug.Make(req.Slug); s != "" {
		ad.Slug = s
	}
}

func availabilityOf(ad *models.Ad) models.AvailabilityResponse {
	return models.AvailabilityResponse{
		AdID:             ad.ID,
		NotAvailableDays: models.FormatDays(ad.NotAvailableDays()),
	}
}
