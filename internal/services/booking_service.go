package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bnbBack/internal/cache"
	"bnbBack/internal/models"
	"bnbBack/internal/repositories"
)

// AvailabilityPublisher pushes the current unavailable days of an ad to live subscribers.
type AvailabilityPublisher interface {
	PublishAvailability(adID int, days []string)
}

type BookingNotifier interface {
	NotifyBooking(ctx context.Context, ad *models.Ad, booking models.Booking) error
}

type BookingService struct {
	AdRepo      *repositories.AdRepository
	BookingRepo *repositories.BookingRepository
	Cache       cache.Cache
	Publisher   AvailabilityPublisher
	Notifier    BookingNotifier
	Now         func() time.Time

	// mu keeps availability publishes in commit order within this process. Overlap
	// checks across processes rely on the row lock in CreateBookingIfAvailable.
	mu sync.Mutex
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC().Truncate(time.Second)
	}
	return time.Now().UTC().Truncate(time.Second)
}

func (s *BookingService) CreateBooking(ctx context.Context, bookerID, adID int, req models.BookingRequest) (models.Booking, error) {
	start, err := parseDay("start_date", req.StartDate)
	if err != nil {
		return models.Booking{}, err
	}
	end, err := parseDay("end_date", req.EndDate)
	if err != nil {
		return models.Booking{}, err
	}

	now := s.now()
	booking := models.Booking{
		BookerID:  bookerID,
		StartDate: start,
		EndDate:   end,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := booking.Validate(now); err != nil {
		return models.Booking{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ad, err := s.AdRepo.GetAdByID(ctx, adID)
	if err != nil {
		return models.Booking{}, err
	}
	if !booking.IsBookableDates(ad.NotAvailableDays()) {
		return models.Booking{}, models.ErrDatesUnavailable
	}

	booking.AdID = ad.ID
	booking.PrePersist(ad.Price, now)
	booking, err = s.BookingRepo.CreateBookingIfAvailable(ctx, booking)
	if err != nil {
		return models.Booking{}, err
	}
	ad.AddBooking(&booking)

	s.availabilityChanged(ctx, ad)
	if s.Notifier != nil {
		if err := s.Notifier.NotifyBooking(ctx, ad, booking); err != nil {
			slog.WarnContext(ctx, "booking notification failed", "ad_id", ad.ID, "booking_id", booking.ID, "err", err)
		}
	}
	return booking, nil
}

// GetBooking is visible to the booker and to the author of the booked ad.
func (s *BookingService) GetBooking(ctx context.Context, actorID, id int) (models.Booking, error) {
	booking, err := s.BookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.BookerID == actorID {
		return booking, nil
	}
	ad, err := s.AdRepo.GetAdByID(ctx, booking.AdID)
	if err != nil {
		return models.Booking{}, err
	}
	if ad.AuthorID != actorID {
		return models.Booking{}, models.ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) GetBookingsByBooker(ctx context.Context, actorID, bookerID int) ([]models.Booking, error) {
	if actorID != bookerID {
		return nil, models.ErrForbidden
	}
	return s.BookingRepo.GetBookingsByBooker(ctx, bookerID)
}

func (s *BookingService) CancelBooking(ctx context.Context, actorID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.BookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.BookerID != actorID {
		return models.ErrForbidden
	}
	if err := s.BookingRepo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	ad, err := s.AdRepo.GetAdByID(ctx, booking.AdID)
	if err != nil {
		return err
	}
	s.availabilityChanged(ctx, ad)
	return nil
}

func (s *BookingService) availabilityChanged(ctx context.Context, ad *models.Ad) {
	invalidate(ctx, s.Cache, cache.AvailabilityKey(ad.ID))
	if s.Publisher != nil {
		s.Publisher.PublishAvailability(ad.ID, models.FormatDays(ad.NotAvailableDays()))
	}
}

func parseDay(field, value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, models.NewValidationError(field, "%s must be a date formatted as YYYY-MM-DD", field)
	}
	return t, nil
}
