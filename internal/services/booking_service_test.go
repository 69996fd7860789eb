package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnbBack/internal/cache"
	"bnbBack/internal/models"
	"bnbBack/internal/repositories"
)

type recordingPublisher struct {
	mu    sync.Mutex
	adIDs []int
	days  [][]string
}

func (p *recordingPublisher) PublishAvailability(adID int, days []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.adIDs = append(p.adIDs, adID)
	p.days = append(p.days, days)
}

type recordingNotifier struct {
	authorIDs []int
	err       error
}

func (n *recordingNotifier) NotifyBooking(_ context.Context, ad *models.Ad, _ models.Booking) error {
	n.authorIDs = append(n.authorIDs, ad.AuthorID)
	return n.err
}

type bookingFixture struct {
	svc       *BookingService
	cache     *memoryCache
	publisher *recordingPublisher
	notifier  *recordingNotifier
	host      models.User
	guest     models.User
	ad        *models.Ad
}

func newBookingFixture(t *testing.T) bookingFixture {
	t.Helper()
	db := newTestDB(t)
	host := seedUser(t, db, "host@example.com")
	f := bookingFixture{
		cache:     newMemoryCache(),
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
		host:      host,
		guest:     seedUser(t, db, "guest@example.com"),
		ad:        seedAd(t, db, host, "Riverside cottage retreat"),
	}
	f.svc = &BookingService{
		AdRepo:      &repositories.AdRepository{DB: db},
		BookingRepo: &repositories.BookingRepository{DB: db},
		Cache:       f.cache,
		Publisher:   f.publisher,
		Notifier:    f.notifier,
		Now:         func() time.Time { return fixedNow },
	}
	return f
}

func TestBookingService_Create(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, cache.AvailabilityKey(f.ad.ID), "stale"))

	b, err := f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{
		StartDate: "2024-01-10", EndDate: "2024-01-13", Comment: " late check-in ",
	})
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, 150.0, b.Amount)
	assert.Equal(t, "late check-in", b.Comment)
	assert.True(t, fixedNow.Equal(b.CreatedAt))

	assert.False(t, f.cache.has(cache.AvailabilityKey(f.ad.ID)))
	require.Len(t, f.publisher.days, 1)
	assert.Equal(t, []string{"2024-01-10", "2024-01-11", "2024-01-12", "2024-01-13"}, f.publisher.days[0])
	assert.Equal(t, []int{f.host.ID}, f.notifier.authorIDs)
}

func TestBookingService_RefusesOverlap(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-01-10", EndDate: "2024-01-13"})
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-01-13", EndDate: "2024-01-15"})
	assert.ErrorIs(t, err, models.ErrDatesUnavailable)

	_, err = f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-01-05", EndDate: "2024-01-20"})
	assert.ErrorIs(t, err, models.ErrDatesUnavailable)

	_, err = f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-01-14", EndDate: "2024-01-16"})
	assert.NoError(t, err)
}

func TestBookingService_OverlapAcrossInstances(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	db := f.svc.AdRepo.DB

	// each instance has its own mutex, as two replicas would
	replicas := []*BookingService{f.svc, {
		AdRepo:      &repositories.AdRepository{DB: db},
		BookingRepo: &repositories.BookingRepository{DB: db},
		Now:         func() time.Time { return fixedNow },
	}}

	var (
		wg   sync.WaitGroup
		errs = make([]error, len(replicas))
	)
	for i, svc := range replicas {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-02-01", EndDate: "2024-02-03"})
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, models.ErrDatesUnavailable)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	bookings, err := f.svc.BookingRepo.GetBookingsByAdID(ctx, f.ad.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestBookingService_CreateValidation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   models.BookingRequest
		field string
	}{
		{"bad format", models.BookingRequest{StartDate: "10/01/2024", EndDate: "2024-01-12"}, "start_date"},
		{"missing end", models.BookingRequest{StartDate: "2024-01-10"}, "end_date"},
		{"in the past", models.BookingRequest{StartDate: "2023-12-30", EndDate: "2024-01-02"}, "start_date"},
		{"end before start", models.BookingRequest{StartDate: "2024-01-10", EndDate: "2024-01-10"}, "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, tt.req)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := f.svc.CreateBooking(ctx, f.guest.ID, 404, models.BookingRequest{StartDate: "2024-01-10", EndDate: "2024-01-11"})
	assert.ErrorIs(t, err, models.ErrAdNotFound)
}

func TestBookingService_NotifierFailureDoesNotFailBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.notifier.err = errors.New("fcm down")

	_, err := f.svc.CreateBooking(context.Background(), f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-02-01", EndDate: "2024-02-02"})
	assert.NoError(t, err)
}

func TestBookingService_Visibility(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-01-10", EndDate: "2024-01-11"})
	require.NoError(t, err)

	_, err = f.svc.GetBooking(ctx, f.guest.ID, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetBooking(ctx, f.host.ID, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetBooking(ctx, 777, b.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = f.svc.GetBooking(ctx, f.guest.ID, 999)
	assert.ErrorIs(t, err, models.ErrBookingNotFound)

	list, err := f.svc.GetBookingsByBooker(ctx, f.guest.ID, f.guest.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.svc.GetBookingsByBooker(ctx, f.host.ID, f.guest.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestBookingService_Cancel(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-01-10", EndDate: "2024-01-11"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.CancelBooking(ctx, f.host.ID, b.ID), models.ErrForbidden)
	require.NoError(t, f.svc.CancelBooking(ctx, f.guest.ID, b.ID))

	require.Len(t, f.publisher.days, 2)
	assert.Empty(t, f.publisher.days[1])

	// the freed dates can be booked again
	_, err = f.svc.CreateBooking(ctx, f.guest.ID, f.ad.ID, models.BookingRequest{StartDate: "2024-01-10", EndDate: "2024-01-11"})
	assert.NoError(t, err)
}
