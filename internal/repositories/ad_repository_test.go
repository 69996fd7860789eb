package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnbBack/internal/models"
)

func TestAdRepository_CreateAndLoad(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author@example.com")
	guest := createTestUser(t, db, "guest@example.com")
	ad := createTestAd(t, db, author, "Sunny flat near the sea")

	images := &ImageRepository{DB: db}
	bookings := &BookingRepository{DB: db}
	comments := &CommentRepository{DB: db}

	_, err := images.CreateImage(ctx, models.Image{AdID: ad.ID, URL: "http://img/1.jpg", Caption: "kitchen"})
	require.NoError(t, err)
	_, err = bookings.CreateBooking(ctx, models.Booking{
		AdID: ad.ID, BookerID: guest.ID, StartDate: day("2024-01-10"), EndDate: day("2024-01-12"),
		Amount: 80, CreatedAt: testNow,
	})
	require.NoError(t, err)
	_, err = comments.CreateComment(ctx, models.Comment{
		AdID: ad.ID, AuthorID: guest.ID, Content: "great", Rating: 4, CreatedAt: testNow,
	})
	require.NoError(t, err)

	repo := &AdRepository{DB: db}
	got, err := repo.GetAdByID(ctx, ad.ID)
	require.NoError(t, err)

	assert.Equal(t, "sunny-flat-near-the-sea", got.Slug)
	require.NotNil(t, got.Author)
	assert.Equal(t, author.ID, got.Author.ID)
	require.Len(t, got.Images, 1)
	assert.Same(t, got, got.Images[0].Ad())
	require.Len(t, got.Bookings, 1)
	assert.Same(t, got, got.Bookings[0].Ad())
	require.Len(t, got.Comments, 1)
	assert.Equal(t, 4.0, got.AverageRating())
	assert.Equal(t, []string{"2024-01-10", "2024-01-11", "2024-01-12"}, models.FormatDays(got.NotAvailableDays()))

	c, ok := got.CommentFromAuthor(&guest)
	require.True(t, ok)
	assert.Equal(t, "great", c.Content)

	bySlug, err := repo.GetAdBySlug(ctx, "sunny-flat-near-the-sea")
	require.NoError(t, err)
	assert.Equal(t, ad.ID, bySlug.ID)
}

func TestAdRepository_NotFound(t *testing.T) {
	repo := &AdRepository{DB: newTestDB(t)}
	ctx := context.Background()

	_, err := repo.GetAdByID(ctx, 1)
	assert.ErrorIs(t, err, models.ErrAdNotFound)
	_, err = repo.GetAdBySlug(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrAdNotFound)
	assert.ErrorIs(t, repo.DeleteAd(ctx, 1), models.ErrAdNotFound)
}

func TestAdRepository_UniqueTitle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author@example.com")
	first := createTestAd(t, db, author, "Cabin in the woods")

	repo := &AdRepository{DB: db}
	dup := *first
	dup.ID = 0
	dup.Slug = "other-slug"
	assert.ErrorIs(t, repo.CreateAd(ctx, &dup), models.ErrDuplicateTitle)

	exists, err := repo.TitleExists(ctx, "Cabin in the woods", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TitleExists(ctx, "Cabin in the woods", first.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAdRepository_UniqueSlug(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author@example.com")
	first := createTestAd(t, db, author, "Cabin in the woods")

	repo := &AdRepository{DB: db}
	dup := *first
	dup.ID = 0
	dup.Title = "Another cabin in the woods"
	assert.ErrorIs(t, repo.CreateAd(ctx, &dup), models.ErrDuplicateSlug)

	second := createTestAd(t, db, author, "Lodge by the lake")
	second.Slug = first.Slug
	assert.ErrorIs(t, repo.UpdateAd(ctx, second), models.ErrDuplicateSlug)

	exists, err := repo.SlugExists(ctx, first.Slug, 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.SlugExists(ctx, first.Slug, first.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAdRepository_UnknownAuthor(t *testing.T) {
	db := newTestDB(t)
	repo := &AdRepository{DB: db}
	ad := &models.Ad{Title: "Orphan listing", Slug: "orphan-listing", AuthorID: 42}
	assert.ErrorIs(t, repo.CreateAd(context.Background(), ad), models.ErrUserNotFound)
}

func TestAdRepository_UpdateKeepsSlug(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author@example.com")
	ad := createTestAd(t, db, author, "Original listing title")

	repo := &AdRepository{DB: db}
	ad.Title = "Renamed listing title"
	ad.PreSave()
	require.NoError(t, repo.UpdateAd(ctx, ad))

	got, err := repo.GetAdByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed listing title", got.Title)
	assert.Equal(t, "original-listing-title", got.Slug)
}

func TestAdRepository_ListAndPaging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author@example.com")
	other := createTestUser(t, db, "other@example.com")
	a1 := createTestAd(t, db, author, "First listing here")
	a2 := createTestAd(t, db, author, "Second listing here")
	a3 := createTestAd(t, db, other, "Third listing here")

	repo := &AdRepository{DB: db}
	page, err := repo.GetAds(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, a3.ID, page[0].ID)
	assert.Equal(t, a2.ID, page[1].ID)

	page, err = repo.GetAds(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, a1.ID, page[0].ID)

	mine, err := repo.GetAdsByAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestAdRepository_DeleteRemovesChildren(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "author@example.com")
	guest := createTestUser(t, db, "guest@example.com")
	ad := createTestAd(t, db, author, "Short lived listing")

	_, err := (&ImageRepository{DB: db}).CreateImage(ctx, models.Image{AdID: ad.ID, URL: "u", Caption: "c"})
	require.NoError(t, err)
	_, err = (&CommentRepository{DB: db}).CreateComment(ctx, models.Comment{
		AdID: ad.ID, AuthorID: guest.ID, Content: "ok", Rating: 3, CreatedAt: testNow,
	})
	require.NoError(t, err)
	_, err = (&BookingRepository{DB: db}).CreateBooking(ctx, models.Booking{
		AdID: ad.ID, BookerID: guest.ID, StartDate: day("2024-02-01"), EndDate: day("2024-02-03"), CreatedAt: testNow,
	})
	require.NoError(t, err)

	repo := &AdRepository{DB: db}
	require.NoError(t, repo.DeleteAd(ctx, ad.ID))

	for _, table := range []string{"image", "comments", "booking"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}
