package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bmizerany/pat"
	"github.com/stretchr/testify/require"

	"bnbBack/internal/database"
	"bnbBack/internal/migrations"
	"bnbBack/internal/models"
	"bnbBack/internal/repositories"
	"bnbBack/internal/services"
	"bnbBack/utils"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	db      *sql.DB
	mux     *pat.PatternServeMux
	users   *services.UserService
	ads     *services.AdService
	storage *memoryStorage
}

type memoryStorage struct {
	uploads map[string][]byte
}

func (s *memoryStorage) Upload(_ context.Context, data []byte, folder, fileName, _ string) (string, error) {
	key := folder + "/" + fileName
	s.uploads[key] = data
	return "https://cdn.example.com/" + key, nil
}

// withCaller stands in for the auth middleware: the X-Test-User header becomes the caller.
func withCaller(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := strconv.Atoi(r.Header.Get("X-Test-User")); err == nil {
			r = r.WithContext(ContextWithClaims(r.Context(), &utils.Claims{UserID: id}))
		}
		next(w, r)
	})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(ctx, db, migrations.SQLite))

	tokens, err := utils.NewManager("test-key", time.Hour)
	require.NoError(t, err)

	adRepo := &repositories.AdRepository{DB: db}
	storage := &memoryStorage{uploads: map[string][]byte{}}
	ts := &testServer{
		db:      db,
		storage: storage,
		users: &services.UserService{
			UserRepo:     &repositories.UserRepository{DB: db},
			RoleRepo:     &repositories.RoleRepository{DB: db},
			TokenManager: tokens,
		},
		ads: &services.AdService{
			AdRepo:    adRepo,
			ImageRepo: &repositories.ImageRepository{DB: db},
			Storage:   storage,
		},
	}
	bookings := &services.BookingService{
		AdRepo:      adRepo,
		BookingRepo: &repositories.BookingRepository{DB: db},
		Now:         func() time.Time { return fixedNow },
	}
	comments := &services.CommentService{
		AdRepo:      adRepo,
		CommentRepo: &repositories.CommentRepository{DB: db},
		Now:         func() time.Time { return fixedNow },
	}

	userHandler := &UserHandler{Service: ts.users}
	adHandler := &AdHandler{Service: ts.ads}
	bookingHandler := &BookingHandler{Service: bookings}
	commentHandler := &CommentHandler{Service: comments}

	mux := pat.New()
	mux.Get("/users", withCaller(userHandler.GetUsers))
	mux.Post("/users", withCaller(userHandler.CreateUser))
	mux.Post("/user/sign_in", withCaller(userHandler.SignIn))
	mux.Get("/user/:id/bookings", withCaller(bookingHandler.GetBookingsByUser))
	mux.Post("/user/:id/roles", withCaller(userHandler.AssignRole))
	mux.Get("/user/:id", withCaller(userHandler.GetUserByID))

	mux.Get("/ads/slug/:slug", withCaller(adHandler.GetAdBySlug))
	mux.Get("/ads/:id/availability", withCaller(adHandler.GetAvailability))
	mux.Get("/ads/:id/rating", withCaller(adHandler.GetRating))
	mux.Post("/ads/:id/images", withCaller(adHandler.AddImage))
	mux.Del("/ads/:id/images/:image_id", withCaller(adHandler.DeleteImage))
	mux.Post("/ads/:id/bookings", withCaller(bookingHandler.CreateBooking))
	mux.Get("/ads/:id/comments/author/:user_id", withCaller(commentHandler.GetCommentFromAuthor))
	mux.Post("/ads/:id/comments", withCaller(commentHandler.CreateComment))
	mux.Get("/ads/:id/comments", withCaller(commentHandler.GetCommentsByAd))
	mux.Get("/ads/:id", withCaller(adHandler.GetAdByID))
	mux.Put("/ads/:id", withCaller(adHandler.UpdateAd))
	mux.Del("/ads/:id", withCaller(adHandler.DeleteAd))
	mux.Get("/ads", withCaller(adHandler.GetAds))
	mux.Post("/ads", withCaller(adHandler.CreateAd))

	mux.Get("/bookings/:id", withCaller(bookingHandler.GetBookingByID))
	mux.Del("/bookings/:id", withCaller(bookingHandler.CancelBooking))
	mux.Del("/comments/:id", withCaller(commentHandler.DeleteComment))

	ts.mux = mux
	return ts
}

// do sends body (JSON encoded unless it is already an io.Reader) as the given caller;
// caller 0 is anonymous.
func (ts *testServer) do(t *testing.T, method, target string, caller int, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, reader)
	if caller != 0 {
		req.Header.Set("X-Test-User", strconv.Itoa(caller))
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createUser(t *testing.T, first, email string) models.User {
	t.Helper()
	user, err := ts.users.CreateUser(context.Background(), models.CreateUserRequest{
		Firstname: first,
		Lastname:  "Tester",
		Email:     email,
		Password:  "secret-password",
	})
	require.NoError(t, err)
	return user
}

func adRequest(title string) models.AdRequest {
	return models.AdRequest{
		Title:        title,
		Price:        40,
		Introduction: strings.Repeat("Quiet and bright. ", 8),
		Content:      "Two rooms and a garden.",
		CoverImage:   "https://cdn.example.com/cover.jpg",
	}
}

func (ts *testServer) createAd(t *testing.T, author models.User, title string) *models.Ad {
	t.Helper()
	ad, err := ts.ads.CreateAd(context.Background(), author.ID, adRequest(title))
	require.NoError(t, err)
	return ad
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
