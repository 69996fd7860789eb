package main

import (
	"context"
	"net/http"
	"time"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"bnbBack/internal/models"
)

func (app *application) routes(metricsHandler http.Handler) http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, app.instrument, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.requireAuth)
	adminMiddleware := authMiddleware.Append(app.requireRole(models.RoleAdmin))
	// upgraded connections need the raw ResponseWriter
	socketMiddleware := alice.New(app.recoverPanic, secureHeaders)

	mux := pat.New()

	// Users
	mux.Get("/users", standardMiddleware.ThenFunc(app.userHandler.GetUsers))
	mux.Post("/users", standardMiddleware.ThenFunc(app.userHandler.CreateUser))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Get("/user/:id/bookings", authMiddleware.ThenFunc(app.bookingHandler.GetBookingsByUser))
	mux.Post("/user/:id/roles", adminMiddleware.ThenFunc(app.userHandler.AssignRole))
	mux.Get("/user/:id", standardMiddleware.ThenFunc(app.userHandler.GetUserByID))

	// Ads
	mux.Get("/ads", standardMiddleware.ThenFunc(app.adHandler.GetAds))
	mux.Post("/ads", authMiddleware.ThenFunc(app.adHandler.CreateAd))
	mux.Get("/ads/slug/:slug", standardMiddleware.ThenFunc(app.adHandler.GetAdBySlug))
	mux.Get("/ads/:id/availability", standardMiddleware.ThenFunc(app.adHandler.GetAvailability))
	mux.Get("/ads/:id/rating", standardMiddleware.ThenFunc(app.adHandler.GetRating))
	mux.Post("/ads/:id/images", authMiddleware.ThenFunc(app.adHandler.AddImage))
	mux.Del("/ads/:id/images/:image_id", authMiddleware.ThenFunc(app.adHandler.DeleteImage))
	mux.Get("/ads/:id", standardMiddleware.ThenFunc(app.adHandler.GetAdByID))
	mux.Put("/ads/:id", authMiddleware.ThenFunc(app.adHandler.UpdateAd))
	mux.Del("/ads/:id", authMiddleware.ThenFunc(app.adHandler.DeleteAd))

	// Bookings
	mux.Post("/ads/:id/bookings", authMiddleware.ThenFunc(app.bookingHandler.CreateBooking))
	mux.Get("/bookings/:id", authMiddleware.ThenFunc(app.bookingHandler.GetBookingByID))
	mux.Del("/bookings/:id", authMiddleware.ThenFunc(app.bookingHandler.CancelBooking))

	// Comments
	mux.Post("/ads/:id/comments", authMiddleware.ThenFunc(app.commentHandler.CreateComment))
	mux.Get("/ads/:id/comments", standardMiddleware.ThenFunc(app.commentHandler.GetCommentsByAd))
	mux.Get("/ads/:id/comments/author/:user_id", standardMiddleware.ThenFunc(app.commentHandler.GetCommentFromAuthor))
	mux.Del("/comments/:id", authMiddleware.ThenFunc(app.commentHandler.DeleteComment))

	// Stripe
	mux.Post("/stripe/webhook", standardMiddleware.ThenFunc(app.stripeHandler.Webhook))
	mux.Get("/stripe/charges/:stripe_id", adminMiddleware.ThenFunc(app.stripeHandler.GetCharge))
	mux.Post("/stripe/charges/:stripe_id/sync", adminMiddleware.ThenFunc(app.stripeHandler.SyncCharge))

	// Live availability
	mux.Get("/ws/ads/:id/availability", socketMiddleware.ThenFunc(app.availabilitySocket))

	mux.Get("/metrics", metricsHandler)
	mux.Get("/healthz", standardMiddleware.ThenFunc(app.healthz))

	return mux
}

func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := app.db.PingContext(ctx); err != nil {
		app.clientError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}
