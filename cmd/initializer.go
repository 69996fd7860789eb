package main

import (
	"database/sql"
	"io"
	"log"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"bnbBack/internal/cache"
	"bnbBack/internal/config"
	"bnbBack/internal/handlers"
	"bnbBack/internal/repositories"
	"bnbBack/internal/services"
	"bnbBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB
	tokens   *utils.Manager
	hub      *AvailabilityHub
	metrics  *httpMetrics

	userHandler    *handlers.UserHandler
	adHandler      *handlers.AdHandler
	bookingHandler *handlers.BookingHandler
	commentHandler *handlers.CommentHandler
	stripeHandler  *handlers.StripeHandler

	adService     *services.AdService
	stripeService *services.StripeService
}

// externals are the optional collaborators that need network setup in main.
type externals struct {
	cache    cache.Cache
	storage  services.ImageStorage
	notifier services.BookingNotifier
	registry prometheus.Registerer
	logger   *slog.Logger
}

func initializeApp(cfg config.Config, db *sql.DB, ext externals, errorLog, infoLog *log.Logger) (*application, error) {
	if ext.cache == nil {
		ext.cache = cache.Noop{}
	}
	if ext.registry == nil {
		ext.registry = prometheus.NewRegistry()
	}
	if ext.logger == nil {
		ext.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tokens, err := utils.NewManager(cfg.JWT.SigningKey, cfg.JWT.TTL)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	roleRepo := &repositories.RoleRepository{DB: db}
	adRepo := &repositories.AdRepository{DB: db}
	imageRepo := &repositories.ImageRepository{DB: db}
	bookingRepo := &repositories.BookingRepository{DB: db}
	commentRepo := &repositories.CommentRepository{DB: db}
	chargeRepo := repositories.NewStripeChargeRepository(db)

	// Services
	userService := &services.UserService{UserRepo: userRepo, RoleRepo: roleRepo, TokenManager: tokens, Cache: ext.cache, AdminEmails: cfg.Admin.Emails}
	adService := &services.AdService{AdRepo: adRepo, ImageRepo: imageRepo, Storage: ext.storage, Cache: ext.cache}
	hub := NewAvailabilityHub(adService.NotAvailableDays, errorLog)
	bookingService := &services.BookingService{
		AdRepo:      adRepo,
		BookingRepo: bookingRepo,
		Cache:       ext.cache,
		Publisher:   hub,
		Notifier:    ext.notifier,
	}
	commentService := &services.CommentService{AdRepo: adRepo, CommentRepo: commentRepo, Cache: ext.cache}
	stripeService, err := services.NewStripeService(services.StripeConfig{
		BaseURL:       cfg.Stripe.BaseURL,
		APIKey:        cfg.Stripe.APIKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Logger:        ext.logger,
	}, chargeRepo)
	if err != nil {
		return nil, err
	}

	return &application{
		errorLog: errorLog,
		infoLog:  infoLog,
		db:       db,
		tokens:   tokens,
		hub:      hub,
		metrics:  newHTTPMetrics(ext.registry),

		userHandler:    &handlers.UserHandler{Service: userService},
		adHandler:      &handlers.AdHandler{Service: adService},
		bookingHandler: &handlers.BookingHandler{Service: bookingService},
		commentHandler: &handlers.CommentHandler{Service: commentService},
		stripeHandler:  &handlers.StripeHandler{Service: stripeService},

		adService:     adService,
		stripeService: stripeService,
	}, nil
}
