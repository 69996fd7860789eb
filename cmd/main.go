package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"bnbBack/internal/cache"
	"bnbBack/internal/config"
	"bnbBack/internal/database"
	"bnbBack/internal/migrations"
	"bnbBack/internal/services"
	"bnbBack/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(config.Path())
	if err != nil {
		errorLog.Fatal(err)
	}

	addr := flag.String("addr", cfg.Server.Address, "HTTP network address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer db.Close()
	infoLog.Printf("Connected to %s database", cfg.Database.Driver)

	dialect, err := migrations.Dialect(cfg.Database.Driver)
	if err != nil {
		errorLog.Fatal(err)
	}
	if err := migrations.Up(ctx, db, dialect); err != nil {
		errorLog.Fatal(err)
	}

	ext := externals{registry: prometheus.DefaultRegisterer, logger: logger}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			errorLog.Printf("redis unavailable, continuing with cache misses: %v", err)
		}
		ext.cache = cache.NewRedis(rdb, cfg.Redis.TTL)
	}

	if cfg.S3.Bucket != "" {
		storage, err := utils.NewS3Storage(utils.S3Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			errorLog.Fatal(err)
		}
		ext.storage = storage
	}

	if cfg.Firebase.Credentials != "" {
		notifier, err := services.NewFCMNotifier(ctx, cfg.Firebase.Credentials, logger)
		if err != nil {
			errorLog.Printf("push notifications disabled: %v", err)
		} else {
			ext.notifier = notifier
		}
	}

	app, err := initializeApp(cfg, db, ext, errorLog, infoLog)
	if err != nil {
		errorLog.Fatal(err)
	}

	go app.hub.Run(ctx)
	startChargeSync(ctx, app.stripeService, cfg.Stripe.SyncInterval, infoLog, errorLog)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Stripe-Signature"},
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     errorLog,
		Handler:      c.Handler(app.routes(promhttp.Handler())),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errorLog.Printf("shutdown: %v", err)
		}
	}()

	infoLog.Printf("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errorLog.Fatal(err)
	}
	infoLog.Print("Server stopped")
}
