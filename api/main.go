package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/foodmap/food-radar/internal/archive"
	"github.com/foodmap/food-radar/internal/config"
	"github.com/foodmap/food-radar/internal/logger"
	"github.com/foodmap/food-radar/internal/places"
	"github.com/foodmap/food-radar/internal/reviews"
	"github.com/foodmap/food-radar/internal/service"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	maps := places.New(places.Config{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryBase:  cfg.RetryBase,
	}, log)

	store := reviews.NewStore()

	var publisher reviews.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := reviews.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ReviewTopic)
		defer kp.Close()
		publisher = kp
		log.Info("review publishing enabled", slog.String("topic", cfg.ReviewTopic))
	}

	var archiveClient *archive.Client
	if cfg.Archive.Addr != "" {
		archiveClient, err = archive.New(cfg.Archive.Addr, cfg.Archive.Index, log)
		if err != nil {
			log.Error("init review archive", slog.Any("err", err))
			os.Exit(1)
		}
	}

	svc := service.New(maps, store, service.Options{
		CacheWindow:   cfg.CacheWindow,
		CacheCapacity: cfg.CacheCapacity,
		Publisher:     publisher,
	}, log)

	srv := &server{log: log, svc: svc, archive: archiveClient}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Post("/recommend", srv.handleRecommend)
	r.Post("/search", srv.handleSearch)
	r.Get("/venues/{uid}", srv.handleVenueDetails)
	r.Post("/compare", srv.handleCompare)
	r.Post("/map", srv.handleMap)
	r.Post("/reviews", srv.handleSubmitReview)
	r.Get("/reviews/{venueID}", srv.handleListReviews)
	r.Get("/reviews/{venueID}/archive", srv.handleArchivedReviews)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
