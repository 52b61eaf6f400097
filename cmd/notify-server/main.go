package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onegateway/site-notify/internal/api"
	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/enrich"
	"github.com/onegateway/site-notify/internal/geo"
	"github.com/onegateway/site-notify/internal/notify"
	"github.com/onegateway/site-notify/internal/pkg/logger"
	"github.com/onegateway/site-notify/internal/service/contact"
	"github.com/onegateway/site-notify/internal/storage"
	"github.com/onegateway/site-notify/internal/tracking"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	logger.Configure(logger.ParseLevel(cfg.Log.Level), cfg.Log.Redact())

	ctx := context.Background()

	formatter, err := notify.NewFormatter(cfg.Message)
	if err != nil {
		log.Fatalf("message template: %v", err)
	}
	dispatcher := notify.NewTelegramDispatcher(cfg.Telegram, formatter, nil)
	resolver := geo.NewIPAPIResolver(cfg.Geolocation, nil)
	enricher := enrich.New(resolver, enrich.WithDefaultCountry(cfg.Geolocation.DefaultCountry))

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	publisher, err := tracking.New(ctx, cfg.Tracking)
	if err != nil {
		log.Fatalf("tracking: %v", err)
	}

	svc := contact.NewService(enricher, dispatcher,
		contact.WithStore(store, cfg.Storage.Timeout()),
		contact.WithTracking(publisher, tracking.StaticConsent(cfg.Tracking.ConsentGranted()), cfg.Tracking.Currency),
	)
	handler := api.NewHandler(svc, nil)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("notify service listening",
			"addr", srv.Addr,
			"storage", cfg.Storage.Type,
			"tracking", cfg.Tracking.Sink,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down notify service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err.Error())
	}
	if p, ok := publisher.(*tracking.SQSPublisher); ok {
		p.Wait()
	}
}
