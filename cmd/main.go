package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstgnz/gopaysafe/handler"
	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/logger"
	"github.com/mstgnz/gopaysafe/infra/middle"
	"github.com/mstgnz/gopaysafe/infra/opensearch"
	"github.com/mstgnz/gopaysafe/infra/validate"
	"github.com/mstgnz/gopaysafe/provider/paysafe"
	"github.com/mstgnz/gopaysafe/router"
	v1 "github.com/mstgnz/gopaysafe/router/v1"
)

func main() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Load Env Error: %v", err)
	}
	validate.CustomValidate()
	cfg := config.GetAppConfig()

	// Initialize OpenSearch client and logger
	var (
		osClient         *opensearch.Client
		openSearchLogger *opensearch.Logger
	)
	if cfg.EnableLogging {
		client, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			osClient = client
			openSearchLogger = opensearch.NewLogger(client)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}
	logger.InitGlobalLogger(openSearchLogger)

	// Settings store
	settings := config.OpenSettingsStore(cfg.SQLitePath)
	defer func() {
		if err := settings.Close(); err != nil {
			logger.Error("Failed to close settings store", err)
		}
	}()
	if err := settings.Install(); err != nil {
		logger.Fatal("Failed to install PaySafe settings", err)
	}
	if err := settings.LoadFromEnv(); err != nil {
		logger.Fatal("Failed to load PaySafe settings from environment", err)
	}

	var opts []paysafe.Option
	if openSearchLogger.IsEnabled() {
		opts = append(opts, paysafe.WithPaymentLogger(openSearchLogger))
	}
	processor := paysafe.NewProcessor(settings, opts...)

	var pinger handler.SearchPinger
	if osClient != nil {
		pinger = osClient
	}

	rateLimiter := middle.NewRateLimiter(middle.RateLimitConfig{
		PerMinute:        cfg.RateLimitPerMinute,
		PaymentPerMinute: cfg.PaymentRatePerMin,
	})

	r := router.New(router.Dependencies{
		Config: cfg,
		Services: v1.Services{
			PaymentMethod: processor,
			Settings:      settings,
			Logs:          openSearchLogger,
			Validate:      config.App().Validator,
		},
		Health:      handler.NewHealthHandler(settings, pinger),
		RateLimiter: rateLimiter,
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rateLimiter.Cleanup()
			}
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run your HTTP server in a goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running on " + cfg.Port)

	// Block until a signal is received
	<-ctx.Done()

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}
