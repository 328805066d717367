package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/dataservice"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/offer"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/session"
	"storefront/internal/voucher"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("data_backend", cfg.DataService.Backend).Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	data, closeData, err := newDataService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeData()

	if err := importVoucherCatalogs(ctx, cfg, data, logger); err != nil {
		return err
	}

	sessions, closeSessions := newSessionStore(cfg.Session, logger)
	defer closeSessions()

	publisher := events.NewNopPublisher()
	if cfg.Events.Enabled {
		rabbit, err := events.NewRabbitPublisher(cfg.Events.URL, cfg.Events.Queue, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to RabbitMQ, domain events disabled")
		} else {
			publisher = rabbit
		}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	calc := pricing.NewCalculator(pricing.Config{
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		ShippingFee:           cfg.Pricing.ShippingFee,
		PointsDivisor:         cfg.Pricing.PointsDivisor,
	})
	store := service.NewStore(
		data,
		sessions,
		publisher,
		calc,
		offer.NewPricer(cfg.Offer.Validity),
		logger,
		service.WithAutoResolveOffers(cfg.Offer.AutoResolve),
	)

	if err := store.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load storefront data: %w", err)
	}
	if restored, err := store.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to restore previous session")
	} else if restored {
		logger.Info().Str("user_id", store.CurrentUser().ID).Msg("previous session restored")
	}

	// Initialize HTTP handlers and router
	mux := router.New(router.Handlers{
		Account: handler.NewAccountHandler(store, logger),
		Product: handler.NewProductHandler(store, logger),
		Cart:    handler.NewCartHandler(store, logger),
		Order:   handler.NewOrderHandler(store, logger),
		Loyalty: handler.NewLoyaltyHandler(store, logger),
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newDataService connects the configured backend. The returned func releases it.
func newDataService(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (dataservice.Service, func(), error) {
	switch cfg.DataService.Backend {
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repository.NewDocumentRepository(pool, logger), pool.Close, nil

	case config.BackendMemory:
		logger.Warn().Msg("using in-memory data service, nothing will be persisted")
		return dataservice.NewMemory(), func() {}, nil

	default:
		return dataservice.NewHTTPClient(cfg.DataService.BaseURL, cfg.DataService.Timeout, logger), func() {}, nil
	}
}

// importVoucherCatalogs seeds vouchers from the configured catalog files,
// reading from S3 first when it is enabled.
func importVoucherCatalogs(ctx context.Context, cfg *config.Config, data dataservice.Service, logger zerolog.Logger) error {
	if len(cfg.Catalog.Files) == 0 {
		return nil
	}

	fileLoader := voucher.NewFileLoader(logger)
	var s3Loader voucher.Loader
	if cfg.S3.Enabled {
		l, err := voucher.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	} else {
		logger.Info().Msg("using local file system for voucher catalogs (S3 disabled)")
	}
	loader := voucher.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	catalog, err := voucher.LoadCatalogs(ctx, cfg.Catalog.Files, loader, logger)
	if err != nil {
		return fmt.Errorf("failed to load voucher catalogs: %w", err)
	}
	if _, err := voucher.NewImporter(data, logger).Import(ctx, catalog); err != nil {
		return fmt.Errorf("failed to import voucher catalogs: %w", err)
	}
	return nil
}

func newSessionStore(cfg config.SessionConfig, logger zerolog.Logger) (session.Store, func()) {
	if cfg.Backend != config.SessionRedis {
		return session.NewFileStore(cfg.Path, logger), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return session.NewRedisStore(client, cfg.RedisKey, cfg.TTL, logger), func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}
