/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package newsfeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/feedlane/newsfeed/internal/api"
	"github.com/feedlane/newsfeed/internal/api/middleware"
	"github.com/feedlane/newsfeed/internal/domain"
	"github.com/feedlane/newsfeed/internal/storage"
)

// Server timeouts
const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Serve assembles the pipeline (stores, queue, dispatcher, processor pool,
// subscription service) and runs the HTTP server until a shutdown signal
// arrives.
func Serve(config *api.ServerConfig) error {
	slog.Info("Starting newsfeed server")

	// Get and validate the openapi spec file
	swagger, err := api.GetSwagger()
	if err != nil {
		return fmt.Errorf("failed to get swagger: %w", err)
	}
	if err := swagger.Validate(context.Background(),
		openapi3.EnableSchemaFormatValidation(),
		openapi3.EnableSchemaPatternValidation(),
	); err != nil {
		return fmt.Errorf("failed to validate swagger: %w", err)
	}
	document, err := api.LoadOpenAPIDocument()
	if err != nil {
		return fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-shutdown
		slog.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	// Build the stores
	eventStorage, subscriptionStorage, err := buildStorages(config)
	if err != nil {
		return err
	}

	// Wire the pipeline: queue -> dispatcher -> processor pool
	queue := storage.NewInMemoryEventQueue(config.QueueSize)
	newsfeedIDSpec := domain.NewNewsfeedIDSpecification(config.NewsfeedIDLength)
	dispatcher := domain.NewEventDispatcher(domain.NewEventSpecification(newsfeedIDSpec), queue)
	processor := domain.NewEventProcessor(queue, eventStorage, subscriptionStorage, config.ProcessorConcurrency)
	subscriptionService := domain.NewSubscriptionService(
		domain.NewSubscriptionSpecification(newsfeedIDSpec), subscriptionStorage,
	)

	// Create the handler
	server := api.NewsfeedServer{
		Config:              config,
		Dispatcher:          dispatcher,
		EventStorage:        eventStorage,
		SubscriptionService: subscriptionService,
		OpenAPIDocument:     document,
	}

	router := middleware.NewErrorJsonifier(http.NewServeMux())
	server.RegisterRoutes(router)

	handler := middleware.ChainHandlers(
		router,
		middleware.OpenAPIValidation(swagger, config.BasePath),
		middleware.LogDuration(),
	)

	// Server config
	srv := &http.Server{
		Handler:      handler,
		Addr:         config.Listener,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog: slog.NewLogLogger(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
		}), slog.LevelError),
	}

	// Start the processor pool
	processor.Start(ctx)

	// Start server
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info(fmt.Sprintf("Listening on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		// Cancel the context in case it wasn't already canceled
		cancel()
		// Stop the processor pool before shutting down the http server
		processor.Stop()
		slog.Info("Shutting down server")
		if err := gracefulShutdown(srv); err != nil {
			slog.Error("error shutting down server", "error", err)
		}
	}()

	// Blocking select
	select {
	case err := <-serverErrors:
		return fmt.Errorf("error starting server: %w", err)
	case <-ctx.Done():
		slog.Info("Process shutting down")
	}

	return nil
}

// buildStorages selects the store implementations by DSN: an empty or
// memory:// DSN gets the in-process stores, a redis:// URL the Redis-backed
// ones.
func buildStorages(config *api.ServerConfig) (domain.EventStorage, domain.SubscriptionStorage, error) {
	dsn := config.EventStorageDSN
	if dsn == "" || strings.HasPrefix(dsn, "memory://") {
		return storage.NewInMemoryEventStorage(config.MaxNewsfeeds, config.EventsPerNewsfeed),
			storage.NewInMemorySubscriptionStorage(config.MaxNewsfeeds, config.SubsPerNewsfeed),
			nil
	}
	client, err := storage.NewRedisClient(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build redis client: %w", err)
	}
	return storage.NewRedisEventStorage(client, config.MaxNewsfeeds, config.EventsPerNewsfeed),
		storage.NewRedisSubscriptionStorage(client, config.MaxNewsfeeds, config.SubsPerNewsfeed),
		nil
}

// gracefulShutdown allow graceful shutdown with timeout
func gracefulShutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed graceful shutdown: %w", err)
	}

	slog.Info("Server gracefully stopped")
	return nil
}
