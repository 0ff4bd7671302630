package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/pubsub"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/payetonkawa/orders-api/internal/handlers"
	"github.com/payetonkawa/orders-api/internal/platform/auth"
	"github.com/payetonkawa/orders-api/internal/platform/config"
	"github.com/payetonkawa/orders-api/internal/platform/events"
	pfirestore "github.com/payetonkawa/orders-api/internal/platform/firestore"
	"github.com/payetonkawa/orders-api/internal/platform/observability"
	firestoreRepo "github.com/payetonkawa/orders-api/internal/repositories/firestore"
	"github.com/payetonkawa/orders-api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("orders-api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if cfg.Security.APIKey == "" {
		logger.Warn("API_KEY is not configured; guarded routes will reject every request")
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		if err := firestoreProvider.Close(); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	orderRepository, err := firestoreRepo.NewOrderRepository(firestoreProvider, cfg.Firestore.Collection)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}

	var orderPublisher services.OrderEventPublisher
	if cfg.PubSub.Topic != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()

		topic := pubsubClient.Topic(cfg.PubSub.Topic)
		defer topic.Stop()

		orderPublisher, err = events.NewPubSubOrderPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise order publisher", zap.Error(err))
		}
	} else {
		logger.Info("order created notifications disabled: no pubsub topic configured")
	}

	validator := services.NewOrderValidator()

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:    orderRepository,
		Validator: validator,
		Events:    orderPublisher,
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	eventConsumer, err := services.NewEventConsumer(orderRepository)
	if err != nil {
		logger.Fatal("failed to initialise event consumer", zap.Error(err))
	}

	authenticator := auth.NewAPIKeyAuthenticator(cfg.Security.APIKey)

	orderHandlers := handlers.NewOrderHandlers(authenticator, orderService)
	pubsubHandlers := handlers.NewPubSubHandlers(eventConsumer)

	health := handlers.NewHealthHandlers(func(ctx context.Context) error {
		_, err := firestoreProvider.Client(ctx)
		return err
	})

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(health),
		handlers.WithOrderRoutes(func(r chi.Router) {
			orderHandlers.Routes(r)
			pubsubHandlers.Routes(r)
		}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("orders api listening", zap.String("port", cfg.Server.Port))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		_ = server.Close()
	}
	logger.Info("orders api stopped")
}
