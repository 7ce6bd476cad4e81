// Package storefront wires the HTTP backend together: storage, cache,
// message broker, services, routes and the server lifecycle.
package storefront

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/greenspire/plant-rental/internal/cache"
	"github.com/greenspire/plant-rental/internal/config"
	"github.com/greenspire/plant-rental/internal/lib/jwt"
	"github.com/greenspire/plant-rental/internal/lib/smtp"
	"github.com/greenspire/plant-rental/internal/migrations"
	"github.com/greenspire/plant-rental/internal/rabbitmq"
	authservice "github.com/greenspire/plant-rental/internal/services/auth"
	cartservice "github.com/greenspire/plant-rental/internal/services/cart"
	catalogservice "github.com/greenspire/plant-rental/internal/services/catalog"
	contactservice "github.com/greenspire/plant-rental/internal/services/contact"
	senderservice "github.com/greenspire/plant-rental/internal/services/sender"
	subservice "github.com/greenspire/plant-rental/internal/services/subscription"
	visitservice "github.com/greenspire/plant-rental/internal/services/visit"
	"github.com/greenspire/plant-rental/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New builds the storefront application from the configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitConnection, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	notifier := rabbitmq.NewNotifier(ch)

	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, maker, logger)
	catalogService := catalogservice.NewCatalogService(db, cacheRedis, logger)
	subscriptionService := subservice.NewSubscriptionService(db, cacheRedis, notifier, logger)
	visitService := visitservice.NewVisitService(db, notifier, logger)
	cartService := cartservice.NewCartService(subscriptionService, logger)
	mailer := senderservice.NewSenderService(smtp.NewTransport(cfg.SMTP, logger), logger)
	contactService := contactservice.NewContactService(db, mailer, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, &Services{
		Auth:         authService,
		Catalog:      catalogService,
		Subscription: subscriptionService,
		Visit:        visitService,
		Cart:         cartService,
		Contact:      contactService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run starts the HTTP server and blocks until the context ends, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		a.db.DB.Close()
		return err
	}
}
