package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tenant_match/internal/app/grpcapp"
	"tenant_match/internal/app/httpapp"
	"tenant_match/internal/config"
	"tenant_match/internal/http/matchhttp"
	"tenant_match/internal/lib/metrics"
	"tenant_match/internal/lib/rabbitmq"
	"tenant_match/internal/repository/notification_repository"
	"tenant_match/internal/repository/property_repository"
	"tenant_match/internal/repository/tenant_repository"
	"tenant_match/internal/services/match"
	"tenant_match/internal/services/matching"
	"tenant_match/internal/services/notify"

	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	HTTPServer   *httpapp.App
	GRPCServer   *grpcapp.App
	MatchService *match.Service
	MatchMetrics *metrics.MatchMetrics

	publisher *rabbitmq.Publisher
}

func New(log *slog.Logger, pool *pgxpool.Pool, cfg *config.Config) (*App, error) {
	const op = "app.New"

	tenantRepository := tenant_repository.NewTenantRepository(pool, log)
	propertyRepository := property_repository.NewPropertyRepository(pool, log)
	notificationRepository := notification_repository.NewNotificationRepository(pool, log)

	scorer, err := matching.NewScorer(cfg.MatchConfig())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Уведомления: лента пользователя в Postgres и, опционально, событие в RabbitMQ.
	notifiers := notify.Multi{notify.NewStoreNotifier(log, notificationRepository)}

	var publisher *rabbitmq.Publisher
	if rmq := cfg.Notification.RabbitMQ; cfg.Notification.Enabled && rmq.Enabled {
		publisher, err = rabbitmq.NewPublisher(rabbitmq.PublisherConfig{
			URL:             rmq.URL,
			ExchangeName:    rmq.Exchange,
			ExchangeType:    rmq.ExchangeType,
			Durable:         true,
			DeclareExchange: true,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notifiers = append(notifiers, notify.NewRabbitNotifier(log, publisher, rmq.RoutingKey))
	}

	// Настройка пользователя profile_matches проверяется до любой доставки.
	notifier := notify.NewPreferenceGate(notificationRepository, notifiers)

	matchMetrics := metrics.NewMatchMetrics(log)

	matchService := match.New(
		log,
		tenantRepository,
		propertyRepository,
		scorer,
		notifier,
		matchMetrics,
		match.Config{
			DefaultLimit:   cfg.Matching.DefaultLimit,
			MaxLimit:       cfg.Matching.MaxLimit,
			NotifyEnabled:  cfg.Notification.Enabled,
			NotifyMinScore: cfg.Notification.MinScore,
		},
	)

	log.Info("matching initialized",
		slog.Float64("min_score", scorer.Config().MinScore),
		slog.Bool("notifications_enabled", cfg.Notification.Enabled),
		slog.Bool("rabbitmq_enabled", publisher != nil),
	)

	router := matchhttp.NewRouter(log, matchService, matchMetrics, cfg.HTTP.AllowedOrigins)

	httpApp := httpapp.New(log, router, httpapp.Config{
		Address:     cfg.HTTP.Address,
		Timeout:     cfg.HTTP.Timeout,
		IdleTimeout: cfg.HTTP.IdleTimeout,
	})
	grpcApp := grpcapp.New(log, cfg.GRPC.Port)

	return &App{
		HTTPServer:   httpApp,
		GRPCServer:   grpcApp,
		MatchService: matchService,
		MatchMetrics: matchMetrics,
		publisher:    publisher,
	}, nil
}

// Stop останавливает серверы и закрывает соединение с брокером.
func (a *App) Stop(ctx context.Context) error {
	var errs []error

	a.GRPCServer.Stop()
	if err := a.HTTPServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
