package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tenant_match/internal/domain"
	"tenant_match/internal/lib/logger/sl"
	"tenant_match/internal/lib/metrics"
	"tenant_match/internal/repository"
	"tenant_match/internal/services/matching"
	"tenant_match/internal/services/notify"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.TenantPreference, error)
	ListLookingForPlace(ctx context.Context) ([]domain.TenantPreference, error)
	CountLookingForPlace(ctx context.Context) (int, error)
}

type PropertyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.PropertyListing, error)
	ListActive(ctx context.Context) ([]domain.PropertyListing, error)
	CountActive(ctx context.Context) (int, error)
}

var (
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrPropertyNotFound = errors.New("property not found")
)

// Config — параметры выдачи и уведомлений.
type Config struct {
	DefaultLimit int
	MaxLimit     int

	NotifyEnabled  bool
	NotifyMinScore float64
}

func DefaultConfig() Config {
	return Config{
		DefaultLimit:   20,
		MaxLimit:       100,
		NotifyEnabled:  true,
		NotifyMinScore: 0.7,
	}
}

type Service struct {
	log        *slog.Logger
	tenants    TenantRepository
	properties PropertyRepository
	scorer     *matching.Scorer
	notifier   notify.Notifier
	metrics    *metrics.MatchMetrics
	cfg        Config
}

func New(
	log *slog.Logger,
	tenants TenantRepository,
	properties PropertyRepository,
	scorer *matching.Scorer,
	notifier notify.Notifier,
	matchMetrics *metrics.MatchMetrics,
	cfg Config,
) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if matchMetrics == nil {
		matchMetrics = metrics.NewMatchMetrics(log)
	}
	return &Service{
		log:        log,
		tenants:    tenants,
		properties: properties,
		scorer:     scorer,
		notifier:   notifier,
		metrics:    matchMetrics,
		cfg:        cfg,
	}
}

// Metrics возвращает метрики сервиса.
func (s *Service) Metrics() *metrics.MatchMetrics {
	return s.metrics
}

// FindMatchesForTenant — подходящие активные объекты для арендатора, по убыванию score.
func (s *Service) FindMatchesForTenant(ctx context.Context, tenantID uuid.UUID, limit int) (results []domain.MatchResult, err error) {
	const op = "match.Service.FindMatchesForTenant"
	log := s.log.With(slog.String("op", op), slog.String("tenant_id", tenantID.String()))

	var stats metrics.RunStats
	timer := s.metrics.StartTimer(domain.DirectionTenantToProperties)
	defer func() { timer.Stop(stats, err) }()

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			log.Warn("tenant not found")
			return nil, fmt.Errorf("%s: %w", op, ErrTenantNotFound)
		}
		log.Error("failed to get tenant", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidates, err := s.properties.ListActive(ctx)
	if err != nil {
		log.Error("failed to list active properties", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidates = lo.Filter(candidates, func(p domain.PropertyListing, _ int) bool {
		return p.IsActive()
	})

	ranking, err := s.scorer.RankProperties(tenant, candidates, s.scorer.Config().MinScore, s.effectiveLimit(limit))
	if err != nil {
		log.Warn("cannot rank properties for tenant", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats = metrics.RunStats{
		Candidates: len(candidates),
		Skipped:    len(ranking.Skipped),
		Matches:    len(ranking.Matches),
	}
	s.logSkipped(log, ranking.Skipped)

	log.Info("matches found",
		slog.Int("candidates", stats.Candidates),
		slog.Int("matches", stats.Matches),
	)

	s.notifyMatches(ctx, log, domain.DirectionTenantToProperties, ranking.Matches,
		func(domain.MatchResult) uuid.UUID { return tenant.UserID },
	)

	return ranking.Matches, nil
}

// FindMatchesForProperty — подходящие арендаторы для объекта, по убыванию score.
func (s *Service) FindMatchesForProperty(ctx context.Context, propertyID uuid.UUID, limit int) (results []domain.MatchResult, err error) {
	const op = "match.Service.FindMatchesForProperty"
	log := s.log.With(slog.String("op", op), slog.String("property_id", propertyID.String()))

	var stats metrics.RunStats
	timer := s.metrics.StartTimer(domain.DirectionPropertyToTenants)
	defer func() { timer.Stop(stats, err) }()

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			log.Warn("property not found")
			return nil, fmt.Errorf("%s: %w", op, ErrPropertyNotFound)
		}
		log.Error("failed to get property", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidates, err := s.tenants.ListLookingForPlace(ctx)
	if err != nil {
		log.Error("failed to list tenants", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidates = lo.Filter(candidates, func(t domain.TenantPreference, _ int) bool {
		return t.IsLookingForPlace
	})

	ranking, err := s.scorer.RankTenants(property, candidates, s.scorer.Config().MinScore, s.effectiveLimit(limit))
	if err != nil {
		log.Warn("cannot rank tenants for property", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats = metrics.RunStats{
		Candidates: len(candidates),
		Skipped:    len(ranking.Skipped),
		Matches:    len(ranking.Matches),
	}
	s.logSkipped(log, ranking.Skipped)

	log.Info("matches found",
		slog.Int("candidates", stats.Candidates),
		slog.Int("matches", stats.Matches),
	)

	// Уведомляем владельца объекта о каждом подходящем арендаторе.
	s.notifyMatches(ctx, log, domain.DirectionPropertyToTenants, ranking.Matches,
		func(domain.MatchResult) uuid.UUID { return property.OwnerUserID },
	)

	return ranking.Matches, nil
}

// ScorePair — совместимость конкретной пары арендатор/объект без фильтра по порогу.
func (s *Service) ScorePair(ctx context.Context, tenantID, propertyID uuid.UUID) (domain.MatchResult, error) {
	const op = "match.Service.ScorePair"
	log := s.log.With(
		slog.String("op", op),
		slog.String("tenant_id", tenantID.String()),
		slog.String("property_id", propertyID.String()),
	)

	var (
		tenant   domain.TenantPreference
		property domain.PropertyListing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tenant, err = s.tenants.GetByID(gctx, tenantID)
		if errors.Is(err, repository.ErrTenantNotFound) {
			return ErrTenantNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		property, err = s.properties.GetByID(gctx, propertyID)
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return ErrPropertyNotFound
		}
		return err
	})
	if err := g.Wait(); err != nil {
		log.Warn("failed to load pair", sl.Err(err))
		return domain.MatchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.scorer.Score(tenant, property)
	if err != nil {
		log.Warn("cannot score pair", sl.Err(err))
		return domain.MatchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// GetStatistics — комбинаторная оценка по числу активных объектов и ищущих арендаторов.
func (s *Service) GetStatistics(ctx context.Context) (domain.MatchStatistics, error) {
	const op = "match.Service.GetStatistics"

	var propertyCount, tenantCount int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		propertyCount, err = s.properties.CountActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tenantCount, err = s.tenants.CountLookingForPlace(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("failed to count candidates", slog.String("op", op), sl.Err(err))
		return domain.MatchStatistics{}, fmt.Errorf("%s: %w", op, err)
	}

	return matching.ComputeMatchStatistics(propertyCount, tenantCount), nil
}

func (s *Service) effectiveLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit
}

func (s *Service) logSkipped(log *slog.Logger, skipped []matching.SkippedCandidate) {
	for _, c := range skipped {
		log.Warn("candidate skipped", slog.String("candidate_id", c.ID.String()), sl.Err(c.Err))
	}
}

// notifyMatches отправляет уведомления по результатам выше порога.
// Ошибки доставки только логируются. Отмена контекста прекращает рассылку,
// но не отменяет уже посчитанную выдачу.
func (s *Service) notifyMatches(
	ctx context.Context,
	log *slog.Logger,
	direction domain.MatchDirection,
	matches []domain.MatchResult,
	recipient func(domain.MatchResult) uuid.UUID,
) {
	if !s.cfg.NotifyEnabled {
		return
	}

	for _, m := range matches {
		if m.Score < s.cfg.NotifyMinScore {
			continue
		}
		if err := ctx.Err(); err != nil {
			log.Warn("notifications interrupted", sl.Err(err))
			return
		}

		n := domain.MatchNotification{
			UserID:     recipient(m),
			MatchID:    m.MatchID(),
			TenantID:   m.TenantID,
			PropertyID: m.PropertyID,
			Score:      m.Score,
			Direction:  direction,
		}

		err := s.notifier.Notify(ctx, n)
		if errors.Is(err, notify.ErrOptedOut) {
			log.Debug("user opted out of match notifications", slog.String("user_id", n.UserID.String()))
			continue
		}
		s.metrics.RecordNotification(err)
		if err != nil {
			log.Error("failed to send match notification",
				slog.String("match_id", n.MatchID.String()),
				sl.Err(err),
			)
		}
	}
}
