package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"tenant_match/internal/domain"
	"tenant_match/internal/lib/logger/handlers/slogdiscard"
	"tenant_match/internal/lib/metrics"
	"tenant_match/internal/repository"
	"tenant_match/internal/services/matching"
	"tenant_match/internal/services/notify"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTenantRepo struct {
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (domain.TenantPreference, error)
	ListLookingForPlaceFunc  func(ctx context.Context) ([]domain.TenantPreference, error)
	CountLookingForPlaceFunc func(ctx context.Context) (int, error)
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TenantPreference, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockTenantRepo) ListLookingForPlace(ctx context.Context) ([]domain.TenantPreference, error) {
	return m.ListLookingForPlaceFunc(ctx)
}

func (m *mockTenantRepo) CountLookingForPlace(ctx context.Context) (int, error) {
	return m.CountLookingForPlaceFunc(ctx)
}

type mockPropertyRepo struct {
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (domain.PropertyListing, error)
	ListActiveFunc  func(ctx context.Context) ([]domain.PropertyListing, error)
	CountActiveFunc func(ctx context.Context) (int, error)
}

func (m *mockPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.PropertyListing, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockPropertyRepo) ListActive(ctx context.Context) ([]domain.PropertyListing, error) {
	return m.ListActiveFunc(ctx)
}

func (m *mockPropertyRepo) CountActive(ctx context.Context) (int, error) {
	return m.CountActiveFunc(ctx)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n domain.MatchNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func testTenant() domain.TenantPreference {
	return domain.TenantPreference{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		MinBudget:         1000,
		MaxBudget:         1500,
		PreferredCity:     lo.ToPtr("Amsterdam"),
		HasPets:           true,
		IsLookingForPlace: true,
	}
}

func testProperty(rent float64, city string) domain.PropertyListing {
	return domain.PropertyListing{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		Title:       "Apartment in " + city,
		RentAmount:  rent,
		City:        city,
		Province:    "Noord-Holland",
		PetsAllowed: true,
		Status:      domain.PropertyStatusActive,
	}
}

func newTestService(t *testing.T, tenants TenantRepository, properties PropertyRepository, n *mockNotifier, cfg Config) *Service {
	t.Helper()
	scorer, err := matching.NewScorer(domain.DefaultMatchConfig())
	require.NoError(t, err)

	log := slogdiscard.NewDiscardLogger()
	if n == nil {
		return New(log, tenants, properties, scorer, nil, metrics.NewMatchMetrics(log), cfg)
	}
	return New(log, tenants, properties, scorer, n, metrics.NewMatchMetrics(log), cfg)
}

func TestFindMatchesForTenant(t *testing.T) {
	tenant := testTenant()
	best := testProperty(1200, "Amsterdam")
	above := testProperty(1600, "Amsterdam")
	elsewhere := testProperty(5000, "Groningen")
	rented := testProperty(1200, "Amsterdam")
	rented.Status = domain.PropertyStatusRented

	tenants := &mockTenantRepo{GetByIDFunc: func(_ context.Context, id uuid.UUID) (domain.TenantPreference, error) {
		assert.Equal(t, tenant.ID, id)
		return tenant, nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return []domain.PropertyListing{elsewhere, above, rented, best}, nil
	}}

	n := new(mockNotifier)
	n.On("Notify", mock.Anything, mock.MatchedBy(func(got domain.MatchNotification) bool {
		return got.PropertyID == best.ID
	})).Return(nil).Once()
	n.On("Notify", mock.Anything, mock.MatchedBy(func(got domain.MatchNotification) bool {
		return got.PropertyID == above.ID
	})).Return(nil).Once()

	svc := newTestService(t, tenants, properties, n, DefaultConfig())

	results, err := svc.FindMatchesForTenant(context.Background(), tenant.ID, 0)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, best.ID, results[0].PropertyID)
	assert.Equal(t, above.ID, results[1].PropertyID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	n.AssertExpectations(t)
	for _, call := range n.Calls {
		got := call.Arguments.Get(1).(domain.MatchNotification)
		assert.Equal(t, tenant.UserID, got.UserID)
		assert.Equal(t, domain.DirectionTenantToProperties, got.Direction)
		assert.Equal(t, domain.NewMatchID(tenant.ID, got.PropertyID), got.MatchID)
	}

	stats := svc.Metrics().GetStats()
	assert.Equal(t, int64(1), stats.ForTenant.RunsTotal)
	assert.Equal(t, int64(3), stats.ForTenant.CandidatesTotal)
	assert.Equal(t, int64(2), stats.ForTenant.MatchesTotal)
	assert.Equal(t, int64(2), stats.NotificationsSent)
}

func TestFindMatchesForTenant_NotFound(t *testing.T) {
	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return domain.TenantPreference{}, repository.ErrTenantNotFound
	}}
	svc := newTestService(t, tenants, &mockPropertyRepo{}, nil, DefaultConfig())

	_, err := svc.FindMatchesForTenant(context.Background(), uuid.New(), 10)

	assert.ErrorIs(t, err, ErrTenantNotFound)
	assert.Equal(t, int64(1), svc.Metrics().GetStats().ForTenant.ErrorsTotal)
}

func TestFindMatchesForTenant_InvalidTenant(t *testing.T) {
	tenant := testTenant()
	tenant.MinBudget = 2000

	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return tenant, nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return []domain.PropertyListing{testProperty(1200, "Amsterdam")}, nil
	}}
	svc := newTestService(t, tenants, properties, nil, DefaultConfig())

	_, err := svc.FindMatchesForTenant(context.Background(), tenant.ID, 10)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFindMatchesForTenant_RepositoryError(t *testing.T) {
	dbErr := errors.New("connection reset")
	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return testTenant(), nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return nil, dbErr
	}}
	svc := newTestService(t, tenants, properties, nil, DefaultConfig())

	_, err := svc.FindMatchesForTenant(context.Background(), uuid.New(), 10)

	assert.ErrorIs(t, err, dbErr)
}

func TestFindMatchesForTenant_SkipsInvalidCandidates(t *testing.T) {
	good := testProperty(1200, "Amsterdam")
	broken := testProperty(-5, "Amsterdam")

	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return testTenant(), nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return []domain.PropertyListing{broken, good}, nil
	}}
	svc := newTestService(t, tenants, properties, nil, DefaultConfig())

	results, err := svc.FindMatchesForTenant(context.Background(), uuid.New(), 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, good.ID, results[0].PropertyID)
	assert.Equal(t, int64(1), svc.Metrics().GetStats().ForTenant.SkippedTotal)
}

func TestFindMatchesForTenant_Limit(t *testing.T) {
	candidates := make([]domain.PropertyListing, 0, 10)
	for range 10 {
		candidates = append(candidates, testProperty(1200, "Amsterdam"))
	}

	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return testTenant(), nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return candidates, nil
	}}

	cfg := DefaultConfig()
	cfg.NotifyEnabled = false
	cfg.DefaultLimit = 3
	cfg.MaxLimit = 5
	svc := newTestService(t, tenants, properties, nil, cfg)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default limit", 0, 3},
		{"negative uses default", -1, 3},
		{"explicit limit", 4, 4},
		{"capped by max", 50, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := svc.FindMatchesForTenant(context.Background(), uuid.New(), tt.limit)
			require.NoError(t, err)
			assert.Len(t, results, tt.want)
			// Равные score сохраняют порядок выборки.
			for i, r := range results {
				assert.Equal(t, candidates[i].ID, r.PropertyID)
			}
		})
	}
}

func TestFindMatchesForTenant_NotificationFailureDoesNotFail(t *testing.T) {
	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return testTenant(), nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return []domain.PropertyListing{testProperty(1200, "Amsterdam")}, nil
	}}

	n := new(mockNotifier)
	n.On("Notify", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	svc := newTestService(t, tenants, properties, n, DefaultConfig())

	results, err := svc.FindMatchesForTenant(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int64(1), svc.Metrics().GetStats().NotificationsFailed)
}

func TestFindMatchesForTenant_BelowNotifyThreshold(t *testing.T) {
	tenant := testTenant()
	tenant.HasPets = false
	// Только бюджет: 0.40 + 0.15 + 0.5*0.20 = 0.65 < 0.7
	far := testProperty(1200, "Groningen")
	far.Province = "Groningen"

	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return tenant, nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return []domain.PropertyListing{far}, nil
	}}

	n := new(mockNotifier)
	svc := newTestService(t, tenants, properties, n, DefaultConfig())

	results, err := svc.FindMatchesForTenant(context.Background(), tenant.ID, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.65, results[0].Score, 1e-9)
	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestFindMatchesForTenant_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		cancel()
		return testTenant(), nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		t.Fatal("candidates must not be fetched after cancellation")
		return nil, nil
	}}
	svc := newTestService(t, tenants, properties, nil, DefaultConfig())

	_, err := svc.FindMatchesForTenant(ctx, uuid.New(), 10)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindMatchesForProperty(t *testing.T) {
	property := testProperty(1200, "Amsterdam")
	match := testTenant()
	poor := testTenant()
	poor.MinBudget, poor.MaxBudget = 300, 500
	poor.PreferredCity = lo.ToPtr("Rotterdam")
	poor.HasPets = false
	idle := testTenant()
	idle.IsLookingForPlace = false

	tenants := &mockTenantRepo{ListLookingForPlaceFunc: func(context.Context) ([]domain.TenantPreference, error) {
		return []domain.TenantPreference{poor, idle, match}, nil
	}}
	properties := &mockPropertyRepo{GetByIDFunc: func(_ context.Context, id uuid.UUID) (domain.PropertyListing, error) {
		assert.Equal(t, property.ID, id)
		return property, nil
	}}

	n := new(mockNotifier)
	n.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newTestService(t, tenants, properties, n, DefaultConfig())

	results, err := svc.FindMatchesForProperty(context.Background(), property.ID, 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, match.ID, results[0].TenantID)
	assert.Equal(t, property.ID, results[0].PropertyID)

	n.AssertExpectations(t)
	got := n.Calls[0].Arguments.Get(1).(domain.MatchNotification)
	assert.Equal(t, property.OwnerUserID, got.UserID)
	assert.Equal(t, domain.DirectionPropertyToTenants, got.Direction)

	assert.Equal(t, int64(2), svc.Metrics().GetStats().ForProperty.CandidatesTotal)
}

func TestFindMatchesForProperty_NotFound(t *testing.T) {
	properties := &mockPropertyRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.PropertyListing, error) {
		return domain.PropertyListing{}, repository.ErrPropertyNotFound
	}}
	svc := newTestService(t, &mockTenantRepo{}, properties, nil, DefaultConfig())

	_, err := svc.FindMatchesForProperty(context.Background(), uuid.New(), 10)

	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestFindMatchesForProperty_SymmetricWithTenantSearch(t *testing.T) {
	tenant := testTenant()
	property := testProperty(1600, "Amsterdam")

	tenants := &mockTenantRepo{
		GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) { return tenant, nil },
		ListLookingForPlaceFunc: func(context.Context) ([]domain.TenantPreference, error) {
			return []domain.TenantPreference{tenant}, nil
		},
	}
	properties := &mockPropertyRepo{
		GetByIDFunc: func(context.Context, uuid.UUID) (domain.PropertyListing, error) { return property, nil },
		ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
			return []domain.PropertyListing{property}, nil
		},
	}
	cfg := DefaultConfig()
	cfg.NotifyEnabled = false
	svc := newTestService(t, tenants, properties, nil, cfg)

	forTenant, err := svc.FindMatchesForTenant(context.Background(), tenant.ID, 10)
	require.NoError(t, err)
	forProperty, err := svc.FindMatchesForProperty(context.Background(), property.ID, 10)
	require.NoError(t, err)

	require.Len(t, forTenant, 1)
	require.Len(t, forProperty, 1)
	assert.Equal(t, forTenant[0], forProperty[0])
}

func TestScorePair(t *testing.T) {
	tenant := testTenant()
	property := testProperty(1200, "Amsterdam")

	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return tenant, nil
	}}
	properties := &mockPropertyRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.PropertyListing, error) {
		return property, nil
	}}
	svc := newTestService(t, tenants, properties, nil, DefaultConfig())

	result, err := svc.ScorePair(context.Background(), tenant.ID, property.ID)
	require.NoError(t, err)

	assert.Equal(t, tenant.ID, result.TenantID)
	assert.Equal(t, property.ID, result.PropertyID)
	assert.InDelta(t, 1.0, result.Compatibility.Budget, 1e-9)
	assert.InDelta(t, 1.0, result.Compatibility.Location, 1e-9)
}

func TestScorePair_NotFound(t *testing.T) {
	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return testTenant(), nil
	}}
	properties := &mockPropertyRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.PropertyListing, error) {
		return domain.PropertyListing{}, repository.ErrPropertyNotFound
	}}
	svc := newTestService(t, tenants, properties, nil, DefaultConfig())

	_, err := svc.ScorePair(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestGetStatistics(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	tenants := &mockTenantRepo{CountLookingForPlaceFunc: func(context.Context) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return 4, nil
	}}
	properties := &mockPropertyRepo{CountActiveFunc: func(context.Context) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return 10, nil
	}}
	svc := newTestService(t, tenants, properties, nil, DefaultConfig())

	stats, err := svc.GetStatistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, domain.MatchStatistics{
		TotalActiveProperties:     10,
		TotalActiveTenants:        4,
		PotentialMatches:          40,
		AverageMatchesPerProperty: 4,
		AverageMatchesPerTenant:   10,
	}, stats)
}

func TestGetStatistics_Error(t *testing.T) {
	dbErr := errors.New("timeout")
	tenants := &mockTenantRepo{CountLookingForPlaceFunc: func(context.Context) (int, error) {
		return 0, dbErr
	}}
	properties := &mockPropertyRepo{CountActiveFunc: func(context.Context) (int, error) {
		return 10, nil
	}}
	svc := newTestService(t, tenants, properties, nil, DefaultConfig())

	_, err := svc.GetStatistics(context.Background())

	assert.ErrorIs(t, err, dbErr)
}

func TestFindMatchesForTenant_CancelledDuringNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := testProperty(1200, "Amsterdam")
	second := testProperty(1300, "Amsterdam")

	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return testTenant(), nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return []domain.PropertyListing{first, second}, nil
	}}

	n := new(mockNotifier)
	n.On("Notify", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil).Once()

	svc := newTestService(t, tenants, properties, n, DefaultConfig())

	results, err := svc.FindMatchesForTenant(ctx, uuid.New(), 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, first.ID, results[0].PropertyID)
	n.AssertNumberOfCalls(t, "Notify", 1)
	assert.Equal(t, int64(0), svc.Metrics().GetStats().ForTenant.ErrorsTotal)
}

func TestFindMatchesForTenant_OptedOutIsNotAFailure(t *testing.T) {
	tenants := &mockTenantRepo{GetByIDFunc: func(context.Context, uuid.UUID) (domain.TenantPreference, error) {
		return testTenant(), nil
	}}
	properties := &mockPropertyRepo{ListActiveFunc: func(context.Context) ([]domain.PropertyListing, error) {
		return []domain.PropertyListing{testProperty(1200, "Amsterdam")}, nil
	}}

	n := new(mockNotifier)
	n.On("Notify", mock.Anything, mock.Anything).
		Return(fmt.Errorf("notify.PreferenceGate.Notify: %w", notify.ErrOptedOut)).Once()

	svc := newTestService(t, tenants, properties, n, DefaultConfig())

	results, err := svc.FindMatchesForTenant(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	stats := svc.Metrics().GetStats()
	assert.Equal(t, int64(0), stats.NotificationsSent)
	assert.Equal(t, int64(0), stats.NotificationsFailed)
}
