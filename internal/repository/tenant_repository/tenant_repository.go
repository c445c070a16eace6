package tenant_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tenant_match/internal/domain"
	"tenant_match/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TenantRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewTenantRepository(db *pgxpool.Pool, log *slog.Logger) *TenantRepository {
	return &TenantRepository{db: db, log: log}
}

const tenantColumns = `
	tenant_profile_id, user_id,
	min_budget, max_budget,
	preferred_city, preferred_province, preferred_bedrooms,
	preferred_property_type, furnished_preference,
	has_pets, smokes, is_looking_for_place
`

// GetByID — получает профиль арендатора по ID.
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.TenantPreference, error) {
	const op = "TenantRepository.GetByID"

	query := `SELECT ` + tenantColumns + ` FROM tenant_profiles WHERE tenant_profile_id = $1`

	t, err := scanTenant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TenantPreference{}, fmt.Errorf("%s: %w", op, repository.ErrTenantNotFound)
		}
		return domain.TenantPreference{}, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// ListLookingForPlace — все арендаторы, которые ищут жильё.
// Пагинации нет: пул кандидатов сортируется целиком в памяти.
func (r *TenantRepository) ListLookingForPlace(ctx context.Context) ([]domain.TenantPreference, error) {
	const op = "TenantRepository.ListLookingForPlace"

	query := `
		SELECT ` + tenantColumns + `
		FROM tenant_profiles
		WHERE is_looking_for_place = TRUE
		ORDER BY created_at DESC, tenant_profile_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: query failed: %w", op, err)
	}
	defer rows.Close()

	var tenants []domain.TenantPreference
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", op, err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	r.log.Debug("tenants loaded", slog.String("op", op), slog.Int("count", len(tenants)))

	return tenants, nil
}

// CountLookingForPlace — число арендаторов в поиске.
func (r *TenantRepository) CountLookingForPlace(ctx context.Context) (int, error) {
	const op = "TenantRepository.CountLookingForPlace"

	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tenant_profiles WHERE is_looking_for_place = TRUE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func scanTenant(row pgx.Row) (domain.TenantPreference, error) {
	var t domain.TenantPreference
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.MinBudget,
		&t.MaxBudget,
		&t.PreferredCity,
		&t.PreferredProvince,
		&t.PreferredBedrooms,
		&t.PreferredPropertyType,
		&t.FurnishedPreference,
		&t.HasPets,
		&t.Smokes,
		&t.IsLookingForPlace,
	)
	return t, err
}
