package property_repository

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

type PropertyRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewPropertyRepository(db *pgxpool.Pool, log *slog.Logger) *PropertyRepository {
	return &PropertyRepository{db: db, log: log}
}

const propertyColumns = `
	property_id, owner_user_id, title,
	rent_amount, city, province,
	bedrooms, property_type, furnished,
	pets_allowed, smoking_allowed, status
`

// GetByID — получает объект по ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.PropertyListing, error) {
	const op = "PropertyRepository.GetByID"

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE property_id = $1`

	p, err := scanProperty(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PropertyListing{}, fmt.Errorf("%s: %w", op, repository.ErrPropertyNotFound)
		}
		return domain.PropertyListing{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// ListActive — все активные объекты.
func (r *PropertyRepository) ListActive(ctx context.Context) ([]domain.PropertyListing, error) {
	const op = "PropertyRepository.ListActive"

	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE status = $1
		ORDER BY created_at DESC, property_id
	`

	rows, err := r.db.Query(ctx, query, domain.PropertyStatusActive.String())
	if err != nil {
		return nil, fmt.Errorf("%s: query failed: %w", op, err)
	}
	defer rows.Close()

	var properties []domain.PropertyListing
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", op, err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	r.log.Debug("properties loaded", slog.String("op", op), slog.Int("count", len(properties)))

	return properties, nil
}

// CountActive — число активных объектов.
func (r *PropertyRepository) CountActive(ctx context.Context) (int, error) {
	const op = "PropertyRepository.CountActive"

	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM properties WHERE status = $1`,
		domain.PropertyStatusActive.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func scanProperty(row pgx.Row) (domain.PropertyListing, error) {
	var (
		p      domain.PropertyListing
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Title,
		&p.RentAmount,
		&p.City,
		&p.Province,
		&p.Bedrooms,
		&p.PropertyType,
		&p.Furnished,
		&p.PetsAllowed,
		&p.SmokingAllowed,
		&status,
	)
	p.Status = domain.PropertyStatus(status)
	return p, err
}
