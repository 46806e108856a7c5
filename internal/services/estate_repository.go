package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/recommend"
	"github.com/temcen/estaterec/pkg/models"
)

// DatabaseQuerier interface for database operations
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const estateColumns = `
	e.id, e.name, e.price,
	e.bedroom, e.bathroom, e.floors,
	e.house_number, e.road, e.quarter, e.city, e.country, e.lat, e.lng,
	e.status, e.rating_star, e.owner_id, e.created_at, e.updated_at,
	COALESCE((SELECT array_agg(l.user_id ORDER BY l.created_at) FROM estate_likes l WHERE l.estate_id = e.id), '{}') AS likes,
	COALESCE((SELECT array_agg(r.id ORDER BY r.created_at) FROM reviews r WHERE r.estate_id = e.id), '{}') AS reviews`

// EstateRepository reads listings from PostgreSQL.
type EstateRepository struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewEstateRepository(db DatabaseQuerier, logger *logrus.Logger) *EstateRepository {
	return &EstateRepository{
		db:     db,
		logger: logger,
	}
}

// CountByStatus returns how many listings are in each status.
func (r *EstateRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT e.status, count(*) FROM estates e GROUP BY e.status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count estates: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan estate count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read estate counts: %w", err)
	}
	return counts, nil
}

func (r *EstateRepository) GetEstate(ctx context.Context, id uuid.UUID) (*models.Estate, error) {
	query := `SELECT ` + estateColumns + `
		FROM estates e
		WHERE e.id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query estate %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read estate %s: %w", id, err)
		}
		return nil, fmt.Errorf("estate %s: %w", id, recommend.ErrEstateNotFound)
	}

	estate, err := scanEstate(rows)
	if err != nil {
		return nil, err
	}
	return &estate, nil
}

// FindEstates returns estates matching every non-zero field of filter, oldest first.
// City comparison is done on the NFC-normalised, trimmed column value.
func (r *EstateRepository) FindEstates(ctx context.Context, filter models.EstateFilter) ([]models.Estate, error) {
	query := `SELECT ` + estateColumns + `
		FROM estates e
		WHERE 1=1`

	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND e.status = $%d", len(args))
	}

	if filter.City != "" {
		args = append(args, filter.City)
		query += fmt.Sprintf(" AND normalize(btrim(e.city), NFC) = $%d", len(args))
	}

	if len(filter.IDs) > 0 {
		args = append(args, filter.IDs)
		query += fmt.Sprintf(" AND e.id = ANY($%d)", len(args))
	}

	query += " ORDER BY e.created_at, e.id"

	return r.queryEstates(ctx, query, args...)
}

func (r *EstateRepository) AllEstates(ctx context.Context) ([]models.Estate, error) {
	query := `SELECT ` + estateColumns + `
		FROM estates e
		ORDER BY e.created_at, e.id`

	return r.queryEstates(ctx, query)
}

func (r *EstateRepository) queryEstates(ctx context.Context, query string, args ...interface{}) ([]models.Estate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query estates: %w", err)
	}
	defer rows.Close()

	var estates []models.Estate
	for rows.Next() {
		estate, err := scanEstate(rows)
		if err != nil {
			return nil, err
		}
		estates = append(estates, estate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate estates: %w", err)
	}

	r.logger.WithField("count", len(estates)).Debug("Loaded estates")
	return estates, nil
}

// scanEstate reads one row selected with estateColumns, optionally preceded by extra destinations.
func scanEstate(rows pgx.Rows, extra ...interface{}) (models.Estate, error) {
	var (
		e      models.Estate
		status string
	)

	dest := append(extra,
		&e.ID, &e.Name, &e.Price,
		&e.Property.Bedroom, &e.Property.Bathroom, &e.Property.Floors,
		&e.Address.HouseNumber, &e.Address.Road, &e.Address.Quarter,
		&e.Address.City, &e.Address.Country, &e.Address.Lat, &e.Address.Lng,
		&status, &e.RatingStar, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
		&e.Likes, &e.Reviews,
	)

	if err := rows.Scan(dest...); err != nil {
		return models.Estate{}, fmt.Errorf("failed to scan estate: %w", err)
	}

	e.Status = models.EstateStatus(status)
	return e, nil
}
