package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/pkg/models"
)

// FavoriteSource lists the estates a user has favorited.
type FavoriteSource interface {
	FavoriteEstateIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// InteractionRepository resolves a user's favorites, reviews and rentals to
// estates, and serves approved transactions for market analysis.
type InteractionRepository struct {
	db        DatabaseQuerier
	estates   *EstateRepository
	favorites FavoriteSource
	logger    *logrus.Logger
}

func NewInteractionRepository(db DatabaseQuerier, estates *EstateRepository, favorites FavoriteSource, logger *logrus.Logger) *InteractionRepository {
	return &InteractionRepository{
		db:        db,
		estates:   estates,
		favorites: favorites,
		logger:    logger,
	}
}

func (r *InteractionRepository) FavoriteEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	if r.favorites == nil {
		return nil, nil
	}

	ids, err := r.favorites.FavoriteEstateIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return r.estates.FindEstates(ctx, models.EstateFilter{IDs: ids})
}

func (r *InteractionRepository) ReviewedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	query := `SELECT ` + estateColumns + `
		FROM reviews rv
		JOIN estates e ON e.id = rv.estate_id
		WHERE rv.user_id = $1
		ORDER BY rv.created_at`

	return r.estates.queryEstates(ctx, query, userID)
}

func (r *InteractionRepository) RentedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	query := `SELECT ` + estateColumns + `
		FROM rental_transactions t
		JOIN estates e ON e.id = t.estate_id
		WHERE t.tenant_id = $1 AND t.status = $2
		ORDER BY t.created_at`

	return r.estates.queryEstates(ctx, query, userID, string(models.TransactionStatusApproved))
}

func (r *InteractionRepository) ApprovedTransactionsBetween(ctx context.Context, from, to time.Time) ([]models.RentalTransaction, error) {
	query := `SELECT
			t.id, t.estate_id, t.tenant_id, t.landlord_id, t.rental_price, t.status,
			t.start_date, t.end_date, t.created_at, ` + estateColumns + `
		FROM rental_transactions t
		JOIN estates e ON e.id = t.estate_id
		WHERE t.status = $1 AND t.created_at >= $2 AND t.created_at <= $3
		ORDER BY t.created_at`

	rows, err := r.db.Query(ctx, query, string(models.TransactionStatusApproved), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.RentalTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"from":  from,
		"to":    to,
		"count": len(txs),
	}).Debug("Loaded approved transactions")

	return txs, nil
}

func scanTransaction(rows pgx.Rows) (models.RentalTransaction, error) {
	var (
		tx     models.RentalTransaction
		status string
	)

	estate, err := scanEstate(rows,
		&tx.ID, &tx.EstateID, &tx.TenantID, &tx.LandlordID, &tx.RentalPrice, &status,
		&tx.StartDate, &tx.EndDate, &tx.CreatedAt,
	)
	if err != nil {
		return models.RentalTransaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Status = models.TransactionStatus(status)
	tx.Estate = &estate
	return tx, nil
}
