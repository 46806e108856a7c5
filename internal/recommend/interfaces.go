package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/temcen/estaterec/pkg/models"
)

// ErrEstateNotFound is returned by an EstateStore when the requested listing does not exist.
var ErrEstateNotFound = errors.New("estate not found")

// EstateStore provides read access to listings.
type EstateStore interface {
	GetEstate(ctx context.Context, id uuid.UUID) (*models.Estate, error)
	FindEstates(ctx context.Context, filter models.EstateFilter) ([]models.Estate, error)
	AllEstates(ctx context.Context) ([]models.Estate, error)
}

// InteractionStore resolves the listings a user has engaged with.
type InteractionStore interface {
	FavoriteEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error)
	ReviewedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error)
	RentedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error)
}

// TransactionStore exposes approved rental transactions with their listing attached.
type TransactionStore interface {
	ApprovedTransactionsBetween(ctx context.Context, from, to time.Time) ([]models.RentalTransaction, error)
}
