package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusRejected  TransactionStatus = "rejected"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

type Favorite struct {
	UserID    uuid.UUID   `json:"user_id"`
	EstateIDs []uuid.UUID `json:"rooms"`
}

type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	EstateID  uuid.UUID `json:"estate_id" db:"estate_id"`
	Rating    float64   `json:"rating" db:"rating"`
	Content   string    `json:"content,omitempty" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type RentalTransaction struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	EstateID    uuid.UUID         `json:"estate_id" db:"estate_id"`
	TenantID    uuid.UUID         `json:"tenant_id" db:"tenant_id"`
	LandlordID  uuid.UUID         `json:"landlord_id" db:"landlord_id"`
	RentalPrice float64           `json:"rental_price" db:"rental_price"`
	Status      TransactionStatus `json:"status" db:"status"`
	StartDate   time.Time         `json:"start_date" db:"start_date"`
	EndDate     time.Time         `json:"end_date" db:"end_date"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`

	// Estate is populated by the store when the transaction is fetched with its listing.
	Estate *Estate `json:"estate,omitempty"`
}
