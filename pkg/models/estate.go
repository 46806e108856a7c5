package models

import (
	"time"

	"github.com/google/uuid"
)

type EstateStatus string

const (
	EstateStatusAvailable EstateStatus = "available"
	EstateStatusPending   EstateStatus = "pending"
	EstateStatusBooked    EstateStatus = "booked"
)

type Estate struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	Price      float64      `json:"price" db:"price"`
	Property   Property     `json:"property" db:"property"`
	Address    Address      `json:"address" db:"address"`
	Status     EstateStatus `json:"status" db:"status"`
	RatingStar *float64     `json:"rating_star,omitempty" db:"rating_star"`
	Likes      []uuid.UUID  `json:"likes" db:"likes"`
	Reviews    []uuid.UUID  `json:"reviews" db:"reviews"`
	OwnerID    *uuid.UUID   `json:"user,omitempty" db:"owner_id"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// Property holds the room counts of an estate. Nil means the landlord never filled it in.
type Property struct {
	Bedroom  *int `json:"bedroom,omitempty"`
	Bathroom *int `json:"bathroom,omitempty"`
	Floors   *int `json:"floors,omitempty"`
}

// Address mirrors the listing form: coordinates are kept as the strings the client sent.
type Address struct {
	HouseNumber string `json:"house_number,omitempty"`
	Road        string `json:"road,omitempty"`
	Quarter     string `json:"quarter,omitempty"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Lat         string `json:"lat"`
	Lng         string `json:"lng"`
}

// Popularity is the number of likes plus the number of reviews.
func (e *Estate) Popularity() int {
	return len(e.Likes) + len(e.Reviews)
}

// EstateFilter selects estates from the store. Zero-valued fields do not filter.
type EstateFilter struct {
	Status EstateStatus
	City   string
	IDs    []uuid.UUID
}
