package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
)

var estateColumnNames = []string{
	"id", "name", "price",
	"bedroom", "bathroom", "floors",
	"house_number", "road", "quarter", "city", "country", "lat", "lng",
	"status", "rating_star", "owner_id", "created_at", "updated_at",
	"likes", "reviews",
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

type estateRow struct {
	id       uuid.UUID
	name     string
	price    float64
	bedroom  *int
	city     string
	lat, lng string
	status   string
	rating   *float64
	likes    []uuid.UUID
	created  time.Time
}

func (r estateRow) values() []interface{} {
	return []interface{}{
		r.id, r.name, r.price,
		r.bedroom, intPtr(1), intPtr(2),
		"12", "Tran Phu", "Ba Dinh", r.city, "Vietnam", r.lat, r.lng,
		r.status, r.rating, nil, r.created, r.created,
		r.likes, []uuid.UUID{},
	}
}

func estateRows(rows ...estateRow) *pgxmock.Rows {
	result := pgxmock.NewRows(estateColumnNames)
	for _, r := range rows {
		result.AddRow(r.values()...)
	}
	return result
}
