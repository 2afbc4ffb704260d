package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/flights"
	"skyfare/internal/users"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// RecordCallback inserts the idempotency row. The bool reports
	// whether the insert landed; false means that callback was
	// already processed.
	RecordCallback(tx *gorm.DB, record *ProcessedCallback) (bool, error)

	GetUserEmail(userID uuid.UUID) (string, error)
	GetFlight(flightID uuid.UUID) (*flights.Flight, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) RecordCallback(tx *gorm.DB, record *ProcessedCallback) (bool, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	err := conn.Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repository) GetUserEmail(userID uuid.UUID) (string, error) {
	var user users.User
	err := r.db.Select("email").Where("id = ?", userID).First(&user).Error
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func (r *repository) GetFlight(flightID uuid.UUID) (*flights.Flight, error) {
	var flight flights.Flight
	err := r.db.Where("id = ?", flightID).First(&flight).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}
