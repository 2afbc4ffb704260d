package checkin

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/flights"
	"skyfare/internal/orders"
	"skyfare/internal/tickets"
	"skyfare/internal/users"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	GetTicket(ticketID uuid.UUID) (*tickets.Ticket, error)
	GetFlight(flightID uuid.UUID) (*flights.Flight, error)
	GetOrder(orderID uint) (*orders.Order, error)
	GetUserEmail(userID uuid.UUID) (string, error)
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

func (r *repository) GetTicket(ticketID uuid.UUID) (*tickets.Ticket, error) {
	var ticket tickets.Ticket
	if err := r.db.First(&ticket, "id = ?", ticketID).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetFlight(flightID uuid.UUID) (*flights.Flight, error) {
	var flight flights.Flight
	if err := r.db.First(&flight, "id = ?", flightID).Error; err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *repository) GetOrder(orderID uint) (*orders.Order, error) {
	var order orders.Order
	if err := r.db.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetUserEmail(userID uuid.UUID) (string, error) {
	var user users.User
	if err := r.db.Select("email").First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return user.Email, nil
}
