package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/flights"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	Create(tx *gorm.DB, order *Order) error
	GetByID(tx *gorm.DB, id uint) (*Order, error)
	GetByUserID(userID uuid.UUID) ([]Order, error)
	AddToPrice(tx *gorm.DB, orderID uint, delta int) error
	MarkPaid(tx *gorm.DB, orderID uint) error

	GetFlight(tx *gorm.DB, flightID uuid.UUID) (*flights.Flight, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) Create(tx *gorm.DB, order *Order) error {
	return r.conn(tx).Create(order).Error
}

func (r *repository) GetByID(tx *gorm.DB, id uint) (*Order, error) {
	var order Order
	err := r.conn(tx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetByUserID(userID uuid.UUID) ([]Order, error) {
	var list []Order
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&list).Error
	return list, err
}

func (r *repository) AddToPrice(tx *gorm.DB, orderID uint, delta int) error {
	return r.conn(tx).Model(&Order{}).
		Where("id = ?", orderID).
		Update("price", gorm.Expr("price + ?", delta)).Error
}

func (r *repository) MarkPaid(tx *gorm.DB, orderID uint) error {
	return r.conn(tx).Model(&Order{}).
		Where("id = ? AND paid_at IS NULL", orderID).
		Update("paid_at", gorm.Expr("NOW()")).Error
}

func (r *repository) GetFlight(tx *gorm.DB, flightID uuid.UUID) (*flights.Flight, error) {
	var flight flights.Flight
	err := r.conn(tx).Where("id = ?", flightID).First(&flight).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}
