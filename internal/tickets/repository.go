package tickets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skyfare/internal/flights"
)

// Repository persists tickets. Mutating methods take a tx so the
// service can compose them inside one booking transaction; a nil tx
// falls back to the base connection.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// GetFlightForUpdate locks the flight row, serializing all seat
	// mutations on that flight for the duration of the transaction.
	GetFlightForUpdate(tx *gorm.DB, flightID uuid.UUID) (*flights.Flight, error)
	GetFlight(flightID uuid.UUID) (*flights.Flight, error)

	CountActive(tx *gorm.DB, flightID uuid.UUID, cabinClass string) (int64, error)
	OccupiedSeatNumbers(tx *gorm.DB, flightID uuid.UUID, cabinClass string) ([]int, error)
	FirstAvailable(tx *gorm.DB, flightID uuid.UUID, cabinClass string) (*Ticket, error)
	AvailableBySeat(tx *gorm.DB, flightID uuid.UUID, cabinClass string, seatNumber int) (*Ticket, error)

	Create(tx *gorm.DB, ticket *Ticket) error
	Save(tx *gorm.DB, ticket *Ticket) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	GetByID(tx *gorm.DB, id uuid.UUID) (*Ticket, error)

	GetByCartID(cartID uuid.UUID) ([]Ticket, error)
	GetByOrderID(orderID uint) ([]Ticket, error)

	// AssignToOrder moves booked cart tickets onto an order.
	AssignToOrder(tx *gorm.DB, ticketIDs []uuid.UUID, cartID uuid.UUID, orderID uint) (int64, error)
	UpdateStatusByOrderID(tx *gorm.DB, orderID uint, from, to Status) (int64, error)

	// ExpireIfOverdue flips one booked ticket to available once its
	// hold window has passed. Returns the affected row count so the
	// caller can tell a no-op from a real expiry.
	ExpireIfOverdue(id uuid.UUID, cutoff time.Time) (*Ticket, int64, error)
	ListOverdue(cutoff time.Time) ([]Ticket, error)
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

func (r *repository) GetFlightForUpdate(tx *gorm.DB, flightID uuid.UUID) (*flights.Flight, error) {
	var flight flights.Flight
	err := r.conn(tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", flightID).
		First(&flight).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *repository) GetFlight(flightID uuid.UUID) (*flights.Flight, error) {
	var flight flights.Flight
	err := r.db.Where("id = ?", flightID).First(&flight).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *repository) CountActive(tx *gorm.DB, flightID uuid.UUID, cabinClass string) (int64, error) {
	var count int64
	err := r.conn(tx).Model(&Ticket{}).
		Where("flight_id = ? AND cabin_class = ? AND status IN ?", flightID, cabinClass, ActiveStatuses).
		Count(&count).Error
	return count, err
}

// OccupiedSeatNumbers returns the seat numbers held by active tickets
// in the cabin. Seats on expired holds are not occupied: the acquire
// that picks one evicts the stale ticket.
func (r *repository) OccupiedSeatNumbers(tx *gorm.DB, flightID uuid.UUID, cabinClass string) ([]int, error) {
	var seats []int
	err := r.conn(tx).Model(&Ticket{}).
		Where("flight_id = ? AND cabin_class = ? AND seat_number IS NOT NULL AND status IN ?", flightID, cabinClass, ActiveStatuses).
		Pluck("seat_number", &seats).Error
	return seats, err
}

func (r *repository) FirstAvailable(tx *gorm.DB, flightID uuid.UUID, cabinClass string) (*Ticket, error) {
	var ticket Ticket
	err := r.conn(tx).
		Where("flight_id = ? AND cabin_class = ? AND status = ?", flightID, cabinClass, StatusAvailable).
		Order("created_at asc").
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) AvailableBySeat(tx *gorm.DB, flightID uuid.UUID, cabinClass string, seatNumber int) (*Ticket, error) {
	var ticket Ticket
	err := r.conn(tx).
		Where("flight_id = ? AND cabin_class = ? AND seat_number = ? AND status = ?",
			flightID, cabinClass, seatNumber, StatusAvailable).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) Create(tx *gorm.DB, ticket *Ticket) error {
	return r.conn(tx).Create(ticket).Error
}

func (r *repository) Save(tx *gorm.DB, ticket *Ticket) error {
	return r.conn(tx).Save(ticket).Error
}

func (r *repository) Delete(tx *gorm.DB, id uuid.UUID) error {
	return r.conn(tx).Where("id = ?", id).Delete(&Ticket{}).Error
}

func (r *repository) GetByID(tx *gorm.DB, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.conn(tx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByCartID(cartID uuid.UUID) ([]Ticket, error) {
	var list []Ticket
	err := r.db.Where("cart_id = ?", cartID).Order("created_at asc").Find(&list).Error
	return list, err
}

func (r *repository) GetByOrderID(orderID uint) ([]Ticket, error) {
	var list []Ticket
	err := r.db.Where("order_id = ?", orderID).Order("created_at asc").Find(&list).Error
	return list, err
}

func (r *repository) AssignToOrder(tx *gorm.DB, ticketIDs []uuid.UUID, cartID uuid.UUID, orderID uint) (int64, error) {
	res := r.conn(tx).Model(&Ticket{}).
		Where("id IN ? AND cart_id = ? AND status = ?", ticketIDs, cartID, StatusBooked).
		Updates(map[string]interface{}{
			"order_id": orderID,
			"cart_id":  nil,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateStatusByOrderID(tx *gorm.DB, orderID uint, from, to Status) (int64, error) {
	res := r.conn(tx).Model(&Ticket{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *repository) ExpireIfOverdue(id uuid.UUID, cutoff time.Time) (*Ticket, int64, error) {
	res := r.db.Model(&Ticket{}).
		Where("id = ? AND status = ? AND created_at <= ?", id, StatusBooked, cutoff).
		Update("status", StatusAvailable)
	if res.Error != nil {
		return nil, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, 0, nil
	}
	ticket, err := r.GetByID(nil, id)
	if err != nil {
		return nil, res.RowsAffected, err
	}
	return ticket, res.RowsAffected, nil
}

func (r *repository) ListOverdue(cutoff time.Time) ([]Ticket, error) {
	var list []Ticket
	err := r.db.Where("status = ? AND created_at <= ?", StatusBooked, cutoff).Find(&list).Error
	return list, err
}
