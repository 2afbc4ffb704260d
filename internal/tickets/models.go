package tickets

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is one seat hold on a flight. A fresh ticket sits in its
// owner's cart with status booked; checkout moves it onto an order,
// payment flips it to checked_out. The unique seat constraint lives in
// the database (see the migration constraints), the service validates
// before insert for friendly errors.
type Ticket struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	FlightID uuid.UUID `json:"flight_id" gorm:"type:uuid;not null;index"`

	// CartID is set while the ticket sits in a cart, cleared at
	// checkout. OrderID is set at checkout.
	CartID  *uuid.UUID `json:"cart_id" gorm:"type:uuid;index"`
	OrderID *uint      `json:"order_id" gorm:"index"`

	CabinClass string `json:"cabin_class" gorm:"not null;size:10;index"`
	SeatNumber *int   `json:"seat_number"`
	Status     Status `json:"status" gorm:"not null;size:20;default:'booked';index"`

	FirstName *string `json:"first_name" gorm:"size:100"`
	LastName  *string `json:"last_name" gorm:"size:100"`

	CheckInManagerID *uuid.UUID `json:"check_in_manager_id" gorm:"type:uuid"`
	CheckInAt        *time.Time `json:"check_in_at"`
	GateManagerID    *uuid.UUID `json:"gate_manager_id" gorm:"type:uuid"`
	GateAt           *time.Time `json:"gate_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// HoldDeadline is the instant the hold lapses if still booked.
func (t *Ticket) HoldDeadline(window time.Duration) time.Time {
	return t.CreatedAt.Add(window)
}

func (t *Ticket) ToResponse(window time.Duration) TicketResponse {
	resp := TicketResponse{
		ID:         t.ID.String(),
		FlightID:   t.FlightID.String(),
		CabinClass: t.CabinClass,
		SeatNumber: t.SeatNumber,
		Status:     string(t.Status),
		FirstName:  t.FirstName,
		LastName:   t.LastName,
		OrderID:    t.OrderID,
		CreatedAt:  t.CreatedAt,
	}
	if t.Status == StatusBooked {
		deadline := t.HoldDeadline(window)
		resp.HoldExpiresAt = &deadline
	}
	return resp
}

// TableName specifies the table name for GORM
func (Ticket) TableName() string {
	return "tickets"
}
