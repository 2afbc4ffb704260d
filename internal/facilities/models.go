package facilities

import (
	"time"

	"github.com/google/uuid"
)

// Facility is a purchasable onboard extra (meal, lounge access, extra baggage).
type Facility struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Description string    `json:"description" gorm:"size:500"`
	Price       int       `json:"price" gorm:"not null;check:price >= 0"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// FlightFacility marks a facility as offered on a flight. Price, when
// set, overrides the facility's base price for that flight.
type FlightFacility struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	FlightID   uuid.UUID `json:"flight_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_flight_facility_unique"`
	FacilityID uuid.UUID `json:"facility_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_flight_facility_unique"`
	Price      *int      `json:"price" gorm:"check:price >= 0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TicketFacility records one application of a facility to a ticket.
// A facility applied twice produces two rows and two charges.
type TicketFacility struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketID   uuid.UUID `json:"ticket_id" gorm:"type:uuid;not null;index"`
	FacilityID uuid.UUID `json:"facility_id" gorm:"type:uuid;not null;index"`
	Price      int       `json:"price" gorm:"not null"` // price at time of application
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// FacilityCharge is a payment collected at the check-in desk for
// facilities added after checkout.
type FacilityCharge struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketID  uuid.UUID `json:"ticket_id" gorm:"type:uuid;not null;index"`
	Amount    int       `json:"amount" gorm:"not null;check:amount >= 0"`
	Note      string    `json:"note" gorm:"size:255"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (f *Facility) ToResponse() FacilityResponse {
	return FacilityResponse{
		ID:          f.ID.String(),
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Facility) TableName() string {
	return "facilities"
}

func (FlightFacility) TableName() string {
	return "flight_facilities"
}

func (TicketFacility) TableName() string {
	return "ticket_facilities"
}

func (FacilityCharge) TableName() string {
	return "facility_charges"
}
