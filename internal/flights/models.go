package flights

import (
	"time"

	"github.com/google/uuid"
)

// Cabin classes
const (
	CabinEconomy  = "economy"
	CabinBusiness = "business"
)

func ValidCabinClass(class string) bool {
	return class == CabinEconomy || class == CabinBusiness
}

// Airplane describes a physical aircraft layout.
type Airplane struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EconomySeats  int       `json:"economy_seats" gorm:"not null;check:economy_seats >= 20 AND economy_seats <= 60"`
	BusinessSeats int       `json:"business_seats" gorm:"not null;check:business_seats >= 6 AND business_seats <= 25"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Flight is a scheduled departure. Cabin capacities are copied from
// the airplane at creation time and never change afterwards, so later
// airplane edits cannot invalidate seats already sold.
type Flight struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Origin      string    `json:"origin" gorm:"not null;size:100;index"`
	Destination string    `json:"destination" gorm:"not null;size:100;index"`
	DepartureAt time.Time `json:"departure_at" gorm:"not null;index"`
	ArrivalAt   time.Time `json:"arrival_at" gorm:"not null"`
	AirplaneID  uuid.UUID `json:"airplane_id" gorm:"type:uuid;not null"`

	EconomyCapacity  int `json:"economy_capacity" gorm:"not null"`
	BusinessCapacity int `json:"business_capacity" gorm:"not null"`

	// Base fare per class plus the surcharge applied when the
	// passenger picks a specific seat.
	EconomyPrice          int `json:"economy_price" gorm:"not null;default:0"`
	BusinessPrice         int `json:"business_price" gorm:"not null;default:0"`
	EconomySeatSurcharge  int `json:"economy_seat_surcharge" gorm:"not null;default:0"`
	BusinessSeatSurcharge int `json:"business_seat_surcharge" gorm:"not null;default:0"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// CapacityFor returns the seat count for the cabin class.
func (f *Flight) CapacityFor(class string) int {
	if class == CabinBusiness {
		return f.BusinessCapacity
	}
	return f.EconomyCapacity
}

// BasePriceFor returns the class fare without seat selection.
func (f *Flight) BasePriceFor(class string) int {
	if class == CabinBusiness {
		return f.BusinessPrice
	}
	return f.EconomyPrice
}

// SeatSurchargeFor returns the extra charged for picking a seat.
func (f *Flight) SeatSurchargeFor(class string) int {
	if class == CabinBusiness {
		return f.BusinessSeatSurcharge
	}
	return f.EconomySeatSurcharge
}

func (f *Flight) ToResponse() FlightResponse {
	return FlightResponse{
		ID:                    f.ID.String(),
		Origin:                f.Origin,
		Destination:           f.Destination,
		DepartureAt:           f.DepartureAt,
		ArrivalAt:             f.ArrivalAt,
		AirplaneID:            f.AirplaneID.String(),
		EconomyCapacity:       f.EconomyCapacity,
		BusinessCapacity:      f.BusinessCapacity,
		EconomyPrice:          f.EconomyPrice,
		BusinessPrice:         f.BusinessPrice,
		EconomySeatSurcharge:  f.EconomySeatSurcharge,
		BusinessSeatSurcharge: f.BusinessSeatSurcharge,
		CreatedAt:             f.CreatedAt,
	}
}

// TableName specifies the table name for GORM
func (Airplane) TableName() string {
	return "airplanes"
}

func (Flight) TableName() string {
	return "flights"
}
