package facilities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(facility *Facility) error
	GetByID(id uuid.UUID) (*Facility, error)
	GetByIDs(ids []uuid.UUID) ([]Facility, error)
	GetAll(activeOnly bool) ([]Facility, error)
	Update(id uuid.UUID, updates map[string]interface{}) (*Facility, error)

	// Flight-Facility relationship operations
	ReplaceFlightFacilities(flightID uuid.UUID, links []FlightFacility) error
	GetByFlightID(flightID uuid.UUID) ([]FlightOffering, error)
	GetFlightFacility(flightID, facilityID uuid.UUID) (*FlightFacility, error)

	// Ticket-Facility operations; tx lets callers run them inside
	// an ongoing booking transaction.
	AddToTicket(tx *gorm.DB, tf *TicketFacility) error
	GetByTicketID(ticketID uuid.UUID) ([]TicketFacilityRow, error)

	CreateCharge(charge *FacilityCharge) error
	GetChargesByTicketID(ticketID uuid.UUID) ([]FacilityCharge, error)
}

// TicketFacilityRow joins a ticket facility with its facility name.
type TicketFacilityRow struct {
	FacilityID uuid.UUID
	Name       string
	Price      int
	CreatedAt  time.Time
}

// FlightOffering is a facility as offered on a particular flight,
// with the flight price override already applied.
type FlightOffering struct {
	FacilityID  uuid.UUID
	Name        string
	Description string
	Price       int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(facility *Facility) error {
	return r.db.Create(facility).Error
}

func (r *repository) GetByID(id uuid.UUID) (*Facility, error) {
	var facility Facility
	err := r.db.Where("id = ?", id).First(&facility).Error
	if err != nil {
		return nil, err
	}
	return &facility, nil
}

func (r *repository) GetByIDs(ids []uuid.UUID) ([]Facility, error) {
	var list []Facility
	err := r.db.Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *repository) GetAll(activeOnly bool) ([]Facility, error) {
	var list []Facility
	query := r.db.Order("name asc")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&list).Error
	return list, err
}

func (r *repository) Update(id uuid.UUID, updates map[string]interface{}) (*Facility, error) {
	var facility Facility
	err := r.db.Model(&facility).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *repository) ReplaceFlightFacilities(flightID uuid.UUID, links []FlightFacility) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flight_id = ?", flightID).Delete(&FlightFacility{}).Error; err != nil {
			return err
		}
		for _, l := range links {
			link := FlightFacility{FlightID: flightID, FacilityID: l.FacilityID, Price: l.Price}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) GetByFlightID(flightID uuid.UUID) ([]FlightOffering, error) {
	var rows []FlightOffering
	err := r.db.Model(&FlightFacility{}).
		Select("facilities.id as facility_id, facilities.name, facilities.description, COALESCE(flight_facilities.price, facilities.price) as price").
		Joins("JOIN facilities ON facilities.id = flight_facilities.facility_id").
		Where("flight_facilities.flight_id = ? AND facilities.is_active = ?", flightID, true).
		Order("facilities.name asc").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) GetFlightFacility(flightID, facilityID uuid.UUID) (*FlightFacility, error) {
	var link FlightFacility
	err := r.db.Where("flight_id = ? AND facility_id = ?", flightID, facilityID).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) AddToTicket(tx *gorm.DB, tf *TicketFacility) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(tf).Error
}

func (r *repository) GetByTicketID(ticketID uuid.UUID) ([]TicketFacilityRow, error) {
	var rows []TicketFacilityRow
	err := r.db.Model(&TicketFacility{}).
		Select("ticket_facilities.facility_id, facilities.name, ticket_facilities.price, ticket_facilities.created_at").
		Joins("JOIN facilities ON facilities.id = ticket_facilities.facility_id").
		Where("ticket_facilities.ticket_id = ?", ticketID).
		Order("ticket_facilities.created_at asc").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CreateCharge(charge *FacilityCharge) error {
	return r.db.Create(charge).Error
}

func (r *repository) GetChargesByTicketID(ticketID uuid.UUID) ([]FacilityCharge, error) {
	var charges []FacilityCharge
	err := r.db.Where("ticket_id = ?", ticketID).Order("created_at asc").Find(&charges).Error
	return charges, err
}
