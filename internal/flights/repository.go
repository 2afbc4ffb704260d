package flights

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateAirplane(airplane *Airplane) error
	GetAirplaneByID(id uuid.UUID) (*Airplane, error)
	GetAllAirplanes() ([]Airplane, error)

	CreateFlight(flight *Flight) error
	GetFlightByID(id uuid.UUID) (*Flight, error)
	GetAllFlights(query FlightListQuery) ([]Flight, int64, error)
	UpdateFlight(id uuid.UUID, updates map[string]interface{}) (*Flight, error)

	// StatusCountsByCabin aggregates tickets on the flight grouped by
	// cabin class and status.
	StatusCountsByCabin(flightID uuid.UUID) ([]StatusCount, error)

	// CheckpointCounts tallies how many tickets passed the check-in
	// desk and the boarding gate.
	CheckpointCounts(flightID uuid.UUID) (*CheckpointCount, error)
}

type StatusCount struct {
	CabinClass string
	Status     string
	Count      int64
}

type CheckpointCount struct {
	CheckedIn int64
	Boarded   int64
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAirplane(airplane *Airplane) error {
	return r.db.Create(airplane).Error
}

func (r *repository) GetAirplaneByID(id uuid.UUID) (*Airplane, error) {
	var airplane Airplane
	err := r.db.Where("id = ?", id).First(&airplane).Error
	if err != nil {
		return nil, err
	}
	return &airplane, nil
}

func (r *repository) GetAllAirplanes() ([]Airplane, error) {
	var list []Airplane
	err := r.db.Order("created_at desc").Find(&list).Error
	return list, err
}

func (r *repository) CreateFlight(flight *Flight) error {
	return r.db.Create(flight).Error
}

func (r *repository) GetFlightByID(id uuid.UUID) (*Flight, error) {
	var flight Flight
	err := r.db.Where("id = ?", id).First(&flight).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *repository) GetAllFlights(query FlightListQuery) ([]Flight, int64, error) {
	db := r.db.Model(&Flight{})

	if query.Origin != "" {
		db = db.Where("origin ILIKE ?", query.Origin)
	}
	if query.Destination != "" {
		db = db.Where("destination ILIKE ?", query.Destination)
	}
	if query.Date != "" {
		day, err := time.Parse("2006-01-02", query.Date)
		if err == nil {
			db = db.Where("departure_at >= ? AND departure_at < ?", day, day.Add(24*time.Hour))
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	var list []Flight
	err := db.Order("departure_at asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *repository) UpdateFlight(id uuid.UUID, updates map[string]interface{}) (*Flight, error) {
	err := r.db.Model(&Flight{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return r.GetFlightByID(id)
}

func (r *repository) StatusCountsByCabin(flightID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.Table("tickets").
		Select("cabin_class, status, COUNT(*) as count").
		Where("flight_id = ?", flightID).
		Group("cabin_class, status").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CheckpointCounts(flightID uuid.UUID) (*CheckpointCount, error) {
	var row CheckpointCount
	err := r.db.Table("tickets").
		Select("COUNT(check_in_at) as checked_in, COUNT(gate_at) as boarded").
		Where("flight_id = ?", flightID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
