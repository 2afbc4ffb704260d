package facilities

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrFacilityNotFound   = errors.New("facility not found")
	ErrFacilityNotOffered = errors.New("facility not offered on this flight")
)

type Service interface {
	// Admin CRUD operations
	CreateFacility(adminID uuid.UUID, req CreateFacilityRequest) (*FacilityResponse, error)
	GetFacility(id uuid.UUID) (*FacilityResponse, error)
	GetAllFacilities(activeOnly bool) ([]FacilityResponse, error)
	UpdateFacility(id uuid.UUID, req UpdateFacilityRequest) (*FacilityResponse, error)

	// Flight assignment operations (called by flight service and routes)
	SetFlightFacilities(flightID uuid.UUID, links []FlightFacility) error
	GetFlightFacilities(flightID uuid.UUID) ([]FlightOfferingResponse, error)

	// Ticket operations (called by order and check-in services)
	ApplyToTicket(tx *gorm.DB, flightID, ticketID, facilityID uuid.UUID) (int, error)
	GetTicketFacilities(ticketID uuid.UUID) ([]TicketFacilityResponse, error)
	RecordCharge(staffID, ticketID uuid.UUID, amount int, note string) (*FacilityChargeResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateFacility(adminID uuid.UUID, req CreateFacilityRequest) (*FacilityResponse, error) {
	facility := Facility{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    true,
		CreatedBy:   adminID,
	}
	if err := s.repo.Create(&facility); err != nil {
		return nil, fmt.Errorf("failed to create facility: %w", err)
	}
	resp := facility.ToResponse()
	return &resp, nil
}

func (s *service) GetFacility(id uuid.UUID) (*FacilityResponse, error) {
	facility, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacilityNotFound
		}
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}
	resp := facility.ToResponse()
	return &resp, nil
}

func (s *service) GetAllFacilities(activeOnly bool) ([]FacilityResponse, error) {
	list, err := s.repo.GetAll(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	responses := make([]FacilityResponse, 0, len(list))
	for _, f := range list {
		responses = append(responses, f.ToResponse())
	}
	return responses, nil
}

func (s *service) UpdateFacility(id uuid.UUID, req UpdateFacilityRequest) (*FacilityResponse, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	facility, err := s.repo.Update(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacilityNotFound
		}
		return nil, fmt.Errorf("failed to update facility: %w", err)
	}
	resp := facility.ToResponse()
	return &resp, nil
}

func (s *service) SetFlightFacilities(flightID uuid.UUID, links []FlightFacility) error {
	ids := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.FacilityID)
	}
	existing, err := s.repo.GetByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to resolve facilities: %w", err)
	}
	if len(existing) != len(ids) {
		return ErrFacilityNotFound
	}
	if err := s.repo.ReplaceFlightFacilities(flightID, links); err != nil {
		return fmt.Errorf("failed to set flight facilities: %w", err)
	}
	return nil
}

func (s *service) GetFlightFacilities(flightID uuid.UUID) ([]FlightOfferingResponse, error) {
	rows, err := s.repo.GetByFlightID(flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flight facilities: %w", err)
	}
	responses := make([]FlightOfferingResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FlightOfferingResponse{
			FacilityID:  row.FacilityID.String(),
			Name:        row.Name,
			Description: row.Description,
			Price:       row.Price,
		})
	}
	return responses, nil
}

// ApplyToTicket adds one application of the facility to the ticket and
// returns the price charged. Each call adds a fresh row; repeating a
// facility charges it again.
func (s *service) ApplyToTicket(tx *gorm.DB, flightID, ticketID, facilityID uuid.UUID) (int, error) {
	link, err := s.repo.GetFlightFacility(flightID, facilityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrFacilityNotOffered
		}
		return 0, fmt.Errorf("failed to check facility availability: %w", err)
	}

	price := 0
	if link.Price != nil {
		price = *link.Price
	} else {
		facility, err := s.repo.GetByID(facilityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrFacilityNotFound
			}
			return 0, fmt.Errorf("failed to get facility: %w", err)
		}
		price = facility.Price
	}

	tf := TicketFacility{
		TicketID:   ticketID,
		FacilityID: facilityID,
		Price:      price,
	}
	if err := s.repo.AddToTicket(tx, &tf); err != nil {
		return 0, fmt.Errorf("failed to apply facility: %w", err)
	}
	return price, nil
}

func (s *service) GetTicketFacilities(ticketID uuid.UUID) ([]TicketFacilityResponse, error) {
	rows, err := s.repo.GetByTicketID(ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket facilities: %w", err)
	}
	responses := make([]TicketFacilityResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, TicketFacilityResponse{
			FacilityID: row.FacilityID.String(),
			Name:       row.Name,
			Price:      row.Price,
			AppliedAt:  row.CreatedAt,
		})
	}
	return responses, nil
}

func (s *service) RecordCharge(staffID, ticketID uuid.UUID, amount int, note string) (*FacilityChargeResponse, error) {
	charge := FacilityCharge{
		TicketID:  ticketID,
		Amount:    amount,
		Note:      note,
		CreatedBy: staffID,
	}
	if err := s.repo.CreateCharge(&charge); err != nil {
		return nil, fmt.Errorf("failed to record facility charge: %w", err)
	}
	return &FacilityChargeResponse{
		ID:        charge.ID.String(),
		TicketID:  charge.TicketID.String(),
		Amount:    charge.Amount,
		Note:      charge.Note,
		CreatedAt: charge.CreatedAt,
	}, nil
}
