package flights

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/shared/constants"
	"skyfare/pkg/cache"
)

var (
	ErrFlightNotFound   = errors.New("flight not found")
	ErrAirplaneNotFound = errors.New("airplane not found")
	ErrInvalidSchedule  = errors.New("arrival must be after departure")
	ErrInvalidCabin     = errors.New("cabin class must be economy or business")
)

// SeatLedger exposes live seat availability. Implemented by the
// ticket service and injected after construction to avoid an import
// cycle.
type SeatLedger interface {
	FreeSeats(ctx context.Context, flightID uuid.UUID, cabinClass string) ([]int, error)
	ActiveCount(ctx context.Context, flightID uuid.UUID, cabinClass string) (int64, error)
}

type Service interface {
	CreateAirplane(req CreateAirplaneRequest) (*AirplaneResponse, error)
	GetAllAirplanes() ([]AirplaneResponse, error)

	CreateFlight(adminID uuid.UUID, req CreateFlightRequest) (*FlightResponse, error)
	GetFlight(ctx context.Context, id uuid.UUID) (*FlightDetailResponse, error)
	GetAllFlights(query FlightListQuery) (*PaginatedFlights, error)
	UpdateFlightPricing(id uuid.UUID, req UpdateFlightPricingRequest) (*FlightResponse, error)
	GetFreeSeats(ctx context.Context, id uuid.UUID, cabinClass string) (*FreeSeatsResponse, error)
	GetFlightStats(ctx context.Context, id uuid.UUID) (*FlightStatsResponse, error)

	SetSeatLedger(ledger SeatLedger)
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	ledger       SeatLedger
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetSeatLedger(ledger SeatLedger) {
	s.ledger = ledger
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateAirplane(req CreateAirplaneRequest) (*AirplaneResponse, error) {
	airplane := Airplane{
		EconomySeats:  req.EconomySeats,
		BusinessSeats: req.BusinessSeats,
	}
	if err := s.repo.CreateAirplane(&airplane); err != nil {
		return nil, fmt.Errorf("failed to create airplane: %w", err)
	}
	return airplaneToResponse(&airplane), nil
}

func (s *service) GetAllAirplanes() ([]AirplaneResponse, error) {
	list, err := s.repo.GetAllAirplanes()
	if err != nil {
		return nil, fmt.Errorf("failed to list airplanes: %w", err)
	}
	responses := make([]AirplaneResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *airplaneToResponse(&list[i]))
	}
	return responses, nil
}

func (s *service) CreateFlight(adminID uuid.UUID, req CreateFlightRequest) (*FlightResponse, error) {
	if !req.ArrivalAt.After(req.DepartureAt) {
		return nil, ErrInvalidSchedule
	}

	airplaneID, err := uuid.Parse(req.AirplaneID)
	if err != nil {
		return nil, ErrAirplaneNotFound
	}
	airplane, err := s.repo.GetAirplaneByID(airplaneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAirplaneNotFound
		}
		return nil, fmt.Errorf("failed to get airplane: %w", err)
	}

	flight := Flight{
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartureAt: req.DepartureAt,
		ArrivalAt:   req.ArrivalAt,
		AirplaneID:  airplane.ID,

		// Capacity snapshot; the airplane may change later, the
		// flight's cabins do not.
		EconomyCapacity:  airplane.EconomySeats,
		BusinessCapacity: airplane.BusinessSeats,

		EconomyPrice:          req.EconomyPrice,
		BusinessPrice:         req.BusinessPrice,
		EconomySeatSurcharge:  req.EconomySeatSurcharge,
		BusinessSeatSurcharge: req.BusinessSeatSurcharge,
		CreatedBy:             adminID,
	}
	if err := s.repo.CreateFlight(&flight); err != nil {
		return nil, fmt.Errorf("failed to create flight: %w", err)
	}

	resp := flight.ToResponse()
	return &resp, nil
}

func (s *service) GetFlight(ctx context.Context, id uuid.UUID) (*FlightDetailResponse, error) {
	flight, err := s.repo.GetFlightByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	detail := FlightDetailResponse{FlightResponse: flight.ToResponse()}
	if s.ledger != nil {
		economyHeld, err := s.ledger.ActiveCount(ctx, id, CabinEconomy)
		if err != nil {
			return nil, fmt.Errorf("failed to count economy seats: %w", err)
		}
		businessHeld, err := s.ledger.ActiveCount(ctx, id, CabinBusiness)
		if err != nil {
			return nil, fmt.Errorf("failed to count business seats: %w", err)
		}
		detail.EconomySeatsLeft = flight.EconomyCapacity - int(economyHeld)
		detail.BusinessSeatsLeft = flight.BusinessCapacity - int(businessHeld)
	}
	return &detail, nil
}

func (s *service) GetAllFlights(query FlightListQuery) (*PaginatedFlights, error) {
	list, total, err := s.repo.GetAllFlights(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	responses := make([]FlightResponse, 0, len(list))
	for i := range list {
		responses = append(responses, list[i].ToResponse())
	}
	return &PaginatedFlights{
		Flights:    responses,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *service) UpdateFlightPricing(id uuid.UUID, req UpdateFlightPricingRequest) (*FlightResponse, error) {
	updates := make(map[string]interface{})
	if req.EconomyPrice != nil {
		updates["economy_price"] = *req.EconomyPrice
	}
	if req.BusinessPrice != nil {
		updates["business_price"] = *req.BusinessPrice
	}
	if req.EconomySeatSurcharge != nil {
		updates["economy_seat_surcharge"] = *req.EconomySeatSurcharge
	}
	if req.BusinessSeatSurcharge != nil {
		updates["business_seat_surcharge"] = *req.BusinessSeatSurcharge
	}
	if len(updates) == 0 {
		flight, err := s.repo.GetFlightByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrFlightNotFound
			}
			return nil, err
		}
		resp := flight.ToResponse()
		return &resp, nil
	}

	flight, err := s.repo.UpdateFlight(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to update flight: %w", err)
	}

	if s.cacheService != nil {
		_ = s.cacheService.Delete(context.Background(), constants.BuildFlightDetailKey(id.String()))
	}

	resp := flight.ToResponse()
	return &resp, nil
}

// GetFreeSeats lists the seat numbers still open in one cabin. The
// result is cached briefly; ticket mutations invalidate the key.
func (s *service) GetFreeSeats(ctx context.Context, id uuid.UUID, cabinClass string) (*FreeSeatsResponse, error) {
	if !ValidCabinClass(cabinClass) {
		return nil, ErrInvalidCabin
	}
	if s.ledger == nil {
		return nil, errors.New("seat ledger not configured")
	}

	flight, err := s.repo.GetFlightByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	fetch := func() (*FreeSeatsResponse, error) {
		free, err := s.ledger.FreeSeats(ctx, id, cabinClass)
		if err != nil {
			return nil, fmt.Errorf("failed to list free seats: %w", err)
		}
		held, err := s.ledger.ActiveCount(ctx, id, cabinClass)
		if err != nil {
			return nil, fmt.Errorf("failed to count held seats: %w", err)
		}
		return &FreeSeatsResponse{
			FlightID:   id.String(),
			CabinClass: cabinClass,
			Capacity:   flight.CapacityFor(cabinClass),
			FreeSeats:  free,
			SeatsLeft:  flight.CapacityFor(cabinClass) - int(held),
		}, nil
	}

	if s.cacheService == nil {
		return fetch()
	}

	var resp FreeSeatsResponse
	key := constants.BuildFreeSeatsKey(id.String(), cabinClass)
	err = s.cacheService.GetOrSet(ctx, key, constants.TTL_FREE_SEATS, func() (interface{}, error) {
		return fetch()
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) GetFlightStats(ctx context.Context, id uuid.UUID) (*FlightStatsResponse, error) {
	flight, err := s.repo.GetFlightByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	build := func() (*FlightStatsResponse, error) {
		rows, err := s.repo.StatusCountsByCabin(id)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate ticket counts: %w", err)
		}
		checkpoints, err := s.repo.CheckpointCounts(id)
		if err != nil {
			return nil, fmt.Errorf("failed to count checkpoints: %w", err)
		}

		statuses := make(map[string]int64)
		held := map[string]int64{}
		sold := map[string]int64{}
		for _, row := range rows {
			statuses[row.Status] += row.Count
			switch row.Status {
			case "booked":
				held[row.CabinClass] += row.Count
			case "checked_out":
				sold[row.CabinClass] += row.Count
			}
		}

		cabins := make([]CabinStats, 0, 2)
		for _, class := range []string{CabinEconomy, CabinBusiness} {
			capacity := flight.CapacityFor(class)
			taken := held[class] + sold[class]
			utilization := 0.0
			if capacity > 0 {
				utilization = float64(taken) / float64(capacity) * 100
			}
			cabins = append(cabins, CabinStats{
				CabinClass:  class,
				Capacity:    capacity,
				Held:        held[class],
				Sold:        sold[class],
				SeatsLeft:   capacity - int(taken),
				Utilization: math.Round(utilization*100) / 100,
			})
		}

		return &FlightStatsResponse{
			FlightID:    id.String(),
			GeneratedAt: time.Now().UTC(),
			Cabins:      cabins,
			Statuses:    statuses,
			CheckedIn:   checkpoints.CheckedIn,
			Boarded:     checkpoints.Boarded,
		}, nil
	}

	if s.cacheService == nil {
		return build()
	}

	var resp FlightStatsResponse
	key := constants.BuildFlightStatsKey(id.String())
	err = s.cacheService.GetOrSet(ctx, key, constants.TTL_FLIGHT_STAT, func() (interface{}, error) {
		return build()
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func airplaneToResponse(a *Airplane) *AirplaneResponse {
	return &AirplaneResponse{
		ID:            a.ID.String(),
		EconomySeats:  a.EconomySeats,
		BusinessSeats: a.BusinessSeats,
		CreatedAt:     a.CreatedAt,
	}
}
