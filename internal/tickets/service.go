package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/flights"
	"skyfare/internal/shared/constants"
	"skyfare/pkg/cache"
	"skyfare/pkg/logger"
)

// CartService is the slice of the cart feature the ticket service
// needs. Implemented by the carts package and injected after
// construction to avoid an import cycle.
type CartService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	AppendMessage(tx *gorm.DB, cartID uuid.UUID, message string) error
}

// HoldScheduler arms one-shot expiry timers for seat holds.
type HoldScheduler interface {
	Schedule(id uuid.UUID, at time.Time)
	Cancel(id uuid.UUID)
}

type Service interface {
	Acquire(ctx context.Context, userID, flightID uuid.UUID, req AcquireSeatRequest) (*TicketResponse, error)
	Release(ctx context.Context, userID, ticketID uuid.UUID) error
	GetTicket(ctx context.Context, ticketID uuid.UUID) (*TicketResponse, error)
	ListByCart(ctx context.Context, cartID uuid.UUID) ([]TicketResponse, error)

	// Seat ledger, consumed by the flight service.
	FreeSeats(ctx context.Context, flightID uuid.UUID, cabinClass string) ([]int, error)
	ActiveCount(ctx context.Context, flightID uuid.UUID, cabinClass string) (int64, error)

	// Checkout and payment hooks, run inside the caller's transaction.
	AssignToOrder(tx *gorm.DB, cartID uuid.UUID, ticketIDs []uuid.UUID, orderID uint) (int64, error)
	TicketsByOrder(orderID uint) ([]Ticket, error)
	CustomizeTicket(tx *gorm.DB, ticket *Ticket, seatNumber *int, firstName, lastName *string) error
	CheckOutOrder(tx *gorm.DB, orderID uint) (int64, error)

	// Staff operations.
	UpdateTicket(ctx context.Context, ticket *Ticket) error

	// Hold expiry.
	ExpireTicket(ctx context.Context, ticketID uuid.UUID)
	ExpireOverdue(ctx context.Context) (int, error)
	RearmHolds(ctx context.Context) error

	HoldWindow() time.Duration

	SetCartService(carts CartService)
	SetScheduler(sched HoldScheduler)
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	carts        CartService
	sched        HoldScheduler
	cacheService cache.Service
	holdWindow   time.Duration
	log          *logger.Logger
}

func NewService(repo Repository, holdWindow time.Duration) Service {
	return &service{
		repo:       repo,
		holdWindow: holdWindow,
		log:        logger.GetDefault(),
	}
}

func (s *service) SetCartService(carts CartService) { s.carts = carts }

func (s *service) SetScheduler(sched HoldScheduler) { s.sched = sched }

func (s *service) SetCacheService(cacheService cache.Service) { s.cacheService = cacheService }

func (s *service) HoldWindow() time.Duration { return s.holdWindow }

// Acquire holds one seat. The flight row lock serializes concurrent
// acquires on the same flight, so of two passengers racing for the
// last seat exactly one wins.
func (s *service) Acquire(ctx context.Context, userID, flightID uuid.UUID, req AcquireSeatRequest) (*TicketResponse, error) {
	cartID, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart: %w", err)
	}

	var ticket Ticket
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		flight, err := s.repo.GetFlightForUpdate(tx, flightID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return flights.ErrFlightNotFound
			}
			return fmt.Errorf("failed to lock flight: %w", err)
		}

		if err := s.validateSeat(tx, flight, req.CabinClass, req.SeatNumber, true); err != nil {
			return err
		}

		// Reclaim one expired hold: the one squatting on the
		// requested seat if there is one, otherwise the oldest, so
		// the cabin does not silt up with abandoned tickets.
		if err := s.evictExpiredHold(tx, flight, req.CabinClass, req.SeatNumber); err != nil {
			return err
		}

		ticket = Ticket{
			FlightID:   flightID,
			CartID:     &cartID,
			CabinClass: req.CabinClass,
			SeatNumber: req.SeatNumber,
			Status:     StatusBooked,
		}
		return s.repo.Create(tx, &ticket)
	})
	if err != nil {
		return nil, err
	}

	if s.sched != nil {
		s.sched.Schedule(ticket.ID, ticket.HoldDeadline(s.holdWindow))
	}
	s.invalidateFlightCaches(ctx, flightID, req.CabinClass)
	s.log.LogSeatAcquired(ctx, ticket.ID.String(), flightID.String(), req.CabinClass)

	resp := ticket.ToResponse(s.holdWindow)
	return &resp, nil
}

// validateSeat mirrors the booking rules: capacity first, then seat
// range, then seat collision. withCapacity is false for seat changes
// on an already held ticket.
func (s *service) validateSeat(tx *gorm.DB, flight *flights.Flight, cabinClass string, seatNumber *int, withCapacity bool) error {
	capacity := flight.CapacityFor(cabinClass)

	if withCapacity {
		active, err := s.repo.CountActive(tx, flight.ID, cabinClass)
		if err != nil {
			return fmt.Errorf("failed to count active tickets: %w", err)
		}
		if active >= int64(capacity) {
			return ErrSeatFull
		}
	}

	if seatNumber == nil {
		return nil
	}
	if *seatNumber < 1 || *seatNumber > capacity {
		return ErrInvalidSeatNumber
	}

	occupied, err := s.repo.OccupiedSeatNumbers(tx, flight.ID, cabinClass)
	if err != nil {
		return fmt.Errorf("failed to list occupied seats: %w", err)
	}
	for _, seat := range occupied {
		if seat == *seatNumber {
			return ErrSeatBusy
		}
	}
	return nil
}

// evictExpiredHold deletes one available ticket in the cabin, leaving
// a note in its owner's cart. A requested seat number takes priority:
// the stale ticket holding it must go so the new hold can claim it.
func (s *service) evictExpiredHold(tx *gorm.DB, flight *flights.Flight, cabinClass string, seatNumber *int) error {
	var stale *Ticket
	var err error
	if seatNumber != nil {
		stale, err = s.repo.AvailableBySeat(tx, flight.ID, cabinClass, *seatNumber)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up expired holds: %w", err)
		}
	}
	if stale == nil {
		stale, err = s.repo.FirstAvailable(tx, flight.ID, cabinClass)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to look up expired holds: %w", err)
		}
	}

	if stale.CartID != nil {
		msg := fmt.Sprintf(
			"Your hold on flight %s -> %s (%s) expired and the seat was claimed by another passenger. The ticket was removed from your cart.",
			flight.Origin, flight.Destination, cabinClass,
		)
		if err := s.carts.AppendMessage(tx, *stale.CartID, msg); err != nil {
			return fmt.Errorf("failed to notify cart owner: %w", err)
		}
	}

	if err := s.repo.Delete(tx, stale.ID); err != nil {
		return fmt.Errorf("failed to evict expired hold: %w", err)
	}
	if s.sched != nil {
		s.sched.Cancel(stale.ID)
	}
	return nil
}

func (s *service) Release(ctx context.Context, userID, ticketID uuid.UUID) error {
	cartID, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve cart: %w", err)
	}

	ticket, err := s.repo.GetByID(nil, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket.CartID == nil || *ticket.CartID != cartID {
		return ErrNotTicketOwner
	}

	if err := s.repo.Delete(nil, ticketID); err != nil {
		return fmt.Errorf("failed to release ticket: %w", err)
	}
	if s.sched != nil {
		s.sched.Cancel(ticketID)
	}
	s.invalidateFlightCaches(ctx, ticket.FlightID, ticket.CabinClass)
	return nil
}

func (s *service) GetTicket(ctx context.Context, ticketID uuid.UUID) (*TicketResponse, error) {
	ticket, err := s.repo.GetByID(nil, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	resp := ticket.ToResponse(s.holdWindow)
	return &resp, nil
}

func (s *service) ListByCart(ctx context.Context, cartID uuid.UUID) ([]TicketResponse, error) {
	list, err := s.repo.GetByCartID(cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart tickets: %w", err)
	}
	responses := make([]TicketResponse, 0, len(list))
	for i := range list {
		responses = append(responses, list[i].ToResponse(s.holdWindow))
	}
	return responses, nil
}

// FreeSeats lists open seat numbers: the full [1..capacity] range
// minus the seats on active tickets. Expired holds do not block
// their seats.
func (s *service) FreeSeats(ctx context.Context, flightID uuid.UUID, cabinClass string) ([]int, error) {
	flight, err := s.repo.GetFlight(flightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, flights.ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	capacity := flight.CapacityFor(cabinClass)

	occupied, err := s.repo.OccupiedSeatNumbers(nil, flightID, cabinClass)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupied seats: %w", err)
	}
	taken := make(map[int]bool, len(occupied))
	for _, seat := range occupied {
		taken[seat] = true
	}

	free := make([]int, 0, capacity)
	for seat := 1; seat <= capacity; seat++ {
		if !taken[seat] {
			free = append(free, seat)
		}
	}
	return free, nil
}

func (s *service) ActiveCount(ctx context.Context, flightID uuid.UUID, cabinClass string) (int64, error) {
	return s.repo.CountActive(nil, flightID, cabinClass)
}

func (s *service) AssignToOrder(tx *gorm.DB, cartID uuid.UUID, ticketIDs []uuid.UUID, orderID uint) (int64, error) {
	return s.repo.AssignToOrder(tx, ticketIDs, cartID, orderID)
}

func (s *service) TicketsByOrder(orderID uint) ([]Ticket, error) {
	return s.repo.GetByOrderID(orderID)
}

// CustomizeTicket revalidates and applies a seat pick plus passenger
// names. Capacity is not rechecked, the ticket already holds a seat.
func (s *service) CustomizeTicket(tx *gorm.DB, ticket *Ticket, seatNumber *int, firstName, lastName *string) error {
	if seatNumber != nil && (ticket.SeatNumber == nil || *ticket.SeatNumber != *seatNumber) {
		flight, err := s.repo.GetFlightForUpdate(tx, ticket.FlightID)
		if err != nil {
			return fmt.Errorf("failed to lock flight: %w", err)
		}
		if err := s.validateSeat(tx, flight, ticket.CabinClass, seatNumber, false); err != nil {
			return err
		}
	}
	ticket.SeatNumber = seatNumber
	if firstName != nil {
		ticket.FirstName = firstName
	}
	if lastName != nil {
		ticket.LastName = lastName
	}
	return s.repo.Save(tx, ticket)
}

func (s *service) CheckOutOrder(tx *gorm.DB, orderID uint) (int64, error) {
	return s.repo.UpdateStatusByOrderID(tx, orderID, StatusBooked, StatusCheckedOut)
}

func (s *service) UpdateTicket(ctx context.Context, ticket *Ticket) error {
	if err := s.repo.Save(nil, ticket); err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}
	s.invalidateFlightCaches(ctx, ticket.FlightID, ticket.CabinClass)
	return nil
}

// ExpireTicket is the scheduler task: flip the hold to available if
// its window has lapsed and it is still booked. Anything else is a
// no-op, the conditional update decides.
func (s *service) ExpireTicket(ctx context.Context, ticketID uuid.UUID) {
	cutoff := time.Now().Add(-s.holdWindow)
	ticket, affected, err := s.repo.ExpireIfOverdue(ticketID, cutoff)
	if err != nil {
		s.log.WithError(err).Error("failed to expire ticket hold", "ticket_id", ticketID.String())
		return
	}
	if affected == 0 {
		return
	}
	s.log.LogHoldExpired(ctx, ticketID.String())
	if ticket != nil {
		s.invalidateFlightCaches(ctx, ticket.FlightID, ticket.CabinClass)
	}
}

// ExpireOverdue sweeps every overdue hold. Backstop for timers lost
// to a restart; the per-ticket timers do the precise work.
func (s *service) ExpireOverdue(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.holdWindow)
	overdue, err := s.repo.ListOverdue(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue holds: %w", err)
	}

	expired := 0
	for i := range overdue {
		ticket, affected, err := s.repo.ExpireIfOverdue(overdue[i].ID, cutoff)
		if err != nil {
			s.log.WithError(err).Error("failed to expire ticket hold", "ticket_id", overdue[i].ID.String())
			continue
		}
		if affected > 0 {
			expired++
			s.log.LogHoldExpired(ctx, overdue[i].ID.String())
			if ticket != nil {
				s.invalidateFlightCaches(ctx, ticket.FlightID, ticket.CabinClass)
			}
		}
	}
	return expired, nil
}

// RearmHolds re-creates expiry timers for holds that survived a
// restart. Holds already past their window fire immediately.
func (s *service) RearmHolds(ctx context.Context) error {
	if s.sched == nil {
		return nil
	}
	outstanding, err := s.repo.ListOverdue(time.Now())
	if err != nil {
		return fmt.Errorf("failed to list outstanding holds: %w", err)
	}
	for i := range outstanding {
		s.sched.Schedule(outstanding[i].ID, outstanding[i].HoldDeadline(s.holdWindow))
	}
	return nil
}

func (s *service) invalidateFlightCaches(ctx context.Context, flightID uuid.UUID, cabinClass string) {
	if s.cacheService == nil {
		return
	}
	err := s.cacheService.Delete(ctx,
		constants.BuildFreeSeatsKey(flightID.String(), cabinClass),
		constants.BuildFlightDetailKey(flightID.String()),
		constants.BuildFlightStatsKey(flightID.String()),
	)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).Warn("failed to invalidate flight caches", "flight_id", flightID.String())
	}
}
