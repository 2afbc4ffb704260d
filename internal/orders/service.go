package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/facilities"
	"skyfare/internal/tickets"
	"skyfare/pkg/logger"
)

var (
	ErrEmptySelection    = errors.New("at least one ticket must be selected")
	ErrOrderNotFound     = errors.New("order not found")
	ErrNotOrderOwner     = errors.New("order does not belong to this user")
	ErrTicketUnavailable = errors.New("one or more tickets are no longer available for checkout")
	ErrTicketNotInOrder  = errors.New("ticket does not belong to this order")
)

type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error)
	Customize(ctx context.Context, userID uuid.UUID, orderID uint, req CustomizeOrderRequest) (*OrderResponse, error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderID uint) (*OrderResponse, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error)

	// Payment processor hooks.
	FindByID(orderID uint) (*Order, error)
	MarkPaid(tx *gorm.DB, orderID uint) error
}

// TicketBooker is the slice of the ticket service checkout and
// customization need. Satisfied by tickets.Service.
type TicketBooker interface {
	AssignToOrder(tx *gorm.DB, cartID uuid.UUID, ticketIDs []uuid.UUID, orderID uint) (int64, error)
	TicketsByOrder(orderID uint) ([]tickets.Ticket, error)
	CustomizeTicket(tx *gorm.DB, ticket *tickets.Ticket, seatNumber *int, firstName, lastName *string) error
	HoldWindow() time.Duration
}

// FacilityApplier attaches a facility to a ticket and reports the
// charged price. Satisfied by facilities.Service.
type FacilityApplier interface {
	ApplyToTicket(tx *gorm.DB, flightID, ticketID, facilityID uuid.UUID) (int, error)
}

// CartResolver finds the caller's cart. Satisfied by carts.Service.
type CartResolver interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type service struct {
	repo        Repository
	ticketSvc   TicketBooker
	facilitySvc FacilityApplier
	cartSvc     CartResolver
	log         *logger.Logger
}

func NewService(repo Repository, ticketSvc TicketBooker, facilitySvc FacilityApplier, cartSvc CartResolver) Service {
	return &service{
		repo:        repo,
		ticketSvc:   ticketSvc,
		facilitySvc: facilitySvc,
		cartSvc:     cartSvc,
		log:         logger.GetDefault(),
	}
}

// Checkout moves the selected cart tickets onto a fresh order. The
// price stays zero until customization tallies it.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if len(req.TicketIDs) == 0 {
		return nil, ErrEmptySelection
	}
	ticketIDs := make([]uuid.UUID, 0, len(req.TicketIDs))
	for _, raw := range req.TicketIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrTicketUnavailable
		}
		ticketIDs = append(ticketIDs, id)
	}

	cartID, err := s.cartSvc.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart: %w", err)
	}

	var order Order
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		order = Order{UserID: userID}
		if err := s.repo.Create(tx, &order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		moved, err := s.ticketSvc.AssignToOrder(tx, cartID, ticketIDs, order.ID)
		if err != nil {
			return fmt.Errorf("failed to assign tickets: %w", err)
		}
		if moved != int64(len(ticketIDs)) {
			// A ticket expired, was evicted, or never belonged to
			// this cart. Roll everything back.
			return ErrTicketUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogOrderCreated(ctx, EncodeOrderReference(order.ID), len(ticketIDs))
	return s.buildResponse(&order)
}

// Customize applies facilities, seat picks, and passenger names to
// the order's tickets and accumulates the price. Facility application
// is append-only: submitting the same facility twice charges it twice.
func (s *service) Customize(ctx context.Context, userID uuid.UUID, orderID uint, req CustomizeOrderRequest) (*OrderResponse, error) {
	order, err := s.ownedOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	orderTickets, err := s.ticketSvc.TicketsByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order tickets: %w", err)
	}
	byID := make(map[uuid.UUID]*tickets.Ticket, len(orderTickets))
	for i := range orderTickets {
		byID[orderTickets[i].ID] = &orderTickets[i]
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		total := 0
		for _, input := range req.Tickets {
			ticketID, err := uuid.Parse(input.TicketID)
			if err != nil {
				return ErrTicketNotInOrder
			}
			ticket, ok := byID[ticketID]
			if !ok {
				return ErrTicketNotInOrder
			}

			for _, rawFacility := range input.FacilityIDs {
				facilityID, err := uuid.Parse(rawFacility)
				if err != nil {
					return facilities.ErrFacilityNotFound
				}
				price, err := s.facilitySvc.ApplyToTicket(tx, ticket.FlightID, ticket.ID, facilityID)
				if err != nil {
					return err
				}
				total += price
			}

			// An omitted seat keeps the one already assigned.
			seat := ticket.SeatNumber
			if input.SeatNumber != nil {
				seat = input.SeatNumber
			}
			if err := s.ticketSvc.CustomizeTicket(tx, ticket, seat, input.FirstName, input.LastName); err != nil {
				return err
			}

			flight, err := s.repo.GetFlight(tx, ticket.FlightID)
			if err != nil {
				return fmt.Errorf("failed to load flight: %w", err)
			}
			total += flight.BasePriceFor(ticket.CabinClass)
			if ticket.SeatNumber != nil {
				total += flight.SeatSurchargeFor(ticket.CabinClass)
			}
		}
		return s.repo.AddToPrice(tx, orderID, total)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(nil, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return s.buildResponse(updated)
}

func (s *service) GetOrder(ctx context.Context, userID uuid.UUID, orderID uint) (*OrderResponse, error) {
	order, err := s.ownedOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(order)
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error) {
	list, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	responses := make([]OrderResponse, 0, len(list))
	for i := range list {
		responses = append(responses, list[i].ToResponse())
	}
	return responses, nil
}

func (s *service) FindByID(orderID uint) (*Order, error) {
	order, err := s.repo.GetByID(nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *service) MarkPaid(tx *gorm.DB, orderID uint) error {
	return s.repo.MarkPaid(tx, orderID)
}

func (s *service) ownedOrder(userID uuid.UUID, orderID uint) (*Order, error) {
	order, err := s.repo.GetByID(nil, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

func (s *service) buildResponse(order *Order) (*OrderResponse, error) {
	resp := order.ToResponse()
	orderTickets, err := s.ticketSvc.TicketsByOrder(order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order tickets: %w", err)
	}
	window := s.ticketSvc.HoldWindow()
	for i := range orderTickets {
		resp.Tickets = append(resp.Tickets, orderTickets[i].ToResponse(window))
	}
	return &resp, nil
}
