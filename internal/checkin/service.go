package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/facilities"
	"skyfare/internal/flights"
	"skyfare/internal/notifications"
	"skyfare/internal/orders"
	"skyfare/internal/tickets"
	"skyfare/pkg/logger"
)

var (
	ErrTicketNotPaid    = errors.New("ticket has not been paid for")
	ErrAlreadyCheckedIn = errors.New("ticket is already checked in")
	ErrNotCheckedIn     = errors.New("ticket has not been checked in")
	ErrAlreadyBoarded   = errors.New("ticket has already passed the gate")
)

type Service interface {
	CheckIn(ctx context.Context, staffID, ticketID uuid.UUID, req CheckInRequest) (*CheckInResponse, error)
	Gate(ctx context.Context, staffID, ticketID uuid.UUID) (*tickets.TicketResponse, error)
}

type service struct {
	repo        Repository
	ticketSvc   tickets.Service
	facilitySvc facilities.Service
	publisher   notifications.Publisher
	log         *logger.Logger
}

func NewService(
	repo Repository,
	ticketSvc tickets.Service,
	facilitySvc facilities.Service,
	publisher notifications.Publisher,
) Service {
	return &service{
		repo:        repo,
		ticketSvc:   ticketSvc,
		facilitySvc: facilitySvc,
		publisher:   publisher,
		log:         logger.GetDefault(),
	}
}

// CheckIn records the desk visit: last-minute extras and a seat change
// are applied on the spot, charged to the ticket, and the boarding pass
// email goes out again with the final details.
func (s *service) CheckIn(ctx context.Context, staffID, ticketID uuid.UUID, req CheckInRequest) (*CheckInResponse, error) {
	ticket, err := s.loadTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != tickets.StatusCheckedOut {
		return nil, ErrTicketNotPaid
	}
	if ticket.CheckInAt != nil {
		return nil, ErrAlreadyCheckedIn
	}

	flight, err := s.repo.GetFlight(ticket.FlightID)
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	charged := 0
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		for _, raw := range req.FacilityIDs {
			facilityID, err := uuid.Parse(raw)
			if err != nil {
				return facilities.ErrFacilityNotFound
			}
			price, err := s.facilitySvc.ApplyToTicket(tx, flight.ID, ticket.ID, facilityID)
			if err != nil {
				return err
			}
			charged += price
		}

		seat := ticket.SeatNumber
		if req.SeatNumber != nil {
			if ticket.SeatNumber == nil || *ticket.SeatNumber != *req.SeatNumber {
				charged += flight.SeatSurchargeFor(ticket.CabinClass)
			}
			seat = req.SeatNumber
		}

		now := time.Now().UTC()
		ticket.CheckInManagerID = &staffID
		ticket.CheckInAt = &now

		return s.ticketSvc.CustomizeTicket(tx, ticket, seat, req.FirstName, req.LastName)
	})
	if err != nil {
		return nil, err
	}

	if charged > 0 {
		note := fmt.Sprintf("check-in desk extras for flight %s -> %s", flight.Origin, flight.Destination)
		if _, err := s.facilitySvc.RecordCharge(staffID, ticket.ID, charged, note); err != nil {
			s.log.WithError(err).Error("failed to record check-in charge", "ticket_id", ticket.ID.String())
		}
	}

	go s.resendTicket(ticket, flight)

	resp := ticket.ToResponse(s.ticketSvc.HoldWindow())
	return &CheckInResponse{Ticket: resp, Charged: charged}, nil
}

// Gate stamps the boarding. Check-in must have happened first.
func (s *service) Gate(ctx context.Context, staffID, ticketID uuid.UUID) (*tickets.TicketResponse, error) {
	ticket, err := s.loadTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != tickets.StatusCheckedOut {
		return nil, ErrTicketNotPaid
	}
	if ticket.CheckInAt == nil {
		return nil, ErrNotCheckedIn
	}
	if ticket.GateAt != nil {
		return nil, ErrAlreadyBoarded
	}

	now := time.Now().UTC()
	ticket.GateManagerID = &staffID
	ticket.GateAt = &now
	if err := s.ticketSvc.UpdateTicket(ctx, ticket); err != nil {
		return nil, err
	}

	resp := ticket.ToResponse(s.ticketSvc.HoldWindow())
	return &resp, nil
}

func (s *service) loadTicket(ticketID uuid.UUID) (*tickets.Ticket, error) {
	ticket, err := s.repo.GetTicket(ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tickets.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// resendTicket re-dispatches the ticket email with the post-check-in
// seat and extras. Best effort.
func (s *service) resendTicket(ticket *tickets.Ticket, flight *flights.Flight) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if ticket.OrderID == nil {
		return
	}
	order, err := s.repo.GetOrder(*ticket.OrderID)
	if err != nil {
		s.log.WithError(err).Error("failed to load order for re-delivery", "ticket_id", ticket.ID.String())
		return
	}
	email, err := s.repo.GetUserEmail(order.UserID)
	if err != nil {
		s.log.WithError(err).Error("failed to resolve re-delivery email", "ticket_id", ticket.ID.String())
		return
	}

	var extras []string
	if ticketFacilities, err := s.facilitySvc.GetTicketFacilities(ticket.ID); err == nil {
		for _, tf := range ticketFacilities {
			extras = append(extras, tf.Name)
		}
	}

	delivery := notifications.NewTicketDelivery()
	delivery.TicketID = ticket.ID.String()
	delivery.OrderReference = orders.EncodeOrderReference(order.ID)
	delivery.RecipientEmail = email
	delivery.Origin = flight.Origin
	delivery.Destination = flight.Destination
	delivery.DepartureAt = flight.DepartureAt
	delivery.ArrivalAt = flight.ArrivalAt
	delivery.CabinClass = ticket.CabinClass
	delivery.SeatNumber = ticket.SeatNumber
	delivery.FirstName = ticket.FirstName
	delivery.LastName = ticket.LastName
	delivery.Facilities = extras

	if err := s.publisher.PublishTicketDelivery(ctx, delivery); err != nil {
		s.log.WithError(err).Error("failed to publish ticket re-delivery", "ticket_id", ticket.ID.String())
	}
}
