package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/facilities"
	"skyfare/internal/notifications"
	"skyfare/internal/orders"
	"skyfare/internal/tickets"
	"skyfare/pkg/logger"
)

// ReasonCodeSuccess is the gateway's "payment approved" code.
const ReasonCodeSuccess = 1100

const callbackAckStatus = "accept"

var (
	ErrMalformedCallback = errors.New("malformed callback payload")
	ErrBadSignature      = errors.New("callback signature mismatch")
	ErrUnknownOrder      = errors.New("callback references an unknown order")
)

// CallbackPayload is the document hidden inside the callback
// envelope.
type CallbackPayload struct {
	OrderReference string `json:"orderReference"`
	ReasonCode     int    `json:"reasonCode"`
	Time           int64  `json:"time"`
	Signature      string `json:"signature"`
}

// CallbackAck is the reply the gateway expects for every callback.
type CallbackAck struct {
	OrderReference string `json:"orderReference"`
	Status         string `json:"status"`
	Time           int64  `json:"time"`
	Signature      string `json:"signature"`
}

type Service interface {
	CreateInvoice(ctx context.Context, userID uuid.UUID, orderID uint) (*InvoiceResponse, error)
	HandleCallback(ctx context.Context, rawBody []byte) (*CallbackAck, error)
}

// OrderFinder is the slice of the order service the payment processor
// needs. Satisfied by orders.Service.
type OrderFinder interface {
	FindByID(orderID uint) (*orders.Order, error)
	MarkPaid(tx *gorm.DB, orderID uint) error
}

// TicketCheckout flips an order's tickets on successful payment.
// Satisfied by tickets.Service.
type TicketCheckout interface {
	TicketsByOrder(orderID uint) ([]tickets.Ticket, error)
	CheckOutOrder(tx *gorm.DB, orderID uint) (int64, error)
}

// FacilityLister names the extras on a ticket for the delivery email.
// Satisfied by facilities.Service.
type FacilityLister interface {
	GetTicketFacilities(ticketID uuid.UUID) ([]facilities.TicketFacilityResponse, error)
}

type service struct {
	repo        Repository
	orderSvc    OrderFinder
	ticketSvc   TicketCheckout
	facilitySvc FacilityLister
	client      GatewayClient
	publisher   notifications.Publisher
	secret      string
	log         *logger.Logger
}

func NewService(
	repo Repository,
	orderSvc OrderFinder,
	ticketSvc TicketCheckout,
	facilitySvc FacilityLister,
	client GatewayClient,
	publisher notifications.Publisher,
	secret string,
) Service {
	return &service{
		repo:        repo,
		orderSvc:    orderSvc,
		ticketSvc:   ticketSvc,
		facilitySvc: facilitySvc,
		client:      client,
		publisher:   publisher,
		secret:      secret,
		log:         logger.GetDefault(),
	}
}

func (s *service) CreateInvoice(ctx context.Context, userID uuid.UUID, orderID uint) (*InvoiceResponse, error) {
	order, err := s.orderSvc.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, orders.ErrNotOrderOwner
	}

	orderTickets, err := s.ticketSvc.TicketsByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order tickets: %w", err)
	}
	if len(orderTickets) == 0 {
		return nil, orders.ErrEmptySelection
	}

	email, err := s.repo.GetUserEmail(order.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client email: %w", err)
	}

	reference := orders.EncodeOrderReference(order.ID)
	invoice, err := s.client.CreateInvoice(ctx, reference, order.Price, len(orderTickets), email)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return invoice, nil
}

// ParseCallbackEnvelope unwraps the gateway's envelope: a JSON object
// whose single top-level key is itself the JSON payload document.
func ParseCallbackEnvelope(rawBody []byte) (*CallbackPayload, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return nil, ErrMalformedCallback
	}
	if len(envelope) == 0 {
		return nil, ErrMalformedCallback
	}

	var payload CallbackPayload
	for key := range envelope {
		if err := json.Unmarshal([]byte(key), &payload); err != nil {
			return nil, ErrMalformedCallback
		}
		break
	}
	if payload.OrderReference == "" {
		return nil, ErrMalformedCallback
	}
	return &payload, nil
}

// HandleCallback verifies and applies one gateway callback. Success
// callbacks flip the order's tickets to checked_out exactly once;
// replays are acked without re-dispatching anything.
func (s *service) HandleCallback(ctx context.Context, rawBody []byte) (*CallbackAck, error) {
	payload, err := ParseCallbackEnvelope(rawBody)
	if err != nil {
		return nil, err
	}

	signed := []string{
		payload.OrderReference,
		strconv.Itoa(payload.ReasonCode),
		strconv.FormatInt(payload.Time, 10),
	}
	if !VerifySignature(signed, s.secret, payload.Signature) {
		s.log.LogPaymentCallback(ctx, payload.OrderReference, payload.ReasonCode, false)
		return nil, ErrBadSignature
	}

	orderID, err := orders.DecodeOrderReference(payload.OrderReference)
	if err != nil {
		return nil, ErrUnknownOrder
	}
	order, err := s.orderSvc.FindByID(orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			return nil, ErrUnknownOrder
		}
		return nil, err
	}

	if payload.ReasonCode == ReasonCodeSuccess {
		firstTime := false
		err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
			record := ProcessedCallback{
				OrderID:    order.ID,
				ReasonCode: payload.ReasonCode,
				Reference:  payload.OrderReference,
			}
			inserted, err := s.repo.RecordCallback(tx, &record)
			if err != nil {
				return fmt.Errorf("failed to record callback: %w", err)
			}
			if !inserted {
				return nil
			}
			firstTime = true

			if _, err := s.ticketSvc.CheckOutOrder(tx, order.ID); err != nil {
				return fmt.Errorf("failed to check out tickets: %w", err)
			}
			return s.orderSvc.MarkPaid(tx, order.ID)
		})
		if err != nil {
			return nil, err
		}

		if firstTime {
			go s.dispatchDeliveries(order)
		}
	}

	s.log.LogPaymentCallback(ctx, payload.OrderReference, payload.ReasonCode, true)
	return s.buildAck(payload.OrderReference), nil
}

func (s *service) buildAck(orderReference string) *CallbackAck {
	now := time.Now().Unix()
	ack := &CallbackAck{
		OrderReference: orderReference,
		Status:         callbackAckStatus,
		Time:           now,
	}
	ack.Signature = Sign([]string{
		ack.OrderReference,
		ack.Status,
		strconv.FormatInt(ack.Time, 10),
	}, s.secret)
	return ack
}

// dispatchDeliveries publishes one delivery per ticket. Best effort:
// a publish failure is logged and the rest continue.
func (s *service) dispatchDeliveries(order *orders.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderTickets, err := s.ticketSvc.TicketsByOrder(order.ID)
	if err != nil {
		s.log.WithError(err).Error("failed to load tickets for delivery", "order_id", order.ID)
		return
	}
	email, err := s.repo.GetUserEmail(order.UserID)
	if err != nil {
		s.log.WithError(err).Error("failed to resolve delivery email", "order_id", order.ID)
		return
	}

	reference := orders.EncodeOrderReference(order.ID)
	for i := range orderTickets {
		ticket := &orderTickets[i]

		flight, err := s.repo.GetFlight(ticket.FlightID)
		if err != nil {
			s.log.WithError(err).Error("failed to load flight for delivery", "ticket_id", ticket.ID.String())
			continue
		}

		var extras []string
		if ticketFacilities, err := s.facilitySvc.GetTicketFacilities(ticket.ID); err == nil {
			for _, tf := range ticketFacilities {
				extras = append(extras, tf.Name)
			}
		}

		delivery := notifications.NewTicketDelivery()
		delivery.TicketID = ticket.ID.String()
		delivery.OrderReference = reference
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
			s.log.WithError(err).Error("failed to publish ticket delivery", "ticket_id", ticket.ID.String())
		}
	}
}
