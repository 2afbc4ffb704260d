package carts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skyfare/internal/tickets"
)

// TicketLister is the slice of the ticket feature the cart view needs.
// Implemented by the ticket service and injected after construction.
type TicketLister interface {
	ListByCart(ctx context.Context, cartID uuid.UUID) ([]tickets.TicketResponse, error)
}

type Service interface {
	// GetOrCreate returns the user's cart ID, creating the cart on
	// first touch.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)

	// AppendMessage buffers a notice for the cart owner.
	AppendMessage(tx *gorm.DB, cartID uuid.UUID, message string) error

	// ViewCart returns the cart's tickets and drains its messages.
	ViewCart(ctx context.Context, userID uuid.UUID) (*CartViewResponse, error)

	SetTicketLister(lister TicketLister)
}

type service struct {
	repo   Repository
	lister TicketLister
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetTicketLister(lister TicketLister) { s.lister = lister }

func (s *service) GetOrCreate(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	cart, err := s.repo.GetByUserID(userID)
	if err == nil {
		return cart.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("failed to get cart: %w", err)
	}

	fresh := Cart{UserID: userID}
	if err := s.repo.Create(&fresh); err != nil {
		// Lost a create race; the other writer's cart wins.
		existing, lookupErr := s.repo.GetByUserID(userID)
		if lookupErr == nil {
			return existing.ID, nil
		}
		return uuid.Nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return fresh.ID, nil
}

func (s *service) AppendMessage(tx *gorm.DB, cartID uuid.UUID, message string) error {
	return s.repo.AppendMessage(tx, cartID, message)
}

func (s *service) ViewCart(ctx context.Context, userID uuid.UUID) (*CartViewResponse, error) {
	cartID, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ticketList []tickets.TicketResponse
	if s.lister != nil {
		ticketList, err = s.lister.ListByCart(ctx, cartID)
		if err != nil {
			return nil, fmt.Errorf("failed to list cart tickets: %w", err)
		}
	}

	messages, err := s.repo.DrainMessages(cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to drain cart messages: %w", err)
	}

	return &CartViewResponse{
		CartID:   cartID.String(),
		Tickets:  ticketList,
		Messages: messages,
	}, nil
}
