package carts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"skyfare/internal/tickets"
)

type mockCartRepo struct {
	getByUserFn func(userID uuid.UUID) (*Cart, error)
	createFn    func(cart *Cart) error
	drainFn     func(cartID uuid.UUID) ([]string, error)

	appended []string
}

func (m *mockCartRepo) GetByUserID(userID uuid.UUID) (*Cart, error) {
	if m.getByUserFn != nil {
		return m.getByUserFn(userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCartRepo) Create(cart *Cart) error {
	if m.createFn != nil {
		return m.createFn(cart)
	}
	cart.ID = uuid.New()
	return nil
}

func (m *mockCartRepo) AppendMessage(tx *gorm.DB, cartID uuid.UUID, message string) error {
	m.appended = append(m.appended, message)
	return nil
}

func (m *mockCartRepo) DrainMessages(cartID uuid.UUID) ([]string, error) {
	if m.drainFn != nil {
		return m.drainFn(cartID)
	}
	return nil, nil
}

type mockLister struct {
	tickets []tickets.TicketResponse
}

func (m *mockLister) ListByCart(ctx context.Context, cartID uuid.UUID) ([]tickets.TicketResponse, error) {
	return m.tickets, nil
}

func TestGetOrCreate_ReturnsExistingCart(t *testing.T) {
	existing := &Cart{ID: uuid.New(), UserID: uuid.New()}
	repo := &mockCartRepo{
		getByUserFn: func(userID uuid.UUID) (*Cart, error) {
			assert.Equal(t, existing.UserID, userID)
			return existing, nil
		},
	}
	svc := NewService(repo)

	id, err := svc.GetOrCreate(context.Background(), existing.UserID)

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, id)
}

func TestGetOrCreate_CreatesOnFirstTouch(t *testing.T) {
	svc := NewService(&mockCartRepo{})

	id, err := svc.GetOrCreate(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestGetOrCreate_LostRaceUsesWinnersCart(t *testing.T) {
	winner := &Cart{ID: uuid.New()}
	lookups := 0
	repo := &mockCartRepo{
		getByUserFn: func(userID uuid.UUID) (*Cart, error) {
			lookups++
			if lookups == 1 {
				return nil, gorm.ErrRecordNotFound
			}
			return winner, nil
		},
		createFn: func(cart *Cart) error { return gorm.ErrDuplicatedKey },
	}
	svc := NewService(repo)

	id, err := svc.GetOrCreate(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, winner.ID, id)
}

func TestGetOrCreate_PropagatesLookupError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &mockCartRepo{
		getByUserFn: func(userID uuid.UUID) (*Cart, error) { return nil, boom },
	}
	svc := NewService(repo)

	_, err := svc.GetOrCreate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}

func TestViewCart_ReturnsTicketsAndDrainsMessages(t *testing.T) {
	cart := &Cart{ID: uuid.New(), UserID: uuid.New()}
	drained := 0
	repo := &mockCartRepo{
		getByUserFn: func(userID uuid.UUID) (*Cart, error) { return cart, nil },
		drainFn: func(cartID uuid.UUID) ([]string, error) {
			assert.Equal(t, cart.ID, cartID)
			drained++
			return []string{"Your hold on Kyiv -> Warsaw expired"}, nil
		},
	}
	svc := NewService(repo)
	svc.SetTicketLister(&mockLister{tickets: []tickets.TicketResponse{
		{ID: uuid.New().String(), Status: string(tickets.StatusBooked)},
	}})

	view, err := svc.ViewCart(context.Background(), cart.UserID)

	assert.NoError(t, err)
	assert.Equal(t, cart.ID.String(), view.CartID)
	assert.Len(t, view.Tickets, 1)
	assert.Equal(t, []string{"Your hold on Kyiv -> Warsaw expired"}, view.Messages)
	assert.Equal(t, 1, drained)
}
