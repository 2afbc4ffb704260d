package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"skyfare/internal/facilities"
	"skyfare/internal/flights"
	"skyfare/internal/tickets"
)

// --- Mocks ---

type fakeOrderRepo struct {
	orders map[uint]*Order
	nextID uint
	flight *flights.Flight
}

func newFakeOrderRepo(flight *flights.Flight) *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint]*Order), nextID: 1, flight: flight}
}

func (f *fakeOrderRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snapshot := make(map[uint]*Order, len(f.orders))
	for id, o := range f.orders {
		copied := *o
		snapshot[id] = &copied
	}
	if err := fn(nil); err != nil {
		f.orders = snapshot
		return err
	}
	return nil
}

func (f *fakeOrderRepo) Create(tx *gorm.DB, order *Order) error {
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	f.nextID++
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(tx *gorm.DB, id uint) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderRepo) GetByUserID(userID uuid.UUID) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) AddToPrice(tx *gorm.DB, orderID uint, delta int) error {
	f.orders[orderID].Price += delta
	return nil
}

func (f *fakeOrderRepo) MarkPaid(tx *gorm.DB, orderID uint) error {
	now := time.Now()
	f.orders[orderID].PaidAt = &now
	return nil
}

func (f *fakeOrderRepo) GetFlight(tx *gorm.DB, flightID uuid.UUID) (*flights.Flight, error) {
	if f.flight == nil || f.flight.ID != flightID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.flight, nil
}

type mockBooker struct {
	assignFn    func(tx *gorm.DB, cartID uuid.UUID, ticketIDs []uuid.UUID, orderID uint) (int64, error)
	byOrderFn   func(orderID uint) ([]tickets.Ticket, error)
	customizeFn func(tx *gorm.DB, ticket *tickets.Ticket, seatNumber *int, firstName, lastName *string) error
}

func (m *mockBooker) AssignToOrder(tx *gorm.DB, cartID uuid.UUID, ticketIDs []uuid.UUID, orderID uint) (int64, error) {
	return m.assignFn(tx, cartID, ticketIDs, orderID)
}

func (m *mockBooker) TicketsByOrder(orderID uint) ([]tickets.Ticket, error) {
	if m.byOrderFn != nil {
		return m.byOrderFn(orderID)
	}
	return nil, nil
}

func (m *mockBooker) CustomizeTicket(tx *gorm.DB, ticket *tickets.Ticket, seatNumber *int, firstName, lastName *string) error {
	if m.customizeFn != nil {
		return m.customizeFn(tx, ticket, seatNumber, firstName, lastName)
	}
	ticket.SeatNumber = seatNumber
	if firstName != nil {
		ticket.FirstName = firstName
	}
	if lastName != nil {
		ticket.LastName = lastName
	}
	return nil
}

func (m *mockBooker) HoldWindow() time.Duration { return time.Minute }

type mockApplier struct {
	prices  map[uuid.UUID]int
	applied []uuid.UUID
}

func (m *mockApplier) ApplyToTicket(tx *gorm.DB, flightID, ticketID, facilityID uuid.UUID) (int, error) {
	price, ok := m.prices[facilityID]
	if !ok {
		return 0, facilities.ErrFacilityNotOffered
	}
	m.applied = append(m.applied, facilityID)
	return price, nil
}

type mockResolver struct {
	cartID uuid.UUID
}

func (m *mockResolver) GetOrCreate(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return m.cartID, nil
}

// --- Fixtures ---

func customizableFlight() *flights.Flight {
	return &flights.Flight{
		ID:                    uuid.New(),
		Origin:                "Kyiv",
		Destination:           "Warsaw",
		EconomyCapacity:       40,
		EconomyPrice:          2500,
		EconomySeatSurcharge:  150,
		BusinessPrice:         7500,
		BusinessSeatSurcharge: 400,
	}
}

func seatPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// --- Checkout ---

func TestCheckout_Success(t *testing.T) {
	repo := newFakeOrderRepo(nil)
	userID := uuid.New()
	booker := &mockBooker{
		assignFn: func(tx *gorm.DB, cartID uuid.UUID, ticketIDs []uuid.UUID, orderID uint) (int64, error) {
			return int64(len(ticketIDs)), nil
		},
	}
	svc := NewService(repo, booker, &mockApplier{}, &mockResolver{cartID: uuid.New()})

	resp, err := svc.Checkout(context.Background(), userID, CreateOrderRequest{
		TicketIDs: []string{uuid.New().String(), uuid.New().String()},
	})

	assert.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, EncodeOrderReference(1), resp.Reference)
	assert.Zero(t, resp.Price, "price stays zero until customization")
	assert.Nil(t, resp.PaidAt)
}

func TestCheckout_EmptySelection(t *testing.T) {
	svc := NewService(newFakeOrderRepo(nil), &mockBooker{}, &mockApplier{}, &mockResolver{})

	_, err := svc.Checkout(context.Background(), uuid.New(), CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestCheckout_RollsBackWhenTicketUnavailable(t *testing.T) {
	repo := newFakeOrderRepo(nil)
	booker := &mockBooker{
		assignFn: func(tx *gorm.DB, cartID uuid.UUID, ticketIDs []uuid.UUID, orderID uint) (int64, error) {
			// One of the two tickets expired in the meantime.
			return 1, nil
		},
	}
	svc := NewService(repo, booker, &mockApplier{}, &mockResolver{cartID: uuid.New()})

	_, err := svc.Checkout(context.Background(), uuid.New(), CreateOrderRequest{
		TicketIDs: []string{uuid.New().String(), uuid.New().String()},
	})

	assert.ErrorIs(t, err, ErrTicketUnavailable)
	assert.Empty(t, repo.orders, "partial checkout must not leave an order behind")
}

// --- Customize ---

func customizeSetup(t *testing.T, flight *flights.Flight) (Service, *fakeOrderRepo, *mockApplier, uuid.UUID, *tickets.Ticket) {
	t.Helper()

	repo := newFakeOrderRepo(flight)
	userID := uuid.New()
	order := &Order{ID: 1, UserID: userID}
	repo.orders[1] = order
	repo.nextID = 2

	orderID := uint(1)
	ticket := &tickets.Ticket{
		ID:         uuid.New(),
		FlightID:   flight.ID,
		OrderID:    &orderID,
		CabinClass: flights.CabinEconomy,
		Status:     tickets.StatusBooked,
	}

	booker := &mockBooker{
		byOrderFn: func(id uint) ([]tickets.Ticket, error) {
			return []tickets.Ticket{*ticket}, nil
		},
	}
	applier := &mockApplier{prices: make(map[uuid.UUID]int)}
	svc := NewService(repo, booker, applier, &mockResolver{})
	return svc, repo, applier, userID, ticket
}

func TestCustomize_ChargesBaseFare(t *testing.T) {
	flight := customizableFlight()
	svc, repo, _, userID, ticket := customizeSetup(t, flight)

	resp, err := svc.Customize(context.Background(), userID, 1, CustomizeOrderRequest{
		Tickets: []TicketCustomization{
			{TicketID: ticket.ID.String(), FirstName: strPtr("Ada"), LastName: strPtr("Lovelace")},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 2500, resp.Price)
	assert.Equal(t, 2500, repo.orders[1].Price)
}

func TestCustomize_SeatPickAddsSurcharge(t *testing.T) {
	flight := customizableFlight()
	svc, repo, _, userID, ticket := customizeSetup(t, flight)

	_, err := svc.Customize(context.Background(), userID, 1, CustomizeOrderRequest{
		Tickets: []TicketCustomization{
			{TicketID: ticket.ID.String(), SeatNumber: seatPtr(12)},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 2500+150, repo.orders[1].Price)
}

func TestCustomize_OmittedSeatKeepsAssignment(t *testing.T) {
	// Customizing names only must not clear a seat picked earlier.
	flight := customizableFlight()
	repo := newFakeOrderRepo(flight)
	userID := uuid.New()
	repo.orders[1] = &Order{ID: 1, UserID: userID}
	repo.nextID = 2

	orderID := uint(1)
	ticket := &tickets.Ticket{
		ID:         uuid.New(),
		FlightID:   flight.ID,
		OrderID:    &orderID,
		CabinClass: flights.CabinEconomy,
		Status:     tickets.StatusBooked,
		SeatNumber: seatPtr(12),
	}

	var savedSeat *int
	booker := &mockBooker{
		byOrderFn: func(id uint) ([]tickets.Ticket, error) {
			return []tickets.Ticket{*ticket}, nil
		},
		customizeFn: func(tx *gorm.DB, tk *tickets.Ticket, seatNumber *int, firstName, lastName *string) error {
			savedSeat = seatNumber
			tk.SeatNumber = seatNumber
			return nil
		},
	}
	svc := NewService(repo, booker, &mockApplier{}, &mockResolver{})

	_, err := svc.Customize(context.Background(), userID, 1, CustomizeOrderRequest{
		Tickets: []TicketCustomization{
			{TicketID: ticket.ID.String(), FirstName: strPtr("Ada")},
		},
	})

	assert.NoError(t, err)
	if assert.NotNil(t, savedSeat, "existing seat must be carried through") {
		assert.Equal(t, 12, *savedSeat)
	}
	assert.Equal(t, 2500+150, repo.orders[1].Price, "the kept seat still carries its surcharge")
}

func TestCustomize_FacilitiesAccumulate(t *testing.T) {
	flight := customizableFlight()
	svc, repo, applier, userID, ticket := customizeSetup(t, flight)

	meal := uuid.New()
	baggage := uuid.New()
	applier.prices[meal] = 350
	applier.prices[baggage] = 800

	_, err := svc.Customize(context.Background(), userID, 1, CustomizeOrderRequest{
		Tickets: []TicketCustomization{
			{TicketID: ticket.ID.String(), FacilityIDs: []string{meal.String(), baggage.String()}},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 2500+350+800, repo.orders[1].Price)
}

func TestCustomize_RepeatedFacilityChargesTwice(t *testing.T) {
	// Facility application is append-only; a second submission of the
	// same facility produces a second charge.
	flight := customizableFlight()
	svc, repo, applier, userID, ticket := customizeSetup(t, flight)

	meal := uuid.New()
	applier.prices[meal] = 350

	req := CustomizeOrderRequest{
		Tickets: []TicketCustomization{
			{TicketID: ticket.ID.String(), FacilityIDs: []string{meal.String()}},
		},
	}
	_, err := svc.Customize(context.Background(), userID, 1, req)
	assert.NoError(t, err)
	_, err = svc.Customize(context.Background(), userID, 1, req)
	assert.NoError(t, err)

	assert.Len(t, applier.applied, 2)
	assert.Equal(t, 2*(2500+350), repo.orders[1].Price)
}

func TestCustomize_UnknownTicketRejected(t *testing.T) {
	flight := customizableFlight()
	svc, repo, _, userID, _ := customizeSetup(t, flight)

	_, err := svc.Customize(context.Background(), userID, 1, CustomizeOrderRequest{
		Tickets: []TicketCustomization{
			{TicketID: uuid.New().String()},
		},
	})

	assert.ErrorIs(t, err, ErrTicketNotInOrder)
	assert.Zero(t, repo.orders[1].Price)
}

func TestCustomize_NotOwner(t *testing.T) {
	flight := customizableFlight()
	svc, _, _, _, ticket := customizeSetup(t, flight)

	_, err := svc.Customize(context.Background(), uuid.New(), 1, CustomizeOrderRequest{
		Tickets: []TicketCustomization{
			{TicketID: ticket.ID.String()},
		},
	})

	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestCustomize_OrderNotFound(t *testing.T) {
	svc, _, _, userID, _ := customizeSetup(t, customizableFlight())

	_, err := svc.Customize(context.Background(), userID, 999, CustomizeOrderRequest{})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
