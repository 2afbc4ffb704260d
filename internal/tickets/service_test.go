package tickets

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"skyfare/internal/flights"
)

// --- In-memory fake repository ---

type fakeTicketRepo struct {
	mu      sync.Mutex
	flight  *flights.Flight
	tickets map[uuid.UUID]*Ticket
	created []uuid.UUID
}

func newFakeRepo(flight *flights.Flight) *fakeTicketRepo {
	return &fakeTicketRepo{
		flight:  flight,
		tickets: make(map[uuid.UUID]*Ticket),
	}
}

func (f *fakeTicketRepo) add(ticket *Ticket) *Ticket {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().Add(time.Duration(-len(f.created)) * time.Millisecond)
	}
	f.tickets[ticket.ID] = ticket
	f.created = append(f.created, ticket.ID)
	return ticket
}

func (f *fakeTicketRepo) inOrder() []*Ticket {
	out := make([]*Ticket, 0, len(f.created))
	for _, id := range f.created {
		if t, ok := f.tickets[id]; ok {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Transaction serializes callers the way the flight row lock does in
// Postgres: one booking transaction at a time per fake.
func (f *fakeTicketRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(nil)
}

func (f *fakeTicketRepo) GetFlightForUpdate(tx *gorm.DB, flightID uuid.UUID) (*flights.Flight, error) {
	if f.flight == nil || f.flight.ID != flightID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.flight, nil
}

func (f *fakeTicketRepo) GetFlight(flightID uuid.UUID) (*flights.Flight, error) {
	return f.GetFlightForUpdate(nil, flightID)
}

func (f *fakeTicketRepo) CountActive(tx *gorm.DB, flightID uuid.UUID, cabinClass string) (int64, error) {
	var count int64
	for _, t := range f.tickets {
		if t.FlightID == flightID && t.CabinClass == cabinClass &&
			(t.Status == StatusBooked || t.Status == StatusCheckedOut) {
			count++
		}
	}
	return count, nil
}

func (f *fakeTicketRepo) OccupiedSeatNumbers(tx *gorm.DB, flightID uuid.UUID, cabinClass string) ([]int, error) {
	var seats []int
	for _, t := range f.tickets {
		if t.FlightID == flightID && t.CabinClass == cabinClass && t.SeatNumber != nil &&
			(t.Status == StatusBooked || t.Status == StatusCheckedOut) {
			seats = append(seats, *t.SeatNumber)
		}
	}
	return seats, nil
}

func (f *fakeTicketRepo) FirstAvailable(tx *gorm.DB, flightID uuid.UUID, cabinClass string) (*Ticket, error) {
	for _, t := range f.inOrder() {
		if t.FlightID == flightID && t.CabinClass == cabinClass && t.Status == StatusAvailable {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTicketRepo) AvailableBySeat(tx *gorm.DB, flightID uuid.UUID, cabinClass string, seatNumber int) (*Ticket, error) {
	for _, t := range f.inOrder() {
		if t.FlightID == flightID && t.CabinClass == cabinClass && t.Status == StatusAvailable &&
			t.SeatNumber != nil && *t.SeatNumber == seatNumber {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTicketRepo) Create(tx *gorm.DB, ticket *Ticket) error {
	ticket.CreatedAt = time.Now()
	f.add(ticket)
	return nil
}

func (f *fakeTicketRepo) Save(tx *gorm.DB, ticket *Ticket) error {
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	delete(f.tickets, id)
	return nil
}

func (f *fakeTicketRepo) GetByID(tx *gorm.DB, id uuid.UUID) (*Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTicketRepo) GetByCartID(cartID uuid.UUID) ([]Ticket, error) {
	var out []Ticket
	for _, t := range f.inOrder() {
		if t.CartID != nil && *t.CartID == cartID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) GetByOrderID(orderID uint) ([]Ticket, error) {
	var out []Ticket
	for _, t := range f.inOrder() {
		if t.OrderID != nil && *t.OrderID == orderID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) AssignToOrder(tx *gorm.DB, ticketIDs []uuid.UUID, cartID uuid.UUID, orderID uint) (int64, error) {
	var moved int64
	for _, id := range ticketIDs {
		t, ok := f.tickets[id]
		if !ok || t.CartID == nil || *t.CartID != cartID || t.Status != StatusBooked {
			continue
		}
		t.OrderID = &orderID
		t.CartID = nil
		moved++
	}
	return moved, nil
}

func (f *fakeTicketRepo) UpdateStatusByOrderID(tx *gorm.DB, orderID uint, from, to Status) (int64, error) {
	var affected int64
	for _, t := range f.tickets {
		if t.OrderID != nil && *t.OrderID == orderID && t.Status == from {
			t.Status = to
			affected++
		}
	}
	return affected, nil
}

func (f *fakeTicketRepo) ExpireIfOverdue(id uuid.UUID, cutoff time.Time) (*Ticket, int64, error) {
	t, ok := f.tickets[id]
	if !ok || t.Status != StatusBooked || t.CreatedAt.After(cutoff) {
		return nil, 0, nil
	}
	t.Status = StatusAvailable
	return t, 1, nil
}

func (f *fakeTicketRepo) ListOverdue(cutoff time.Time) ([]Ticket, error) {
	var out []Ticket
	for _, t := range f.inOrder() {
		if t.Status == StatusBooked && !t.CreatedAt.After(cutoff) {
			out = append(out, *t)
		}
	}
	return out, nil
}

// --- Collaborator mocks ---

type mockCarts struct {
	cartID   uuid.UUID
	messages map[uuid.UUID][]string
}

func newMockCarts() *mockCarts {
	return &mockCarts{cartID: uuid.New(), messages: make(map[uuid.UUID][]string)}
}

func (m *mockCarts) GetOrCreate(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return m.cartID, nil
}

func (m *mockCarts) AppendMessage(tx *gorm.DB, cartID uuid.UUID, message string) error {
	m.messages[cartID] = append(m.messages[cartID], message)
	return nil
}

type mockScheduler struct {
	mu        sync.Mutex
	scheduled []uuid.UUID
	cancelled []uuid.UUID
}

func (m *mockScheduler) Schedule(id uuid.UUID, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = append(m.scheduled, id)
}

func (m *mockScheduler) Cancel(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, id)
}

// --- Fixtures ---

func testFlight(economyCapacity int) *flights.Flight {
	return &flights.Flight{
		ID:               uuid.New(),
		Origin:           "Kyiv",
		Destination:      "Warsaw",
		EconomyCapacity:  economyCapacity,
		BusinessCapacity: 6,
		EconomyPrice:     2500,
	}
}

func newTestTicketService(repo *fakeTicketRepo) (Service, *mockCarts, *mockScheduler) {
	carts := newMockCarts()
	sched := &mockScheduler{}
	svc := NewService(repo, time.Minute)
	svc.SetCartService(carts)
	svc.SetScheduler(sched)
	return svc, carts, sched
}

func intPtr(v int) *int { return &v }

// --- Acquire ---

func TestAcquire_Success(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, carts, sched := newTestTicketService(repo)

	resp, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
		CabinClass: flights.CabinEconomy,
		SeatNumber: intPtr(4),
	})

	assert.NoError(t, err)
	assert.Equal(t, string(StatusBooked), resp.Status)
	assert.Equal(t, 4, *resp.SeatNumber)
	assert.NotNil(t, resp.HoldExpiresAt)
	assert.Len(t, sched.scheduled, 1)

	stored := repo.inOrder()[0]
	assert.Equal(t, carts.cartID, *stored.CartID)
}

func TestAcquire_WithoutSeatPick(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	resp, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
		CabinClass: flights.CabinEconomy,
	})

	assert.NoError(t, err)
	assert.Nil(t, resp.SeatNumber)
}

func TestAcquire_FlightNotFound(t *testing.T) {
	repo := newFakeRepo(testFlight(10))
	svc, _, _ := newTestTicketService(repo)

	_, err := svc.Acquire(context.Background(), uuid.New(), uuid.New(), AcquireSeatRequest{
		CabinClass: flights.CabinEconomy,
	})

	assert.ErrorIs(t, err, flights.ErrFlightNotFound)
}

func TestAcquire_CabinFull(t *testing.T) {
	flight := testFlight(1)
	repo := newFakeRepo(flight)
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusBooked})
	svc, _, _ := newTestTicketService(repo)

	_, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
		CabinClass: flights.CabinEconomy,
	})

	assert.ErrorIs(t, err, ErrSeatFull)
}

func TestAcquire_CheckedOutTicketsCountTowardCapacity(t *testing.T) {
	flight := testFlight(1)
	repo := newFakeRepo(flight)
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusCheckedOut})
	svc, _, _ := newTestTicketService(repo)

	_, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
		CabinClass: flights.CabinEconomy,
	})

	assert.ErrorIs(t, err, ErrSeatFull)
}

func TestAcquire_InvalidSeatNumber(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	for _, seat := range []int{0, -1, 11, 100} {
		_, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
			CabinClass: flights.CabinEconomy,
			SeatNumber: intPtr(seat),
		})
		assert.ErrorIs(t, err, ErrInvalidSeatNumber, "seat %d", seat)
	}
}

func TestAcquire_BusySeat(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusBooked, SeatNumber: intPtr(3)})
	svc, _, _ := newTestTicketService(repo)

	_, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
		CabinClass: flights.CabinEconomy,
		SeatNumber: intPtr(3),
	})

	assert.ErrorIs(t, err, ErrSeatBusy)
}

func TestAcquire_ReclaimsExpiredSeat(t *testing.T) {
	// An expired hold does not block its seat: acquiring that exact
	// seat evicts the stale ticket and notifies its former holder.
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	staleCart := uuid.New()
	stale := repo.add(&Ticket{
		FlightID:   flight.ID,
		CartID:     &staleCart,
		CabinClass: flights.CabinEconomy,
		Status:     StatusAvailable,
		SeatNumber: intPtr(5),
	})
	svc, carts, sched := newTestTicketService(repo)

	resp, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
		CabinClass: flights.CabinEconomy,
		SeatNumber: intPtr(5),
	})

	assert.NoError(t, err)
	assert.Equal(t, 5, *resp.SeatNumber)
	assert.Equal(t, string(StatusBooked), resp.Status)

	_, found := repo.tickets[stale.ID]
	assert.False(t, found, "stale hold should be evicted")
	assert.Contains(t, sched.cancelled, stale.ID)

	messages := carts.messages[staleCart]
	assert.Len(t, messages, 1, "former holder must be notified")
	assert.Contains(t, messages[0], "Kyiv -> Warsaw")
	assert.Contains(t, messages[0], "expired")
}

func TestAcquire_EvictsOldestExpiredHold(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	staleCart := uuid.New()
	stale := repo.add(&Ticket{
		FlightID:   flight.ID,
		CartID:     &staleCart,
		CabinClass: flights.CabinEconomy,
		Status:     StatusAvailable,
		SeatNumber: intPtr(7),
	})
	svc, carts, sched := newTestTicketService(repo)

	// Acquiring a different seat still reclaims the oldest expired
	// hold in the cabin.
	resp, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
		CabinClass: flights.CabinEconomy,
		SeatNumber: intPtr(8),
	})
	assert.NoError(t, err)
	assert.Equal(t, 8, *resp.SeatNumber)

	_, found := repo.tickets[stale.ID]
	assert.False(t, found, "expired hold should be evicted")
	assert.Contains(t, sched.cancelled, stale.ID)

	messages := carts.messages[staleCart]
	assert.Len(t, messages, 1)
	assert.Contains(t, messages[0], "Kyiv -> Warsaw")
	assert.Contains(t, messages[0], "expired")
}

func TestAcquire_ConcurrentSameSeatOneWinner(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
				CabinClass: flights.CabinEconomy,
				SeatNumber: intPtr(6),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	won, lost := 0, 0
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrSeatBusy)
			lost++
		}
	}
	assert.Equal(t, 1, won, "exactly one acquire wins the seat")
	assert.Equal(t, 1, lost)
	assert.Len(t, repo.tickets, 1)
}

func TestAcquire_CabinsAreIndependent(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusBooked, SeatNumber: intPtr(3)})
	svc, _, _ := newTestTicketService(repo)

	// Same seat number in the other cabin is fine.
	resp, err := svc.Acquire(context.Background(), uuid.New(), flight.ID, AcquireSeatRequest{
		CabinClass: flights.CabinBusiness,
		SeatNumber: intPtr(3),
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, *resp.SeatNumber)
}

// --- Release ---

func TestRelease_Success(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, carts, sched := newTestTicketService(repo)

	ticket := repo.add(&Ticket{
		FlightID:   flight.ID,
		CartID:     &carts.cartID,
		CabinClass: flights.CabinEconomy,
		Status:     StatusBooked,
	})

	err := svc.Release(context.Background(), uuid.New(), ticket.ID)
	assert.NoError(t, err)
	assert.Empty(t, repo.tickets)
	assert.Contains(t, sched.cancelled, ticket.ID)
}

func TestRelease_NotOwner(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	otherCart := uuid.New()
	ticket := repo.add(&Ticket{
		FlightID:   flight.ID,
		CartID:     &otherCart,
		CabinClass: flights.CabinEconomy,
		Status:     StatusBooked,
	})

	err := svc.Release(context.Background(), uuid.New(), ticket.ID)
	assert.ErrorIs(t, err, ErrNotTicketOwner)
	assert.Len(t, repo.tickets, 1)
}

func TestRelease_NotFound(t *testing.T) {
	repo := newFakeRepo(testFlight(10))
	svc, _, _ := newTestTicketService(repo)

	err := svc.Release(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

// --- Seat ledger ---

func TestFreeSeats(t *testing.T) {
	flight := testFlight(5)
	repo := newFakeRepo(flight)
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusBooked, SeatNumber: intPtr(2)})
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusCheckedOut, SeatNumber: intPtr(5)})
	// The expired hold's seat is free again.
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusAvailable, SeatNumber: intPtr(4)})
	svc, _, _ := newTestTicketService(repo)

	free, err := svc.FreeSeats(context.Background(), flight.ID, flights.CabinEconomy)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4}, free)
}

// --- Expiry ---

func TestExpireTicket_FlipsOverdueHold(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	ticket := repo.add(&Ticket{
		FlightID:   flight.ID,
		CabinClass: flights.CabinEconomy,
		Status:     StatusBooked,
		CreatedAt:  time.Now().Add(-2 * time.Minute),
	})

	svc.ExpireTicket(context.Background(), ticket.ID)
	assert.Equal(t, StatusAvailable, repo.tickets[ticket.ID].Status)
}

func TestExpireTicket_FreshHoldUntouched(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	ticket := repo.add(&Ticket{
		FlightID:   flight.ID,
		CabinClass: flights.CabinEconomy,
		Status:     StatusBooked,
		CreatedAt:  time.Now(),
	})

	svc.ExpireTicket(context.Background(), ticket.ID)
	assert.Equal(t, StatusBooked, repo.tickets[ticket.ID].Status)
}

func TestExpireTicket_CheckedOutTicketUntouched(t *testing.T) {
	// A timer firing after payment must not release a sold seat.
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	ticket := repo.add(&Ticket{
		FlightID:   flight.ID,
		CabinClass: flights.CabinEconomy,
		Status:     StatusCheckedOut,
		CreatedAt:  time.Now().Add(-2 * time.Minute),
	})

	svc.ExpireTicket(context.Background(), ticket.ID)
	assert.Equal(t, StatusCheckedOut, repo.tickets[ticket.ID].Status)
}

func TestExpireOverdue_SweepsEverything(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	old := time.Now().Add(-2 * time.Minute)
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusBooked, CreatedAt: old})
	repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusBooked, CreatedAt: old})
	fresh := repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusBooked, CreatedAt: time.Now()})

	expired, err := svc.ExpireOverdue(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, expired)
	assert.Equal(t, StatusBooked, repo.tickets[fresh.ID].Status)
}

// --- Checkout hooks ---

func TestAssignToOrder_OnlyMovesBookedCartTickets(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, carts, _ := newTestTicketService(repo)

	mine := repo.add(&Ticket{FlightID: flight.ID, CartID: &carts.cartID, CabinClass: flights.CabinEconomy, Status: StatusBooked})
	expired := repo.add(&Ticket{FlightID: flight.ID, CartID: &carts.cartID, CabinClass: flights.CabinEconomy, Status: StatusAvailable})

	moved, err := svc.AssignToOrder(nil, carts.cartID, []uuid.UUID{mine.ID, expired.ID}, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), moved)
	assert.Equal(t, uint(7), *repo.tickets[mine.ID].OrderID)
	assert.Nil(t, repo.tickets[expired.ID].OrderID)
}

func TestCheckOutOrder_FlipsBookedTickets(t *testing.T) {
	flight := testFlight(10)
	repo := newFakeRepo(flight)
	svc, _, _ := newTestTicketService(repo)

	orderID := uint(7)
	a := repo.add(&Ticket{FlightID: flight.ID, OrderID: &orderID, CabinClass: flights.CabinEconomy, Status: StatusBooked})
	b := repo.add(&Ticket{FlightID: flight.ID, OrderID: &orderID, CabinClass: flights.CabinEconomy, Status: StatusBooked})
	other := repo.add(&Ticket{FlightID: flight.ID, CabinClass: flights.CabinEconomy, Status: StatusBooked})

	affected, err := svc.CheckOutOrder(nil, orderID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.Equal(t, StatusCheckedOut, repo.tickets[a.ID].Status)
	assert.Equal(t, StatusCheckedOut, repo.tickets[b.ID].Status)
	assert.Equal(t, StatusBooked, repo.tickets[other.ID].Status)
}
