package payments

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"skyfare/internal/facilities"
	"skyfare/internal/flights"
	"skyfare/internal/notifications"
	"skyfare/internal/orders"
	"skyfare/internal/tickets"
)

// --- Mocks ---

type mockPaymentRepo struct {
	recordFn func(tx *gorm.DB, record *ProcessedCallback) (bool, error)
	emailFn  func(userID uuid.UUID) (string, error)
	flightFn func(flightID uuid.UUID) (*flights.Flight, error)

	transactions int
}

func (m *mockPaymentRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	m.transactions++
	return fn(nil)
}

func (m *mockPaymentRepo) RecordCallback(tx *gorm.DB, record *ProcessedCallback) (bool, error) {
	return m.recordFn(tx, record)
}

func (m *mockPaymentRepo) GetUserEmail(userID uuid.UUID) (string, error) {
	if m.emailFn != nil {
		return m.emailFn(userID)
	}
	return "passenger@example.com", nil
}

func (m *mockPaymentRepo) GetFlight(flightID uuid.UUID) (*flights.Flight, error) {
	if m.flightFn != nil {
		return m.flightFn(flightID)
	}
	return nil, gorm.ErrRecordNotFound
}

type mockOrderFinder struct {
	findFn     func(orderID uint) (*orders.Order, error)
	markPaidFn func(tx *gorm.DB, orderID uint) error

	paid []uint
}

func (m *mockOrderFinder) FindByID(orderID uint) (*orders.Order, error) {
	return m.findFn(orderID)
}

func (m *mockOrderFinder) MarkPaid(tx *gorm.DB, orderID uint) error {
	m.paid = append(m.paid, orderID)
	if m.markPaidFn != nil {
		return m.markPaidFn(tx, orderID)
	}
	return nil
}

type mockTicketCheckout struct {
	byOrderFn func(orderID uint) ([]tickets.Ticket, error)

	checkedOut []uint
}

func (m *mockTicketCheckout) TicketsByOrder(orderID uint) ([]tickets.Ticket, error) {
	if m.byOrderFn != nil {
		return m.byOrderFn(orderID)
	}
	return nil, nil
}

func (m *mockTicketCheckout) CheckOutOrder(tx *gorm.DB, orderID uint) (int64, error) {
	m.checkedOut = append(m.checkedOut, orderID)
	return 1, nil
}

type mockFacilityLister struct{}

func (m *mockFacilityLister) GetTicketFacilities(ticketID uuid.UUID) ([]facilities.TicketFacilityResponse, error) {
	return nil, nil
}

func newTestService(repo *mockPaymentRepo, orderSvc *mockOrderFinder, ticketSvc *mockTicketCheckout) Service {
	return NewService(
		repo,
		orderSvc,
		ticketSvc,
		&mockFacilityLister{},
		nil,
		notifications.NewLogPublisher(),
		testSecret,
	)
}

// --- Helpers ---

func callbackBody(t *testing.T, ref string, reasonCode int, ts int64, secret string) []byte {
	t.Helper()

	payload := CallbackPayload{
		OrderReference: ref,
		ReasonCode:     reasonCode,
		Time:           ts,
	}
	payload.Signature = Sign([]string{
		ref,
		strconv.Itoa(reasonCode),
		strconv.FormatInt(ts, 10),
	}, secret)

	doc, err := json.Marshal(payload)
	assert.NoError(t, err)

	// The gateway posts an object whose single key is the payload
	// document itself.
	body, err := json.Marshal(map[string]string{string(doc): ""})
	assert.NoError(t, err)
	return body
}

func paidOrder(id uint) *orders.Order {
	return &orders.Order{ID: id, UserID: uuid.New(), Price: 2500}
}

// --- Envelope parsing ---

func TestParseCallbackEnvelope_Valid(t *testing.T) {
	body := callbackBody(t, "9896f0", ReasonCodeSuccess, 1415379863, testSecret)

	payload, err := ParseCallbackEnvelope(body)
	assert.NoError(t, err)
	assert.Equal(t, "9896f0", payload.OrderReference)
	assert.Equal(t, ReasonCodeSuccess, payload.ReasonCode)
	assert.Equal(t, int64(1415379863), payload.Time)
	assert.NotEmpty(t, payload.Signature)
}

func TestParseCallbackEnvelope_Malformed(t *testing.T) {
	cases := [][]byte{
		[]byte(``),
		[]byte(`not json`),
		[]byte(`{}`),
		[]byte(`{"not a payload": ""}`),
		[]byte(`{"{\"reasonCode\": 1100}": ""}`),
	}
	for _, body := range cases {
		_, err := ParseCallbackEnvelope(body)
		assert.ErrorIs(t, err, ErrMalformedCallback, "body %q", string(body))
	}
}

// --- Callback processing ---

func TestHandleCallback_BadSignature(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := newTestService(repo, &mockOrderFinder{}, &mockTicketCheckout{})

	body := callbackBody(t, "9896f0", ReasonCodeSuccess, 1415379863, "wrong-secret")

	ack, err := svc.HandleCallback(context.Background(), body)
	assert.ErrorIs(t, err, ErrBadSignature)
	assert.Nil(t, ack)
	assert.Zero(t, repo.transactions, "bad signature must not touch the database")
}

func TestHandleCallback_UnknownOrder(t *testing.T) {
	orderSvc := &mockOrderFinder{
		findFn: func(orderID uint) (*orders.Order, error) {
			return nil, orders.ErrOrderNotFound
		},
	}
	svc := newTestService(&mockPaymentRepo{}, orderSvc, &mockTicketCheckout{})

	// Decodable reference, but no such order.
	body := callbackBody(t, orders.EncodeOrderReference(12345), ReasonCodeSuccess, 1415379863, testSecret)
	_, err := svc.HandleCallback(context.Background(), body)
	assert.ErrorIs(t, err, ErrUnknownOrder)

	// Signed but undecodable reference.
	body = callbackBody(t, "zzzz", ReasonCodeSuccess, 1415379863, testSecret)
	_, err = svc.HandleCallback(context.Background(), body)
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestHandleCallback_SuccessChecksOutOrder(t *testing.T) {
	order := paidOrder(7)
	repo := &mockPaymentRepo{
		recordFn: func(tx *gorm.DB, record *ProcessedCallback) (bool, error) {
			assert.Equal(t, order.ID, record.OrderID)
			assert.Equal(t, ReasonCodeSuccess, record.ReasonCode)
			return true, nil
		},
	}
	orderSvc := &mockOrderFinder{
		findFn: func(orderID uint) (*orders.Order, error) { return order, nil },
	}
	ticketSvc := &mockTicketCheckout{}
	svc := newTestService(repo, orderSvc, ticketSvc)

	ref := orders.EncodeOrderReference(order.ID)
	body := callbackBody(t, ref, ReasonCodeSuccess, 1415379863, testSecret)

	ack, err := svc.HandleCallback(context.Background(), body)
	assert.NoError(t, err)
	assert.Equal(t, []uint{order.ID}, ticketSvc.checkedOut)
	assert.Equal(t, []uint{order.ID}, orderSvc.paid)

	assert.Equal(t, ref, ack.OrderReference)
	assert.Equal(t, "accept", ack.Status)
	assert.True(t, VerifySignature([]string{
		ack.OrderReference,
		ack.Status,
		strconv.FormatInt(ack.Time, 10),
	}, testSecret, ack.Signature))
}

func TestHandleCallback_ReplayAcksWithoutSideEffects(t *testing.T) {
	order := paidOrder(7)
	repo := &mockPaymentRepo{
		recordFn: func(tx *gorm.DB, record *ProcessedCallback) (bool, error) {
			return false, nil
		},
	}
	orderSvc := &mockOrderFinder{
		findFn: func(orderID uint) (*orders.Order, error) { return order, nil },
	}
	ticketSvc := &mockTicketCheckout{}
	svc := newTestService(repo, orderSvc, ticketSvc)

	body := callbackBody(t, orders.EncodeOrderReference(order.ID), ReasonCodeSuccess, 1415379863, testSecret)

	ack, err := svc.HandleCallback(context.Background(), body)
	assert.NoError(t, err)
	assert.Empty(t, ticketSvc.checkedOut, "replay must not flip tickets again")
	assert.Empty(t, orderSvc.paid, "replay must not mark the order paid again")
	assert.Equal(t, "accept", ack.Status)
}

func TestHandleCallback_FailureCodeAcksWithoutCheckout(t *testing.T) {
	order := paidOrder(7)
	repo := &mockPaymentRepo{}
	orderSvc := &mockOrderFinder{
		findFn: func(orderID uint) (*orders.Order, error) { return order, nil },
	}
	ticketSvc := &mockTicketCheckout{}
	svc := newTestService(repo, orderSvc, ticketSvc)

	body := callbackBody(t, orders.EncodeOrderReference(order.ID), 1105, 1415379863, testSecret)

	ack, err := svc.HandleCallback(context.Background(), body)
	assert.NoError(t, err)
	assert.Zero(t, repo.transactions)
	assert.Empty(t, ticketSvc.checkedOut)
	assert.Equal(t, "accept", ack.Status)
}
