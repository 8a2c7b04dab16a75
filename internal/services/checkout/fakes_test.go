package checkout

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/fastprodman/paygate/internal/events"
	"github.com/fastprodman/paygate/internal/infra/logging"
	"github.com/fastprodman/paygate/internal/infra/pgutils"
	"github.com/fastprodman/paygate/internal/paypal"
	"github.com/fastprodman/paygate/internal/repos/activity"
	"github.com/fastprodman/paygate/internal/repos/partners"
	"github.com/fastprodman/paygate/internal/repos/payments"
	"github.com/fastprodman/paygate/internal/repos/products"
	"github.com/fastprodman/paygate/internal/repos/users"
	"github.com/fastprodman/paygate/internal/services/partner"
	"github.com/google/uuid"
)

var errStore = errors.New("store unavailable")

// memStore backs every repository with maps. Transactions snapshot the
// state and restore it when fn fails; they run one at a time.
type memStore struct {
	// txMu serializes transactions the way row locks serialize confirms.
	txMu      sync.Mutex
	mu        sync.Mutex
	users     map[uint64]users.Account
	products  map[uuid.UUID]products.Product
	payments  map[uuid.UUID]payments.Payment
	referrals map[uint64]uint64
	partners  map[uint64]partners.Partner
	activity  []activity.Entry

	// failSettle makes Settle to the given status fail.
	failSettle payments.Status
	failInsert bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint64]users.Account{},
		products:  map[uuid.UUID]products.Product{},
		payments:  map[uuid.UUID]payments.Payment{},
		referrals: map[uint64]uint64{},
		partners:  map[uint64]partners.Partner{},
	}
}

type memSnapshot struct {
	users    map[uint64]users.Account
	payments map[uuid.UUID]payments.Payment
	activity []activity.Entry
}

func (m *memStore) withTx(_ context.Context, fn func(*sql.Tx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := memSnapshot{
		users:    maps.Clone(m.users),
		payments: maps.Clone(m.payments),
		activity: slices.Clone(m.activity),
	}
	m.mu.Unlock()

	err := fn(nil)
	if err != nil {
		m.mu.Lock()
		m.users, m.payments, m.activity = snap.users, snap.payments, snap.activity
		m.mu.Unlock()

		return err
	}

	return nil
}

func (m *memStore) user(id uint64) users.Account {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.users[id]
}

func (m *memStore) payment(id uuid.UUID) (payments.Payment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[id]
	return p, ok
}

func (m *memStore) entries() []activity.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.activity)
}

type memUsers struct{ *memStore }

func (m memUsers) Exists(_ *sql.Tx, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return users.ErrUserNotFound
	}

	return nil
}

func (m memUsers) Get(_ context.Context, id uint64) (users.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.users[id]
	if !ok {
		return users.Account{}, users.ErrUserNotFound
	}

	return a, nil
}

func (m memUsers) LockAndGet(tx *sql.Tx, id uint64) (users.Account, error) {
	return m.Get(context.Background(), id)
}

func (m memUsers) update(id uint64, fn func(*users.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.users[id]
	if !ok {
		return users.ErrUserNotFound
	}

	fn(&a)
	m.users[id] = a

	return nil
}

func (m memUsers) IncreaseCredits(_ *sql.Tx, id uint64, amount int64) error {
	return m.update(id, func(a *users.Account) { a.Credits += amount })
}

func (m memUsers) IncreaseServerLimit(_ *sql.Tx, id uint64, amount int64) error {
	return m.update(id, func(a *users.Account) { a.ServerLimit += amount })
}

func (m memUsers) RaiseServerLimit(_ *sql.Tx, id uint64, floor int64) (bool, error) {
	raised := false
	err := m.update(id, func(a *users.Account) {
		if a.ServerLimit < floor {
			a.ServerLimit = floor
			raised = true
		}
	})

	return raised, err
}

func (m memUsers) PromoteRole(_ *sql.Tx, id uint64, from, to users.Role) (bool, error) {
	promoted := false
	err := m.update(id, func(a *users.Account) {
		if a.Role == from {
			a.Role = to
			promoted = true
		}
	})

	return promoted, err
}

type memProducts struct{ *memStore }

func (m memProducts) Get(_ context.Context, id uuid.UUID) (products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return products.Product{}, products.ErrProductNotFound
	}

	return p, nil
}

type memPayments struct{ *memStore }

func (m memPayments) Insert(_ context.Context, p payments.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failInsert {
		return errStore
	}

	if _, ok := m.payments[p.ID]; ok {
		return payments.ErrDuplicatePayment
	}

	m.payments[p.ID] = p

	return nil
}

func (m memPayments) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.payments, id)

	return nil
}

func (m memPayments) Get(_ context.Context, id uuid.UUID) (payments.Payment, error) {
	p, ok := m.payment(id)
	if !ok {
		return payments.Payment{}, payments.ErrPaymentNotFound
	}

	return p, nil
}

func (m memPayments) LockAndGet(_ *sql.Tx, id uuid.UUID) (payments.Payment, error) {
	return m.Get(context.Background(), id)
}

func (m memPayments) Settle(_ *sql.Tx, id uuid.UUID, status payments.Status, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSettle == status {
		return errStore
	}

	p, ok := m.payments[id]
	if !ok {
		return payments.ErrPaymentNotFound
	}

	if p.Status != payments.StatusOpen {
		return payments.ErrPaymentNotOpen
	}

	p.Status = status
	p.ExternalID = externalID
	m.payments[id] = p

	return nil
}

type memReferrals struct{ *memStore }

func (m memReferrals) ReferrerOf(_ context.Context, _ pgutils.Queryer, userID uint64) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.referrals[userID]
	return id, ok, nil
}

type memPartners struct{ *memStore }

func (m memPartners) Find(_ context.Context, _ pgutils.Queryer, userID uint64) (partners.Partner, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.partners[userID]
	return p, ok, nil
}

type memActivity struct{ *memStore }

func (m memActivity) Insert(_ *sql.Tx, e activity.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = int64(len(m.activity) + 1)
	m.activity = append(m.activity, e)

	return nil
}

func (m memActivity) ListBySubject(_ *sql.Tx, subjectID uint64) ([]activity.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []activity.Entry

	for _, e := range m.activity {
		if e.SubjectID == subjectID {
			out = append(out, e)
		}
	}

	return out, nil
}

type createCall struct {
	order     paypal.OrderRequest
	requestID string
}

type captureCall struct {
	orderID   string
	requestID string
}

// fakeProvider answers with the configured functions and records calls.
type fakeProvider struct {
	mu       sync.Mutex
	creates  []createCall
	captures []captureCall
	create   func(paypal.OrderRequest) (*paypal.Response, error)
	capture  func(orderID string) (*paypal.Response, error)
}

func (f *fakeProvider) CreateOrder(_ context.Context, order paypal.OrderRequest, requestID string) (*paypal.Response, error) {
	f.mu.Lock()
	f.creates = append(f.creates, createCall{order: order, requestID: requestID})
	f.mu.Unlock()

	if f.create == nil {
		return approvedOrder("ORDER-1"), nil
	}

	return f.create(order)
}

func (f *fakeProvider) CaptureOrder(_ context.Context, orderID, requestID string) (*paypal.Response, error) {
	f.mu.Lock()
	f.captures = append(f.captures, captureCall{orderID: orderID, requestID: requestID})
	f.mu.Unlock()

	if f.capture == nil {
		return completedCapture(orderID), nil
	}

	return f.capture(orderID)
}

func (f *fakeProvider) captureCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.captures)
}

func approvedOrder(id string) *paypal.Response {
	return &paypal.Response{
		StatusCode: 201,
		Result: paypal.Order{
			ID:     id,
			Status: "CREATED",
			Links: []paypal.Link{
				{Href: "https://api.sandbox.paypal.com/v2/checkout/orders/" + id, Rel: "self"},
				{Href: "https://www.sandbox.paypal.com/checkoutnow?token=" + id, Rel: "approve"},
			},
		},
	}
}

func completedCapture(id string) *paypal.Response {
	return &paypal.Response{StatusCode: 201, Result: paypal.Order{ID: id, Status: "COMPLETED"}}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)

	return r.err
}

func (r *recordingPublisher) names() []events.Name {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]events.Name, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}

	return out
}

type debugEnv bool

func (d debugEnv) IsDebug() bool { return bool(d) }

type harness struct {
	store     *memStore
	provider  *fakeProvider
	publisher *recordingPublisher
	settings  Settings
	svc       *Service
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func defaultSettings() Settings {
	return Settings{
		AppName:            "Paygate",
		PublicURL:          "https://shop.example",
		HomePath:           "/home",
		ReferralMode:       ReferralOff,
		CreditsDisplayName: "Credits",
	}
}

func newHarness(t *testing.T, st Settings, env Environment) *harness {
	t.Helper()

	h := &harness{
		store:     newMemStore(),
		provider:  &fakeProvider{},
		publisher: &recordingPublisher{},
		settings:  st,
	}

	h.svc = newTestService(h, env, logging.Discard())

	return h
}

func newTestService(h *harness, env Environment, log *slog.Logger) *Service {
	s := &Service{
		withTx:    h.store.withTx,
		users:     memUsers{h.store},
		products:  memProducts{h.store},
		payments:  memPayments{h.store},
		referrals: memReferrals{h.store},
		activity:  memActivity{h.store},
		policy:    partner.NewPolicy(memPartners{h.store}, memReferrals{h.store}),
		provider:  h.provider,
		settings:  StaticSettings(h.settings),
		now:       func() time.Time { return fixedNow },
	}

	return s.apply([]Option{WithEnvironment(env), WithPublisher(h.publisher), WithLogger(log)})
}

func (h *harness) addUser(id uint64, name string, role users.Role) {
	h.store.users[id] = users.Account{ID: id, Name: name, Role: role}
}

func (h *harness) addProduct(typ products.ItemType, quantity, price int64) products.Product {
	p := products.Product{
		ID:           uuid.New(),
		Type:         typ,
		Display:      "5 Credits",
		Quantity:     quantity,
		Price:        price,
		CurrencyCode: "eur",
	}
	h.store.products[p.ID] = p

	return p
}

func (h *harness) addOpenPayment(userID uint64, product products.Product) payments.Payment {
	p := payments.Payment{
		ID:           uuid.New(),
		UserID:       userID,
		Method:       payments.MethodPayPal,
		Type:         product.Type,
		Status:       payments.StatusOpen,
		Amount:       product.Quantity,
		Price:        product.Price,
		TotalPrice:   product.Price,
		CurrencyCode: product.CurrencyCode,
		ProductID:    product.ID,
	}
	h.store.payments[p.ID] = p

	return p
}
