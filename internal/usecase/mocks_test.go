// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"tapzar-billing/internal/domain"
	"tapzar-billing/internal/domain/model"
	"tapzar-billing/internal/domain/ports/adapter"
	"tapzar-billing/internal/domain/ports/repository"
)

func NewTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ===== payments =====

// MockPaymentRepo is a small in-memory implementation used by unit tests.
type MockPaymentRepo struct {
	mu       sync.Mutex
	store    map[string]*model.Payment // by internal id
	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.GatewayPaymentID != nil {
		for _, other := range m.store {
			if other.ID != p.ID && other.GatewayPaymentID != nil && *other.GatewayPaymentID == *p.GatewayPaymentID {
				return domain.ErrDuplicateGatewayID
			}
		}
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByGatewayID(ctx context.Context, tx repository.Tx, gatewayPaymentID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.GatewayPaymentID != nil && *p.GatewayPaymentID == gatewayPaymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, failureReason *string, paidAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	if failureReason != nil {
		p.FailureReason = failureReason
	}
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ===== subscriptions =====

type MockSubscriptionRepo struct {
	mu    sync.Mutex
	store map[string]*model.Subscription // by user id
	Saves int                            // counts Save calls for idempotence assertions
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.store[sub.UserID] = &cp
	m.Saves++
	return nil
}

func (m *MockSubscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// ===== users =====

type MockUserRepo struct {
	mu    sync.Mutex
	store map[string]*model.User
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

func (m *MockUserRepo) Put(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// ===== gateway =====

type MockGateway struct {
	mu       sync.Mutex
	calls    int
	InitFunc func(ctx context.Context, orderID string, amount int64, description, clientIP string) (*adapter.InitResult, error)
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) Initiate(ctx context.Context, orderID string, amount int64, description, clientIP string) (*adapter.InitResult, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	if g.InitFunc != nil {
		return g.InitFunc(ctx, orderID, amount, description, clientIP)
	}
	id := fmt.Sprintf("gw-%d", n)
	return &adapter.InitResult{
		GatewayPaymentID: id,
		RedirectURL:      "https://pay.example/" + id,
	}, nil
}

// ===== tx manager =====

// MockTxManager runs the callback without a real transaction; the in-memory
// repos ignore the handle anyway.
type MockTxManager struct{}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// ===== notifier =====

type MockNotifier struct {
	mu       sync.Mutex
	Receipts []adapter.Receipt
	Err      error
}

var _ adapter.ReceiptNotifier = (*MockNotifier)(nil)

func (n *MockNotifier) SendReceipt(ctx context.Context, userID string, r adapter.Receipt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Receipts = append(n.Receipts, r)
	return nil
}

func (n *MockNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Receipts)
}
