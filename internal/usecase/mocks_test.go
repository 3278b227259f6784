package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"restopos/internal/domain/model"
	"restopos/internal/kitchen"
	repo "restopos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos
// =====================

// WithinTxの中で渡すreposを固定してunitテストを回す
type txManagerStub struct {
	repos repo.TxRepos
	calls int
}

func (m *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	return fn(m.repos)
}

type txReposStub struct {
	orders   repo.OrderRepository
	audit    repo.AuditLogRepository
	settings repo.SettingsRepository
}

func (r *txReposStub) Orders() repo.OrderRepository       { return r.orders }
func (r *txReposStub) AuditLogs() repo.AuditLogRepository { return r.audit }
func (r *txReposStub) Settings() repo.SettingsRepository  { return r.settings }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Query(ctx context.Context, f repo.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Update(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) SetKitchenPrinted(ctx context.Context, orderID string, printed bool) error {
	args := m.Called(ctx, orderID, printed)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) MaxOrderNumberSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func (m *OrderRepoMock) AggregateItemSales(ctx context.Context, statuses []model.OrderStatus, from, to time.Time) ([]repo.ItemSales, error) {
	args := m.Called(ctx, statuses, from, to)
	rows, _ := args.Get(0).([]repo.ItemSales)
	return rows, args.Error(1)
}

func (m *OrderRepoMock) SumRevenue(ctx context.Context, statuses []model.OrderStatus, from, to time.Time) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, statuses, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) DailyRevenue(ctx context.Context, statuses []model.OrderStatus, from, to time.Time, loc *time.Location) ([]repo.DayRevenue, error) {
	args := m.Called(ctx, statuses, from, to, loc)
	rows, _ := args.Get(0).([]repo.DayRevenue)
	return rows, args.Error(1)
}

var _ repo.OrderRepository = (*OrderRepoMock)(nil)

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type SettingsRepoMock struct{ mock.Mock }

func (m *SettingsRepoMock) Get(ctx context.Context) (model.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(model.Settings)
	return s, args.Error(1)
}

func (m *SettingsRepoMock) Save(ctx context.Context, s model.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type DraftRepoMock struct{ mock.Mock }

func (m *DraftRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.DraftOrder, error) {
	args := m.Called(ctx, userID)
	d, _ := args.Get(0).(model.DraftOrder)
	return d, args.Error(1)
}

func (m *DraftRepoMock) SaveActive(ctx context.Context, userID int64, draft model.DraftOrder) error {
	args := m.Called(ctx, userID, draft)
	return args.Error(0)
}

func (m *DraftRepoMock) Close(ctx context.Context, userID int64, status model.DraftStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

type MenuRepoMock struct{ mock.Mock }

func (m *MenuRepoMock) List(ctx context.Context, q repo.MenuListQuery) ([]model.MenuItem, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *MenuRepoMock) FindByID(ctx context.Context, id string) (model.MenuItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(model.MenuItem)
	return item, args.Error(1)
}

func (m *MenuRepoMock) Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	args := m.Called(ctx, item)
	out, _ := args.Get(0).(model.MenuItem)
	return out, args.Error(1)
}

func (m *MenuRepoMock) Update(ctx context.Context, item model.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MenuRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserRepoMock) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *UserRepoMock) TouchLastLogout(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

var _ repo.UserRepository = (*UserRepoMock)(nil)

type DispatcherMock struct{ mock.Mock }

func (m *DispatcherMock) Dispatch(ctx context.Context, t kitchen.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// =====================
// helper
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// HTTPErrorの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func dineIn(id, table string, status model.OrderStatus, createdAt time.Time) model.Order {
	return model.Order{
		ID:          id,
		OrderType:   model.OrderTypeDineIn,
		TableNo:     strPtr(table),
		Status:      status,
		TotalAmount: dec("10"),
		CreatedAt:   createdAt,
		Items:       []model.OrderLine{{MenuItemID: "m1", Name: "Curry", Price: dec("10"), Quantity: 1}},
	}
}
