package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/handler"
	"restopos/internal/kitchen"
	"restopos/internal/middleware"
	repo "restopos/internal/repository"
	"restopos/internal/server"
	"restopos/internal/usecase"
	auth "restopos/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "handler-test-secret"

// =====================
// mocks
// =====================

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
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

func (m *OrderRepoMock) SetKitchenPrinted(ctx context.Context, orderID string, printed bool) error {
	return m.Called(ctx, orderID, printed).Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
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

type DraftRepoMock struct{ mock.Mock }

func (m *DraftRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.DraftOrder, error) {
	args := m.Called(ctx, userID)
	d, _ := args.Get(0).(model.DraftOrder)
	return d, args.Error(1)
}

func (m *DraftRepoMock) SaveActive(ctx context.Context, userID int64, draft model.DraftOrder) error {
	return m.Called(ctx, userID, draft).Error(0)
}

func (m *DraftRepoMock) Close(ctx context.Context, userID int64, status model.DraftStatus) error {
	return m.Called(ctx, userID, status).Error(0)
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
	return m.Called(ctx, item).Error(0)
}

func (m *MenuRepoMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type settingsStub struct{}

func (settingsStub) Get(ctx context.Context) (model.Settings, error)  { return model.DefaultSettings(), nil }
func (settingsStub) Save(ctx context.Context, s model.Settings) error { return nil }

type auditRecorder struct {
	logs   []model.AuditLog
	filter repo.AuditLogFilter
}

func (a *auditRecorder) Create(ctx context.Context, log model.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func (a *auditRecorder) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	a.filter = f
	return a.logs, nil
}

type txStub struct {
	orders repo.OrderRepository
	audit  *auditRecorder
}

func (t txStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error { return fn(t) }
func (t txStub) Orders() repo.OrderRepository                                      { return t.orders }
func (t txStub) AuditLogs() repo.AuditLogRepository                                { return t.audit }
func (t txStub) Settings() repo.SettingsRepository                                 { return settingsStub{} }

type dispatcherStub struct{ tickets []kitchen.Ticket }

func (d *dispatcherStub) Dispatch(ctx context.Context, t kitchen.Ticket) error {
	d.tickets = append(d.tickets, t)
	return nil
}

// =====================
// app
// =====================

type testApp struct {
	e      *echo.Echo
	users  *UserRepoMock
	orders *OrderRepoMock
	drafts *DraftRepoMock
	menu   *MenuRepoMock
	audit  *auditRecorder
	issuer *auth.JWTIssuer
}

var (
	manager = model.User{ID: 1, Username: "sam", Name: "Sam", Role: model.RoleManager, IsActive: true}
	owner   = model.User{ID: 2, Username: "olga", Name: "Olga", Role: model.RoleOwner, IsActive: true}
)

func newTestApp(t *testing.T) testApp {
	t.Helper()

	cfg := config.Config{JWTSecret: secret, Location: time.UTC}
	users := new(UserRepoMock)
	orders := new(OrderRepoMock)
	drafts := new(DraftRepoMock)
	menu := new(MenuRepoMock)
	users.On("FindByID", mock.Anything, manager.ID).Return(&manager, nil).Maybe()
	users.On("FindByID", mock.Anything, owner.ID).Return(&owner, nil).Maybe()

	clock := usecase.SystemClock{}
	audit := &auditRecorder{}
	tx := txStub{orders: orders, audit: audit}
	orderUC := usecase.NewOrderUsecase(tx, orders, clock, time.UTC)
	tableUC := usecase.NewTableUsecase(orders, settingsStub{}, orderUC)
	draftUC := usecase.NewDraftUsecase(drafts, menu, orderUC, tableUC, nil)
	receiptUC := usecase.NewReceiptUsecase(orders, settingsStub{}, &dispatcherStub{}, time.UTC)
	staffUC := usecase.NewStaffUsecase(users)

	issuer, err := auth.NewJWTIssuer(secret, auth.SessionTTL)
	require.NoError(t, err)

	e := echo.New()
	server.RegisterRoutes(e, cfg, users,
		handler.NewAuthHandler(
			auth.NewLoginUsecase(users, auth.NewBcryptPasswordVerifier(), issuer, clock),
			auth.NewLogoutUsecase(users, clock),
			staffUC,
			false,
		),
		handler.NewMenuHandler(usecase.NewMenuUsecase(menu)),
		handler.NewSettingsHandler(usecase.NewSettingsUsecase(tx, settingsStub{}, clock)),
		handler.NewDraftHandler(draftUC),
		handler.NewOrderHandler(orderUC, receiptUC, cfg),
		handler.NewTableHandler(tableUC),
		handler.NewSalesHandler(usecase.NewSalesUsecase(orders, clock, time.UTC), time.UTC),
		handler.NewAuditHandler(usecase.NewAuditUsecase(audit), time.UTC),
	)

	return testApp{e: e, users: users, orders: orders, drafts: drafts, menu: menu, audit: audit, issuer: issuer}
}

func (a testApp) token(t *testing.T, u model.User) string {
	t.Helper()
	tok, _, err := a.issuer.Issue(u, time.Now())
	require.NoError(t, err)
	return tok
}

func (a testApp) do(t *testing.T, method, path, body string, as *model.User) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if as != nil {
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: a.token(t, *as)})
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var r handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&r))
	return r
}

// =====================
// tests
// =====================

func TestHealthz(t *testing.T) {
	a := newTestApp(t)
	rec := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGating(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/draft", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/draft", "", &owner).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/sales/daily", "", &manager).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPost, "/menu", `{"name":"X"}`, &owner).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPut, "/settings", `{"total_tables":3}`, &owner).Code)

	// 設定の閲覧は両ロール
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/settings", "", &owner).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/settings", "", &manager).Code)
}

func TestDraft_AddItem(t *testing.T) {
	a := newTestApp(t)
	a.drafts.On("FindActiveByUserID", mock.Anything, manager.ID).Return(model.DraftOrder{}, repo.ErrNotFound)
	a.drafts.On("SaveActive", mock.Anything, manager.ID, mock.Anything).Return(nil)
	a.menu.On("FindByID", mock.Anything, "m1").
		Return(model.MenuItem{ID: "m1", Name: "Curry", Price: decimal.NewFromInt(12), IsAvailable: true}, nil)

	rec := a.do(t, http.MethodPost, "/draft/items", `{"menu_item_id":"m1"}`, &manager)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Lines       []model.OrderLine `json:"lines"`
		SubTotal    decimal.Decimal   `json:"sub_total"`
		TotalAmount decimal.Decimal   `json:"total_amount"`
		ItemCount   int64             `json:"item_count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Lines, 1)
	assert.True(t, body.SubTotal.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, int64(1), body.ItemCount)
}

func TestDraft_AddItem_MissingBody(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodPost, "/draft/items", `{}`, &manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeErr(t, rec).Kind)
}

func TestDraft_SubmitEmpty(t *testing.T) {
	a := newTestApp(t)
	a.drafts.On("FindActiveByUserID", mock.Anything, manager.ID).Return(model.DraftOrder{}, repo.ErrNotFound)

	rec := a.do(t, http.MethodPost, "/draft/submit", "", &manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeErr(t, rec)
	assert.Equal(t, "cart empty", body.Error)
	assert.Equal(t, "validation", body.Kind)
}

func TestDraft_SelectOccupiedTable(t *testing.T) {
	a := newTestApp(t)
	table := "3"
	a.drafts.On("FindActiveByUserID", mock.Anything, manager.ID).Return(model.DraftOrder{}, repo.ErrNotFound)
	a.orders.On("Query", mock.Anything, mock.Anything).Return([]model.Order{{
		ID:        "occ",
		OrderType: model.OrderTypeDineIn,
		TableNo:   &table,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
	}}, nil)

	rec := a.do(t, http.MethodPut, "/draft/table", `{"order_type":"dine-in","table_no":"3"}`, &manager)
	require.Equal(t, http.StatusOK, rec.Code)

	var body usecase.SelectTableOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Selection)
	assert.Equal(t, usecase.SelectionConflict, body.Selection.Status)
	assert.Equal(t, "occ", body.Selection.OccupyingOrderID)
	a.drafts.AssertNotCalled(t, "SaveActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrders_DeleteRequiresConfirm(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodDelete, "/orders/o1", "", &manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "confirmation required", decodeErr(t, rec).Error)
}

func TestOrders_ReceiptPreview(t *testing.T) {
	a := newTestApp(t)
	n := 5
	a.orders.On("FindByID", mock.Anything, "o1").Return(model.Order{
		ID:          "o1",
		OrderNumber: &n,
		OrderType:   model.OrderTypeTakeAway,
		Status:      model.OrderStatusPending,
		SubTotal:    decimal.NewFromInt(10),
		TotalAmount: decimal.NewFromInt(10),
		Items:       []model.OrderLine{{MenuItemID: "m1", Name: "Curry", Price: decimal.NewFromInt(10), Quantity: 1}},
	}, nil)

	rec := a.do(t, http.MethodGet, "/orders/o1/receipt?mode=customer", "", &manager)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain))
	assert.Contains(t, rec.Body.String(), "Order #: 5")
	a.orders.AssertNotCalled(t, "SetKitchenPrinted", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrders_ListInvalidDate(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodGet, "/orders?date=10-03-2026", "", &manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSales_RangeInvalid(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodGet, "/sales/range?start=2026-03-05&end=2026-03-01", "", &owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/sales/range?start=yesterday", "", &owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid start", decodeErr(t, rec).Error)
}

func TestTables_IsOccupied(t *testing.T) {
	a := newTestApp(t)
	a.orders.On("Query", mock.Anything, mock.Anything).Return([]model.Order{}, nil)

	rec := a.do(t, http.MethodGet, "/tables/4", "", &manager)
	require.Equal(t, http.StatusOK, rec.Code)

	var body handler.TableOccupiedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "4", body.TableNo)
	assert.False(t, body.Occupied)
}

func TestTables_LayoutVisibleToOwner(t *testing.T) {
	a := newTestApp(t)
	table := "3"
	a.orders.On("Query", mock.Anything, mock.Anything).Return([]model.Order{{
		ID:        "o1",
		OrderType: model.OrderTypeDineIn,
		TableNo:   &table,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
	}}, nil)

	rec := a.do(t, http.MethodGet, "/tables", "", &owner)
	require.Equal(t, http.StatusOK, rec.Code)

	var body usecase.TableLayout
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.DefaultTotalTables, body.TotalTables)
	assert.Equal(t, 1, body.OccupiedCount)

	// 操作系はマネージャーのみ
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/tables/3", "", &owner).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPost, "/tables/force-release", `{"order_id":"o1","confirm":true}`, &owner).Code)
}

func TestAuditLogs_ListsForceRelease(t *testing.T) {
	a := newTestApp(t)
	table := "3"
	a.orders.On("FindByID", mock.Anything, "o1").Return(model.Order{
		ID:        "o1",
		OrderType: model.OrderTypeDineIn,
		TableNo:   &table,
		Status:    model.OrderStatusPending,
	}, nil)
	a.orders.On("Delete", mock.Anything, "o1").Return(nil)

	rec := a.do(t, http.MethodPost, "/tables/force-release", `{"order_id":"o1","confirm":true}`, &manager)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/audit-logs?action=force_release_table&to=2026-03-10", "", &owner)
	require.Equal(t, http.StatusOK, rec.Code)

	var logs []model.AuditLog
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionForceReleaseTable, logs[0].Action)
	assert.Equal(t, "o1", logs[0].ResourceID)
	assert.Equal(t, manager.ID, logs[0].ActorUserID)

	assert.Equal(t, model.AuditActionForceReleaseTable, a.audit.filter.Action)
	assert.Equal(t, 50, a.audit.filter.Limit)
	require.NotNil(t, a.audit.filter.To)
	assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, 999_000_000, time.UTC), *a.audit.filter.To)
}

func TestAuditLogs_Validation(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/audit-logs", "", &manager).Code)

	rec := a.do(t, http.MethodGet, "/audit-logs?action=DROP_TABLE", "", &owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid action", decodeErr(t, rec).Error)

	rec = a.do(t, http.MethodGet, "/audit-logs?limit=500", "", &owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/audit-logs?from=2026-03-05&to=2026-03-01", "", &owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_LoginInvalid(t *testing.T) {
	a := newTestApp(t)
	a.users.On("FindByUsername", mock.Anything, "nobody").Return(nil, repo.ErrNotFound)

	rec := a.do(t, http.MethodPost, "/auth/login", `{"username":"nobody","password":"x"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decodeErr(t, rec).Error)
}

func TestAuth_LogoutClearsCookie(t *testing.T) {
	a := newTestApp(t)
	a.users.On("TouchLastLogout", mock.Anything, manager.ID, mock.Anything).Return(nil)

	rec := a.do(t, http.MethodPost, "/auth/logout", "", &manager)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.AuthCookieName, cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
}

func TestAuth_Me(t *testing.T) {
	a := newTestApp(t)

	rec := a.do(t, http.MethodGet, "/auth/me", "", &owner)
	require.Equal(t, http.StatusOK, rec.Code)

	var u model.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&u))
	assert.Equal(t, "olga", u.Username)
	assert.Equal(t, model.RoleOwner, u.Role)
}
