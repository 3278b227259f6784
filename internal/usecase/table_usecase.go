package usecase

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"

	"github.com/shopspring/decimal"
)

// 卓を占有している注文の要約
type OrderSummary struct {
	ID           string            `json:"id"`
	OrderNumber  *int              `json:"order_number,omitempty"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	ItemCount    int               `json:"item_count"`
	Status       model.OrderStatus `json:"status"`
	CustomerName string            `json:"customer_name,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

type SelectionStatus string

const (
	SelectionAvailable SelectionStatus = "available"
	SelectionOwn       SelectionStatus = "own"
	SelectionConflict  SelectionStatus = "conflict"
)

// 埋まっている卓を選んだときの選択肢
const (
	ChoiceJoin   = "join"
	ChoiceCancel = "cancel"
)

// 卓選択の結果。conflictはエラーではない
type TableSelection struct {
	TableNo          string          `json:"table_no"`
	Status           SelectionStatus `json:"status"`
	OccupyingOrderID string          `json:"occupying_order_id,omitempty"`
	Occupying        *OrderSummary   `json:"occupying,omitempty"`
	Choices          []string        `json:"choices,omitempty"`
}

type TableStatus struct {
	TableNo  string        `json:"table_no"`
	Occupied bool          `json:"occupied"`
	Order    *OrderSummary `json:"order,omitempty"`
}

type TableLayout struct {
	TotalTables   int           `json:"total_tables"`
	OccupiedCount int           `json:"occupied_count"`
	Tables        []TableStatus `json:"tables"`
}

// 卓の状態は毎回注文から計算する（キャッシュしない）
type TableUsecase struct {
	orders   repo.OrderRepository
	settings repo.SettingsRepository
	orderUC  *OrderUsecase
}

func NewTableUsecase(orders repo.OrderRepository, settings repo.SettingsRepository, orderUC *OrderUsecase) *TableUsecase {
	return &TableUsecase{orders: orders, settings: settings, orderUC: orderUC}
}

// 卓番号→占有中の注文
func (u *TableUsecase) OccupancyMap(ctx context.Context) (map[string]OrderSummary, error) {
	orders, err := u.orders.Query(ctx, repo.OrderFilter{
		Statuses:  model.ActiveStatuses,
		OrderType: model.OrderTypeDineIn,
		Sort:      repo.OrderSortNewest,
	})
	if err != nil {
		return nil, storeError("db error")
	}
	return resolveOccupancy(orders), nil
}

// 新しい順に見て、卓ごとに最初の注文を採用
func resolveOccupancy(orders []model.Order) map[string]OrderSummary {
	sorted := append([]model.Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	m := make(map[string]OrderSummary)
	for _, o := range sorted {
		if o.OrderType != model.OrderTypeDineIn || !o.Status.Active() {
			continue
		}
		t := strings.TrimSpace(o.Table())
		if t == "" {
			continue
		}
		if _, ok := m[t]; ok {
			continue
		}
		m[t] = summarize(o)
	}
	return m
}

func summarize(o model.Order) OrderSummary {
	return OrderSummary{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		TotalAmount:  o.TotalAmount,
		ItemCount:    o.ItemCount(),
		Status:       o.Status,
		CustomerName: o.CustomerName,
		CreatedAt:    o.CreatedAt,
	}
}

func (u *TableUsecase) IsOccupied(ctx context.Context, tableNo string) (bool, error) {
	m, err := u.OccupancyMap(ctx)
	if err != nil {
		return false, err
	}
	_, ok := m[strings.TrimSpace(tableNo)]
	return ok, nil
}

// 卓を選ぶ。他の注文が使っていればconflictを返す（予約はしない）
func (u *TableUsecase) TryOccupy(ctx context.Context, tableNo string, candidateOrderID string) (TableSelection, error) {
	t := strings.TrimSpace(tableNo)
	if t == "" {
		return TableSelection{}, validationError("table required")
	}

	m, err := u.OccupancyMap(ctx)
	if err != nil {
		return TableSelection{}, err
	}

	occ, ok := m[t]
	switch {
	case !ok:
		return TableSelection{TableNo: t, Status: SelectionAvailable}, nil
	case candidateOrderID != "" && occ.ID == candidateOrderID:
		return TableSelection{TableNo: t, Status: SelectionOwn, OccupyingOrderID: occ.ID}, nil
	default:
		return TableSelection{
			TableNo:          t,
			Status:           SelectionConflict,
			OccupyingOrderID: occ.ID,
			Occupying:        &occ,
			Choices:          []string{ChoiceJoin, ChoiceCancel},
		}, nil
	}
}

// 卓を強制的に空ける（注文ごと削除、確認必須）
func (u *TableUsecase) ForceRelease(ctx context.Context, actorUserID int64, orderID string, confirmed bool) error {
	return u.orderUC.deleteWithAudit(ctx, actorUserID, orderID, confirmed, model.AuditActionForceReleaseTable)
}

// 1..totalTables の卓一覧（範囲外で埋まっている卓は後ろに付ける）
func (u *TableUsecase) Layout(ctx context.Context) (TableLayout, error) {
	s, err := u.settings.Get(ctx)
	if err != nil {
		return TableLayout{}, storeError("db error")
	}
	m, err := u.OccupancyMap(ctx)
	if err != nil {
		return TableLayout{}, err
	}

	out := TableLayout{
		TotalTables:   s.TotalTables,
		OccupiedCount: len(m),
		Tables:        make([]TableStatus, 0, s.TotalTables),
	}

	seen := make(map[string]bool, s.TotalTables)
	for i := 1; i <= s.TotalTables; i++ {
		no := strconv.Itoa(i)
		seen[no] = true
		out.Tables = append(out.Tables, tableStatus(no, m))
	}

	var extra []string
	for no := range m {
		if !seen[no] {
			extra = append(extra, no)
		}
	}
	sort.Strings(extra)
	for _, no := range extra {
		out.Tables = append(out.Tables, tableStatus(no, m))
	}

	return out, nil
}

func tableStatus(no string, m map[string]OrderSummary) TableStatus {
	ts := TableStatus{TableNo: no}
	if occ, ok := m[no]; ok {
		o := occ
		ts.Occupied = true
		ts.Order = &o
	}
	return ts
}
