package repository

import (
	"context"
	"time"

	"restopos/internal/domain/model"

	"github.com/shopspring/decimal"
)

type OrderSort string

const (
	OrderSortNewest OrderSort = "newest"
	OrderSortOldest OrderSort = "oldest"
)

// 注文の絞り込み条件（空は条件なし）
type OrderFilter struct {
	Statuses  []model.OrderStatus
	OrderType model.OrderType
	TableNo   string
	From      *time.Time
	To        *time.Time
	Sort      OrderSort
	Limit     int
}

// 品目ごとの売上
type ItemSales struct {
	Name     string
	Quantity int64
	Revenue  decimal.Decimal
}

// 日ごとの売上（Dayはその日の0時）
type DayRevenue struct {
	Day     time.Time
	Revenue decimal.Decimal
	Orders  int64
}

type OrderRepository interface {
	//明細ごと取得
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	Query(ctx context.Context, f OrderFilter) ([]model.Order, error)

	Create(ctx context.Context, order model.Order) (model.Order, error)
	//明細・金額・種別・卓を丸ごと置き換える
	Update(ctx context.Context, order model.Order) error
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	SetKitchenPrinted(ctx context.Context, orderID string, printed bool) error
	Delete(ctx context.Context, orderID string) error

	//since以降に作成された注文の最大注文番号（無ければ0）
	MaxOrderNumberSince(ctx context.Context, since time.Time) (int, error)

	//期間内の指定ステータスの注文を品名で集計（全件、並びは未定義）
	AggregateItemSales(ctx context.Context, statuses []model.OrderStatus, from, to time.Time) ([]ItemSales, error)
	//期間内の指定ステータスの注文の売上合計と件数
	SumRevenue(ctx context.Context, statuses []model.OrderStatus, from, to time.Time) (decimal.Decimal, int64, error)
	//期間内の日ごとの売上。注文の無い日は含まない。locの暦日で区切る
	DailyRevenue(ctx context.Context, statuses []model.OrderStatus, from, to time.Time, loc *time.Location) ([]DayRevenue, error)
}
