package usecase

import (
	"context"
	"sort"
	"time"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	topItemsLimit   = 5
	defaultRangeDay = 7
	maxRangeDays    = 366
)

type ItemSales struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DailySales struct {
	Date              string          `json:"date"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	TotalOrders       int64           `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TopItems          []ItemSales     `json:"top_items"`
}

type DaySales struct {
	Date  string          `json:"date"`
	Name  string          `json:"name"`
	Sales decimal.Decimal `json:"sales"`
}

// 売上集計（completed/paidのみ、明細のスナップショット価格で計算）
type SalesUsecase struct {
	orders repo.OrderRepository
	clock  Clock
	loc    *time.Location
}

func NewSalesUsecase(orders repo.OrderRepository, clock Clock, loc *time.Location) *SalesUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &SalesUsecase{orders: orders, clock: clock, loc: loc}
}

// dateの0時〜23:59:59.999の売上
func (u *SalesUsecase) DailyTotals(ctx context.Context, date time.Time) (DailySales, error) {
	from, to := dayBounds(date, u.loc)

	groups, err := u.orders.AggregateItemSales(ctx, model.SalesStatuses, from, to)
	if err != nil {
		return DailySales{}, storeError("db error")
	}
	net, count, err := u.orders.SumRevenue(ctx, model.SalesStatuses, from, to)
	if err != nil {
		return DailySales{}, storeError("db error")
	}

	out := DailySales{
		Date:        from.Format(time.DateOnly),
		NetRevenue:  net,
		TotalOrders: count,
	}

	items := make([]ItemSales, 0, len(groups))
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Revenue)
		items = append(items, ItemSales{Name: g.Name, Quantity: g.Quantity, Revenue: g.Revenue})
	}
	out.TotalRevenue = total

	//数量の多い順、同数なら名前順
	sort.Slice(items, func(i, j int) bool {
		if items[i].Quantity != items[j].Quantity {
			return items[i].Quantity > items[j].Quantity
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > topItemsLimit {
		items = items[:topItemsLimit]
	}
	out.TopItems = items

	if count > 0 {
		out.AverageOrderValue = total.Div(decimal.NewFromInt(count)).Round(2)
	}
	return out, nil
}

// start〜endの日別売上。nilなら今日までの7日間。注文の無い日は0
func (u *SalesUsecase) RangeTotals(ctx context.Context, start, end *time.Time) ([]DaySales, error) {
	today, _ := dayBounds(u.clock.Now(), u.loc)

	last := today
	if end != nil {
		last, _ = dayBounds(*end, u.loc)
	}
	first := last.AddDate(0, 0, -(defaultRangeDay - 1))
	if start != nil {
		first, _ = dayBounds(*start, u.loc)
	}

	if last.Before(first) {
		return []DaySales{}, validationError("end must not be before start")
	}
	if first.AddDate(0, 0, maxRangeDays).Before(last.AddDate(0, 0, 1)) {
		return []DaySales{}, validationError("range too long")
	}

	_, to := dayBounds(last, u.loc)
	rows, err := u.orders.DailyRevenue(ctx, model.SalesStatuses, first, to, u.loc)
	if err != nil {
		return []DaySales{}, storeError("db error")
	}

	byDay := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		key := r.Day.In(u.loc).Format(time.DateOnly)
		byDay[key] = byDay[key].Add(r.Revenue)
	}

	out := []DaySales{}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		name := d.Weekday().String()[:3]
		if sameDay(d, today) {
			name = "Today"
		}
		out = append(out, DaySales{Date: key, Name: name, Sales: byDay[key]})
	}
	return out, nil
}
