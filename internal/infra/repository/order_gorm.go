package repository

import (
	"context"
	"errors"
	"time"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細は追加順
func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("order_lines.id asc")
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return model.Order{}, repo.ErrNotFound
	}

	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", preloadLines).
		Where("id = ?", orderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) Query(ctx context.Context, f repo.OrderFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.OrderType != "" {
		q = q.Where("order_type = ?", f.OrderType)
	}
	if f.TableNo != "" {
		q = q.Where("table_no = ?", f.TableNo)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	switch f.Sort {
	case repo.OrderSortOldest:
		q = q.Order("created_at asc").Order("id asc")
	default:
		q = q.Order("created_at desc").Order("id desc")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var orders []model.Order
	if err := q.Preload("Items", preloadLines).Find(&orders).Error; err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

// 注文と明細をまとめて作成
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	for i := range order.Items {
		order.Items[i].ID = 0
		order.Items[i].OrderID = order.ID
	}

	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// 明細は全削除→再作成
func (r *OrderGormRepository) Update(ctx context.Context, order model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"sub_total":        order.SubTotal,
			"discount":         order.Discount,
			"discount_percent": order.DiscountPercent,
			"total_amount":     order.TotalAmount,
			"order_type":       order.OrderType,
			"table_no":         order.TableNo,
			"customer_name":    order.CustomerName,
			"updated_at":       time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderLine{}).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}

		lines := make([]model.OrderLine, len(order.Items))
		for i, l := range order.Items {
			l.ID = 0
			l.OrderID = order.ID
			lines[i] = l
		}
		return tx.Create(&lines).Error
	})
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) SetKitchenPrinted(ctx context.Context, orderID string, printed bool) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("kitchen_printed", printed)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 注文の物理削除（明細も消す）
func (r *OrderGormRepository) Delete(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderLine{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", orderID).Delete(&model.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (r *OrderGormRepository) MaxOrderNumberSince(ctx context.Context, since time.Time) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(MAX(order_number), 0)").
		Where("created_at >= ?", since).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *OrderGormRepository) AggregateItemSales(ctx context.Context, statuses []model.OrderStatus, from, to time.Time) ([]repo.ItemSales, error) {
	var rows []repo.ItemSales
	err := r.db.WithContext(ctx).
		Table("order_lines").
		Select("order_lines.name AS name, SUM(order_lines.quantity) AS quantity, SUM(order_lines.price * order_lines.quantity) AS revenue").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("orders.status IN ?", statuses).
		Where("orders.created_at >= ? AND orders.created_at <= ?", from, to).
		Group("order_lines.name").
		Scan(&rows).Error
	if err != nil {
		return []repo.ItemSales{}, err
	}
	return rows, nil
}

func (r *OrderGormRepository) SumRevenue(ctx context.Context, statuses []model.OrderStatus, from, to time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Revenue decimal.Decimal
		Orders  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders").
		Where("status IN ?", statuses).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Revenue, row.Orders, nil
}

// 日付はlocの暦日（YYYY-MM-DD）で区切る
func (r *OrderGormRepository) DailyRevenue(ctx context.Context, statuses []model.OrderStatus, from, to time.Time, loc *time.Location) ([]repo.DayRevenue, error) {
	var rows []struct {
		Day     string
		Revenue decimal.Decimal
		Orders  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("to_char(created_at AT TIME ZONE ?, 'YYYY-MM-DD') AS day, SUM(total_amount) AS revenue, COUNT(*) AS orders", zoneName(loc)).
		Where("status IN ?", statuses).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Group("day").
		Order("day asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.DayRevenue{}, err
	}

	out := make([]repo.DayRevenue, 0, len(rows))
	for _, row := range rows {
		day, err := time.ParseInLocation(time.DateOnly, row.Day, loc)
		if err != nil {
			return []repo.DayRevenue{}, err
		}
		out = append(out, repo.DayRevenue{Day: day, Revenue: row.Revenue, Orders: row.Orders})
	}
	return out, nil
}

// PostgreSQLが解釈できるタイムゾーン名
func zoneName(loc *time.Location) string {
	if loc == nil || loc.String() == "Local" {
		return "UTC"
	}
	return loc.String()
}
