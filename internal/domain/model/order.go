package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"

	// 旧データ互換。売上集計ではcompletedと同じ扱い
	OrderStatusPaid OrderStatus = "paid"
)

// 卓を占有しているステータスか
func (s OrderStatus) Active() bool {
	return s == OrderStatusPending || s == OrderStatusPreparing
}

// 終端ステータスか
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled || s == OrderStatusPaid
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeAway OrderType = "take-away"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeAway
}

// 売上として数えるステータス
var SalesStatuses = []OrderStatus{OrderStatusCompleted, OrderStatusPaid}

// 卓を占有するステータス
var ActiveStatuses = []OrderStatus{OrderStatusPending, OrderStatusPreparing}

type Order struct {
	ID              string           `gorm:"type:uuid;primaryKey" json:"id"`
	Items           []OrderLine      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	SubTotal        decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"sub_total"`
	Discount        decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	DiscountPercent *decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount_percent,omitempty"`
	TotalAmount     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status          OrderStatus      `gorm:"type:varchar(20);not null;index:idx_orders_occupancy,priority:2" json:"status"`
	OrderType       OrderType        `gorm:"type:varchar(20);not null;index:idx_orders_occupancy,priority:1" json:"order_type"`
	TableNo         *string          `gorm:"type:varchar(20);index:idx_orders_occupancy,priority:3" json:"table_no,omitempty"`
	CustomerName    string           `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CreatedBy       int64            `gorm:"not null;default:0" json:"created_by"`
	OrderNumber     *int             `json:"order_number,omitempty"`
	KitchenPrinted  bool             `gorm:"not null;default:false" json:"kitchen_printed"`
	CreatedAt       time.Time        `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"not null" json:"updated_at"`
}

// 明細数（数量ではなく行数）
func (o Order) ItemCount() int {
	return len(o.Items)
}

// 卓番号（テイクアウトは空）
func (o Order) Table() string {
	if o.OrderType != OrderTypeDineIn || o.TableNo == nil {
		return ""
	}
	return *o.TableNo
}
