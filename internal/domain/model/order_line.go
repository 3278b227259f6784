package model

import "github.com/shopspring/decimal"

// 注文明細。追加時点の名前と価格を保存（メニュー削除・価格変更の影響を受けない）
type OrderLine struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID    string          `gorm:"type:uuid;not null;index" json:"-"`
	MenuItemID string          `gorm:"type:uuid;not null" json:"menu_item_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
}

// 行の小計
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}
