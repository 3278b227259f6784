package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNegativeDiscount = errors.New("discount must be >= 0")

type DiscountMode string

const (
	DiscountModeNone    DiscountMode = ""
	DiscountModePercent DiscountMode = "percent"
	DiscountModeAmount  DiscountMode = "amount"
)

var hundred = decimal.NewFromInt(100)

// 作成中の注文（カート）。編集セッションごとに作り、submitに明示的に渡す。
// JSONにしてdraftsテーブルへ保存できる。
type DraftOrder struct {
	// 既存注文の編集時のみ入る
	OrderID string `json:"order_id,omitempty"`

	Lines           []OrderLine      `json:"lines"`
	DiscountMode    DiscountMode     `json:"discount_mode,omitempty"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`

	OrderType    OrderType `json:"order_type"`
	TableNo      string    `json:"table_no,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
}

func NewDraftOrder() DraftOrder {
	return DraftOrder{
		Lines:     []OrderLine{},
		OrderType: OrderTypeTakeAway,
	}
}

// 既存注文から編集用のドラフトを作る
func DraftFromOrder(o Order) DraftOrder {
	d := NewDraftOrder()
	d.OrderID = o.ID
	d.OrderType = o.OrderType
	d.TableNo = o.Table()
	d.CustomerName = o.CustomerName

	for _, it := range o.Items {
		d.Lines = append(d.Lines, OrderLine{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
		})
	}

	switch {
	case o.DiscountPercent != nil:
		pct := *o.DiscountPercent
		d.DiscountMode = DiscountModePercent
		d.DiscountPercent = &pct
		d.DiscountAmount = o.Discount
	case o.Discount.IsPositive():
		d.DiscountMode = DiscountModeAmount
		d.DiscountAmount = o.Discount
	}
	d.recalcDiscount()
	return d
}

func (d *DraftOrder) IsEmpty() bool {
	return len(d.Lines) == 0
}

func (d *DraftOrder) IsEditing() bool {
	return d.OrderID != ""
}

// 同じメニューは数量+1、無ければ数量1で追加（名前と価格はこの時点のもの）
func (d *DraftOrder) AddItem(item MenuItem) {
	for i := range d.Lines {
		if d.Lines[i].MenuItemID == item.ID {
			d.Lines[i].Quantity++
			d.recalcDiscount()
			return
		}
	}

	d.Lines = append(d.Lines, OrderLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   1,
	})
	d.recalcDiscount()
}

// 既にある行の数量を+1（カタログから消えたメニューでも可）
func (d *DraftOrder) IncrementLine(menuItemID string) bool {
	for i := range d.Lines {
		if d.Lines[i].MenuItemID == menuItemID {
			d.Lines[i].Quantity++
			d.recalcDiscount()
			return true
		}
	}
	return false
}

// removeAllなら行ごと削除、そうでなければ数量-1（0になったら削除）
func (d *DraftOrder) RemoveItem(menuItemID string, removeAll bool) bool {
	found := false
	kept := d.Lines[:0]
	for _, l := range d.Lines {
		if l.MenuItemID != menuItemID {
			kept = append(kept, l)
			continue
		}
		found = true
		if removeAll {
			continue
		}
		l.Quantity--
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	d.Lines = kept
	if found {
		d.recalcDiscount()
	}
	return found
}

func (d *DraftOrder) SubTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range d.Lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// 値引き額（小計を超えない）
func (d *DraftOrder) Discount() decimal.Decimal {
	sub := d.SubTotal()
	if d.DiscountAmount.GreaterThan(sub) {
		return sub
	}
	if d.DiscountAmount.IsNegative() {
		return decimal.Zero
	}
	return d.DiscountAmount
}

// max(0, 小計 - 値引き)
func (d *DraftOrder) Total() decimal.Decimal {
	return TotalAmount(d.SubTotal(), d.Discount())
}

// 割引率から値引き額を計算する
func (d *DraftOrder) SetDiscountByPercent(pct decimal.Decimal) error {
	if pct.IsNegative() {
		return ErrNegativeDiscount
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	pct = pct.Round(2)
	d.DiscountMode = DiscountModePercent
	d.DiscountPercent = &pct
	d.recalcDiscount()
	return nil
}

// 値引き額から割引率を逆算する
func (d *DraftOrder) SetDiscountByAmount(amt decimal.Decimal) error {
	if amt.IsNegative() {
		return ErrNegativeDiscount
	}
	d.DiscountMode = DiscountModeAmount
	d.DiscountAmount = amt.Round(2)
	d.recalcDiscount()
	return nil
}

// 注文に保存する割引率。額指定のときは丸めた率を保存しない
func (d *DraftOrder) StoredPercent() *decimal.Decimal {
	if d.DiscountMode != DiscountModePercent || d.DiscountPercent == nil || !d.Discount().IsPositive() {
		return nil
	}
	pct := *d.DiscountPercent
	return &pct
}

// 片方を消したらもう片方も消す
func (d *DraftOrder) ClearDiscount() {
	d.DiscountMode = DiscountModeNone
	d.DiscountAmount = decimal.Zero
	d.DiscountPercent = nil
}

// 明細が変わったら値引きを小計に合わせ直す
func (d *DraftOrder) recalcDiscount() {
	sub := d.SubTotal()

	switch d.DiscountMode {
	case DiscountModePercent:
		if d.DiscountPercent == nil {
			d.ClearDiscount()
			return
		}
		d.DiscountAmount = sub.Mul(*d.DiscountPercent).Div(hundred).Round(2)
	case DiscountModeAmount:
		if d.DiscountAmount.GreaterThan(sub) {
			d.DiscountAmount = sub
		}
		pct := decimal.Zero
		if sub.IsPositive() {
			pct = d.DiscountAmount.Div(sub).Mul(hundred).Round(2)
		}
		d.DiscountPercent = &pct
	default:
		d.DiscountAmount = decimal.Zero
		d.DiscountPercent = nil
	}
}

// 注文の合計金額（マイナスにはならない）
func TotalAmount(subTotal, discount decimal.Decimal) decimal.Decimal {
	total := subTotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
