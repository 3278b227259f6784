package receipt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"restopos/internal/domain/model"
)

type Mode string

const (
	ModeCustomer Mode = "customer"
	ModeKitchen  Mode = "kitchen"
	ModeCombined Mode = "combined"
)

// 空ならcombined
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeCombined, nil
	case ModeCustomer, ModeKitchen, ModeCombined:
		return m, nil
	default:
		return "", fmt.Errorf("invalid receipt mode %q", s)
	}
}

const (
	Width         = 40
	FormFeed      = "\f"
	Footer        = "Thank you for dining with us!"
	KitchenHeader = "KITCHEN ORDER"

	nameWidth = 18
)

type Document struct {
	Text string
	// キッチン伝票を含むか
	IncludesKitchen bool
}

// 印刷する文書を作る。combinedで厨房印刷済みならレシートだけ
func Render(o model.Order, restaurantName string, mode Mode, loc *time.Location) Document {
	switch mode {
	case ModeCustomer:
		return Document{Text: Customer(o, restaurantName, loc)}
	case ModeKitchen:
		return Document{Text: Kitchen(o, loc), IncludesKitchen: true}
	default:
		receipt := Customer(o, restaurantName, loc)
		if o.KitchenPrinted {
			return Document{Text: receipt}
		}
		return Document{Text: receipt + FormFeed + Kitchen(o, loc), IncludesKitchen: true}
	}
}

// 伝票番号（IDの末尾6文字を大文字に）
func Code(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

// お客様用レシート
func Customer(o model.Order, restaurantName string, loc *time.Location) string {
	var b strings.Builder

	center(&b, restaurantName)
	rule(&b, '=')
	pair(&b, "Invoice: #"+Code(o.ID), "Order #: "+orderNumber(o))
	b.WriteString("Date: " + localTime(o.CreatedAt, loc).Format("2006-01-02 15:04") + "\n")
	pair(&b, "Type: "+typeLabel(o.OrderType), tableLabel(o))
	if o.CustomerName != "" {
		b.WriteString("Customer: " + o.CustomerName + "\n")
	}
	rule(&b, '-')

	fmt.Fprintf(&b, "%-*s %3s %8s %8s\n", nameWidth, "Item", "Qty", "Price", "Total")
	for _, l := range o.Items {
		name := []rune(l.Name)
		if len(name) > nameWidth {
			//長い品名は1行使う
			b.WriteString(l.Name + "\n")
			name = nil
		}
		fmt.Fprintf(&b, "%-*s %3d %8s %8s\n", nameWidth, string(name), l.Quantity, l.Price.StringFixed(2), l.LineTotal().StringFixed(2))
	}
	rule(&b, '-')

	pair(&b, "Subtotal", o.SubTotal.StringFixed(2))
	if o.Discount.IsPositive() {
		label := "Discount"
		if o.DiscountPercent != nil && o.DiscountPercent.IsPositive() {
			label = fmt.Sprintf("Discount (%s%%)", o.DiscountPercent.StringFixed(2))
		}
		pair(&b, label, "-"+o.Discount.StringFixed(2))
	}
	pair(&b, "TOTAL", o.TotalAmount.StringFixed(2))
	rule(&b, '=')
	center(&b, Footer)

	return b.String()
}

// 厨房用伝票（品名と数量のみ）
func Kitchen(o model.Order, loc *time.Location) string {
	var b strings.Builder

	center(&b, KitchenHeader)
	rule(&b, '=')
	pair(&b, "Order #: "+orderNumber(o), "Code: "+Code(o.ID))
	b.WriteString("Time: " + localTime(o.CreatedAt, loc).Format("15:04") + "\n")
	pair(&b, "Type: "+typeLabel(o.OrderType), tableLabel(o))
	rule(&b, '-')
	for _, l := range o.Items {
		fmt.Fprintf(&b, "%3d x %s\n", l.Quantity, l.Name)
	}
	rule(&b, '=')

	return b.String()
}

func orderNumber(o model.Order) string {
	if o.OrderNumber == nil {
		return "-"
	}
	return strconv.Itoa(*o.OrderNumber)
}

func typeLabel(t model.OrderType) string {
	switch t {
	case model.OrderTypeDineIn:
		return "Dine-In"
	case model.OrderTypeTakeAway:
		return "Take-Away"
	default:
		return string(t)
	}
}

func tableLabel(o model.Order) string {
	if t := o.Table(); t != "" {
		return "Table: " + t
	}
	return ""
}

func localTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

func rule(b *strings.Builder, c rune) {
	b.WriteString(strings.Repeat(string(c), Width) + "\n")
}

func center(b *strings.Builder, s string) {
	pad := (Width - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + s + "\n")
}

// 左寄せと右寄せを1行に
func pair(b *strings.Builder, left, right string) {
	if right == "" {
		b.WriteString(left + "\n")
		return
	}
	gap := Width - len([]rune(left)) - len([]rune(right))
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
}
