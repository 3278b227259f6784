package kitchen

import (
	"context"
	"time"

	"restopos/internal/domain/model"
	"restopos/internal/receipt"
)

type TicketLine struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// 厨房に送る伝票
type Ticket struct {
	OrderID     string          `json:"order_id"`
	OrderNumber *int            `json:"order_number,omitempty"`
	Code        string          `json:"code"`
	OrderType   model.OrderType `json:"order_type"`
	TableNo     string          `json:"table_no,omitempty"`
	Lines       []TicketLine    `json:"lines"`
	Text        string          `json:"text"`
	CreatedAt   time.Time       `json:"created_at"`
}

// 印刷済みの伝票テキストから作る
func NewTicket(o model.Order, text string) Ticket {
	lines := make([]TicketLine, 0, len(o.Items))
	for _, l := range o.Items {
		lines = append(lines, TicketLine{Name: l.Name, Quantity: l.Quantity})
	}
	return Ticket{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Code:        receipt.Code(o.ID),
		OrderType:   o.OrderType,
		TableNo:     o.Table(),
		Lines:       lines,
		Text:        text,
		CreatedAt:   o.CreatedAt,
	}
}

// 伝票の送り先（RabbitMQ / Telegram / ログ）
type Dispatcher interface {
	Dispatch(ctx context.Context, t Ticket) error
}
