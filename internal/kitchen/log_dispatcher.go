package kitchen

import (
	"context"
	"log/slog"
)

// 送らずにログへ出すだけ（開発用）
type LogDispatcher struct {
	log *slog.Logger
}

func NewLogDispatcher(log *slog.Logger) *LogDispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, t Ticket) error {
	d.log.InfoContext(ctx, "kitchen ticket",
		slog.String("action", "kitchen_ticket_dispatched"),
		slog.String("order_id", t.OrderID),
		slog.String("code", t.Code),
		slog.String("table_no", t.TableNo),
		slog.Int("lines", len(t.Lines)),
	)
	return nil
}
