package usecase

import (
	"context"
	"errors"
	"time"

	"restopos/internal/domain/model"
	"restopos/internal/kitchen"
	"restopos/internal/receipt"
	repo "restopos/internal/repository"
)

type PrintOutput struct {
	OrderID string       `json:"order_id"`
	Mode    receipt.Mode `json:"mode"`
	Text    string       `json:"text"`
	// 今回厨房へ送ったか
	Dispatched bool `json:"dispatched"`
}

type ReceiptUsecase struct {
	orders     repo.OrderRepository
	settings   repo.SettingsRepository
	dispatcher kitchen.Dispatcher
	loc        *time.Location
}

func NewReceiptUsecase(orders repo.OrderRepository, settings repo.SettingsRepository, dispatcher kitchen.Dispatcher, loc *time.Location) *ReceiptUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &ReceiptUsecase{orders: orders, settings: settings, dispatcher: dispatcher, loc: loc}
}

func (u *ReceiptUsecase) render(ctx context.Context, orderID string, modeRaw string) (model.Order, receipt.Mode, receipt.Document, error) {
	mode, err := receipt.ParseMode(modeRaw)
	if err != nil {
		return model.Order{}, "", receipt.Document{}, validationError("invalid mode")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, "", receipt.Document{}, notFoundError("order not found")
	}
	if err != nil {
		return model.Order{}, "", receipt.Document{}, storeError("db error")
	}

	s, err := u.settings.Get(ctx)
	if err != nil {
		return model.Order{}, "", receipt.Document{}, storeError("db error")
	}

	return o, mode, receipt.Render(o, s.RestaurantName, mode, u.loc), nil
}

// 印刷内容だけ返す（厨房へは送らない）
func (u *ReceiptUsecase) Preview(ctx context.Context, orderID string, mode string) (PrintOutput, error) {
	o, m, doc, err := u.render(ctx, orderID, mode)
	if err != nil {
		return PrintOutput{}, err
	}
	return PrintOutput{OrderID: o.ID, Mode: m, Text: doc.Text}, nil
}

// 印刷。厨房伝票を含むときは厨房へ送り、kitchen_printedを立てる。
// 印刷済みの注文をkitchenで印刷した場合は再送しない
func (u *ReceiptUsecase) Print(ctx context.Context, orderID string, mode string) (PrintOutput, error) {
	o, m, doc, err := u.render(ctx, orderID, mode)
	if err != nil {
		return PrintOutput{}, err
	}

	out := PrintOutput{OrderID: o.ID, Mode: m, Text: doc.Text}
	if !doc.IncludesKitchen || o.KitchenPrinted {
		return out, nil
	}

	ticket := kitchen.NewTicket(o, receipt.Kitchen(o, u.loc))
	if err := u.dispatcher.Dispatch(ctx, ticket); err != nil {
		return PrintOutput{}, storeError("failed to dispatch kitchen ticket")
	}
	if err := u.orders.SetKitchenPrinted(ctx, o.ID, true); err != nil {
		return PrintOutput{}, storeError("db error")
	}

	out.Dispatched = true
	return out, nil
}
