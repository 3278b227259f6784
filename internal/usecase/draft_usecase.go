package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"

	"github.com/shopspring/decimal"
)

// 作成中注文と計算済みの金額
type DraftOutput struct {
	model.DraftOrder
	SubTotal    decimal.Decimal `json:"sub_total"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int64           `json:"item_count"`
}

func toDraftOutput(d model.DraftOrder) DraftOutput {
	var qty int64
	for _, l := range d.Lines {
		qty += l.Quantity
	}
	return DraftOutput{
		DraftOrder:  d,
		SubTotal:    d.SubTotal(),
		Discount:    d.Discount(),
		TotalAmount: d.Total(),
		ItemCount:   qty,
	}
}

// ユーザーごとのドラフト（カート）を操作する
type DraftUsecase struct {
	drafts  repo.DraftRepository
	menu    repo.MenuItemRepository
	orderUC *OrderUsecase
	tableUC *TableUsecase
	log     *slog.Logger
}

// DI
func NewDraftUsecase(drafts repo.DraftRepository, menu repo.MenuItemRepository, orderUC *OrderUsecase, tableUC *TableUsecase, log *slog.Logger) *DraftUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &DraftUsecase{drafts: drafts, menu: menu, orderUC: orderUC, tableUC: tableUC, log: log}
}

// 無ければ空のドラフト
func (u *DraftUsecase) load(ctx context.Context, userID int64) (model.DraftOrder, error) {
	if userID <= 0 {
		return model.DraftOrder{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	d, err := u.drafts.FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.NewDraftOrder(), nil
	}
	if err != nil {
		return model.DraftOrder{}, storeError("db error")
	}
	return d, nil
}

func (u *DraftUsecase) save(ctx context.Context, userID int64, d model.DraftOrder) (DraftOutput, error) {
	if err := u.drafts.SaveActive(ctx, userID, d); err != nil {
		return DraftOutput{}, storeError("db error")
	}
	return toDraftOutput(d), nil
}

func (u *DraftUsecase) Get(ctx context.Context, userID int64) (DraftOutput, error) {
	d, err := u.load(ctx, userID)
	if err != nil {
		return DraftOutput{}, err
	}
	return toDraftOutput(d), nil
}

// メニューから1つ追加
func (u *DraftUsecase) AddItem(ctx context.Context, userID int64, menuItemID string) (DraftOutput, error) {
	d, err := u.load(ctx, userID)
	if err != nil {
		return DraftOutput{}, err
	}

	item, err := u.menu.FindByID(ctx, strings.TrimSpace(menuItemID))
	if errors.Is(err, repo.ErrNotFound) {
		//メニューから消えていてもカートにある行は増やせる
		if d.IncrementLine(menuItemID) {
			return u.save(ctx, userID, d)
		}
		return DraftOutput{}, notFoundError("menu item not found")
	}
	if err != nil {
		return DraftOutput{}, storeError("db error")
	}
	if !item.IsAvailable {
		return DraftOutput{}, validationError("menu item unavailable")
	}

	d.AddItem(item)
	return u.save(ctx, userID, d)
}

// removeAllなら行ごと削除
func (u *DraftUsecase) RemoveItem(ctx context.Context, userID int64, menuItemID string, removeAll bool) (DraftOutput, error) {
	d, err := u.load(ctx, userID)
	if err != nil {
		return DraftOutput{}, err
	}
	if !d.RemoveItem(menuItemID, removeAll) {
		return DraftOutput{}, notFoundError("item not in cart")
	}
	return u.save(ctx, userID, d)
}

// どちらも空なら値引きを消す
type DiscountInput struct {
	Percent *decimal.Decimal
	Amount  *decimal.Decimal
}

func (u *DraftUsecase) SetDiscount(ctx context.Context, userID int64, in DiscountInput) (DraftOutput, error) {
	if in.Percent != nil && in.Amount != nil {
		return DraftOutput{}, validationError("set either percent or amount")
	}

	d, err := u.load(ctx, userID)
	if err != nil {
		return DraftOutput{}, err
	}

	switch {
	case in.Percent != nil:
		err = d.SetDiscountByPercent(*in.Percent)
	case in.Amount != nil:
		err = d.SetDiscountByAmount(*in.Amount)
	default:
		d.ClearDiscount()
	}
	if errors.Is(err, model.ErrNegativeDiscount) {
		return DraftOutput{}, validationError(err.Error())
	}
	if err != nil {
		return DraftOutput{}, err
	}

	return u.save(ctx, userID, d)
}

type SelectTableInput struct {
	OrderType model.OrderType
	TableNo   string
	// 埋まっていた場合にその注文の編集へ切り替える
	Join bool
}

type SelectTableOutput struct {
	Draft     DraftOutput     `json:"draft"`
	Selection *TableSelection `json:"selection,omitempty"`
}

// 注文種別と卓を設定する。埋まっている卓は選べない（joinで既存注文を開く）
func (u *DraftUsecase) SelectTable(ctx context.Context, userID int64, in SelectTableInput) (SelectTableOutput, error) {
	if !in.OrderType.Valid() {
		return SelectTableOutput{}, validationError("invalid order type")
	}

	d, err := u.load(ctx, userID)
	if err != nil {
		return SelectTableOutput{}, err
	}

	d.OrderType = in.OrderType
	table := strings.TrimSpace(in.TableNo)
	if in.OrderType == model.OrderTypeTakeAway || table == "" {
		d.TableNo = ""
		out, err := u.save(ctx, userID, d)
		return SelectTableOutput{Draft: out}, err
	}

	sel, err := u.tableUC.TryOccupy(ctx, table, d.OrderID)
	if err != nil {
		return SelectTableOutput{}, err
	}

	if sel.Status == SelectionConflict {
		if !in.Join {
			//ドラフトは変えない
			return SelectTableOutput{Draft: toDraftOutput(d), Selection: &sel}, nil
		}
		joined, err := u.orderUC.LoadForEdit(ctx, sel.OccupyingOrderID)
		if err != nil {
			return SelectTableOutput{}, err
		}
		out, err := u.save(ctx, userID, joined)
		return SelectTableOutput{Draft: out, Selection: &sel}, err
	}

	d.TableNo = table
	out, err := u.save(ctx, userID, d)
	return SelectTableOutput{Draft: out, Selection: &sel}, err
}

func (u *DraftUsecase) SetCustomerName(ctx context.Context, userID int64, name string) (DraftOutput, error) {
	name = strings.TrimSpace(name)
	if len(name) > 255 {
		return DraftOutput{}, validationError("customer name too long")
	}
	d, err := u.load(ctx, userID)
	if err != nil {
		return DraftOutput{}, err
	}
	d.CustomerName = name
	return u.save(ctx, userID, d)
}

// 既存注文を開いてドラフトを置き換える
func (u *DraftUsecase) LoadForEdit(ctx context.Context, userID int64, orderID string) (DraftOutput, error) {
	if userID <= 0 {
		return DraftOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	d, err := u.orderUC.LoadForEdit(ctx, orderID)
	if err != nil {
		return DraftOutput{}, err
	}
	return u.save(ctx, userID, d)
}

// 注文確定。成功したらドラフトを閉じる
func (u *DraftUsecase) Submit(ctx context.Context, userID int64) (model.Order, error) {
	d, err := u.load(ctx, userID)
	if err != nil {
		return model.Order{}, err
	}

	order, err := u.orderUC.Submit(ctx, &d, SubmitInput{
		OrderType: d.OrderType,
		TableNo:   d.TableNo,
		CreatedBy: userID,
	})
	if err != nil {
		return model.Order{}, err
	}

	//注文は保存済みなので後片付けの失敗は返さない。
	//閉じられなければ空のドラフトで上書きして二重送信を防ぐ
	if err := u.drafts.Close(ctx, userID, model.DraftStatusSubmitted); err != nil {
		u.log.WarnContext(ctx, "failed to close draft",
			slog.String("action", "draft_close_failed"),
			slog.Int64("user_id", userID),
			slog.String("order_id", order.ID),
			slog.Any("error", err),
		)
		if err := u.drafts.SaveActive(ctx, userID, d); err != nil {
			u.log.ErrorContext(ctx, "failed to reset draft",
				slog.String("action", "draft_reset_failed"),
				slog.Int64("user_id", userID),
				slog.String("order_id", order.ID),
				slog.Any("error", err),
			)
		}
	}
	return order, nil
}

func (u *DraftUsecase) Discard(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.drafts.Close(ctx, userID, model.DraftStatusDiscarded); err != nil {
		return storeError("db error")
	}
	return nil
}
