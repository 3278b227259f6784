package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"
)

type OrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	clock  Clock
	loc    *time.Location
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, clock Clock, loc *time.Location) *OrderUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &OrderUsecase{tx: tx, orders: orders, clock: clock, loc: loc}
}

type SubmitInput struct {
	OrderType model.OrderType
	TableNo   string
	CreatedBy int64
}

// ドラフトを注文として保存する。
// 成功したらドラフトは空に戻す。失敗時はそのまま。
func (u *OrderUsecase) Submit(ctx context.Context, draft *model.DraftOrder, in SubmitInput) (model.Order, error) {
	if draft == nil || draft.IsEmpty() {
		return model.Order{}, validationError("cart empty")
	}
	if !in.OrderType.Valid() {
		return model.Order{}, validationError("invalid order type")
	}
	table := strings.TrimSpace(in.TableNo)
	if in.OrderType == model.OrderTypeDineIn && table == "" {
		return model.Order{}, validationError("table required")
	}

	order := model.Order{
		ID:       draft.OrderID,
		Items:    append([]model.OrderLine(nil), draft.Lines...),
		SubTotal: draft.SubTotal(),
		Discount: draft.Discount(),
		// nilなら額指定として読み戻す
		DiscountPercent: draft.StoredPercent(),
		TotalAmount:     draft.Total(),
		OrderType:       in.OrderType,
		CustomerName:    strings.TrimSpace(draft.CustomerName),
	}
	//テイクアウトは卓を持たない
	if in.OrderType == model.OrderTypeDineIn {
		order.TableNo = &table
	}

	var saved model.Order
	var err error
	if draft.IsEditing() {
		saved, err = u.replace(ctx, order)
	} else {
		order.CreatedBy = in.CreatedBy
		saved, err = u.create(ctx, order)
	}
	if err != nil {
		return model.Order{}, err
	}

	*draft = model.NewDraftOrder()
	return saved, nil
}

// 注文番号はその日の最大+1（同時作成で重複しうる）
func (u *OrderUsecase) create(ctx context.Context, order model.Order) (model.Order, error) {
	var created model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()
		start, _ := dayBounds(now, u.loc)

		max, err := r.Orders().MaxOrderNumberSince(ctx, start)
		if err != nil {
			return storeError("failed to submit order")
		}
		n := max + 1

		order.Status = model.OrderStatusPending
		order.OrderNumber = &n
		order.CreatedAt = now
		order.UpdatedAt = now

		created, err = r.Orders().Create(ctx, order)
		if err != nil {
			return storeError("failed to submit order")
		}
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return created, nil
}

// 明細・金額・種別・卓を丸ごと置き換える
func (u *OrderUsecase) replace(ctx context.Context, order model.Order) (model.Order, error) {
	var updated model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		current, err := r.Orders().FindByID(ctx, order.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError("order not found")
		}
		if err != nil {
			return storeError("failed to submit order")
		}
		if current.Status.Terminal() {
			return validationError("order is closed")
		}

		if err := r.Orders().Update(ctx, order); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundError("order not found")
			}
			return storeError("failed to submit order")
		}

		updated, err = r.Orders().FindByID(ctx, order.ID)
		if err != nil {
			return storeError("failed to submit order")
		}
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return updated, nil
}

// 既存注文を編集用のドラフトにする
func (u *OrderUsecase) LoadForEdit(ctx context.Context, orderID string) (model.DraftOrder, error) {
	o, err := u.Get(ctx, orderID)
	if err != nil {
		return model.DraftOrder{}, err
	}
	if o.Status.Terminal() {
		return model.DraftOrder{}, validationError("order is closed")
	}
	return model.DraftFromOrder(o), nil
}

func (u *OrderUsecase) Get(ctx context.Context, orderID string) (model.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return model.Order{}, validationError("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, notFoundError("order not found")
	}
	if err != nil {
		return model.Order{}, storeError("db error")
	}
	return o, nil
}

type ListOrdersInput struct {
	// 空=全件 / "active"=pending+preparing / 各ステータス
	Status    string
	OrderType string
	Date      *time.Time
	Limit     int
}

// 新しい順
func (u *OrderUsecase) List(ctx context.Context, in ListOrdersInput) ([]model.Order, error) {
	f := repo.OrderFilter{Sort: repo.OrderSortNewest}

	switch s := strings.TrimSpace(in.Status); s {
	case "":
	case "active":
		f.Statuses = model.ActiveStatuses
	default:
		st := model.OrderStatus(s)
		if !st.Valid() && st != model.OrderStatusPaid {
			return []model.Order{}, validationError("invalid status")
		}
		f.Statuses = []model.OrderStatus{st}
	}

	if t := strings.TrimSpace(in.OrderType); t != "" {
		ot := model.OrderType(t)
		if !ot.Valid() {
			return []model.Order{}, validationError("invalid order type")
		}
		f.OrderType = ot
	}

	if in.Date != nil {
		from, to := dayBounds(*in.Date, u.loc)
		f.From, f.To = &from, &to
	}

	if in.Limit < 0 || in.Limit > 500 {
		return []model.Order{}, validationError("invalid limit")
	}
	f.Limit = in.Limit

	orders, err := u.orders.Query(ctx, f)
	if err != nil {
		return []model.Order{}, storeError("db error")
	}
	return orders, nil
}

// ステータス更新（終端ステータスからは戻せない）
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorUserID int64, orderID string, status string) (model.Order, error) {
	newStatus := model.OrderStatus(strings.TrimSpace(status))
	if !newStatus.Valid() {
		return model.Order{}, validationError("invalid status")
	}

	var out model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError("order not found")
		}
		if err != nil {
			return storeError("db error")
		}

		// すでに同じなら何もしない
		if o.Status == newStatus {
			out = o
			return nil
		}
		// 終端ガード
		if o.Status.Terminal() {
			return validationError("order is closed")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundError("order not found")
			}
			return storeError("db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   toAuditJSON(map[string]string{"status": string(o.Status)}),
			AfterJSON:    toAuditJSON(map[string]string{"status": string(newStatus)}),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return storeError("db error")
		}

		o.Status = newStatus
		out = o
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// 注文を物理削除する（確認必須）
func (u *OrderUsecase) Delete(ctx context.Context, actorUserID int64, orderID string, confirmed bool) error {
	return u.deleteWithAudit(ctx, actorUserID, orderID, confirmed, model.AuditActionDeleteOrder)
}

func (u *OrderUsecase) deleteWithAudit(ctx context.Context, actorUserID int64, orderID string, confirmed bool, action model.AuditAction) error {
	if !confirmed {
		return validationError("confirmation required")
	}
	if strings.TrimSpace(orderID) == "" {
		return validationError("invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError("order not found")
		}
		if err != nil {
			return storeError("db error")
		}

		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundError("order not found")
			}
			return storeError("db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       action,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   toAuditJSON(o),
			AfterJSON:    "{}",
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return storeError("db error")
		}
		return nil
	})
}

// 監査ログ用のJSON（失敗しても空オブジェクト）
func toAuditJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
