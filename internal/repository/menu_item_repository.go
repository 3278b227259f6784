package repository

import (
	"context"

	"restopos/internal/domain/model"
)

// メニュー一覧の条件
type MenuListQuery struct {
	Category      string
	AvailableOnly bool
}

// メニューの保存・取得を約束
type MenuItemRepository interface {
	//カテゴリ→名前の順
	List(ctx context.Context, q MenuListQuery) ([]model.MenuItem, error)
	FindByID(ctx context.Context, id string) (model.MenuItem, error)
	Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error)
	Update(ctx context.Context, item model.MenuItem) error
	//過去の注文明細には影響しない
	Delete(ctx context.Context, id string) error
}
