package repository

import (
	"context"
	"time"

	"restopos/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。ユーザー名重複はErrDuplicate
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//ユーザー名から1件取得する。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	//ロールで一覧
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Delete(ctx context.Context, userID int64) error

	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
	//これより前に発行されたトークンは無効
	TouchLastLogout(ctx context.Context, userID int64, at time.Time) error
}
