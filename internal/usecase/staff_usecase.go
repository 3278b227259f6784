package usecase

import (
	"context"
	"errors"
	"net/http"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"
)

// オーナー向けのスタッフ管理（作成はauth.RegisterUserUsecase）
type StaffUsecase struct {
	users repo.UserRepository
}

func NewStaffUsecase(users repo.UserRepository) *StaffUsecase {
	return &StaffUsecase{users: users}
}

// マネージャー一覧
func (u *StaffUsecase) ListManagers(ctx context.Context) ([]model.User, error) {
	users, err := u.users.ListByRole(ctx, model.RoleManager)
	if err != nil {
		return []model.User{}, storeError("db error")
	}
	return users, nil
}

// 自分自身は削除できない
func (u *StaffUsecase) Delete(ctx context.Context, actorUserID int64, targetUserID int64) error {
	if targetUserID <= 0 {
		return validationError("invalid id")
	}
	if actorUserID == targetUserID {
		return NewHTTPError(http.StatusForbidden, "cannot delete yourself")
	}

	if err := u.users.Delete(ctx, targetUserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError("user not found")
		}
		return storeError("db error")
	}
	return nil
}

// セッションのユーザー
func (u *StaffUsecase) Me(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return model.User{}, storeError("db error")
	}
	return *user, nil
}
