package auth

import (
	"context"
	"errors"

	"restopos/internal/repository"
)

var ErrUnauthorized = errors.New("unauthorized")

// これより前に発行されたトークンを無効にする
type LogoutUsecase struct {
	userRepo repository.UserRepository
	clock    Clock
}

func NewLogoutUsecase(userRepo repository.UserRepository, clock Clock) *LogoutUsecase {
	return &LogoutUsecase{userRepo: userRepo, clock: clock}
}

func (u *LogoutUsecase) Execute(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if err := u.userRepo.TouchLastLogout(ctx, userID, u.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	return nil
}
