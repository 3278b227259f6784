package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"restopos/internal/repository"
	auth "restopos/internal/usecase/auth_usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")
)

// ユーザー名は英数字と._-のみ
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,50}$`)

const minPasswordLength = 6

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) auth.RegisterValidator {
	return &authValidator{users: users}
}

// スタッフ登録の入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in auth.RegisterUserInput) error {
	// 必須チェック
	if strings.TrimSpace(in.Name) == "" || in.Username == "" || in.Password == "" {
		return ErrInvalidInput
	}

	if !usernamePattern.MatchString(in.Username) {
		return ErrInvalidInput
	}

	// パスワード最低文字数
	if len(in.Password) < minPasswordLength {
		return ErrInvalidInput
	}

	if !in.Role.Valid() {
		return ErrInvalidInput
	}

	// username重複チェック（DBが必要）
	u, err := v.users.FindByUsername(ctx, in.Username)
	if err == nil && u != nil {
		return auth.ErrUsernameAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}
