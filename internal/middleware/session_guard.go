package middleware

import (
	"net/http"
	"time"

	"restopos/internal/repository"

	"github.com/labstack/echo/v4"
)

// ログアウト後に使われたトークン、削除・停止されたユーザーを弾く。
func SessionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			issuedAt, ok := c.Get(CtxIssuedAtKey).(time.Time)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil || user == nil || !user.IsActive {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//ログアウトより前に発行されたトークンは無効（iatは秒単位）
			if user.LastLogoutAt != nil && issuedAt.Unix() < user.LastLogoutAt.Unix() {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//ロール変更はDBを正とする
			c.Set(CtxUserRoleKey, string(user.Role))

			return next(c)
		}
	}
}
