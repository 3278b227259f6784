package handler

import (
	"net/http"
	"strings"
	"time"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/middleware"
	"restopos/internal/repository"
	"restopos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Kind: string(he.Kind)})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: string(usecase.KindStore)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Kind: string(usecase.KindValidation)})
}

// JWT→セッション→ロールの順で守るグループ
func authGroup(e *echo.Echo, prefix string, cfg config.Config, userRepo repository.UserRepository, roles ...model.Role) *echo.Group {
	g := e.Group(prefix)
	g.Use(middleware.AuthJWT(cfg.JWTSecret))
	g.Use(middleware.SessionGuard(userRepo))
	if len(roles) > 0 {
		g.Use(middleware.RoleGuard(roles...))
	}
	return g
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

// YYYY-MM-DD（空ならnil）
func parseDateParam(v string, loc *time.Location) (*time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, true
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func queryBool(c echo.Context, key string) bool {
	switch strings.ToLower(c.QueryParam(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
