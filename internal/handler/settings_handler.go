package handler

import (
	"net/http"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/middleware"
	"restopos/internal/repository"
	"restopos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SettingsHandler struct {
	uc *usecase.SettingsUsecase
}

func NewSettingsHandler(uc *usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

type SettingsUpdateRequest struct {
	TotalTables    *int    `json:"total_tables"`
	RestaurantName *string `json:"restaurant_name"`
}

func (h *SettingsHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/settings", cfg, userRepo)

	g.GET("", h.get)
	g.PUT("", h.update, middleware.RoleGuard(model.RoleManager))
}

func (h *SettingsHandler) get(c echo.Context) error {
	s, err := h.uc.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *SettingsHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req SettingsUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	s, err := h.uc.Update(c.Request().Context(), userID, usecase.UpdateSettingsInput{
		TotalTables:    req.TotalTables,
		RestaurantName: req.RestaurantName,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
