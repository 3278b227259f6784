package handler

import (
	"net/http"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/middleware"
	"restopos/internal/repository"
	"restopos/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type MenuHandler struct {
	uc *usecase.MenuUsecase
}

// DI
func NewMenuHandler(uc *usecase.MenuUsecase) *MenuHandler {
	return &MenuHandler{uc: uc}
}

type MenuItemRequest struct {
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	Image       string           `json:"image"`
	IsAvailable *bool            `json:"is_available"`
}

func (r MenuItemRequest) toInput() usecase.MenuItemInput {
	return usecase.MenuItemInput{
		Name:        r.Name,
		Price:       r.Price,
		Category:    r.Category,
		Image:       r.Image,
		IsAvailable: r.IsAvailable,
	}
}

func (h *MenuHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	//閲覧は両ロール、変更はマネージャーのみ
	g := authGroup(e, "/menu", cfg, userRepo)
	managerOnly := middleware.RoleGuard(model.RoleManager)

	g.GET("", h.list)
	g.POST("", h.create, managerOnly)
	g.PUT("/:id", h.update, managerOnly)
	g.DELETE("/:id", h.delete, managerOnly)
}

func (h *MenuHandler) list(c echo.Context) error {
	items, err := h.uc.List(c.Request().Context(), usecase.ListMenuInput{
		Category:      c.QueryParam("category"),
		AvailableOnly: queryBool(c, "available"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MenuHandler) create(c echo.Context) error {
	var req MenuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	item, err := h.uc.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *MenuHandler) update(c echo.Context) error {
	var req MenuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	item, err := h.uc.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) delete(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
