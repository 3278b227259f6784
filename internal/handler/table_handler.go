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

type TableHandler struct {
	uc *usecase.TableUsecase
}

func NewTableHandler(uc *usecase.TableUsecase) *TableHandler {
	return &TableHandler{uc: uc}
}

type ForceReleaseRequest struct {
	OrderID string `json:"order_id"`
	Confirm bool   `json:"confirm"`
}

type TableOccupiedResponse struct {
	TableNo  string `json:"table_no"`
	Occupied bool   `json:"occupied"`
}

func (h *TableHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	// 卓の一覧はオーナーのダッシュボードでも使う
	g := authGroup(e, "/tables", cfg, userRepo)
	managerOnly := middleware.RoleGuard(model.RoleManager)

	g.GET("", h.layout)
	g.GET("/occupancy", h.occupancy, managerOnly)
	g.GET("/:tableNo", h.isOccupied, managerOnly)
	g.POST("/force-release", h.forceRelease, managerOnly)
}

func (h *TableHandler) layout(c echo.Context) error {
	out, err := h.uc.Layout(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TableHandler) occupancy(c echo.Context) error {
	m, err := h.uc.OccupancyMap(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *TableHandler) isOccupied(c echo.Context) error {
	tableNo := c.Param("tableNo")
	occupied, err := h.uc.IsOccupied(c.Request().Context(), tableNo)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, TableOccupiedResponse{TableNo: tableNo, Occupied: occupied})
}

// 卓の強制解放（注文を削除する）
func (h *TableHandler) forceRelease(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ForceReleaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if err := h.uc.ForceRelease(c.Request().Context(), userID, req.OrderID, req.Confirm); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "released"})
}
