package handler

import (
	"net/http"
	"strconv"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/repository"
	"restopos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc        *usecase.OrderUsecase
	receiptUC *usecase.ReceiptUsecase
	cfg       config.Config
}

func NewOrderHandler(uc *usecase.OrderUsecase, receiptUC *usecase.ReceiptUsecase, cfg config.Config) *OrderHandler {
	return &OrderHandler{uc: uc, receiptUC: receiptUC, cfg: cfg}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/orders", cfg, userRepo, model.RoleManager)

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PUT("/:id/status", h.updateStatus)
	g.DELETE("/:id", h.delete)

	//印刷
	g.GET("/:id/receipt", h.receipt)
	g.POST("/:id/print", h.print)
}

func (h *OrderHandler) list(c echo.Context) error {
	date, ok := parseDateParam(c.QueryParam("date"), h.cfg.Location)
	if !ok {
		return badRequest(c, "invalid date")
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = l
	}

	orders, err := h.uc.List(c.Request().Context(), usecase.ListOrdersInput{
		Status:    c.QueryParam("status"),
		OrderType: c.QueryParam("type"),
		Date:      date,
		Limit:     limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) detail(c echo.Context) error {
	o, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	o, err := h.uc.UpdateStatus(c.Request().Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ?confirm=true が必要
func (h *OrderHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Delete(c.Request().Context(), userID, c.Param("id"), queryBool(c, "confirm")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// 印刷用テキスト（送信はしない）
func (h *OrderHandler) receipt(c echo.Context) error {
	out, err := h.receiptUC.Preview(c.Request().Context(), c.Param("id"), c.QueryParam("mode"))
	if err != nil {
		return writeError(c, err)
	}
	return c.String(http.StatusOK, out.Text)
}

// 印刷して厨房伝票を送る
func (h *OrderHandler) print(c echo.Context) error {
	out, err := h.receiptUC.Print(c.Request().Context(), c.Param("id"), c.QueryParam("mode"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
