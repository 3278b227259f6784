package handler

import (
	"net/http"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/repository"
	"restopos/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 作成中の注文（カート）
type DraftHandler struct {
	uc *usecase.DraftUsecase
}

func NewDraftHandler(uc *usecase.DraftUsecase) *DraftHandler {
	return &DraftHandler{uc: uc}
}

type DraftAddItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
}

// どちらか一方。両方nullなら値引きなし
type DraftDiscountRequest struct {
	Percent *decimal.Decimal `json:"percent"`
	Amount  *decimal.Decimal `json:"amount"`
}

type DraftTableRequest struct {
	OrderType string `json:"order_type"`
	TableNo   string `json:"table_no"`
	Join      bool   `json:"join"`
}

type DraftCustomerRequest struct {
	CustomerName string `json:"customer_name"`
}

func (h *DraftHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/draft", cfg, userRepo, model.RoleManager)

	g.GET("", h.get)
	g.DELETE("", h.discard)
	g.POST("/items", h.addItem)
	g.DELETE("/items/:menuItemId", h.removeItem)
	g.PUT("/discount", h.setDiscount)
	g.PUT("/table", h.selectTable)
	g.PUT("/customer", h.setCustomer)
	g.POST("/load/:orderId", h.load)
	g.POST("/submit", h.submit)
}

func (h *DraftHandler) get(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Get(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DraftHandler) discard(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Discard(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "discarded"})
}

func (h *DraftHandler) addItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req DraftAddItemRequest
	if err := c.Bind(&req); err != nil || req.MenuItemID == "" {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, req.MenuItemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?all=true で行ごと削除
func (h *DraftHandler) removeItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), userID, c.Param("menuItemId"), queryBool(c, "all"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DraftHandler) setDiscount(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req DraftDiscountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.SetDiscount(c.Request().Context(), userID, usecase.DiscountInput{
		Percent: req.Percent,
		Amount:  req.Amount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 埋まっている卓ならselection.status=conflict（200で返す）
func (h *DraftHandler) selectTable(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req DraftTableRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.SelectTable(c.Request().Context(), userID, usecase.SelectTableInput{
		OrderType: model.OrderType(req.OrderType),
		TableNo:   req.TableNo,
		Join:      req.Join,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DraftHandler) setCustomer(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req DraftCustomerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.SetCustomerName(c.Request().Context(), userID, req.CustomerName)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 既存注文を編集用に開く
func (h *DraftHandler) load(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.LoadForEdit(c.Request().Context(), userID, c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DraftHandler) submit(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	o, err := h.uc.Submit(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}
