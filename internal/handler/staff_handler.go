package handler

import (
	"errors"
	"net/http"
	"strconv"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/repository"
	"restopos/internal/usecase"
	auth "restopos/internal/usecase/auth_usecase"
	"restopos/internal/validator"

	"github.com/labstack/echo/v4"
)

// オーナー向けのスタッフ管理
type StaffHandler struct {
	registerUC *auth.RegisterUserUsecase
	staffUC    *usecase.StaffUsecase
}

func NewStaffHandler(registerUC *auth.RegisterUserUsecase, staffUC *usecase.StaffUsecase) *StaffHandler {
	return &StaffHandler{registerUC: registerUC, staffUC: staffUC}
}

type StaffCreateRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *StaffHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/users", cfg, userRepo, model.RoleOwner)

	g.GET("", h.list)
	g.POST("", h.create)
	g.DELETE("/:id", h.delete)
}

func (h *StaffHandler) list(c echo.Context) error {
	users, err := h.staffUC.ListManagers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *StaffHandler) create(c echo.Context) error {
	var req StaffCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	u, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, validator.ErrInvalidInput):
			return badRequest(c, "invalid input")
		case errors.Is(err, auth.ErrUsernameAlreadyExists):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: "username already exists", Kind: string(usecase.KindConflict)})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: string(usecase.KindStore)})
		}
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *StaffHandler) delete(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	if err := h.staffUC.Delete(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
