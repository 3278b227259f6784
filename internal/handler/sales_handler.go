package handler

import (
	"net/http"
	"time"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/repository"
	"restopos/internal/usecase"

	"github.com/labstack/echo/v4"
)

// オーナー向けの売上
type SalesHandler struct {
	uc  *usecase.SalesUsecase
	loc *time.Location
}

func NewSalesHandler(uc *usecase.SalesUsecase, loc *time.Location) *SalesHandler {
	return &SalesHandler{uc: uc, loc: loc}
}

func (h *SalesHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/sales", cfg, userRepo, model.RoleOwner)

	g.GET("/daily", h.daily)
	g.GET("/range", h.rangeTotals)
}

// ?date=YYYY-MM-DD（省略時は今日）
func (h *SalesHandler) daily(c echo.Context) error {
	date, ok := parseDateParam(c.QueryParam("date"), h.loc)
	if !ok {
		return badRequest(c, "invalid date")
	}
	d := time.Now()
	if date != nil {
		d = *date
	}

	out, err := h.uc.DailyTotals(c.Request().Context(), d)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?start=&end=（省略時は直近7日）
func (h *SalesHandler) rangeTotals(c echo.Context) error {
	start, ok := parseDateParam(c.QueryParam("start"), h.loc)
	if !ok {
		return badRequest(c, "invalid start")
	}
	end, ok := parseDateParam(c.QueryParam("end"), h.loc)
	if !ok {
		return badRequest(c, "invalid end")
	}

	out, err := h.uc.RangeTotals(c.Request().Context(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
