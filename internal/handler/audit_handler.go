package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/repository"
	"restopos/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文削除・卓の強制解放・設定変更の履歴（オーナーのみ）
type AuditHandler struct {
	uc  *usecase.AuditUsecase
	loc *time.Location
}

func NewAuditHandler(uc *usecase.AuditUsecase, loc *time.Location) *AuditHandler {
	return &AuditHandler{uc: uc, loc: loc}
}

func (h *AuditHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := authGroup(e, "/audit-logs", cfg, userRepo, model.RoleOwner)

	g.GET("", h.list)
}

// ?action=&resource_type=&resource_id=&actor_id=&from=&to=&limit=&offset=
func (h *AuditHandler) list(c echo.Context) error {
	in := usecase.ListAuditInput{
		Action:       model.AuditAction(strings.ToUpper(strings.TrimSpace(c.QueryParam("action")))),
		ResourceType: model.AuditResourceType(strings.TrimSpace(c.QueryParam("resource_type"))),
		ResourceID:   strings.TrimSpace(c.QueryParam("resource_id")),
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"limit", &in.Limit},
		{"offset", &in.Offset},
	}
	for _, p := range ints {
		v := c.QueryParam(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid "+p.key)
		}
		*p.dst = n
	}

	if v := c.QueryParam("actor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid actor_id")
		}
		in.ActorUserID = id
	}

	from, ok := parseDateParam(c.QueryParam("from"), h.loc)
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := parseDateParam(c.QueryParam("to"), h.loc)
	if !ok {
		return badRequest(c, "invalid to")
	}
	in.From = from
	// toはその日の終わりまで
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Millisecond)
		in.To = &end
	}

	logs, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
