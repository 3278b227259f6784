package usecase

import (
	"context"
	"time"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// オーナー向けの操作履歴
type AuditUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditUsecase(logs repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{logs: logs}
}

type ListAuditInput struct {
	ActorUserID  int64
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func (u *AuditUsecase) List(ctx context.Context, in ListAuditInput) ([]model.AuditLog, error) {
	if in.Action != "" && !in.Action.Valid() {
		return nil, validationError("invalid action")
	}
	if in.ResourceType != "" && !in.ResourceType.Valid() {
		return nil, validationError("invalid resource type")
	}
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return nil, validationError("to must not be before from")
	}
	if in.Limit < 0 || in.Limit > maxAuditLimit || in.Offset < 0 {
		return nil, validationError("invalid paging")
	}
	if in.Limit == 0 {
		in.Limit = defaultAuditLimit
	}

	logs, err := u.logs.List(ctx, repo.AuditLogFilter{
		ActorUserID:  in.ActorUserID,
		Action:       in.Action,
		ResourceType: in.ResourceType,
		ResourceID:   in.ResourceID,
		From:         in.From,
		To:           in.To,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, storeError("failed to load audit logs")
	}
	return logs, nil
}
