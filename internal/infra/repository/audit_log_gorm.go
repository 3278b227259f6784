package repository

import (
	"context"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})

	conds := map[string]any{}
	if f.ActorUserID != 0 {
		conds["actor_user_id"] = f.ActorUserID
	}
	if f.Action != "" {
		conds["action"] = f.Action
	}
	if f.ResourceType != "" {
		conds["resource_type"] = f.ResourceType
	}
	if f.ResourceID != "" {
		conds["resource_id"] = f.ResourceID
	}
	if len(conds) > 0 {
		q = q.Where(conds)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "created_at"}, Desc: true},
		{Column: clause.Column{Name: "id"}, Desc: true},
	}})
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	logs := []model.AuditLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
