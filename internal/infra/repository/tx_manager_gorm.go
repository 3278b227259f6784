package repository

import (
	"context"

	repo "restopos/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders    repo.OrderRepository
	auditLogs repo.AuditLogRepository
	settings  repo.SettingsRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository       { return r.orders }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository { return r.auditLogs }
func (r *txReposGorm) Settings() repo.SettingsRepository  { return r.settings }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:    NewOrderGormRepository(tx),
			auditLogs: NewAuditLogGormRepository(tx),
			settings:  NewSettingsGormRepository(tx),
		}
		return fn(r)
	})
}

var (
	_ repo.OrderRepository    = (*OrderGormRepository)(nil)
	_ repo.MenuItemRepository = (*MenuItemGormRepository)(nil)
	_ repo.SettingsRepository = (*SettingsGormRepository)(nil)
	_ repo.DraftRepository    = (*DraftGormRepository)(nil)
)
