package usecase

import (
	"context"
	"strings"
	"time"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"
)

type SettingsUsecase struct {
	tx       repo.TransactionManager
	settings repo.SettingsRepository
	clock    Clock
}

func NewSettingsUsecase(tx repo.TransactionManager, settings repo.SettingsRepository, clock Clock) *SettingsUsecase {
	return &SettingsUsecase{tx: tx, settings: settings, clock: clock}
}

// 無ければ初期値で作られる
func (u *SettingsUsecase) Get(ctx context.Context) (model.Settings, error) {
	s, err := u.settings.Get(ctx)
	if err != nil {
		return model.Settings{}, storeError("db error")
	}
	return s, nil
}

// nilの項目は変更しない
type UpdateSettingsInput struct {
	TotalTables    *int
	RestaurantName *string
}

func (u *SettingsUsecase) Update(ctx context.Context, actorUserID int64, in UpdateSettingsInput) (model.Settings, error) {
	if in.TotalTables != nil && *in.TotalTables < 1 {
		return model.Settings{}, validationError("total_tables must be >= 1")
	}
	if in.TotalTables != nil && *in.TotalTables > 500 {
		return model.Settings{}, validationError("total_tables too large")
	}
	if in.RestaurantName != nil && strings.TrimSpace(*in.RestaurantName) == "" {
		return model.Settings{}, validationError("restaurant_name required")
	}

	var out model.Settings

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Settings().Get(ctx)
		if err != nil {
			return storeError("db error")
		}

		after := before
		if in.TotalTables != nil {
			after.TotalTables = *in.TotalTables
		}
		if in.RestaurantName != nil {
			after.RestaurantName = strings.TrimSpace(*in.RestaurantName)
		}

		if err := r.Settings().Save(ctx, after); err != nil {
			return storeError("db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateSettings,
			ResourceType: model.AuditResourceSettings,
			ResourceID:   "1",
			BeforeJSON:   toAuditJSON(before),
			AfterJSON:    toAuditJSON(after),
			CreatedAt:    u.now(),
		}); err != nil {
			return storeError("db error")
		}

		out = after
		return nil
	})

	if err != nil {
		return model.Settings{}, err
	}
	return out, nil
}

func (u *SettingsUsecase) now() time.Time {
	if u.clock == nil {
		return time.Now()
	}
	return u.clock.Now()
}
