package repository

import (
	"context"

	"restopos/internal/domain/model"
)

type SettingsRepository interface {
	//無ければ初期値で作る
	Get(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}
