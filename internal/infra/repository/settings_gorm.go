package repository

import (
	"context"

	"restopos/internal/domain/model"

	"gorm.io/gorm"
)

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

// 初回は初期値で作成
func (r *SettingsGormRepository) Get(ctx context.Context) (model.Settings, error) {
	def := model.DefaultSettings()

	var s model.Settings
	err := r.db.WithContext(ctx).
		Where("id = ?", def.ID).
		Attrs(def).
		FirstOrCreate(&s).Error
	if err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

func (r *SettingsGormRepository) Save(ctx context.Context, s model.Settings) error {
	s.ID = model.DefaultSettings().ID
	return r.db.WithContext(ctx).Save(&s).Error
}
