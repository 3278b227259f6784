package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"restopos/internal/domain/model"
	repo "restopos/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DraftGormRepository struct {
	db *gorm.DB
}

// DI
func NewDraftGormRepository(db *gorm.DB) *DraftGormRepository {
	return &DraftGormRepository{db: db}
}

// ユーザーのACTIVEドラフトを取得
func (r *DraftGormRepository) FindActiveByUserID(ctx context.Context, userID int64) (model.DraftOrder, error) {
	var row model.Draft

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.DraftStatusActive).
		Order("id desc").
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DraftOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DraftOrder{}, err
	}

	d := model.NewDraftOrder()
	if err := json.Unmarshal(row.Body, &d); err != nil {
		return model.DraftOrder{}, err
	}
	if d.Lines == nil {
		d.Lines = []model.OrderLine{}
	}
	return d, nil
}

// ACTIVEがあれば上書き、無ければ作る
func (r *DraftGormRepository) SaveActive(ctx context.Context, userID int64, draft model.DraftOrder) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.Draft
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status = ?", userID, model.DraftStatusActive).
			Order("id desc").
			First(&row).Error

		if findErr == nil {
			return tx.Model(&model.Draft{}).
				Where("id = ?", row.ID).
				Updates(map[string]interface{}{
					"body":       datatypes.JSON(body),
					"updated_at": time.Now(),
				}).Error
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		// 無ければ作る
		now := time.Now()
		return tx.Create(&model.Draft{
			UserID:    userID,
			Status:    model.DraftStatusActive,
			Body:      datatypes.JSON(body),
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}

// drafts.statusを更新してACTIVEを終わらせる
func (r *DraftGormRepository) Close(ctx context.Context, userID int64, status model.DraftStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Draft{}).
		Where("user_id = ? AND status = ?", userID, model.DraftStatusActive).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
