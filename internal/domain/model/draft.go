package model

import (
	"time"

	"gorm.io/datatypes"
)

type DraftStatus string

const (
	DraftStatusActive    DraftStatus = "ACTIVE"
	DraftStatusSubmitted DraftStatus = "SUBMITTED"
	DraftStatusDiscarded DraftStatus = "DISCARDED"
)

// 1ユーザーにつきACTIVEは1つ。中身はDraftOrderのJSON
type Draft struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64          `gorm:"not null;index" json:"user_id"`
	Status    DraftStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	Body      datatypes.JSON `gorm:"type:jsonb;not null" json:"body"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
