package repository

import (
	"context"

	"restopos/internal/domain/model"
)

// 作成中注文の保存（ユーザーごとにACTIVEは1件）
type DraftRepository interface {
	//無ければErrNotFound
	FindActiveByUserID(ctx context.Context, userID int64) (model.DraftOrder, error)
	//ACTIVEを上書き、無ければ作成
	SaveActive(ctx context.Context, userID int64, draft model.DraftOrder) error
	//ACTIVEを終わらせる（無くてもエラーにしない）
	Close(ctx context.Context, userID int64, status model.DraftStatus) error
}
