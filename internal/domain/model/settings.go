package model

const (
	DefaultTotalTables    = 12
	DefaultRestaurantName = "Achanak"
)

// 店舗設定（1行だけ）
type Settings struct {
	ID             int64  `gorm:"primaryKey" json:"-"`
	TotalTables    int    `gorm:"not null;default:12" json:"total_tables"`
	RestaurantName string `gorm:"type:varchar(255);not null;default:'Achanak'" json:"restaurant_name"`
}

func DefaultSettings() Settings {
	return Settings{
		ID:             1,
		TotalTables:    DefaultTotalTables,
		RestaurantName: DefaultRestaurantName,
	}
}
