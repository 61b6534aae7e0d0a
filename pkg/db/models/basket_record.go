package models

import "time"

// BasketRecord persists one session's basket as the JSON array the storefront
// kept in its client-local "basket" slot.
type BasketRecord struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Payload   string    `gorm:"column:payload;type:text;not null;default:'[]'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (BasketRecord) TableName() string {
	return "basket_records"
}
