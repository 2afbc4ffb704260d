package carts

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a shopper's pending tickets plus a message buffer for
// notices written while they were away (evicted holds and the like).
// Messages are drained on view.
type Cart struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	Messages string    `json:"messages" gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Cart) TableName() string {
	return "carts"
}
