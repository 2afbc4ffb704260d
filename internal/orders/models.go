package orders

import (
	"time"

	"github.com/google/uuid"
)

// Order groups tickets checked out from a cart. The numeric ID feeds
// the gateway reference transform, so unlike the rest of the schema it
// is a plain auto-increment integer.
type Order struct {
	ID     uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Price  int       `json:"price" gorm:"not null;default:0"`

	PaidAt *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		Reference: EncodeOrderReference(o.ID),
		Price:     o.Price,
		PaidAt:    o.PaidAt,
		CreatedAt: o.CreatedAt,
	}
}

// TableName specifies the table name for GORM
func (Order) TableName() string {
	return "orders"
}
