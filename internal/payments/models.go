package payments

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedCallback logs one handled gateway callback. The unique
// (order_id, reason_code) pair makes replayed callbacks harmless:
// the replay hits the constraint, gets acked, and dispatches nothing.
type ProcessedCallback struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_callback_once"`
	ReasonCode int       `json:"reason_code" gorm:"not null;uniqueIndex:idx_callback_once"`
	Reference  string    `json:"reference" gorm:"not null;size:32"`
	ReceivedAt time.Time `json:"received_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ProcessedCallback) TableName() string {
	return "processed_callbacks"
}
