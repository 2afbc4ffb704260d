package orders

import (
	"time"

	"skyfare/internal/tickets"
)

type OrderResponse struct {
	ID        uint                     `json:"id"`
	Reference string                   `json:"reference"`
	Price     int                      `json:"price"`
	PaidAt    *time.Time               `json:"paid_at"`
	CreatedAt time.Time                `json:"created_at"`
	Tickets   []tickets.TicketResponse `json:"tickets,omitempty"`
}
