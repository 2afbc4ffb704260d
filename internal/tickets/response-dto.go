package tickets

import "time"

type TicketResponse struct {
	ID            string     `json:"id"`
	FlightID      string     `json:"flight_id"`
	CabinClass    string     `json:"cabin_class"`
	SeatNumber    *int       `json:"seat_number"`
	Status        string     `json:"status"`
	FirstName     *string    `json:"first_name"`
	LastName      *string    `json:"last_name"`
	OrderID       *uint      `json:"order_id"`
	CreatedAt     time.Time  `json:"created_at"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
}
