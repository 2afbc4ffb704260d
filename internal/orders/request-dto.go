package orders

type CreateOrderRequest struct {
	TicketIDs []string `json:"ticket_ids" binding:"required,min=1,dive,uuid"`
}

type TicketCustomization struct {
	TicketID    string   `json:"ticket_id" binding:"required,uuid"`
	SeatNumber  *int     `json:"seat_number" binding:"omitempty,min=1"`
	FirstName   *string  `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string  `json:"last_name" binding:"omitempty,max=100"`
	FacilityIDs []string `json:"facility_ids" binding:"omitempty,dive,uuid"`
}

type CustomizeOrderRequest struct {
	Tickets []TicketCustomization `json:"tickets" binding:"required,min=1,dive"`
}
