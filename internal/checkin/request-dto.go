package checkin

import "skyfare/internal/tickets"

type CheckInRequest struct {
	SeatNumber  *int     `json:"seat_number" binding:"omitempty,min=1"`
	FirstName   *string  `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName    *string  `json:"last_name" binding:"omitempty,min=1,max=100"`
	FacilityIDs []string `json:"facility_ids" binding:"omitempty,dive,uuid"`
}

type CheckInResponse struct {
	Ticket  tickets.TicketResponse `json:"ticket"`
	Charged int                    `json:"charged"`
}
