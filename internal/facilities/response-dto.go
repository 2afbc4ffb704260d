package facilities

import "time"

type FacilityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FlightOfferingResponse struct {
	FacilityID  string `json:"facility_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
}

type TicketFacilityResponse struct {
	FacilityID string    `json:"facility_id"`
	Name       string    `json:"name"`
	Price      int       `json:"price"`
	AppliedAt  time.Time `json:"applied_at"`
}

type FacilityChargeResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Amount    int       `json:"amount"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
