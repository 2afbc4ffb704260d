package flights

import "time"

type CreateAirplaneRequest struct {
	EconomySeats  int `json:"economy_seats" binding:"required,min=20,max=60"`
	BusinessSeats int `json:"business_seats" binding:"required,min=6,max=25"`
}

type CreateFlightRequest struct {
	Origin      string    `json:"origin" binding:"required,min=2,max=100"`
	Destination string    `json:"destination" binding:"required,min=2,max=100"`
	DepartureAt time.Time `json:"departure_at" binding:"required"`
	ArrivalAt   time.Time `json:"arrival_at" binding:"required"`
	AirplaneID  string    `json:"airplane_id" binding:"required,uuid"`

	EconomyPrice          int `json:"economy_price" binding:"min=0"`
	BusinessPrice         int `json:"business_price" binding:"min=0"`
	EconomySeatSurcharge  int `json:"economy_seat_surcharge" binding:"min=0"`
	BusinessSeatSurcharge int `json:"business_seat_surcharge" binding:"min=0"`
}

// UpdateFlightPricingRequest changes fares only. Capacities are fixed
// for the flight's lifetime.
type UpdateFlightPricingRequest struct {
	EconomyPrice          *int `json:"economy_price" binding:"omitempty,min=0"`
	BusinessPrice         *int `json:"business_price" binding:"omitempty,min=0"`
	EconomySeatSurcharge  *int `json:"economy_seat_surcharge" binding:"omitempty,min=0"`
	BusinessSeatSurcharge *int `json:"business_seat_surcharge" binding:"omitempty,min=0"`
}

type FlightListQuery struct {
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Date        string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
