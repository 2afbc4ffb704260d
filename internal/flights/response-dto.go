package flights

import "time"

type AirplaneResponse struct {
	ID            string    `json:"id"`
	EconomySeats  int       `json:"economy_seats"`
	BusinessSeats int       `json:"business_seats"`
	CreatedAt     time.Time `json:"created_at"`
}

type FlightResponse struct {
	ID          string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartureAt time.Time `json:"departure_at"`
	ArrivalAt   time.Time `json:"arrival_at"`
	AirplaneID  string    `json:"airplane_id"`

	EconomyCapacity  int `json:"economy_capacity"`
	BusinessCapacity int `json:"business_capacity"`

	EconomyPrice          int `json:"economy_price"`
	BusinessPrice         int `json:"business_price"`
	EconomySeatSurcharge  int `json:"economy_seat_surcharge"`
	BusinessSeatSurcharge int `json:"business_seat_surcharge"`

	CreatedAt time.Time `json:"created_at"`
}

// FlightDetailResponse adds live availability to the flight view.
type FlightDetailResponse struct {
	FlightResponse
	EconomySeatsLeft  int `json:"economy_seats_left"`
	BusinessSeatsLeft int `json:"business_seats_left"`
}

type FreeSeatsResponse struct {
	FlightID   string `json:"flight_id"`
	CabinClass string `json:"cabin_class"`
	Capacity   int    `json:"capacity"`
	FreeSeats  []int  `json:"free_seats"`
	SeatsLeft  int    `json:"seats_left"`
}

type PaginatedFlights struct {
	Flights    []FlightResponse `json:"flights"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// FlightStatsResponse summarizes ticket movement on one flight.
type FlightStatsResponse struct {
	FlightID    string           `json:"flight_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Cabins      []CabinStats     `json:"cabins"`
	Statuses    map[string]int64 `json:"statuses"`
	CheckedIn   int64            `json:"checked_in"`
	Boarded     int64            `json:"boarded"`
}

type CabinStats struct {
	CabinClass  string  `json:"cabin_class"`
	Capacity    int     `json:"capacity"`
	Held        int64   `json:"held"`
	Sold        int64   `json:"sold"`
	SeatsLeft   int     `json:"seats_left"`
	Utilization float64 `json:"utilization"`
}
