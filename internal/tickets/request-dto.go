package tickets

type AcquireSeatRequest struct {
	CabinClass string `json:"cabin_class" binding:"required,oneof=economy business"`
	SeatNumber *int   `json:"seat_number" binding:"omitempty,min=1"`
}
