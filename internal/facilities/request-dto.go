package facilities

type CreateFacilityRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=500"`
	Price       int    `json:"price" binding:"min=0"`
}

type UpdateFacilityRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Price       *int    `json:"price" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}

type FlightFacilityItem struct {
	FacilityID string `json:"facility_id" binding:"required,uuid"`
	Price      *int   `json:"price" binding:"omitempty,min=0"`
}

type SetFlightFacilitiesRequest struct {
	Facilities []FlightFacilityItem `json:"facilities" binding:"required,dive"`
}
