package facilities

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skyfare/internal/shared/middleware"
	"skyfare/internal/shared/utils/response"
)

type Controller interface {
	CreateFacility(c *gin.Context)
	GetFacility(c *gin.Context)
	GetAllFacilities(c *gin.Context)
	UpdateFacility(c *gin.Context)

	SetFlightFacilities(c *gin.Context)
	GetFlightFacilities(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateFacility(c *gin.Context) {
	var req CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	adminID, ok := middleware.UserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Missing user identity", nil, nil)
		return
	}

	facility, err := ctrl.service.CreateFacility(adminID, req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Facility created successfully", facility, nil)
}

func (ctrl *controller) GetFacility(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid facility ID", nil, nil)
		return
	}

	facility, err := ctrl.service.GetFacility(id)
	if err != nil {
		if errors.Is(err, ErrFacilityNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get facility", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Facility retrieved successfully", facility, nil)
}

func (ctrl *controller) GetAllFacilities(c *gin.Context) {
	activeOnly := c.Query("all") == ""

	list, err := ctrl.service.GetAllFacilities(activeOnly)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list facilities", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Facilities retrieved successfully", list, nil)
}

func (ctrl *controller) UpdateFacility(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid facility ID", nil, nil)
		return
	}

	var req UpdateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	facility, err := ctrl.service.UpdateFacility(id, req)
	if err != nil {
		if errors.Is(err, ErrFacilityNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to update facility", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Facility updated successfully", facility, nil)
}

func (ctrl *controller) SetFlightFacilities(c *gin.Context) {
	flightID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid flight ID", nil, nil)
		return
	}

	var req SetFlightFacilitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, response.ValidationMessages(err))
		return
	}

	links := make([]FlightFacility, 0, len(req.Facilities))
	for _, item := range req.Facilities {
		id, err := uuid.Parse(item.FacilityID)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid facility ID in list", nil, nil)
			return
		}
		links = append(links, FlightFacility{FacilityID: id, Price: item.Price})
	}

	if err := ctrl.service.SetFlightFacilities(flightID, links); err != nil {
		if errors.Is(err, ErrFacilityNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to set flight facilities", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flight facilities updated successfully", nil, nil)
}

func (ctrl *controller) GetFlightFacilities(c *gin.Context) {
	flightID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid flight ID", nil, nil)
		return
	}

	list, err := ctrl.service.GetFlightFacilities(flightID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list flight facilities", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Flight facilities retrieved successfully", list, nil)
}
