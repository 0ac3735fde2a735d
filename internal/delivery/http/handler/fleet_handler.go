package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logipro/internal/usecase/fleet"
	"logipro/pkg/utils"
)

type FleetHandler struct {
	service *fleet.Service
}

func NewFleetHandler(service *fleet.Service) *FleetHandler {
	return &FleetHandler{service: service}
}

func (h *FleetHandler) RegisterStaffRoutes(router *gin.RouterGroup) {
	drivers := router.Group("/drivers")
	{
		drivers.GET("", h.ListDrivers)
		drivers.POST("", h.CreateDriver)
		drivers.GET("/:id", h.GetDriver)
		drivers.PATCH("/:id", h.UpdateDriver)
		drivers.DELETE("/:id", h.DeleteDriver)
	}

	vehicles := router.Group("/vehicles")
	{
		vehicles.GET("", h.ListVehicles)
		vehicles.POST("", h.CreateVehicle)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.PATCH("/:id", h.UpdateVehicle)
		vehicles.DELETE("/:id", h.DeleteVehicle)
	}
}

func (h *FleetHandler) ListDrivers(c *gin.Context) {
	result, err := h.service.ListDrivers(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Drivers retrieved successfully", result)
}

func (h *FleetHandler) CreateDriver(c *gin.Context) {
	var req fleet.CreateDriverRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateDriver(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Driver created successfully", result)
}

func (h *FleetHandler) GetDriver(c *gin.Context) {
	driverID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetDriver(c.Request.Context(), driverID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Driver retrieved successfully", result)
}

func (h *FleetHandler) UpdateDriver(c *gin.Context) {
	driverID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req fleet.UpdateDriverRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.UpdateDriver(c.Request.Context(), driverID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Driver updated successfully", result)
}

func (h *FleetHandler) DeleteDriver(c *gin.Context) {
	driverID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteDriver(c.Request.Context(), driverID); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Driver deleted successfully", nil)
}

func (h *FleetHandler) ListVehicles(c *gin.Context) {
	var req fleet.ListVehiclesRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.ListVehicles(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", result)
}

func (h *FleetHandler) CreateVehicle(c *gin.Context) {
	var req fleet.CreateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateVehicle(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Vehicle created successfully", result)
}

func (h *FleetHandler) GetVehicle(c *gin.Context) {
	vehicleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", result)
}

func (h *FleetHandler) UpdateVehicle(c *gin.Context) {
	vehicleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req fleet.UpdateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.UpdateVehicle(c.Request.Context(), vehicleID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicle updated successfully", result)
}

func (h *FleetHandler) DeleteVehicle(c *gin.Context) {
	vehicleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteVehicle(c.Request.Context(), vehicleID); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vehicle deleted successfully", nil)
}
