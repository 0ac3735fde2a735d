package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logipro/internal/usecase/address"
	"logipro/pkg/utils"
)

type AddressHandler struct {
	service *address.Service
}

func NewAddressHandler(service *address.Service) *AddressHandler {
	return &AddressHandler{service: service}
}

func (h *AddressHandler) RegisterCustomerRoutes(router *gin.RouterGroup) {
	addresses := router.Group("/customers/me/addresses")
	{
		addresses.GET("", h.List)
		addresses.POST("", h.Create)
		addresses.GET("/:id", h.Get)
		addresses.PUT("/:id", h.Update)
		addresses.DELETE("/:id", h.Delete)
	}
}

func (h *AddressHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), p)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Addresses retrieved successfully", result)
}

func (h *AddressHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req address.CreateAddressRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Create(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Address created successfully", result)
}

func (h *AddressHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	addressID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Get(c.Request.Context(), p, addressID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Address retrieved successfully", result)
}

func (h *AddressHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	addressID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req address.UpdateAddressRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Update(c.Request.Context(), p, addressID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Address updated successfully", result)
}

func (h *AddressHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	addressID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, addressID); err != nil {
		respondWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Address deleted successfully", nil)
}
