package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"logipro/internal/usecase/shipment"
	"logipro/pkg/utils"
)

const podFormField = "proof_of_delivery_image"

type ShipmentHandler struct {
	service *shipment.Service
}

func NewShipmentHandler(service *shipment.Service) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// RegisterPublicRoutes exposes read by id for tracking links.
func (h *ShipmentHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/shipments/:id", h.GetShipment)
}

func (h *ShipmentHandler) RegisterStaffRoutes(router *gin.RouterGroup) {
	router.GET("/shipments", h.ListShipments)
	router.POST("/shipments/:id/assign", h.Assign)
}

// RegisterDriverRoutes mounts the assigned-driver actions; guard is the
// ownership policy for the :id parameter.
func (h *ShipmentHandler) RegisterDriverRoutes(router *gin.RouterGroup, guard gin.HandlerFunc) {
	shipments := router.Group("/shipments/:id", guard)
	{
		shipments.POST("/start-trip", h.StartTrip)
		shipments.POST("/mark-delivered", h.MarkDelivered)
		shipments.POST("/upload-pod", h.UploadProofOfDelivery)
		shipments.POST("/mark-failed", h.MarkFailed)
		shipments.POST("/checkpoints", h.RecordCheckpoint)
	}
}

// RegisterUpdateRoutes mounts PATCH for staff and the assigned driver.
func (h *ShipmentHandler) RegisterUpdateRoutes(router *gin.RouterGroup, guard gin.HandlerFunc) {
	router.PATCH("/shipments/:id", guard, h.UpdateShipment)
}

func (h *ShipmentHandler) RegisterAssignmentRoutes(router *gin.RouterGroup) {
	router.GET("/drivers/me/shipments", h.MyAssignments)
}

func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	shipmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Get(c.Request.Context(), shipmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment retrieved successfully", result)
}

func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	var req shipment.ListShipmentsRequest
	if !bindQuery(c, &req) {
		return
	}
	var ok bool
	if req.DriverID, ok = queryUUID(c, "driver_id"); !ok {
		return
	}
	if req.JobID, ok = queryUUID(c, "job_id"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipments retrieved successfully", result)
}

func (h *ShipmentHandler) Assign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req shipment.AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Assign(c.Request.Context(), p, shipmentID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment assigned successfully", result)
}

func (h *ShipmentHandler) StartTrip(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.StartTrip(c.Request.Context(), p, shipmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip started", result)
}

// MarkDelivered takes JSON, or multipart with an optional image and a
// signature_name field.
func (h *ShipmentHandler) MarkDelivered(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req shipment.MarkDeliveredRequest
	var pod *shipment.ImageUpload

	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid form data")
			return
		}
		upload, closeFile, err := imageFromForm(c)
		switch {
		case errors.Is(err, http.ErrMissingFile):
			// delivered without an image
		case err != nil:
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid proof of delivery image")
			return
		default:
			defer closeFile()
			pod = upload
		}
	} else if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.service.MarkDelivered(c.Request.Context(), p, shipmentID, &req, pod)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment marked as delivered", result)
}

func (h *ShipmentHandler) UploadProofOfDelivery(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	upload, closeFile, err := imageFromForm(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "A "+podFormField+" file is required")
		return
	}
	defer closeFile()

	result, err := h.service.UploadProofOfDelivery(c.Request.Context(), p, shipmentID, upload)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Proof of delivery uploaded", result)
}

func (h *ShipmentHandler) MarkFailed(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req shipment.MarkFailedRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.MarkFailed(c.Request.Context(), p, shipmentID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment marked as failed", result)
}

func (h *ShipmentHandler) RecordCheckpoint(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req shipment.CheckpointRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.RecordCheckpoint(c.Request.Context(), p, shipmentID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Checkpoint recorded", result)
}

func (h *ShipmentHandler) UpdateShipment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req shipment.UpdateShipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Update(c.Request.Context(), p, shipmentID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment updated successfully", result)
}

func (h *ShipmentHandler) MyAssignments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	result, err := h.service.MyAssignments(c.Request.Context(), p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Assignments retrieved successfully", result)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// imageFromForm opens the proof-of-delivery part. The caller closes it.
func imageFromForm(c *gin.Context) (*shipment.ImageUpload, func(), error) {
	header, err := c.FormFile(podFormField)
	if err != nil {
		return nil, nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return toImageUpload(header, file), func() { _ = file.Close() }, nil
}

func toImageUpload(header *multipart.FileHeader, file multipart.File) *shipment.ImageUpload {
	return &shipment.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}
}
