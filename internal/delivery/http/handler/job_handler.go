package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logipro/internal/usecase/job"
	"logipro/pkg/utils"
)

type JobHandler struct {
	service *job.Service
}

func NewJobHandler(service *job.Service) *JobHandler {
	return &JobHandler{service: service}
}

// RegisterRoutes mounts the routes every signed-in role may call; the
// service scopes results to the caller.
func (h *JobHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/jobs", h.ListJobs)
	router.GET("/jobs/:id", h.GetJob)
}

func (h *JobHandler) RegisterStaffRoutes(router *gin.RouterGroup) {
	router.POST("/jobs", h.CreateJob)
	router.PATCH("/jobs/:id", h.UpdateJob)
}

func (h *JobHandler) RegisterCustomerRoutes(router *gin.RouterGroup) {
	router.POST("/bookings", h.CreateJob)
	router.GET("/jobs/stats", h.Stats)
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req job.CreateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.service.CreateJob(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Job created successfully", created)
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req job.ListJobsRequest
	if !bindQuery(c, &req) {
		return
	}
	if req.CustomerID, ok = queryUUID(c, "customer_id"); !ok {
		return
	}

	jobs, err := h.service.ListJobs(c.Request.Context(), p, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Jobs retrieved successfully", jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetJob(c.Request.Context(), p, jobID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Job retrieved successfully", detail)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req job.UpdateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.service.UpdateJob(c.Request.Context(), p, jobID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Job updated successfully", updated)
}

func (h *JobHandler) Stats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	stats, err := h.service.CustomerJobStats(c.Request.Context(), p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Job statistics retrieved successfully", stats)
}
