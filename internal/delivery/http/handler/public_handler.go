package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"logipro/internal/authz"
	"logipro/internal/usecase/quote"
	"logipro/internal/usecase/tracking"
	"logipro/pkg/utils"
)

// LiveTracker upgrades a request to a socket that receives status events
// for one job.
type LiveTracker interface {
	ServeWS(w http.ResponseWriter, r *http.Request, jobNumber int64)
}

// PublicHandler serves the unauthenticated surface: quotes, tracking and
// homepage counters.
type PublicHandler struct {
	quotes    *quote.Service
	tracking  *tracking.Service
	live      LiveTracker
	jwtSecret string
}

func NewPublicHandler(quotes *quote.Service, tracking *tracking.Service, live LiveTracker, jwtSecret string) *PublicHandler {
	return &PublicHandler{quotes: quotes, tracking: tracking, live: live, jwtSecret: jwtSecret}
}

func (h *PublicHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/quotes/instant-estimate", h.InstantEstimate)
	router.GET("/tracking/:job_number", h.Track)
	router.GET("/tracking/:job_number/live", h.Live)
	router.GET("/analytics/public-stats", h.PublicStats)
}

// InstantEstimate is public; a signed-in customer's id is recorded with
// the quote request.
func (h *PublicHandler) InstantEstimate(c *gin.Context) {
	var req quote.EstimateRequest
	if !bindJSON(c, &req) {
		return
	}

	var customerID *uuid.UUID
	if p := optionalPrincipal(c, h.jwtSecret); p != nil && p.Role == authz.RoleCustomer {
		customerID = &p.UserID
	}

	estimate, err := h.quotes.Estimate(c.Request.Context(), customerID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Estimate calculated", estimate)
}

func (h *PublicHandler) Track(c *gin.Context) {
	jobNumber, ok := jobNumberParam(c)
	if !ok {
		return
	}

	result, err := h.tracking.Track(c.Request.Context(), jobNumber)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Tracking information retrieved", result)
}

// Live answers 404 for unknown jobs before upgrading.
func (h *PublicHandler) Live(c *gin.Context) {
	jobNumber, ok := jobNumberParam(c)
	if !ok {
		return
	}

	if _, err := h.tracking.Resolve(c.Request.Context(), jobNumber); err != nil {
		respondWithError(c, err)
		return
	}

	h.live.ServeWS(c.Writer, c.Request, jobNumber)
}

func (h *PublicHandler) PublicStats(c *gin.Context) {
	stats, err := h.tracking.PublicStats(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

func jobNumberParam(c *gin.Context) (int64, bool) {
	n, err := strconv.ParseInt(c.Param("job_number"), 10, 64)
	if err != nil || n <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid job number")
		return 0, false
	}
	return n, true
}
