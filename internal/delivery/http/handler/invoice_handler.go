package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logipro/internal/usecase/invoice"
	"logipro/pkg/utils"
)

type InvoiceHandler struct {
	service *invoice.Service
}

func NewInvoiceHandler(service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

func (h *InvoiceHandler) RegisterStaffRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("/:id/record-payment", h.RecordPayment)
		invoices.POST("/:id/send", h.Send)
		invoices.POST("/:id/void", h.Void)
	}

	taxRules := router.Group("/tax-rules")
	{
		taxRules.GET("", h.ListTaxRules)
		taxRules.POST("", h.CreateTaxRule)
		taxRules.PATCH("/:id", h.UpdateTaxRule)
	}
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var req invoice.ListInvoicesRequest
	if !bindQuery(c, &req) {
		return
	}
	var ok bool
	if req.JobID, ok = queryUUID(c, "job_id"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invoices retrieved successfully", result)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Get(c.Request.Context(), invoiceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invoice retrieved successfully", result)
}

func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req invoice.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.RecordPayment(c.Request.Context(), p, invoiceID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment recorded", result)
}

func (h *InvoiceHandler) Send(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Send(c.Request.Context(), p, invoiceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invoice sent", result)
}

func (h *InvoiceHandler) Void(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	invoiceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Void(c.Request.Context(), p, invoiceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invoice voided", result)
}

func (h *InvoiceHandler) ListTaxRules(c *gin.Context) {
	result, err := h.service.ListTaxRules(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Tax rules retrieved successfully", result)
}

func (h *InvoiceHandler) CreateTaxRule(c *gin.Context) {
	var req invoice.CreateTaxRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateTaxRule(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Tax rule created successfully", result)
}

func (h *InvoiceHandler) UpdateTaxRule(c *gin.Context) {
	ruleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req invoice.UpdateTaxRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.UpdateTaxRule(c.Request.Context(), ruleID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Tax rule updated successfully", result)
}
