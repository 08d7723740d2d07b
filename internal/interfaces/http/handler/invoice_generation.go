package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingapp "github.com/handwerk/backoffice/internal/application/billing"
	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceGenerationHandler exposes the invoice generation engine
type InvoiceGenerationHandler struct {
	BaseHandler
	invoicing *billingapp.InvoicingService
}

// NewInvoiceGenerationHandler creates a new InvoiceGenerationHandler
func NewInvoiceGenerationHandler(invoicing *billingapp.InvoicingService) *InvoiceGenerationHandler {
	return &InvoiceGenerationHandler{invoicing: invoicing}
}

// AutoGenerateRequest is the optional body of the auto-generate endpoint.
// The project comes from the path.
type AutoGenerateRequest struct {
	GenerationMethod    string           `json:"generation_method" binding:"omitempty,generation_method"`
	StartDate           string           `json:"start_date"`
	EndDate             string           `json:"end_date"`
	IncludeMaterials    *bool            `json:"include_materials"`
	IncludeLabor        *bool            `json:"include_labor"`
	TaxRate             *decimal.Decimal `json:"tax_rate" binding:"omitempty,decimal_range=0 100"`
	LaborCostPercentage *decimal.Decimal `json:"labor_cost_percentage" binding:"omitempty,decimal_range=0 100"`
}

// Methods godoc
// @Summary  List generation methods and the mandatory invoice fields
// @Tags     invoice-generation
// @Router   /invoice-generation/methods [get]
func (h *InvoiceGenerationHandler) Methods(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	resp, err := h.invoicing.Methods(caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Calculate godoc
// @Summary  Compute invoice positions and totals without persisting them
// @Tags     invoice-generation
// @Router   /invoice-generation/calculate [post]
func (h *InvoiceGenerationHandler) Calculate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req billingapp.CalculateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.invoicing.Calculate(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Summary returns counts, totals and a per item type breakdown of a calculation
func (h *InvoiceGenerationHandler) Summary(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req billingapp.CalculateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.invoicing.Summary(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Export godoc
// @Summary  Export a calculation as JSON or CSV (?format=json|csv)
// @Tags     invoice-generation
// @Produce  json,text/csv
// @Router   /invoice-generation/export [post]
func (h *InvoiceGenerationHandler) Export(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req billingapp.CalculateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	format := billing.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(billing.ExportJSON))))
	data, contentType, err := h.invoicing.Export(c.Request.Context(), caller, req, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if format == billing.ExportCSV {
		c.Header("Content-Disposition", `attachment; filename="rechnung.csv"`)
	}
	c.Data(http.StatusOK, contentType, data)
}

// Validate reports whether a project has billable data for the requested range
func (h *InvoiceGenerationHandler) Validate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req billingapp.CalculateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.invoicing.Validate(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Materialize godoc
// @Summary  Persist a calculation as a draft invoice
// @Tags     invoice-generation
// @Router   /invoice-generation/materialize [post]
func (h *InvoiceGenerationHandler) Materialize(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req billingapp.MaterializeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.invoicing.Materialize(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// AutoGenerate godoc
// @Summary  Calculate and materialize in one step, hybrid unless a method is given
// @Tags     invoice-generation
// @Router   /invoice-generation/auto/{project_id} [post]
func (h *InvoiceGenerationHandler) AutoGenerate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "project_id")
	if !ok {
		return
	}
	var body AutoGenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.bindFailed(c, err)
		return
	}
	req := billingapp.CalculateRequest{
		ProjectID:           projectID,
		GenerationMethod:    body.GenerationMethod,
		StartDate:           body.StartDate,
		EndDate:             body.EndDate,
		IncludeMaterials:    body.IncludeMaterials,
		IncludeLabor:        body.IncludeLabor,
		TaxRate:             body.TaxRate,
		LaborCostPercentage: body.LaborCostPercentage,
	}
	resp, err := h.invoicing.AutoGenerate(c.Request.Context(), caller, projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
