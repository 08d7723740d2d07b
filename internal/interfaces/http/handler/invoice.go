package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/handwerk/backoffice/internal/application/billing"
)

// InvoiceHandler handles persisted invoices and tenant invoicing settings
type InvoiceHandler struct {
	BaseHandler
	invoicing *billingapp.InvoicingService
	settings  *billingapp.SettingsService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoicing *billingapp.InvoicingService, settings *billingapp.SettingsService) *InvoiceHandler {
	return &InvoiceHandler{invoicing: invoicing, settings: settings}
}

// FromOffer godoc
// @Summary  Convert an accepted offer into a draft invoice
// @Tags     invoices
// @Router   /invoices/from-offer/{offer_id} [post]
func (h *InvoiceHandler) FromOffer(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	offerID, ok := h.pathID(c, "offer_id")
	if !ok {
		return
	}
	resp, err := h.invoicing.FromOffer(c.Request.Context(), caller, offerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary  List invoices with paging, search, project and status filters
// @Tags     invoices
// @Router   /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var filter billingapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.invoicing.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListByProject returns the invoices of one project
func (h *InvoiceHandler) ListByProject(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var filter billingapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.invoicing.ListByProject(c.Request.Context(), caller, projectID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Revenue returns the sum of the tenant's paid invoices
func (h *InvoiceHandler) Revenue(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	resp, err := h.invoicing.TotalRevenue(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.invoicing.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStatus godoc
// @Summary  Move an invoice along entwurf, versendet, bezahlt, abgerechnet or storniert
// @Tags     invoices
// @Router   /invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateInvoiceStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.invoicing.UpdateStatus(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetSettings returns the tenant's invoicing settings
func (h *InvoiceHandler) GetSettings(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	resp, err := h.settings.Get(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateSettings godoc
// @Summary  Change invoice prefix, payment terms or default tax rate
// @Tags     settings
// @Router   /settings/invoicing [put]
func (h *InvoiceHandler) UpdateSettings(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req billingapp.UpdateSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.settings.Update(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
