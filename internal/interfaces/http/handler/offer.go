package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/handwerk/backoffice/internal/application/billing"
)

// OfferHandler handles offer endpoints
type OfferHandler struct {
	BaseHandler
	offers *billingapp.OfferService
}

// NewOfferHandler creates a new OfferHandler
func NewOfferHandler(offers *billingapp.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

// Create godoc
// @Summary  Create an offer for a project
// @Tags     offers
// @Router   /projects/{id}/offers [post]
func (h *OfferHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req billingapp.CreateOfferRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.offers.Create(c.Request.Context(), caller, projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListByProject returns the offers of a project
func (h *OfferHandler) ListByProject(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.offers.ListByProject(c.Request.Context(), caller, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one offer
func (h *OfferHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.offers.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateStatus godoc
// @Summary  Move an offer through entwurf, versendet, angenommen or abgelehnt
// @Tags     offers
// @Router   /offers/{id}/status [put]
func (h *OfferHandler) UpdateStatus(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateOfferStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.offers.ChangeStatus(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
