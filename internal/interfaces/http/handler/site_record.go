package handler

import (
	"github.com/gin-gonic/gin"
	projectapp "github.com/handwerk/backoffice/internal/application/project"
)

// SiteRecordHandler handles time entries, material usage and site reports
type SiteRecordHandler struct {
	BaseHandler
	records *projectapp.SiteRecordService
}

// NewSiteRecordHandler creates a new SiteRecordHandler
func NewSiteRecordHandler(records *projectapp.SiteRecordService) *SiteRecordHandler {
	return &SiteRecordHandler{records: records}
}

// CreateTimeEntry godoc
// @Summary  Record worked hours on a project
// @Tags     time-entries
// @Router   /projects/{id}/time-entries [post]
func (h *SiteRecordHandler) CreateTimeEntry(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req projectapp.CreateTimeEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.records.RecordTime(c.Request.Context(), caller, projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListTimeEntries godoc
// @Summary  List a project's time entries, the last 30 days unless a range is given
// @Tags     time-entries
// @Router   /projects/{id}/time-entries [get]
func (h *SiteRecordHandler) ListTimeEntries(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q projectapp.DateRangeQuery
	if !h.bindQuery(c, &q) {
		return
	}
	resp, err := h.records.ListTimeEntries(c.Request.Context(), caller, projectID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateTimeEntry godoc
// @Summary  Edit a time entry; the reason is recorded with the editor
// @Tags     time-entries
// @Router   /time-entries/{id} [put]
func (h *SiteRecordHandler) UpdateTimeEntry(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	entryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req projectapp.UpdateTimeEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.records.EditTimeEntry(c.Request.Context(), caller, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateMaterial godoc
// @Summary  Record material used on a project
// @Tags     materials
// @Router   /projects/{id}/materials [post]
func (h *SiteRecordHandler) CreateMaterial(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req projectapp.CreateMaterialUsageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.records.RecordMaterial(c.Request.Context(), caller, projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListMaterials returns a project's material usage
func (h *SiteRecordHandler) ListMaterials(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q projectapp.DateRangeQuery
	if !h.bindQuery(c, &q) {
		return
	}
	resp, err := h.records.ListMaterials(c.Request.Context(), caller, projectID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateReport godoc
// @Summary  File a site report
// @Tags     reports
// @Router   /projects/{id}/reports [post]
func (h *SiteRecordHandler) CreateReport(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req projectapp.CreateReportRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.records.FileReport(c.Request.Context(), caller, projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListReports returns a project's site reports
func (h *SiteRecordHandler) ListReports(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q projectapp.DateRangeQuery
	if !h.bindQuery(c, &q) {
		return
	}
	resp, err := h.records.ListReports(c.Request.Context(), caller, projectID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
