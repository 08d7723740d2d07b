package handler

import (
	"github.com/gin-gonic/gin"
	projectapp "github.com/handwerk/backoffice/internal/application/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
)

// ProjectHandler handles project and employee endpoints
type ProjectHandler struct {
	BaseHandler
	projects  *projectapp.ProjectService
	employees *projectapp.EmployeeService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects *projectapp.ProjectService, employees *projectapp.EmployeeService) *ProjectHandler {
	return &ProjectHandler{projects: projects, employees: employees}
}

// Create godoc
// @Summary  Create a project
// @Tags     projects
// @Router   /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req projectapp.CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.projects.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary  Get a project
// @Tags     projects
// @Router   /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.projects.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary  List projects with paging, search and status filter
// @Tags     projects
// @Router   /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var filter projectapp.ProjectListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.projects.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary  Update a project
// @Tags     projects
// @Router   /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req projectapp.UpdateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.projects.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary  Delete a project with all of its records
// @Tags     projects
// @Router   /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// EmployeeListQuery holds the paging parameters of the employee list
type EmployeeListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
}

// CreateEmployee godoc
// @Summary  Create an employee
// @Tags     employees
// @Router   /employees [post]
func (h *ProjectHandler) CreateEmployee(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req projectapp.CreateEmployeeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.employees.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetEmployee returns one employee of the caller's tenant
func (h *ProjectHandler) GetEmployee(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.employees.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListEmployees godoc
// @Summary  List employees
// @Tags     employees
// @Router   /employees [get]
func (h *ProjectHandler) ListEmployees(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var q EmployeeListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := shared.DefaultFilter()
	filter.OrderBy = "last_name"
	filter.OrderDir = "asc"
	filter.Search = q.Search
	if q.Page > 0 {
		filter.Page = q.Page
	}
	filter.PageSize = 50
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	items, total, err := h.employees.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
