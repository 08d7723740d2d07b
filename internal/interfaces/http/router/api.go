package router

import (
	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/interfaces/http/handler"
	"github.com/handwerk/backoffice/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers mounted under /api/v1
type Handlers struct {
	Projects   *handler.ProjectHandler
	Records    *handler.SiteRecordHandler
	Offers     *handler.OfferHandler
	Generation *handler.InvoiceGenerationHandler
	Invoices   *handler.InvoiceHandler
}

// RegisterAPI registers the back office routes, each group behind the capability it needs.
// Services check capabilities again; the middleware answers early.
func RegisterAPI(r *Router, h Handlers) *Router {
	operations := middleware.RequireCapability(identity.CapabilityOperations)
	billing := middleware.RequireCapability(identity.CapabilityBilling)
	administration := middleware.RequireCapability(identity.CapabilityAdministration)

	projects := NewDomainGroup("projects", "/projects").Use(operations)
	projects.POST("", h.Projects.Create)
	projects.GET("", h.Projects.List)
	projects.GET("/:id", h.Projects.Get)
	projects.PUT("/:id", h.Projects.Update)
	projects.DELETE("/:id", administration, h.Projects.Delete)
	projects.POST("/:id/time-entries", h.Records.CreateTimeEntry)
	projects.GET("/:id/time-entries", h.Records.ListTimeEntries)
	projects.POST("/:id/materials", h.Records.CreateMaterial)
	projects.GET("/:id/materials", h.Records.ListMaterials)
	projects.POST("/:id/reports", h.Records.CreateReport)
	projects.GET("/:id/reports", h.Records.ListReports)

	employees := NewDomainGroup("employees", "/employees").Use(operations)
	employees.POST("", h.Projects.CreateEmployee)
	employees.GET("", h.Projects.ListEmployees)
	employees.GET("/:id", h.Projects.GetEmployee)

	timeEntries := NewDomainGroup("time-entries", "/time-entries").Use(operations)
	timeEntries.PUT("/:id", h.Records.UpdateTimeEntry)

	projectBilling := NewDomainGroup("project-billing", "/projects").Use(billing)
	projectBilling.POST("/:id/offers", h.Offers.Create)
	projectBilling.GET("/:id/offers", h.Offers.ListByProject)
	projectBilling.GET("/:id/invoices", h.Invoices.ListByProject)

	offers := NewDomainGroup("offers", "/offers").Use(billing)
	offers.GET("/:id", h.Offers.Get)
	offers.PUT("/:id/status", h.Offers.UpdateStatus)

	generation := NewDomainGroup("invoice-generation", "/invoice-generation").Use(billing)
	generation.GET("/methods", h.Generation.Methods)
	generation.POST("/calculate", h.Generation.Calculate)
	generation.POST("/summary", h.Generation.Summary)
	generation.POST("/export", h.Generation.Export)
	generation.POST("/validate", h.Generation.Validate)
	generation.POST("/materialize", h.Generation.Materialize)
	generation.POST("/auto/:project_id", h.Generation.AutoGenerate)

	invoices := NewDomainGroup("invoices", "/invoices").Use(billing)
	invoices.GET("", h.Invoices.List)
	invoices.GET("/revenue", h.Invoices.Revenue)
	invoices.GET("/:id", h.Invoices.Get)
	invoices.PUT("/:id/status", h.Invoices.UpdateStatus)
	invoices.POST("/from-offer/:offer_id", h.Invoices.FromOffer)

	settings := NewDomainGroup("settings", "/settings").Use(billing)
	settings.GET("/invoicing", h.Invoices.GetSettings)
	settings.PUT("/invoicing", administration, h.Invoices.UpdateSettings)

	return r.Register(projects).
		Register(employees).
		Register(timeEntries).
		Register(projectBilling).
		Register(offers).
		Register(generation).
		Register(invoices).
		Register(settings)
}
