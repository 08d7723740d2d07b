// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free from
// ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags
// 2. Persistence models contain all GORM annotations, indexes and table mappings
// 3. ToDomain/FromDomain convert between the two
// 4. Every tenant-owned model embeds TenantModel, which the tenant package stamps and authorizes
//
// Structure:
// - base.go: BaseModel and TenantModel
// - project.go: projects, employees, time entries, material usage, reports
// - billing.go: offers, invoices, tenant settings
package models
