package models

import (
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TenantModel extends BaseModel with the tenant partitioning key
type TenantModel struct {
	BaseModel
	TenantID int64 `gorm:"not null;index"`
}

// GetTenantID returns the owning tenant
func (m *TenantModel) GetTenantID() int64 {
	return m.TenantID
}

// SetTenantID sets the owning tenant; only used when stamping new rows
func (m *TenantModel) SetTenantID(id int64) {
	m.TenantID = id
}

// FromDomainTenantEntity populates TenantModel from a domain TenantEntity
func (m *TenantModel) FromDomainTenantEntity(e shared.TenantEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
	m.TenantID = e.TenantID
}

// ToDomainTenantEntity converts the common fields back to a domain TenantEntity
func (m *TenantModel) ToDomainTenantEntity() shared.TenantEntity {
	return shared.TenantEntity{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID: m.TenantID,
	}
}
