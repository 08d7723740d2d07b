package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	tenantA int64 = 1
	tenantB int64 = 2
)

// newSQLiteDB opens an in-memory database with the full schema. An in-memory
// database lives per connection, so the pool is pinned to one.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var day = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

func seedProject(t *testing.T, db *gorm.DB, tenantID int64, name string) *project.Project {
	t.Helper()
	p, err := project.NewProject(tenantID, name, "Kunde "+name)
	require.NoError(t, err)
	require.NoError(t, NewGormProjectRepository(db).Save(context.Background(), p))
	return p
}

func seedEmployee(t *testing.T, db *gorm.DB, tenantID int64, rate string) *project.Employee {
	t.Helper()
	e, err := project.NewEmployee(tenantID, "Max", "Mustermann", dec(rate))
	require.NoError(t, err)
	require.NoError(t, NewGormEmployeeRepository(db).Save(context.Background(), e))
	return e
}

func seedOffer(t *testing.T, db *gorm.DB, p *project.Project, status billing.OfferStatus) *billing.Offer {
	t.Helper()
	o, err := billing.NewOffer(p.TenantID, p.ID, "Angebot "+p.Name, p.ClientName, billing.LineItems{
		{Description: "Fliesen verlegen", Quantity: dec("10"), Unit: "m²", UnitPrice: dec("45"), TotalPrice: dec("450"), ItemType: billing.ItemTypeService},
	})
	require.NoError(t, err)
	o.Status = status
	require.NoError(t, NewGormOfferRepository(db).Save(context.Background(), o))
	return o
}

func newInvoice(t *testing.T, p *project.Project, number string) *billing.Invoice {
	t.Helper()
	labor := dec("160")
	inv, err := billing.NewInvoiceFromCalculation(p.TenantID, p.ID, billing.CalculationResult{
		Subtotal:    dec("160"),
		TaxAmount:   dec("30.4"),
		TotalAmount: dec("190.4"),
		Items: billing.LineItems{{
			Description: "Arbeitsstunden - Max Mustermann", Quantity: dec("8"), Unit: "Std",
			UnitPrice: dec("20"), TotalPrice: dec("160"), ItemType: billing.ItemTypeLabor, LaborCost: &labor,
		}},
	}, number, p.ClientName, "", 30, day)
	require.NoError(t, err)
	return inv
}

func TestSchemaStatus(t *testing.T) {
	db := newSQLiteDB(t)

	status, err := SchemaStatus(db)
	require.NoError(t, err)
	require.Len(t, status, len(AllModels()))
	assert.Equal(t, "tenant_settings", status[0].Table)
	for _, s := range status {
		assert.True(t, s.Exists, s.Table)
	}

	require.NoError(t, db.Migrator().DropTable("invoices"))
	status, err = SchemaStatus(db)
	require.NoError(t, err)
	assert.Equal(t, TableStatus{Table: "invoices", Exists: false}, status[len(status)-1])
}
