package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	billingapp "github.com/handwerk/backoffice/internal/application/billing"
	projectapp "github.com/handwerk/backoffice/internal/application/project"
	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence"
	"github.com/handwerk/backoffice/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const tenantID int64 = 1

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type handlerFixture struct {
	t         *testing.T
	engine    *gin.Engine
	projectID int64
	entryID   int64
}

// newHandlerFixture serves the generation and time entry handlers over an
// in-memory database holding one project with eight hours at 50/h
func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	projects := persistence.NewGormProjectRepository(db)
	employees := persistence.NewGormEmployeeRepository(db)
	timeEntries := persistence.NewGormTimeEntryRepository(db)
	materials := persistence.NewGormMaterialUsageRepository(db)
	reports := persistence.NewGormReportRepository(db)

	invoicing := billingapp.NewInvoicingService(billingapp.Repositories{
		Projects:    projects,
		Employees:   employees,
		TimeEntries: timeEntries,
		Materials:   materials,
		Reports:     reports,
		Offers:      persistence.NewGormOfferRepository(db),
		Invoices:    persistence.NewGormInvoiceRepository(db),
		Settings:    persistence.NewGormSettingsRepository(db),
	}, persistence.NewDBInvoiceSequence(db), persistence.NewGormTransactionScope(db))
	records := projectapp.NewSiteRecordService(projects, employees, timeEntries, materials, reports)

	ctx := context.Background()
	admin := identity.Caller{TenantID: tenantID, UserID: 1, Role: identity.RoleAdmin}
	proj, err := projectapp.NewProjectService(projects).Create(ctx, admin, projectapp.CreateProjectRequest{
		Name: "Badsanierung", ClientName: "Familie Roth", Address: "Lindenweg 4, Bonn",
	})
	require.NoError(t, err)
	emp, err := projectapp.NewEmployeeService(employees).Create(ctx, admin, projectapp.CreateEmployeeRequest{
		FirstName: "Jonas", LastName: "Keller", HourlyRate: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	entry, err := records.RecordTime(ctx, admin, proj.ID, projectapp.CreateTimeEntryRequest{
		EmployeeID: emp.ID, WorkDate: "2024-06-28", HoursWorked: decimal.NewFromInt(8),
	})
	require.NoError(t, err)

	generation := NewInvoiceGenerationHandler(invoicing)
	siteRecords := NewSiteRecordHandler(records)

	engine := gin.New()
	api := engine.Group("/api/v1", injectCaller)
	api.POST("/invoice-generation/summary", generation.Summary)
	api.POST("/invoice-generation/export", generation.Export)
	api.POST("/invoice-generation/validate", generation.Validate)
	api.POST("/invoice-generation/auto/:project_id", generation.AutoGenerate)
	api.PUT("/time-entries/:id", siteRecords.UpdateTimeEntry)

	return &handlerFixture{t: t, engine: engine, projectID: proj.ID, entryID: entry.ID}
}

func injectCaller(c *gin.Context) {
	role := identity.Role(c.GetHeader("X-Test-Role"))
	if caller, err := identity.NewCaller(tenantID, 7, role); err == nil {
		c.Set(middleware.CallerKey, caller)
	}
	c.Next()
}

func (f *handlerFixture) send(role identity.Role, method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Role", string(role))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if into != nil {
		require.NoError(t, json.Unmarshal(env.Data, into))
	}
	return env
}

func (f *handlerFixture) june() map[string]any {
	return map[string]any{
		"project_id":        f.projectID,
		"generation_method": "time_entries",
		"start_date":        "2024-06-01",
		"end_date":          "2024-06-30",
		"tax_rate":          "19",
	}
}

func TestInvoiceGenerationHandler_Export(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("csv", func(t *testing.T) {
		w := f.send(identity.RoleBuchhalter, http.MethodPost, "/invoice-generation/export?format=CSV", f.june())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="rechnung.csv"`, w.Header().Get("Content-Disposition"))

		rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"Beschreibung", "Menge", "Einheit", "Einzelpreis", "Gesamtpreis", "Typ"}, rows[0])
		assert.Equal(t, []string{"Arbeitsstunden - Jonas Keller", "8", "Std", "50.00", "400.00", "labor"}, rows[1])
	})

	t.Run("json is the default", func(t *testing.T) {
		w := f.send(identity.RoleBuchhalter, http.MethodPost, "/invoice-generation/export", f.june())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Empty(t, w.Header().Get("Content-Disposition"))

		var doc struct {
			Totals map[string]string `json:"totals"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "476.00", doc.Totals["total_amount"])
	})

	t.Run("unknown format", func(t *testing.T) {
		w := f.send(identity.RoleBuchhalter, http.MethodPost, "/invoice-generation/export?format=pdf", f.june())
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ARGUMENT", decode(t, w, nil).Error.Code)
	})
}

func TestInvoiceGenerationHandler_Summary(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.send(identity.RoleBuchhalter, http.MethodPost, "/invoice-generation/summary", f.june())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary struct {
		Summary struct {
			TotalItems     int    `json:"total_items"`
			Subtotal       string `json:"subtotal"`
			TaxAmount      string `json:"tax_amount"`
			TotalAmount    string `json:"total_amount"`
			TotalFormatted string `json:"total_formatted"`
		} `json:"summary"`
		Breakdown struct {
			LaborItems    []any `json:"labor_items"`
			MaterialItems []any `json:"material_items"`
		} `json:"breakdown"`
	}
	decode(t, w, &summary)
	assert.Equal(t, 1, summary.Summary.TotalItems)
	assert.Equal(t, "400.00", summary.Summary.Subtotal)
	assert.Equal(t, "76.00", summary.Summary.TaxAmount)
	assert.Equal(t, "476.00", summary.Summary.TotalAmount)
	assert.Contains(t, summary.Summary.TotalFormatted, "476,00")
	assert.Len(t, summary.Breakdown.LaborItems, 1)
	assert.Empty(t, summary.Breakdown.MaterialItems)

	w = f.send(identity.RoleMitarbeiter, http.MethodPost, "/invoice-generation/summary", f.june())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvoiceGenerationHandler_Validate(t *testing.T) {
	f := newHandlerFixture(t)

	tests := []struct {
		name   string
		body   map[string]any
		code   int
		valid  bool
		errors []string
	}{
		{"billable project", f.june(), http.StatusOK, true, []string{}},
		{"unknown project is reported", map[string]any{"project_id": 999}, http.StatusOK, false, []string{"Projekt nicht gefunden"}},
		{"missing project id", map[string]any{}, http.StatusBadRequest, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.send(identity.RoleBuchhalter, http.MethodPost, "/invoice-generation/validate", tt.body)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			var report struct {
				Valid  bool     `json:"valid"`
				Errors []string `json:"errors"`
			}
			decode(t, w, &report)
			assert.Equal(t, tt.valid, report.Valid)
			assert.Equal(t, tt.errors, report.Errors)
		})
	}
}

func TestInvoiceGenerationHandler_AutoGenerate(t *testing.T) {
	f := newHandlerFixture(t)
	path := fmt.Sprintf("/invoice-generation/auto/%d", f.projectID)

	t.Run("empty range has nothing to bill", func(t *testing.T) {
		w := f.send(identity.RoleBuchhalter, http.MethodPost, path, map[string]any{"start_date": "2024-01-01", "end_date": "2024-01-31"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ARGUMENT", decode(t, w, nil).Error.Code)
	})

	t.Run("bills the project's client", func(t *testing.T) {
		w := f.send(identity.RoleBuchhalter, http.MethodPost, path, map[string]any{"start_date": "2024-06-01", "end_date": "2024-06-30"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var inv struct {
			InvoiceNumber string `json:"invoice_number"`
			ClientName    string `json:"client_name"`
			ClientAddress string `json:"client_address"`
			Subtotal      string `json:"subtotal"`
			TotalAmount   string `json:"total_amount"`
			Status        string `json:"status"`
		}
		decode(t, w, &inv)
		assert.Equal(t, "Familie Roth", inv.ClientName)
		assert.Equal(t, "Lindenweg 4, Bonn", inv.ClientAddress)
		assert.Equal(t, "400.00", inv.Subtotal)
		assert.Equal(t, "476.00", inv.TotalAmount)
		assert.Equal(t, "entwurf", inv.Status)
		assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "RE-"), inv.InvoiceNumber)
	})

	t.Run("invalid path id", func(t *testing.T) {
		w := f.send(identity.RoleBuchhalter, http.MethodPost, "/invoice-generation/auto/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSiteRecordHandler_UpdateTimeEntry(t *testing.T) {
	f := newHandlerFixture(t)
	path := fmt.Sprintf("/time-entries/%d", f.entryID)

	t.Run("edit recomputes cost and records the editor", func(t *testing.T) {
		w := f.send(identity.RoleMitarbeiter, http.MethodPut, path, map[string]any{
			"hours_worked": "6.5",
			"work_date":    "2024-06-27",
			"edit_reason":  "Pause nicht abgezogen",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var entry projectapp.TimeEntryResponse
		decode(t, w, &entry)
		assert.True(t, entry.HoursWorked.Equal(decimal.RequireFromString("6.5")))
		assert.True(t, entry.TotalCost.Equal(decimal.NewFromInt(325)), "cost %s", entry.TotalCost)
		assert.Equal(t, "2024-06-27", entry.WorkDate.Format("2006-01-02"))
		assert.True(t, entry.IsEdited)
		assert.Equal(t, "Pause nicht abgezogen", entry.EditReason)
		require.NotNil(t, entry.EditedBy)
		assert.Equal(t, int64(7), *entry.EditedBy)
	})

	t.Run("reason is required", func(t *testing.T) {
		w := f.send(identity.RoleMitarbeiter, http.MethodPut, path, map[string]any{"hours_worked": "7"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("hours above a day are rejected", func(t *testing.T) {
		w := f.send(identity.RoleMitarbeiter, http.MethodPut, path, map[string]any{"hours_worked": "25", "edit_reason": "Tippfehler"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown entry", func(t *testing.T) {
		w := f.send(identity.RoleMitarbeiter, http.MethodPut, "/time-entries/999", map[string]any{"edit_reason": "Korrektur"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decode(t, w, nil).Error.Code)
	})
}
