package tenant

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type scopedRow struct {
	ID       int64
	TenantID int64
	Name     string
}

func (r *scopedRow) GetTenantID() int64   { return r.TenantID }
func (r *scopedRow) SetTenantID(id int64) { r.TenantID = id }

func (scopedRow) TableName() string { return "scoped_rows" }

type lookupRow struct {
	ID   int64
	Code string
}

func (lookupRow) TableName() string { return "lookup_rows" }

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func TestScope(t *testing.T) {
	t.Run("adds a qualified tenant condition", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "scoped_rows" WHERE "scoped_rows"."tenant_id" = $1`)).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}).AddRow(1, 42, "a"))

		var rows []scopedRow
		require.NoError(t, db.Scopes(Scope(42)).Find(&rows).Error)
		assert.Len(t, rows, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("combines with other conditions", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "scoped_rows" WHERE name = $1 AND "scoped_rows"."tenant_id" = $2`)).
			WithArgs("x", int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		var count int64
		require.NoError(t, db.Model(&scopedRow{}).Where("name = ?", "x").Scopes(Scope(7)).Count(&count).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no-op for models without tenant column", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "lookup_rows"`)).
			WithoutArgs().
			WillReturnRows(sqlmock.NewRows([]string{"id", "code"}))

		var rows []lookupRow
		require.NoError(t, db.Scopes(Scope(42)).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a non-positive tenant", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		var rows []scopedRow
		err := db.Scopes(Scope(0)).Find(&rows).Error
		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})
}

func TestAuthorize(t *testing.T) {
	row := &scopedRow{ID: 1, TenantID: 1}

	got, err := Authorize(row, 1, "Projekt nicht gefunden")
	require.NoError(t, err)
	assert.Same(t, row, got)

	for name, tc := range map[string]struct {
		record   *scopedRow
		tenantID int64
	}{
		"other tenant": {row, 2},
		"missing":      {nil, 1},
		"no tenant":    {row, 0},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Authorize(tc.record, tc.tenantID, "Projekt nicht gefunden")
			assert.Nil(t, got)
			assert.True(t, shared.HasCode(err, shared.CodeNotFound))
			assert.False(t, shared.HasCode(err, shared.CodeForbidden))
			assert.Equal(t, "Projekt nicht gefunden", err.Error())
		})
	}
}

func TestStamp(t *testing.T) {
	payload := &scopedRow{Name: "injected", TenantID: 99}
	stamped := Stamp(payload, 3)
	assert.Equal(t, int64(3), stamped.TenantID)
	assert.Same(t, payload, stamped)
}

func TestTenantDB(t *testing.T) {
	t.Run("uses the tenant from context", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "scoped_rows" WHERE "scoped_rows"."tenant_id" = $1`)).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		ctx := logger.WithTenantID(context.Background(), 5)
		var rows []scopedRow
		require.NoError(t, NewTenantDB(db).WithContext(ctx).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails without tenant", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		var rows []scopedRow
		err := NewTenantDB(db).WithContext(context.Background()).Find(&rows).Error
		assert.ErrorIs(t, err, ErrTenantIDRequired)

		err = NewTenantDB(db).Transaction(context.Background(), func(tx *gorm.DB) error { return nil })
		assert.ErrorIs(t, err, ErrTenantIDRequired)
	})

	t.Run("optional tenant leaves query unscoped", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "scoped_rows"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []scopedRow
		require.NoError(t, NewTenantDB(db).SetRequired(false).WithContext(context.Background()).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transaction is scoped", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "scoped_rows" SET "name"=$1 WHERE id = $2 AND "scoped_rows"."tenant_id" = $3`)).
			WithArgs("b", 1, int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ctx := logger.WithTenantID(context.Background(), 8)
		err := NewTenantDB(db).Transaction(ctx, func(tx *gorm.DB) error {
			return tx.Model(&scopedRow{}).Where("id = ?", 1).Update("name", "b").Error
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
