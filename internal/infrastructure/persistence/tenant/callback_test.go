package tenant

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantCallback(t *testing.T) {
	t.Run("adds tenant filter from context", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()
		require.NoError(t, EnableAutoTenantFilter(db, true))

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "scoped_rows" WHERE "scoped_rows"."tenant_id" = $1`)).
			WithArgs(int64(11)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []scopedRow
		ctx := logger.WithTenantID(context.Background(), 11)
		require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not duplicate an explicit condition", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()
		require.NoError(t, EnableAutoTenantFilter(db, true))

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "scoped_rows" WHERE tenant_id = $1`)).
			WithArgs(11).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []scopedRow
		ctx := logger.WithTenantID(context.Background(), 11)
		require.NoError(t, db.WithContext(ctx).Where("tenant_id = ?", 11).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires tenant for tenant tables", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()
		require.NoError(t, EnableAutoTenantFilter(db, true))

		var rows []scopedRow
		err := db.WithContext(context.Background()).Find(&rows).Error
		assert.ErrorIs(t, err, ErrTenantIDRequired)
	})

	t.Run("skips tables without tenant column", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()
		require.NoError(t, EnableAutoTenantFilter(db, true))

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "lookup_rows"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "code"}))

		var rows []lookupRow
		require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters deletes", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()
		require.NoError(t, EnableAutoTenantFilter(db, false))

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "scoped_rows" WHERE "scoped_rows"."id" = $1 AND "scoped_rows"."tenant_id" = $2`)).
			WithArgs(3, int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ctx := logger.WithTenantID(context.Background(), 4)
		require.NoError(t, db.WithContext(ctx).Delete(&scopedRow{}, 3).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("can be removed", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()
		require.NoError(t, EnableAutoTenantFilter(db, true))
		DisableAutoTenantFilter(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "scoped_rows"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []scopedRow
		require.NoError(t, db.Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
