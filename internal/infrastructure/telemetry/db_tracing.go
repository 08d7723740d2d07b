package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/handwerk/backoffice/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterDBTracing installs the otelgorm plugin and a slow query detector on db.
// Query variables are left out of spans unless full SQL logging is enabled.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	slow := &slowQueryDetector{threshold: cfg.DBSlowQueryThresh, logger: logger}
	if err := slow.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", cfg.DBSlowQueryThresh),
	)
	return nil
}

// slowQueryDetector times every statement and flags the slow ones on the active span
type slowQueryDetector struct {
	threshold time.Duration
	logger    *zap.Logger
}

func (d *slowQueryDetector) register(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name     string
		register func(before bool) error
	}{
		{"create", func(before bool) error {
			if before {
				return cb.Create().Before("gorm:create").Register("otel_timing:before_create", d.before)
			}
			return cb.Create().After("gorm:create").Register("otel_slow_query:create", d.after)
		}},
		{"query", func(before bool) error {
			if before {
				return cb.Query().Before("gorm:query").Register("otel_timing:before_query", d.before)
			}
			return cb.Query().After("gorm:query").Register("otel_slow_query:query", d.after)
		}},
		{"update", func(before bool) error {
			if before {
				return cb.Update().Before("gorm:update").Register("otel_timing:before_update", d.before)
			}
			return cb.Update().After("gorm:update").Register("otel_slow_query:update", d.after)
		}},
		{"delete", func(before bool) error {
			if before {
				return cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", d.before)
			}
			return cb.Delete().After("gorm:delete").Register("otel_slow_query:delete", d.after)
		}},
		{"row", func(before bool) error {
			if before {
				return cb.Row().Before("gorm:row").Register("otel_timing:before_row", d.before)
			}
			return cb.Row().After("gorm:row").Register("otel_slow_query:row", d.after)
		}},
		{"raw", func(before bool) error {
			if before {
				return cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", d.before)
			}
			return cb.Raw().After("gorm:raw").Register("otel_slow_query:raw", d.after)
		}},
	}
	for _, h := range hooks {
		if err := h.register(true); err != nil {
			return err
		}
		if err := h.register(false); err != nil {
			return err
		}
	}
	return nil
}

func (d *slowQueryDetector) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (d *slowQueryDetector) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			RecordError(span, db.Error)
		}
	}

	if d.threshold <= 0 || elapsed <= d.threshold {
		return
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	d.logger.Warn("slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Duration("threshold", d.threshold),
		zap.String("trace_id", GetTraceID(ctx)),
	)
}
