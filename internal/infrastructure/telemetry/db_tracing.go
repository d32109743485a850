package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/bizops/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include query variables in spans (never in production)
	SlowQueryThresh time.Duration
	DBSystem        string
	TracerProvider  trace.TracerProvider // nil means the global provider
}

// DBTracingConfigFrom builds the tracing config of the given database driver
func DBTracingConfigFrom(cfg config.TelemetryConfig, driver string) DBTracingConfig {
	c := DefaultDBTracingConfig()
	c.Enabled = cfg.DBTraceEnabled
	c.LogFullSQL = cfg.DBLogFullSQL
	if cfg.DBSlowQueryThresh > 0 {
		c.SlowQueryThresh = cfg.DBSlowQueryThresh
	}
	if driver == "sqlite" {
		c.DBSystem = "sqlite"
	}
	return c
}

// DefaultDBTracingConfig returns the default database tracing configuration
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin installs otelgorm plus a callback marking slow and failed
// statements on their spans.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type queryStartKey struct{}

// gorm processors the timing callbacks attach to
var tracedProcessors = []string{"create", "query", "update", "delete", "row", "raw"}

// RegisterOtelGorm registers otelgorm and the timing callbacks on db
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	for _, name := range tracedProcessors {
		if err := p.register(db, name); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// register installs markStart before the gorm processor and annotate after
// it. annotate runs ahead of otelgorm's "otel:after:*" hook, which ends the
// span.
func (p *DBTracingPlugin) register(db *gorm.DB, name string) error {
	cb := db.Callback()
	switch name {
	case "create":
		if err := cb.Create().Before("gorm:create").Register("ledger_timing:before_create", markStart); err != nil {
			return err
		}
		return cb.Create().After("gorm:create").Before("otel:after:create").Register("ledger_timing:after_create", p.annotate)
	case "query":
		if err := cb.Query().Before("gorm:query").Register("ledger_timing:before_query", markStart); err != nil {
			return err
		}
		return cb.Query().After("gorm:query").Before("otel:after:select").Register("ledger_timing:after_query", p.annotate)
	case "update":
		if err := cb.Update().Before("gorm:update").Register("ledger_timing:before_update", markStart); err != nil {
			return err
		}
		return cb.Update().After("gorm:update").Before("otel:after:update").Register("ledger_timing:after_update", p.annotate)
	case "delete":
		if err := cb.Delete().Before("gorm:delete").Register("ledger_timing:before_delete", markStart); err != nil {
			return err
		}
		return cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("ledger_timing:after_delete", p.annotate)
	case "row":
		if err := cb.Row().Before("gorm:row").Register("ledger_timing:before_row", markStart); err != nil {
			return err
		}
		return cb.Row().After("gorm:row").Before("otel:after:row").Register("ledger_timing:after_row", p.annotate)
	case "raw":
		if err := cb.Raw().Before("gorm:raw").Register("ledger_timing:before_raw", markStart); err != nil {
			return err
		}
		return cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("ledger_timing:after_raw", p.annotate)
	}
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// annotate adds row counts, table, error status and slow query markers to
// the statement span. A zero-row UPDATE is the optimistic-lock miss of the
// ledger repositories and is tagged as such.
func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
	if db.Error == nil && db.RowsAffected == 0 && isVersionedUpdate(db) {
		span.SetAttributes(attribute.Bool("db.version_conflict", true))
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

func isVersionedUpdate(db *gorm.DB) bool {
	if db.Statement.Table != "customers" && db.Statement.Table != "materials" {
		return false
	}
	_, ok := db.Statement.Clauses["UPDATE"]
	return ok
}
