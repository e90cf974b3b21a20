package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedAsset struct {
	ID       uint   `gorm:"primaryKey"`
	ItemCode string `gorm:"size:50;uniqueIndex"`
}

func setupTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, trace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedAsset{}))

	recorder := setupTestTracer(t)

	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))
	return db, otel.GetTracerProvider(), recorder
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db, tp, recorder := setupTracedDB(t, DefaultDBTracingConfig())

	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedAsset{ItemCode: "FA-001"}).Error)
	span.End()

	require.Len(t, recorder.Ended(), 1)
}

func TestDBTracingPlugin_AnnotatesQuerySpans(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.SlowQueryThresh = time.Nanosecond
	db, tp, recorder := setupTracedDB(t, cfg)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedAsset{ItemCode: "FA-001"}).Error)
	err := db.WithContext(ctx).Create(&tracedAsset{ItemCode: "FA-001"}).Error
	require.Error(t, err)
	parent.End()

	var annotated, failed int
	for _, s := range recorder.Ended() {
		attrs := attrMap(s.Attributes())
		if _, ok := attrs["db.slow_query"]; ok {
			annotated++
			assert.Equal(t, "traced_assets", attrs["db.sql.table"].AsString())
		}
		if s.Status().Code == codes.Error {
			failed++
		}
	}
	assert.GreaterOrEqual(t, annotated, 2)
	assert.GreaterOrEqual(t, failed, 1)
}
