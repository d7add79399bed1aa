package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGormLoggerWritesWarningsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := GormLogger(zap.New(core))
	ctx := context.Background()

	gl.Info(ctx, "connected to %s", "postgres")
	assert.Zero(t, logs.Len(), "info is below the gorm level")

	gl.Warn(ctx, "slow query on %s", "appointments")
	gl.Error(ctx, "failed to migrate %s", "invoices")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "gorm", entries[0].LoggerName)
	assert.Contains(t, entries[0].Message, "slow query on appointments")
	assert.Contains(t, entries[1].Message, "failed to migrate invoices")
}
