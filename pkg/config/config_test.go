package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should load defaults", func(t *testing.T) {
		cfg, err := Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
		assert.Equal(t, "default", cfg.Temporal.Namespace)
		assert.Equal(t, "info", cfg.Runtime.LogLevel)
	})
	t.Run("Should let environment variables override defaults", func(t *testing.T) {
		t.Setenv("TASKPACT_TEMPORAL_HOST_PORT", "temporal.internal:7233")
		t.Setenv("TASKPACT_TEMPORAL_NAMESPACE", "production")
		t.Setenv("TASKPACT_RUNTIME_LOG_LEVEL", "debug")
		cfg, err := Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "temporal.internal:7233", cfg.Temporal.HostPort)
		assert.Equal(t, "production", cfg.Temporal.Namespace)
		assert.Equal(t, "debug", cfg.Runtime.LogLevel)
	})
	t.Run("Should reject an invalid log level", func(t *testing.T) {
		t.Setenv("TASKPACT_RUNTIME_LOG_LEVEL", "loud")
		_, err := Load(context.Background())
		assert.Error(t, err)
	})
	t.Run("Should reject a malformed host port", func(t *testing.T) {
		t.Setenv("TASKPACT_TEMPORAL_HOST_PORT", "not a hostport")
		_, err := Load(context.Background())
		assert.Error(t, err)
	})
}
