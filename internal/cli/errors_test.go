package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"nexus-pusher/pkg/errx"
)

func TestSentinelCodes(t *testing.T) {
	tests := []struct {
		sentinel error
		code     string
	}{
		{ErrImageRequired, errx.CodeCLI},
		{ErrPasswordFlagsConflict, errx.CodeCLI},
		{ErrReadConfigFailed, errx.CodeConfig},
		{ErrLoadEnvConfigFailed, errx.CodeConfig},
	}
	for _, tt := range tests {
		err := newWithSentinel(tt.sentinel, "boom")
		var e *errx.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, tt.code, e.Code())
		assert.ErrorIs(t, err, tt.sentinel)
	}
}

func TestWrapWithSentinelAndContext(t *testing.T) {
	cause := errors.New("permission denied")
	err := wrapWithSentinelAndContext(ErrReadConfigFailed, cause, "failed to read config file", map[string]any{"path": "/tmp/c.yaml"})

	assert.ErrorIs(t, err, ErrReadConfigFailed)
	assert.ErrorIs(t, err, cause)
	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "/tmp/c.yaml", e.Context()["path"])

	plain := newWithSentinel(nil, "no sentinel")
	require.ErrorAs(t, plain, &e)
	assert.Equal(t, errx.CodeCLI, e.Code())
}

func TestLogStructuredErrorRespectsDebugMode(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	err := wrapWithSentinelAndContext(ErrReadConfigFailed, errors.New("eof"), "failed to read config file", map[string]any{"path": "/tmp/c.yaml"})

	SetDebugMode(false)
	logStructuredError(logger, err, "Failed to load configuration")
	assert.Equal(t, 0, logs.Len())

	SetDebugMode(true)
	t.Cleanup(func() { SetDebugMode(false) })
	logStructuredError(logger, err, "Failed to load configuration")
	require.Equal(t, 1, logs.Len())

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, errx.CodeConfig, fields["error.code"])
	assert.Equal(t, "/tmp/c.yaml", fields["error.context.path"])
	assert.Equal(t, "eof", fields["error.cause"])
}
