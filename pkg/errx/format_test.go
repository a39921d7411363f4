package errx

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestFormat_UserString(t *testing.T) {
	t.Run("errx message", func(t *testing.T) {
		assert.Equal(t, "pull failed", UserString(Command("pull failed")))
	})
	t.Run("errx wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("step pulling: %w", Command("pull failed"))
		assert.Equal(t, "pull failed", UserString(err))
	})
	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, "boom", UserString(errors.New("boom")))
	})
	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, UserString(nil))
	})
}

func TestFormat_IsError(t *testing.T) {
	assert.True(t, IsError(Pipeline("x")))
	assert.True(t, IsError(fmt.Errorf("wrapped: %w", Pipeline("x"))))
	assert.False(t, IsError(errors.New("x")))
	assert.False(t, IsError(nil))
}

func TestFormat_DebugString(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		got := DebugString(New(CodeCLI, DescCLI, "image is required"))
		want := `1: *errx.Error: image is required | code=70000 | description="CLI/input validation error" | message="image is required"`
		assert.Equal(t, want, got)
	})
	t.Run("context is sorted", func(t *testing.T) {
		err := Command("push failed").WithContextMap(map[string]any{"exit_code": 1, "command": "docker push x"})
		assert.Contains(t, DebugString(err), "context={command=docker push x, exit_code=1}")
	})
	t.Run("chain", func(t *testing.T) {
		err := WrapCommand("push failed", errors.New("exit status 1"))
		lines := strings.Split(DebugString(err), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "1: *errx.Error: push failed"))
		assert.Equal(t, "2: *errors.errorString: exit status 1", lines[1])
	})
	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, DebugString(nil))
	})
}

func TestFormat_ZapFields(t *testing.T) {
	t.Run("errx error", func(t *testing.T) {
		cause := errors.New("exit status 1")
		err := WrapCommand("pull failed", cause).WithContext("command", "docker pull nginx")
		fields := ZapFields(err)

		keys := make(map[string]zapcore.Field, len(fields))
		for _, f := range fields {
			keys[f.Key] = f
		}
		assert.Equal(t, CodeCommand, keys["error.code"].String)
		assert.Equal(t, DescCommand, keys["error.category"].String)
		assert.Equal(t, "pull failed", keys["error.message"].String)
		assert.Contains(t, keys, "error.context.command")
		assert.Contains(t, keys, "error.cause")
	})
	t.Run("plain error", func(t *testing.T) {
		fields := ZapFields(errors.New("boom"))
		require.Len(t, fields, 1)
		assert.Equal(t, "error", fields[0].Key)
	})
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ZapFields(nil))
	})
}

func TestFormat_flattenChain(t *testing.T) {
	a, b := errors.New("a"), errors.New("b")
	joined := errors.Join(a, b)
	err := WrapPipeline("outer", joined)

	chain := flattenChain(err)
	require.Len(t, chain, 4)
	assert.Same(t, err, chain[0])
	assert.Equal(t, joined, chain[1])
	assert.Equal(t, a, chain[2])
	assert.Equal(t, b, chain[3])
	assert.Empty(t, flattenChain(nil))
}

func TestFormat_formatContext(t *testing.T) {
	assert.Equal(t, "a=1, b=two", formatContext(map[string]any{"b": "two", "a": 1}))
	assert.Empty(t, formatContext(nil))
}
