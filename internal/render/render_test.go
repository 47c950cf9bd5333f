// File path: internal/render/render_test.go
package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTimesOutWaitingForSlot(t *testing.T) {
	r := New(Config{MaxConcurrent: 1, Timeout: 20 * time.Millisecond})
	require.NoError(t, r.sem.Acquire(context.Background(), 1))
	defer r.sem.Release(1)

	_, err := r.Render(context.Background(), "<html><body>x</body></html>")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	r := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, "<p>x</p>")
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF([]byte("%PDF-1.7\n...")))
	assert.False(t, isPDF([]byte("<html>")))
	assert.False(t, isPDF(nil))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RENDER_BIN", "/usr/bin/chromium")
	t.Setenv("RENDER_NO_SANDBOX", "true")
	t.Setenv("RENDER_TIMEOUT", "10s")
	t.Setenv("RENDER_IDLE_WAIT", "")
	t.Setenv("RENDER_MAX_CONCURRENT", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/chromium", cfg.Bin)
	assert.True(t, cfg.NoSandbox)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.IdleWait)
	assert.Equal(t, 2, cfg.MaxConcurrent)

	t.Setenv("RENDER_MAX_CONCURRENT", "four")
	_, err = LoadConfig()
	require.Error(t, err)
}
