package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	assert.True(t, c.TryAcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	assert.True(t, c.TryAcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Limit exceeded
	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	assert.True(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_MemoryBlocking(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 100))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.AcquireMemory(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.ErrorIs(t, c.AcquireMemory(context.Background(), 101), ErrMemoryLimitExceeded)
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	assert.True(t, c.TryAcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(context.Background(), 10))
	assert.True(t, c.TryAcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Zero(t, c.MemoryUsage())
	assert.NoError(t, c.AcquireBackground(context.Background()))
	c.ReleaseBackground()
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<20))
}

func TestController_Background(t *testing.T) {
	c := NewController(Config{MaxBackgroundWorkers: 2})

	require.NoError(t, c.AcquireBackground(t.Context()))
	require.NoError(t, c.AcquireBackground(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireBackground(ctx), context.DeadlineExceeded)

	c.ReleaseBackground()

	require.NoError(t, c.AcquireBackground(t.Context()))
}

func TestController_IOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// A request of twice the burst must not fail with "exceeds burst".
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.AcquireIO(ctx, 2<<20))
}

func TestRateLimitedReaderWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	var buf bytes.Buffer
	w := NewRateLimitedWriter(t.Context(), &buf, c)
	n, err := w.Write([]byte("tensor"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	r := NewRateLimitedReader(t.Context(), &buf, c)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "tensor", string(data))
}
