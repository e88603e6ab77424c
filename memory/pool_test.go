package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tensgo/dtype"
)

type countingObserver struct {
	mu               sync.Mutex
	acquired, reused int
	retained, drops  int
}

func (o *countingObserver) OnAcquire(_ dtype.Kind, _ int64, reused bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.acquired++
	if reused {
		o.reused++
	}
}

func (o *countingObserver) OnRelease(_ dtype.Kind, _ int64, retained bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if retained {
		o.retained++
	} else {
		o.drops++
	}
}

func TestBucketOf(t *testing.T) {
	tests := []struct {
		n    int
		want uint8
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {1024, 10}, {1025, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bucketOf(tt.n), "n=%d", tt.n)
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	p := NewPool(Config{})
	defer p.Close()

	b, err := p.Acquire(dtype.Float32, 100)
	require.NoError(t, err)
	assert.Equal(t, dtype.Float32, b.Kind())
	assert.Equal(t, 100, b.Cap())
	assert.Equal(t, int64(400), b.Bytes())
	assert.True(t, b.Leased())

	data := Data[float32](b)
	require.Len(t, data, 100)
	data[0] = 42

	st := p.Stats()
	assert.Equal(t, int64(1), st.LiveBuffers)
	assert.Equal(t, int64(400), st.LiveBytes)
	assert.Equal(t, uint64(1), st.Allocations)

	gen := b.Generation()
	p.Release(b)
	assert.False(t, b.Leased())
	assert.Equal(t, gen+1, b.Generation())

	st = p.Stats()
	assert.Equal(t, 1, st.FreeBuffers)
	assert.Equal(t, int64(400), st.IdleBytes)
	assert.Equal(t, int64(0), st.LiveBuffers)

	again, err := p.Acquire(dtype.Float32, 100)
	require.NoError(t, err)
	assert.Same(t, b, again)
	assert.Equal(t, float32(0), Data[float32](again)[0], "recycled buffers are zeroed")
	assert.Equal(t, uint64(1), p.Stats().Reuses)
}

func TestPool_PrefersExactCapacity(t *testing.T) {
	p := NewPool(Config{})
	defer p.Close()

	b100, _ := p.Acquire(dtype.Float64, 100)
	b120, _ := p.Acquire(dtype.Float64, 120)
	p.Release(b100)
	p.Release(b120)

	got, err := p.Acquire(dtype.Float64, 100)
	require.NoError(t, err)
	assert.Same(t, b100, got)

	// 110 shares the 128 bucket; only the 120 buffer is large enough.
	got2, err := p.Acquire(dtype.Float64, 110)
	require.NoError(t, err)
	assert.Same(t, b120, got2)
}

func TestPool_KindsDoNotMix(t *testing.T) {
	p := NewPool(Config{})
	defer p.Close()

	b, _ := p.Acquire(dtype.Int32, 16)
	p.Release(b)

	other, err := p.Acquire(dtype.Float32, 16)
	require.NoError(t, err)
	assert.NotSame(t, b, other)
}

func TestPool_SmallerBufferNotReused(t *testing.T) {
	p := NewPool(Config{})
	defer p.Close()

	b, _ := p.Acquire(dtype.Uint8, 65)
	p.Release(b)

	got, err := p.Acquire(dtype.Uint8, 100)
	require.NoError(t, err)
	assert.NotSame(t, b, got)
	assert.Equal(t, 1, p.Stats().FreeBuffers)
}

func TestPool_Budget(t *testing.T) {
	obs := &countingObserver{}
	p := NewPool(Config{MaxRetainedBytes: 1000, Observer: obs})
	defer p.Close()

	a, _ := p.Acquire(dtype.Float64, 100) // 800 bytes
	b, _ := p.Acquire(dtype.Float64, 100)
	p.Release(a)
	p.Release(b)

	st := p.Stats()
	assert.Equal(t, 1, st.FreeBuffers)
	assert.Equal(t, int64(800), st.IdleBytes)
	assert.Equal(t, uint64(1), st.Discards)
	assert.Equal(t, 1, obs.retained)
	assert.Equal(t, 1, obs.drops)
	assert.Equal(t, 2, obs.acquired)
}

func TestPool_RetentionDisabled(t *testing.T) {
	p := NewPool(Config{MaxRetainedBytes: -1})
	defer p.Close()

	b, _ := p.Acquire(dtype.Int64, 8)
	p.Release(b)

	st := p.Stats()
	assert.Equal(t, 0, st.FreeBuffers)
	assert.Equal(t, uint64(1), st.Discards)
}

func TestPool_Errors(t *testing.T) {
	p := NewPool(Config{})

	_, err := p.Acquire(dtype.Invalid, 4)
	require.ErrorIs(t, err, ErrUnsupportedKind)

	_, err = p.Acquire(dtype.Float32, -1)
	var lengthErr *InvalidLengthError
	require.ErrorAs(t, err, &lengthErr)
	assert.Equal(t, -1, lengthErr.Length)

	b, err := p.Acquire(dtype.Float32, 4)
	require.NoError(t, err)
	p.Release(b)
	assert.PanicsWithValue(t, ErrUseAfterRelease, func() { p.Release(b) })

	other := NewPool(Config{})
	ob, _ := other.Acquire(dtype.Float32, 4)
	assert.PanicsWithValue(t, ErrForeignBuffer, func() { p.Release(ob) })

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	_, err = p.Acquire(dtype.Float32, 4)
	require.ErrorIs(t, err, ErrPoolClosed)

	// Releases after close are dropped.
	require.NoError(t, other.Close())
	other.Release(ob)
	assert.Equal(t, 0, other.Stats().FreeBuffers)
	assert.Equal(t, uint64(1), other.Stats().Discards)
}

func TestData_KindMismatch(t *testing.T) {
	p := NewPool(Config{})
	defer p.Close()

	b, _ := p.Acquire(dtype.Float32, 4)
	assert.Panics(t, func() { _ = Data[float64](b) })
	assert.Panics(t, func() { _ = Data[int32](b) })
}

func TestPool_ZeroLength(t *testing.T) {
	p := NewPool(Config{})
	defer p.Close()

	b, err := p.Acquire(dtype.Float32, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{}, Data[float32](b))
	p.Release(b)
}

func TestPool_Concurrent(t *testing.T) {
	p := NewPool(Config{})
	defer p.Close()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				b, err := p.Acquire(dtype.Float32, 16+(g+i)%48)
				if !assert.NoError(t, err) {
					return
				}
				Data[float32](b)[0] = float32(i)
				p.Release(b)
			}
		}()
	}
	wg.Wait()

	st := p.Stats()
	assert.Equal(t, int64(0), st.LiveBuffers)
	assert.Equal(t, int64(0), st.LiveBytes)
	assert.Equal(t, uint64(1600), st.Allocations+st.Reuses)
}

func TestPool_ConcurrentTrim(t *testing.T) {
	p := NewPool(Config{})
	defer p.Close()

	stop := make(chan struct{})
	trimmed := make(chan struct{})
	go func() {
		defer close(trimmed)
		for {
			select {
			case <-stop:
				return
			default:
				p.Trim()
			}
		}
	}()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 500 {
				b, err := p.Acquire(dtype.Float32, 256)
				if !assert.NoError(t, err) {
					return
				}
				p.Release(b)
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-trimmed

	st := p.Stats()
	assert.Equal(t, int64(0), st.LiveBuffers)
	assert.Equal(t, int64(st.FreeBuffers)*1024, st.IdleBytes)

	p.Trim()
	assert.Zero(t, p.Stats().IdleBytes)
}

func BenchmarkPool_AcquireRelease(b *testing.B) {
	p := NewPool(Config{})
	defer p.Close()

	for b.Loop() {
		buf, _ := p.Acquire(dtype.Float32, 1024)
		p.Release(buf)
	}
}
