package segment

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tensgo/memory"
)

func newPool(t *testing.T) *memory.Pool {
	t.Helper()
	p := memory.NewPool(memory.Config{})
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestAcquire(t *testing.T) {
	p := newPool(t)

	s, err := Acquire[float32](p, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Size())
	assert.Equal(t, int32(1), s.RefCount())
	assert.True(t, s.IsValid())

	for i := range s.Size() {
		s.Set(i, float32(i)*1.5)
	}
	assert.Equal(t, float32(3), s.Get(2))
	assert.Equal(t, []float32{0, 1.5, 3, 4.5, 6}, slices.Collect(s.Values()))

	assert.Equal(t, int32(0), s.Release())
	assert.False(t, s.IsValid())
}

func TestAcquireZeroLength(t *testing.T) {
	p := newPool(t)

	s, err := Acquire[float64](p, 0)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, 0, s.Size())
	assert.Equal(t, []float64{}, s.Slice())
	assert.Equal(t, []float64{}, ToSlice[float64](s))
}

func TestAddRefReleaseBalance(t *testing.T) {
	p := newPool(t)

	s, err := Acquire[float64](p, 16)
	require.NoError(t, err)
	before := p.Stats().FreeBuffers

	const k = 5
	for range k {
		s.AddRef()
	}
	for range k {
		s.Release()
	}
	assert.Equal(t, before, p.Stats().FreeBuffers)
	assert.True(t, s.IsValid())

	s.Release()
	assert.Equal(t, before+1, p.Stats().FreeBuffers)
}

func TestUseAfterRelease(t *testing.T) {
	p := newPool(t)

	s, err := Acquire[int32](p, 4)
	require.NoError(t, err)
	s.Release()

	assert.PanicsWithValue(t, ErrUseAfterRelease, func() { s.Get(0) })
	assert.PanicsWithValue(t, ErrUseAfterRelease, func() { s.Set(0, 1) })
	assert.PanicsWithValue(t, ErrUseAfterRelease, func() { s.Release() })
	assert.PanicsWithValue(t, ErrUseAfterRelease, func() { s.AddRef() })
	assert.PanicsWithValue(t, ErrUseAfterRelease, func() { s.GetSpan(nil) })
}

func TestRecycledBufferDetected(t *testing.T) {
	p := newPool(t)

	old, err := Acquire[float32](p, 8)
	require.NoError(t, err)
	old.Release()

	fresh, err := Acquire[float32](p, 8)
	require.NoError(t, err)
	fresh.Set(0, 7)

	assert.False(t, old.IsValid())
	assert.Panics(t, func() { old.Get(0) })
	assert.Equal(t, float32(7), fresh.Get(0))
}

func TestIndexError(t *testing.T) {
	s := FromSlice([]int64{1, 2, 3})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		idx, ok := r.(*IndexError)
		require.True(t, ok)
		assert.Equal(t, 3, idx.Index)
		assert.Equal(t, 3, idx.Size)
		assert.Contains(t, idx.Error(), "index 3")
	}()
	s.Get(3)
}

func TestNegativeIndexPanics(t *testing.T) {
	s := FromSlice([]float32{1})
	assert.Panics(t, func() { s.Get(-1) })
	assert.Panics(t, func() { s.Set(-1, 0) })
}

func TestFromSlice(t *testing.T) {
	data := []uint8{1, 2, 3}
	s := FromSlice(data)

	span, temp := s.GetSpan(nil)
	assert.False(t, temp)
	span[0] = 9
	assert.Equal(t, uint8(9), data[0])

	assert.Equal(t, int32(0), s.Release())
	assert.False(t, s.IsValid())
}

func TestCopy(t *testing.T) {
	src := FromSlice([]float64{1, 2, 3, 4, 5})
	dst := FromSlice(make([]float64, 4))

	n := src.CopyTo(dst, 2, 1)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{0, 3, 4, 5}, ToSlice[float64](dst))

	out := make([]float64, 2)
	assert.Equal(t, 2, src.CopySpanTo(out))
	assert.Equal(t, []float64{1, 2}, out)

	assert.Equal(t, 0, src.CopyTo(dst, 5, 0))
}

func TestSetSpan(t *testing.T) {
	s := FromSlice(make([]int16, 3))
	s.SetSpan([]int16{4, 5})
	assert.Equal(t, []int16{4, 5, 0}, ToSlice[int16](s))
	assert.Panics(t, func() { s.SetSpan([]int16{1, 2, 3, 4}) })
}

func TestLayerReleasesSegments(t *testing.T) {
	p := newPool(t)

	warm, err := Acquire[float32](p, 32)
	require.NoError(t, err)
	warm.Release()
	idle := p.Stats().IdleBytes

	p.PushLayer()
	a, err := Acquire[float32](p, 32)
	require.NoError(t, err)
	kept, err := Acquire[float32](p, 16)
	require.NoError(t, err)
	kept.AddRef()
	released, err := Acquire[float32](p, 8)
	require.NoError(t, err)
	released.Release()

	assert.Equal(t, 2, p.PopLayer())
	assert.False(t, a.IsValid())
	assert.True(t, kept.IsValid())
	assert.Equal(t, int32(1), kept.RefCount())

	kept.Release()
	st := p.Stats()
	assert.Equal(t, int64(0), st.LiveBytes)
	assert.GreaterOrEqual(t, st.IdleBytes, idle)
}

func TestLayerRestoresIdleBytes(t *testing.T) {
	p := newPool(t)

	warm, err := Acquire[float64](p, 100)
	require.NoError(t, err)
	warm.Release()
	before := p.Stats()

	p.PushLayer()
	_, err = Acquire[float64](p, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Stats().IdleBytes)
	p.PopLayer()

	after := p.Stats()
	assert.Equal(t, before.IdleBytes, after.IdleBytes)
	assert.Equal(t, before.LiveBytes, after.LiveBytes)
	assert.Equal(t, before.FreeBuffers, after.FreeBuffers)
}

func BenchmarkOwnedGet(b *testing.B) {
	s := FromSlice(make([]float32, 1024))
	var sink float32
	for b.Loop() {
		for i := range 1024 {
			sink += s.Get(i)
		}
	}
	_ = sink
}
