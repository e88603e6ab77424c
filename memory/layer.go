package memory

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Tracked is a value a lifetime layer can release.
type Tracked interface {
	// ReleaseScoped drops one reference if the value is still alive.
	ReleaseScoped()
}

// Handle identifies a Track registration. The zero Handle is untracked.
type Handle struct {
	id    uint32
	layer int
}

// Tracked reports whether the handle refers to a registration.
func (h Handle) Tracked() bool { return h.id != 0 }

type trackedEntry struct {
	value Tracked
	layer int
}

// PushLayer opens a lifetime layer and returns the new depth.
func (p *Pool) PushLayer() int {
	p.mu.Lock()
	p.layers = append(p.layers, roaring.New())
	depth := len(p.layers)
	p.mu.Unlock()

	p.logger.Debug("layer pushed", "depth", depth)
	return depth
}

// PopLayer closes the innermost layer, releasing once every value tracked in it
// that is still alive. It returns the number of values released and panics
// with ErrLayerUnderflow if no layer is pushed.
func (p *Pool) PopLayer() int {
	p.mu.Lock()
	n := len(p.layers)
	if n == 0 {
		p.mu.Unlock()
		panic(ErrLayerUnderflow)
	}

	top := p.layers[n-1]
	p.layers[n-1] = nil
	p.layers = p.layers[:n-1]

	pending := make([]Tracked, 0, top.GetCardinality())
	it := top.Iterator()
	for it.HasNext() {
		id := it.Next()
		if e, ok := p.tracked[id]; ok {
			pending = append(pending, e.value)
			delete(p.tracked, id)
		}
	}
	p.mu.Unlock()

	// Values call Untrack when they die, so release outside the lock.
	for _, v := range pending {
		v.ReleaseScoped()
	}

	p.logger.Debug("layer popped", "depth", n-1, "released", len(pending))
	return len(pending)
}

// LayerDepth returns the number of pushed layers.
func (p *Pool) LayerDepth() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.layers)
}

// Track registers v with the innermost layer. Without a pushed layer it
// returns the zero Handle.
func (p *Pool) Track(v Tracked) Handle {
	if p == nil {
		return Handle{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.layers)
	if n == 0 {
		return Handle{}
	}

	p.nextID++
	if p.nextID == 0 { // wrapped
		p.nextID = 1
	}
	id := p.nextID

	p.layers[n-1].Add(id)
	p.tracked[id] = trackedEntry{value: v, layer: n - 1}
	return Handle{id: id, layer: n - 1}
}

// Untrack removes a registration. It is a no-op for the zero Handle and for
// registrations already dropped by PopLayer.
func (p *Pool) Untrack(h Handle) {
	if p == nil || !h.Tracked() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.tracked[h.id]
	if !ok || e.layer != h.layer {
		return
	}
	delete(p.tracked, h.id)
	if h.layer < len(p.layers) {
		p.layers[h.layer].Remove(h.id)
	}
}
