package injection

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// callFrame holds the per-invocation argument state of a wrapped callable.
// Frames are pooled: invocation is the hot path and the slices are always the
// same shape for a given callable.
type callFrame struct {
	in       []reflect.Value
	supplied []bool
}

type framePool struct {
	pool   sync.Pool
	hits   atomic.Uint64
	misses atomic.Uint64
}

var frames = newFramePool()

func newFramePool() *framePool {
	p := &framePool{}
	p.pool.New = func() any {
		return &callFrame{
			in:       make([]reflect.Value, 0, 8),
			supplied: make([]bool, 0, 8),
		}
	}
	return p
}

func (p *framePool) acquire(n int) *callFrame {
	f, ok := p.pool.Get().(*callFrame)
	if ok && cap(f.in) >= n {
		p.hits.Add(1)
	} else {
		p.misses.Add(1)
		if !ok {
			f = &callFrame{}
		}
	}

	if cap(f.in) < n {
		f.in = make([]reflect.Value, n)
		f.supplied = make([]bool, n)
	} else {
		f.in = f.in[:n]
		f.supplied = f.supplied[:n]
	}
	for i := 0; i < n; i++ {
		f.in[i] = reflect.Value{}
		f.supplied[i] = false
	}

	return f
}

func (p *framePool) release(f *callFrame) {
	if f == nil {
		return
	}
	// Drop value references so pooled frames do not pin built instances.
	for i := range f.in {
		f.in[i] = reflect.Value{}
	}
	p.pool.Put(f)
}

func (p *framePool) stats() (hits, misses uint64) {
	return p.hits.Load(), p.misses.Load()
}
