package canvas

// registry.go: ownership and lookup for every canvas. Insertion happens
// exactly once at creation, removal exactly once at destruction; a
// duplicate frame is a programmer error and panics in development rather
// than corrupting the maps.

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// Registry owns all canvases. Lookups are by frame window, by client
// window, or by type; iteration respects creation order, which is what
// the focus cycle wants.
type Registry struct {
	byFrame  map[xproto.Window]*Canvas
	byClient map[xproto.Window]*Canvas
	ordered  []*Canvas
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byFrame:  make(map[xproto.Window]*Canvas),
		byClient: make(map[xproto.Window]*Canvas),
	}
}

// Add inserts a canvas. Duplicate frames or clients are bugs.
func (r *Registry) Add(cv *Canvas) {
	if _, dup := r.byFrame[cv.Frame]; dup {
		panic(fmt.Sprintf("canvas registry: duplicate frame %x", cv.Frame))
	}
	r.byFrame[cv.Frame] = cv
	if cv.Client != 0 {
		if _, dup := r.byClient[cv.Client]; dup {
			panic(fmt.Sprintf("canvas registry: duplicate client %x", cv.Client))
		}
		r.byClient[cv.Client] = cv
	}
	r.ordered = append(r.ordered, cv)
}

// Remove deletes a canvas from all indexes. Removing an unknown canvas is
// a no-op so destroy paths can be idempotent.
func (r *Registry) Remove(cv *Canvas) {
	if r.byFrame[cv.Frame] != cv {
		return
	}
	delete(r.byFrame, cv.Frame)
	if cv.Client != 0 && r.byClient[cv.Client] == cv {
		delete(r.byClient, cv.Client)
	}
	for i, c := range r.ordered {
		if c == cv {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
}

// FindByWindow resolves a frame window.
func (r *Registry) FindByWindow(frame xproto.Window) *Canvas {
	return r.byFrame[frame]
}

// FindByClient resolves a reparented client window.
func (r *Registry) FindByClient(client xproto.Window) *Canvas {
	return r.byClient[client]
}

// Find resolves a window that may be either a frame or a client.
func (r *Registry) Find(win xproto.Window) *Canvas {
	if cv := r.byFrame[win]; cv != nil {
		return cv
	}
	return r.byClient[win]
}

// ByType returns canvases of one type in creation order.
func (r *Registry) ByType(t Type) []*Canvas {
	var out []*Canvas
	for _, cv := range r.ordered {
		if cv.Type == t {
			out = append(out, cv)
		}
	}
	return out
}

// All returns every canvas in creation order. The slice is shared; don't
// mutate it.
func (r *Registry) All() []*Canvas {
	return r.ordered
}

// Len reports the canvas count.
func (r *Registry) Len() int {
	return len(r.ordered)
}
