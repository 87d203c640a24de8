package mapengine

import (
	"fmt"
	"sync"

	"github.com/fogbelt/eventmap/internal/domain"
)

// Headless is an in-memory Engine. It keeps markers and layers, hit-tests
// polygon layers geometrically, and records tooltip state. Pixel coordinates
// map to geographic coordinates with an identity projection (X=lng, Y=lat);
// there is no viewport to project through.
type Headless struct {
	mu       sync.Mutex
	center   LngLat
	zoom     float64
	style    string
	markers  []Marker
	layers   map[string]Layer
	handlers map[string]func(PointerEvent) // keyed by kind+layerID
	onCamera []func(LngLat, float64)

	tooltipShown bool
	tooltipText  string
	tooltipAt    Point
}

// NewHeadless creates a Headless engine centered like a freshly constructed map.
func NewHeadless(center LngLat, zoom float64, style string) *Headless {
	return &Headless{
		center:   center,
		zoom:     zoom,
		style:    style,
		layers:   make(map[string]Layer),
		handlers: make(map[string]func(PointerEvent)),
	}
}

func (h *Headless) AddMarker(m Marker) error {
	if !domain.ValidCoords(m.Position.Lat, m.Position.Lng) {
		return fmt.Errorf("marker %s: position out of range", m.ID)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.markers = append(h.markers, m)
	return nil
}

func (h *Headless) AddLayer(l Layer) error {
	if l.ID == "" {
		return fmt.Errorf("layer id is required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layers[l.ID] = l
	return nil
}

// QueryFeatures hit-tests a layer at a point, returning matches top-most
// first (later-registered features draw on top).
func (h *Headless) QueryFeatures(layerID string, at Point) []Feature {
	h.mu.Lock()
	layer, ok := h.layers[layerID]
	h.mu.Unlock()
	if !ok {
		return nil
	}

	var hits []Feature
	for i := len(layer.Features) - 1; i >= 0; i-- {
		if geometryContains(layer.Features[i].Geometry, at.X, at.Y) {
			hits = append(hits, layer.Features[i])
		}
	}
	return hits
}

func (h *Headless) On(kind EventKind, layerID string, fn func(PointerEvent)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[string(kind)+":"+layerID] = fn
}

func (h *Headless) Off(kind EventKind, layerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.handlers, string(kind)+":"+layerID)
}

func (h *Headless) OnCameraMove(fn func(LngLat, float64)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCamera = append(h.onCamera, fn)
}

func (h *Headless) Camera() (LngLat, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.center, h.zoom
}

func (h *Headless) ShowTooltip(at Point, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tooltipShown = true
	h.tooltipText = text
	h.tooltipAt = at
}

func (h *Headless) HideTooltip() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tooltipShown = false
	h.tooltipText = ""
}

// DispatchPointer delivers a pointer event to the registered handler, the
// way the browser shell would on DOM events.
func (h *Headless) DispatchPointer(kind EventKind, layerID string, ev PointerEvent) {
	h.mu.Lock()
	fn := h.handlers[string(kind)+":"+layerID]
	h.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// MoveCamera pans/zooms and notifies camera subscribers.
func (h *Headless) MoveCamera(center LngLat, zoom float64) {
	h.mu.Lock()
	h.center = center
	h.zoom = zoom
	subs := make([]func(LngLat, float64), len(h.onCamera))
	copy(subs, h.onCamera)
	h.mu.Unlock()
	for _, fn := range subs {
		fn(center, zoom)
	}
}

// Markers returns a copy of all placed markers.
func (h *Headless) Markers() []Marker {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Marker, len(h.markers))
	copy(out, h.markers)
	return out
}

// Layer returns a registered layer by ID.
func (h *Headless) Layer(id string) (Layer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.layers[id]
	return l, ok
}

// Tooltip reports the shared tooltip's visibility and label.
func (h *Headless) Tooltip() (shown bool, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tooltipShown, h.tooltipText
}

// geometryContains tests a geometry against an identity-projected point.
// Point features match within a small epsilon.
func geometryContains(g domain.Geometry, x, y float64) bool {
	const pointEpsilon = 1e-4

	switch g.Type {
	case domain.GeometryPoint:
		if len(g.Point) < 2 {
			return false
		}
		dx, dy := g.Point[0]-x, g.Point[1]-y
		return dx*dx+dy*dy <= pointEpsilon*pointEpsilon
	case domain.GeometryPolygon:
		return polygonContains(g.Polygon, x, y)
	case domain.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			if polygonContains(poly, x, y) {
				return true
			}
		}
	}
	return false
}

// polygonContains runs an even-odd ray cast over the outer ring and holes.
func polygonContains(rings [][][]float64, x, y float64) bool {
	if len(rings) == 0 {
		return false
	}
	if !ringContains(rings[0], x, y) {
		return false
	}
	for _, hole := range rings[1:] {
		if ringContains(hole, x, y) {
			return false
		}
	}
	return true
}

func ringContains(ring [][]float64, x, y float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
