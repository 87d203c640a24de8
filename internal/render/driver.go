// Package render drives the map engine from normalized records: marker and
// popup placement, the parks hover layer, and the shared tooltip. The driver
// owns the translation from domain records to engine primitives; it never
// reaches back into the feeds.
package render

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/feed"
	"github.com/fogbelt/eventmap/internal/mapengine"
	"github.com/fogbelt/eventmap/internal/observability"
)

// popupOffsetY lifts the popup anchor above the marker glyph.
const popupOffsetY = -36

// Driver places markers and area layers on a map engine. After Close it
// discards every further call, so feed results that land during teardown
// never touch the engine.
type Driver struct {
	engine  mapengine.Engine
	loc     *time.Location
	fill    bool
	logger  *slog.Logger
	metrics *observability.Metrics

	closed atomic.Bool

	mu           sync.Mutex
	hoverLayers  []string
	hoverFeature string
}

// NewDriver wires a driver to an engine. loc is the timezone date labels
// display in; fill controls whether area layers render a visible fill or a
// hit-test-only one.
func NewDriver(engine mapengine.Engine, loc *time.Location, fill bool, logger *slog.Logger, metrics *observability.Metrics) *Driver {
	d := &Driver{
		engine:  engine,
		loc:     loc,
		fill:    fill,
		logger:  logger,
		metrics: metrics,
	}
	engine.OnCameraMove(func(center mapengine.LngLat, zoom float64) {
		logger.Debug("camera moved", "lng", center.Lng, "lat", center.Lat, "zoom", zoom)
	})
	return d
}

// RenderMarkers places one source's markers, honoring its declared render
// order: reverse sources iterate back-to-front so their first records draw
// on top. Individual marker failures are logged and skipped.
func (d *Driver) RenderMarkers(records []domain.MarkerRecord, order feed.RenderOrder) {
	if d.closed.Load() {
		d.logger.Debug("driver closed, discarding markers", "count", len(records))
		return
	}

	indices := make([]int, len(records))
	for i := range records {
		if order == feed.RenderReverse {
			indices[i] = len(records) - 1 - i
		} else {
			indices[i] = i
		}
	}

	for _, i := range indices {
		rec := records[i]
		if err := d.renderMarker(rec); err != nil {
			d.logger.Warn("marker render failed", "id", rec.ID, "source", rec.Source, "error", err)
			continue
		}
		d.metrics.MarkersRendered.Inc()
	}
}

func (d *Driver) renderMarker(rec domain.MarkerRecord) error {
	html, err := RenderPopupHTML(domain.BuildPopupContent(rec, d.loc))
	if err != nil {
		return err
	}
	return d.engine.AddMarker(mapengine.Marker{
		ID:          rec.ID,
		Position:    mapengine.LngLat{Lng: rec.Location.Lng, Lat: rec.Location.Lat},
		IconHint:    rec.IconHint,
		ImageURL:    rec.ImageURL,
		PopupHTML:   html,
		PopupOffset: [2]float64{0, popupOffsetY},
	})
}

// RegisterAreas builds a queryable layer from area records and subscribes
// the hover tooltip to it.
func (d *Driver) RegisterAreas(layerID string, areas []domain.AreaRecord) error {
	if d.closed.Load() {
		d.logger.Debug("driver closed, discarding areas", "layer", layerID, "count", len(areas))
		return nil
	}

	features := make([]mapengine.Feature, 0, len(areas))
	for _, a := range areas {
		features = append(features, mapengine.Feature{
			ID:       a.ID,
			Name:     a.Name,
			Weight:   a.Weight,
			Geometry: a.Geometry,
		})
	}

	if err := d.engine.AddLayer(mapengine.Layer{ID: layerID, Features: features, FillVisible: d.fill}); err != nil {
		return err
	}
	d.metrics.AreasRendered.Add(float64(len(features)))

	d.engine.On(mapengine.PointerMove, layerID, func(ev mapengine.PointerEvent) {
		d.handleMove(layerID, ev)
	})
	d.engine.On(mapengine.PointerLeave, layerID, func(mapengine.PointerEvent) {
		d.clearTooltip()
	})

	d.mu.Lock()
	d.hoverLayers = append(d.hoverLayers, layerID)
	d.mu.Unlock()
	return nil
}

// handleMove resolves the top-most feature under the pointer. Exactly one
// label shows for overlapping features; lingering on the same feature is a
// no-op rather than a fresh update.
func (d *Driver) handleMove(layerID string, ev mapengine.PointerEvent) {
	if d.closed.Load() {
		return
	}

	hits := d.engine.QueryFeatures(layerID, ev.Point)
	if len(hits) == 0 {
		d.clearTooltip()
		return
	}

	top := hits[0]
	d.mu.Lock()
	same := d.hoverFeature == top.ID
	d.hoverFeature = top.ID
	d.mu.Unlock()
	if same {
		return
	}

	d.engine.ShowTooltip(ev.Point, top.Name)
	d.metrics.TooltipUpdates.Inc()
}

func (d *Driver) clearTooltip() {
	d.mu.Lock()
	had := d.hoverFeature != ""
	d.hoverFeature = ""
	d.mu.Unlock()
	if had {
		d.engine.HideTooltip()
	}
}

// Close tears the driver down: pointer subscriptions are removed, the
// tooltip hidden, and every later render call discarded.
func (d *Driver) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}

	d.mu.Lock()
	layers := d.hoverLayers
	d.hoverLayers = nil
	d.hoverFeature = ""
	d.mu.Unlock()

	for _, id := range layers {
		d.engine.Off(mapengine.PointerMove, id)
		d.engine.Off(mapengine.PointerLeave, id)
	}
	d.engine.HideTooltip()
}
