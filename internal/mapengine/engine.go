// Package mapengine declares the capability set the render driver consumes
// from an interactive map renderer: marker and popup creation, queryable
// polygon layers, pointer listeners, and a shared tooltip element. The real
// renderer (a mapbox-gl instance in the browser shell) lives outside this
// module; Headless is the in-process implementation backing the service,
// its tests, and the HTTP read-back endpoint.
package mapengine

import "github.com/fogbelt/eventmap/internal/domain"

// LngLat is a geographic coordinate in mapbox order (longitude first).
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Point is a pixel coordinate within the map viewport.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is one point visual bound to a normalized record. ImageURL, when
// set, overrides whatever glyph IconHint would select. PopupHTML is the
// engine's popup primitive, already translated and escaped by the driver.
type Marker struct {
	ID          string
	Position    LngLat
	IconHint    string
	ImageURL    string
	PopupHTML   string
	PopupOffset [2]float64 // pixel offset so the popup opens above the marker
}

// Feature is one queryable area feature registered on a layer.
type Feature struct {
	ID       string
	Name     string
	Weight   float64
	Geometry domain.Geometry
}

// Layer is a GeoJSON-like source plus a queryable fill layer over it.
// FillVisible false renders a near-invisible fill used purely for
// hit-testing.
type Layer struct {
	ID          string
	Features    []Feature
	FillVisible bool
}

// EventKind identifies a pointer or camera subscription.
type EventKind string

// Pointer event kinds the driver subscribes to.
const (
	PointerMove  EventKind = "pointermove"
	PointerLeave EventKind = "pointerleave"
)

// PointerEvent carries the viewport position of a pointer event.
type PointerEvent struct {
	Point Point
}

// Engine is the map capability set consumed by the render driver.
//
// QueryFeatures returns the features of a layer intersecting a pixel
// coordinate, top-most first. On/Off manage pointer listeners per layer.
// The tooltip is a single shared element: ShowTooltip repositions and
// relabels it, HideTooltip hides it.
type Engine interface {
	AddMarker(m Marker) error
	AddLayer(l Layer) error
	QueryFeatures(layerID string, at Point) []Feature
	On(kind EventKind, layerID string, h func(PointerEvent))
	Off(kind EventKind, layerID string)
	OnCameraMove(h func(center LngLat, zoom float64))
	Camera() (LngLat, float64)
	ShowTooltip(at Point, text string)
	HideTooltip()
}
