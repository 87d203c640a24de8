package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateRange is the normalized start/end of an event. EndISO is empty for
// single-timestamp events. AllDay is true when the raw start encodes
// midnight UTC.
type DateRange struct {
	StartISO string `json:"start"`
	EndISO   string `json:"end,omitempty"`
	AllDay   bool   `json:"all_day"`
}

// GeoPoint is a WGS-84 coordinate pair plus the feed's original address text.
type GeoPoint struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	RawAddress string  `json:"raw_address,omitempty"`
}

// MarkerRecord is the canonical normalized form of one point feature.
// Values are created fresh per pipeline run and never mutated afterwards.
type MarkerRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	DateRange    DateRange `json:"date_range"`
	Location     GeoPoint  `json:"location"`
	Description  string    `json:"description,omitempty"`
	LinkURL      string    `json:"link_url,omitempty"`
	IconHint     string    `json:"icon_hint"`
	ImageURL     string    `json:"image_url,omitempty"`
	Source       string    `json:"source"`
	NormalizedAt time.Time `json:"normalized_at"`
}

// AreaRecord is a polygon/point feature used for hover hit-testing rather
// than marker placement.
type AreaRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Weight   float64  `json:"weight"` // acres, default 1
	Geometry Geometry `json:"geometry"`
}

// Geometry holds one of the three accepted GeoJSON geometry kinds in
// normalized coordinate form. Coordinates are [lng, lat] per GeoJSON.
type Geometry struct {
	Type         string          `json:"type"`
	Point        []float64       `json:"point,omitempty"`
	Polygon      [][][]float64   `json:"polygon,omitempty"`
	MultiPolygon [][][][]float64 `json:"multi_polygon,omitempty"`
}

// Geometry kinds accepted for area records.
const (
	GeometryPoint        = "Point"
	GeometryPolygon      = "Polygon"
	GeometryMultiPolygon = "MultiPolygon"
)

// ParseCoords parses raw latitude/longitude strings, requiring finite values
// in valid geographic range. Feeds deliver coordinates as strings or numbers
// interchangeably, so adapters stringify before calling.
func ParseCoords(latStr, lngStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse lat %q: %w", latStr, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse lng %q: %w", lngStr, err)
	}
	if !ValidCoords(lat, lng) {
		return 0, 0, fmt.Errorf("coordinates out of range: %v, %v", lat, lng)
	}
	return lat, lng, nil
}

// ValidCoords reports whether lat/lng are finite and within geographic range.
func ValidCoords(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// geoJSONGeometry is the wire form of a parks "shape" field.
type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeometry decodes a GeoJSON geometry object, accepting Point, Polygon,
// and MultiPolygon kinds. Anything else is an error and the caller excludes
// the feature from the hover collection.
func ParseGeometry(raw json.RawMessage) (Geometry, error) {
	var g geoJSONGeometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return Geometry{}, fmt.Errorf("parse geometry: %w", err)
	}

	switch g.Type {
	case GeometryPoint:
		var coords []float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return Geometry{}, fmt.Errorf("parse point coordinates: %w", err)
		}
		if len(coords) < 2 || !ValidCoords(coords[1], coords[0]) {
			return Geometry{}, fmt.Errorf("invalid point coordinates: %v", coords)
		}
		return Geometry{Type: GeometryPoint, Point: coords[:2]}, nil
	case GeometryPolygon:
		var coords [][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return Geometry{}, fmt.Errorf("parse polygon coordinates: %w", err)
		}
		return Geometry{Type: GeometryPolygon, Polygon: coords}, nil
	case GeometryMultiPolygon:
		var coords [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return Geometry{}, fmt.Errorf("parse multipolygon coordinates: %w", err)
		}
		return Geometry{Type: GeometryMultiPolygon, MultiPolygon: coords}, nil
	default:
		return Geometry{}, fmt.Errorf("unsupported geometry kind %q", g.Type)
	}
}

// PointGeometry builds a Point geometry from explicit coordinates, the
// fallback for parks that supply lat/lng but no polygon.
func PointGeometry(lng, lat float64) Geometry {
	return Geometry{Type: GeometryPoint, Point: []float64{lng, lat}}
}

// GenerateID produces a deterministic ID from a record's key fields.
// Reprocessing the same feed record yields the same ID, so downstream
// consumers can upsert idempotently.
func GenerateID(source, title string, lat, lng float64, startISO string) string {
	input := fmt.Sprintf("%s|%s|%.6f|%.6f|%s", source, title, lat, lng, startISO)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if source == "" {
		return short
	}
	return source + "-" + short
}

// Finalize stamps derived fields on a freshly adapted record: the
// deterministic ID and the normalization time.
func Finalize(rec MarkerRecord) MarkerRecord {
	rec.ID = GenerateID(rec.Source, rec.Title, rec.Location.Lat, rec.Location.Lng, rec.DateRange.StartISO)
	rec.NormalizedAt = clock.Now()
	return rec
}
