package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/observability"
)

// rawPark is the parks inventory shape. Shape is a GeoJSON geometry; some
// small parks ship only a centroid lat/lng.
type rawPark struct {
	PropertyName string          `json:"property_name"`
	PropertyID   FlexString      `json:"property_id"`
	Acres        float64         `json:"acres"`
	Shape        json.RawMessage `json:"shape"`
	Longitude    FlexString      `json:"longitude"`
	Latitude     FlexString      `json:"latitude"`
}

// ParkSource adapts the parks polygon feed into area records used purely for
// hover-tooltip lookup, not marker placement.
type ParkSource struct {
	base
	path string
}

// NewParkSource creates the parks adapter.
func NewParkSource(client *Client, logger *slog.Logger, metrics *observability.Metrics) *ParkSource {
	return &ParkSource{
		base: base{
			name:    "parks",
			order:   RenderForward,
			client:  client,
			logger:  logger,
			metrics: metrics,
		},
		path: "/parks",
	}
}

func (s *ParkSource) Fetch(ctx context.Context) (Result, error) {
	var raw []rawPark
	if err := s.client.GetJSON(ctx, s.path, &raw); err != nil {
		return Result{}, err
	}

	res := Result{Areas: make([]domain.AreaRecord, 0, len(raw))}
	for _, r := range raw {
		area, err := s.normalize(r)
		if err != nil {
			s.skip("bad_geometry", "park", r.PropertyName, "error", err)
			continue
		}
		res.Areas = append(res.Areas, area)
		s.metrics.RecordsNormalized.WithLabelValues(s.name).Inc()
	}
	return res, nil
}

func (s *ParkSource) normalize(r rawPark) (domain.AreaRecord, error) {
	geometry, err := s.geometry(r)
	if err != nil {
		return domain.AreaRecord{}, err
	}

	weight := r.Acres
	if weight <= 0 {
		weight = 1
	}

	return domain.AreaRecord{
		ID:       string(r.PropertyID),
		Name:     r.PropertyName,
		Weight:   weight,
		Geometry: geometry,
	}, nil
}

// geometry prefers the supplied GeoJSON shape, falling back to a Point built
// from the explicit centroid when no shape is present.
func (s *ParkSource) geometry(r rawPark) (domain.Geometry, error) {
	if len(r.Shape) > 0 && string(r.Shape) != "null" {
		return domain.ParseGeometry(r.Shape)
	}

	lat, lng, err := domain.ParseCoords(string(r.Latitude), string(r.Longitude))
	if err != nil {
		return domain.Geometry{}, fmt.Errorf("no shape and no usable centroid: %w", err)
	}
	return domain.PointGeometry(lng, lat), nil
}
