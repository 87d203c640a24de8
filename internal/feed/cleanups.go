package feed

import (
	"context"
	"log/slog"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/observability"
)

// rawCleanup is the neighborhood cleanups feed shape.
type rawCleanup struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Location    string     `json:"location"`
	Lat         FlexString `json:"lat"`
	Lng         FlexString `json:"lng"`
}

// CleanupSource adapts the cleanups feed: fixed broom icon, reversed render
// order (the feed lists upcoming cleanups newest-first; rendering in reverse
// keeps the soonest ones drawn on top).
type CleanupSource struct {
	base
	path string
}

// NewCleanupSource creates the cleanups adapter.
func NewCleanupSource(client *Client, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *CleanupSource {
	return &CleanupSource{
		base: base{
			name:     "cleanups",
			order:    RenderReverse,
			client:   client,
			geocoder: geocoder,
			logger:   logger,
			metrics:  metrics,
		},
		path: "/cleanups",
	}
}

func (s *CleanupSource) Fetch(ctx context.Context) (Result, error) {
	var raw []rawCleanup
	if err := s.client.GetJSON(ctx, s.path, &raw); err != nil {
		return Result{}, err
	}

	res := Result{Markers: make([]domain.MarkerRecord, 0, len(raw))}
	for _, r := range raw {
		if r.Name == "" || r.Start == "" {
			s.skip("missing_fields")
			continue
		}
		lat, lng, ok := s.coords(ctx, r.Lat, r.Lng, r.Location)
		if !ok {
			s.skip("bad_coords", "title", r.Name)
			continue
		}

		link, description := domain.ExtractFirstLink(r.Description)
		res.Markers = append(res.Markers, domain.Finalize(domain.MarkerRecord{
			Title:       r.Name,
			DateRange:   normalizeDates(r.Start, r.End),
			Location:    domain.GeoPoint{Lat: lat, Lng: lng, RawAddress: r.Location},
			Description: description,
			LinkURL:     link,
			IconHint:    "broom",
			Source:      s.name,
		}))
		s.metrics.RecordsNormalized.WithLabelValues(s.name).Inc()
	}
	return res, nil
}
