package feed

import (
	"context"
	"log/slog"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/observability"
)

// rawIlluminate is the light-installation events feed shape. Records carry
// their own marker image.
type rawIlluminate struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Venue       string     `json:"venue"`
	Latitude    FlexString `json:"latitude"`
	Longitude   FlexString `json:"longitude"`
	Image       string     `json:"image"`
	URL         string     `json:"url"`
}

// IlluminateSource adapts the illuminate feed. A record's own image URL is
// honored over the default sparkle icon.
type IlluminateSource struct {
	base
	path string
}

// NewIlluminateSource creates the illuminate adapter.
func NewIlluminateSource(client *Client, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *IlluminateSource {
	return &IlluminateSource{
		base: base{
			name:     "illuminate",
			order:    RenderForward,
			client:   client,
			geocoder: geocoder,
			logger:   logger,
			metrics:  metrics,
		},
		path: "/illuminate",
	}
}

func (s *IlluminateSource) Fetch(ctx context.Context) (Result, error) {
	var raw []rawIlluminate
	if err := s.client.GetJSON(ctx, s.path, &raw); err != nil {
		return Result{}, err
	}

	res := Result{Markers: make([]domain.MarkerRecord, 0, len(raw))}
	for _, r := range raw {
		if r.Title == "" || r.StartDate == "" {
			s.skip("missing_fields")
			continue
		}
		lat, lng, ok := s.coords(ctx, r.Latitude, r.Longitude, r.Venue)
		if !ok {
			s.skip("bad_coords", "title", r.Title)
			continue
		}

		link, description := domain.ExtractFirstLink(r.Description)
		if r.URL != "" {
			link = r.URL
		}

		res.Markers = append(res.Markers, domain.Finalize(domain.MarkerRecord{
			Title:       r.Title,
			DateRange:   normalizeDates(r.StartDate, r.EndDate),
			Location:    domain.GeoPoint{Lat: lat, Lng: lng, RawAddress: r.Venue},
			Description: description,
			LinkURL:     link,
			IconHint:    "sparkle",
			ImageURL:    r.Image,
			Source:      s.name,
		}))
		s.metrics.RecordsNormalized.WithLabelValues(s.name).Inc()
	}
	return res, nil
}
