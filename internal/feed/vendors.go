package feed

import (
	"context"
	"log/slog"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/observability"
)

// rawVendorFeed is the food vendor feed envelope: records arrive under a
// "shops" key rather than as a bare array.
type rawVendorFeed struct {
	Shops []rawVendor `json:"shops"`
}

type rawVendor struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Address     string     `json:"address"`
	Lat         FlexString `json:"lat"`
	Lng         FlexString `json:"lng"`
	Image       string     `json:"image"`
	Website     string     `json:"website"`
}

// VendorSource adapts the food vendor feed: fixed taco icon, per-record
// image honored when present.
type VendorSource struct {
	base
	path string
}

// NewVendorSource creates the vendors adapter.
func NewVendorSource(client *Client, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *VendorSource {
	return &VendorSource{
		base: base{
			name:     "vendors",
			order:    RenderForward,
			client:   client,
			geocoder: geocoder,
			logger:   logger,
			metrics:  metrics,
		},
		path: "/vendors",
	}
}

func (s *VendorSource) Fetch(ctx context.Context) (Result, error) {
	var raw rawVendorFeed
	if err := s.client.GetJSON(ctx, s.path, &raw); err != nil {
		return Result{}, err
	}

	res := Result{Markers: make([]domain.MarkerRecord, 0, len(raw.Shops))}
	for _, r := range raw.Shops {
		if r.Name == "" {
			s.skip("missing_fields")
			continue
		}
		lat, lng, ok := s.coords(ctx, r.Lat, r.Lng, r.Address)
		if !ok {
			s.skip("bad_coords", "title", r.Name)
			continue
		}

		link, description := domain.ExtractFirstLink(r.Description)
		if r.Website != "" {
			link = r.Website
		}

		res.Markers = append(res.Markers, domain.Finalize(domain.MarkerRecord{
			Title:       r.Name,
			DateRange:   normalizeDates(r.Start, r.End),
			Location:    domain.GeoPoint{Lat: lat, Lng: lng, RawAddress: r.Address},
			Description: description,
			LinkURL:     link,
			IconHint:    "taco",
			ImageURL:    r.Image,
			Source:      s.name,
		}))
		s.metrics.RecordsNormalized.WithLabelValues(s.name).Inc()
	}
	return res, nil
}
