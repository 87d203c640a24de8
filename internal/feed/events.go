package feed

import (
	"context"
	"log/slog"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/observability"
)

// rawGeneralEvent is the general events feed shape: a bare array of records
// with tagged titles and optional emoji icon hints.
type rawGeneralEvent struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Address     string     `json:"address"`
	Lat         FlexString `json:"lat"`
	Lng         FlexString `json:"lng"`
	Emoji       string     `json:"emoji"`
	URL         string     `json:"url"`
}

// GeneralSource adapts the general events feed. Bracketed source tags in the
// title select the icon and rewrite the display title via the tag table.
type GeneralSource struct {
	base
	path string
	tags *TagTable
}

// NewGeneralSource creates the general events adapter.
func NewGeneralSource(client *Client, tags *TagTable, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *GeneralSource {
	return &GeneralSource{
		base: base{
			name:     "events",
			order:    RenderForward,
			client:   client,
			geocoder: geocoder,
			logger:   logger,
			metrics:  metrics,
		},
		path: "/events",
		tags: tags,
	}
}

func (s *GeneralSource) Fetch(ctx context.Context) (Result, error) {
	var raw []rawGeneralEvent
	if err := s.client.GetJSON(ctx, s.path, &raw); err != nil {
		return Result{}, err
	}

	res := Result{Markers: make([]domain.MarkerRecord, 0, len(raw))}
	for _, r := range raw {
		rec, ok := s.normalize(ctx, r)
		if !ok {
			continue
		}
		res.Markers = append(res.Markers, rec)
		s.metrics.RecordsNormalized.WithLabelValues(s.name).Inc()
	}
	return res, nil
}

func (s *GeneralSource) normalize(ctx context.Context, r rawGeneralEvent) (domain.MarkerRecord, bool) {
	if r.Name == "" || r.Start == "" {
		s.skip("missing_fields")
		return domain.MarkerRecord{}, false
	}

	lat, lng, ok := s.coords(ctx, r.Lat, r.Lng, r.Address)
	if !ok {
		s.skip("bad_coords", "title", r.Name)
		return domain.MarkerRecord{}, false
	}

	title, icon := s.tags.Apply(r.Name, r.Emoji)
	link, description := domain.ExtractFirstLink(r.Description)
	if r.URL != "" {
		link = r.URL
	}

	return domain.Finalize(domain.MarkerRecord{
		Title:       title,
		DateRange:   normalizeDates(r.Start, r.End),
		Location:    domain.GeoPoint{Lat: lat, Lng: lng, RawAddress: r.Address},
		Description: description,
		LinkURL:     link,
		IconHint:    icon,
		Source:      s.name,
	}), true
}
