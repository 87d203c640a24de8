// Package feed fetches the external JSON sources and adapts each one's shape
// into the normalized records of internal/domain. One Source per feed; a
// failing source never blocks the others (isolation lives in the pipeline).
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/observability"
)

// RenderOrder declares a source's z-order policy: reverse means later API
// entries render first so earlier ones draw on top. This is a stable
// contract per source, not an iteration accident.
type RenderOrder string

// Render order policies.
const (
	RenderForward RenderOrder = "forward"
	RenderReverse RenderOrder = "reverse"
)

// Result is one source's normalized output. A source produces markers or
// areas, never both.
type Result struct {
	Markers []domain.MarkerRecord
	Areas   []domain.AreaRecord
}

// Source fetches one external feed and normalizes its records.
type Source interface {
	Name() string
	RenderOrder() RenderOrder
	Fetch(ctx context.Context) (Result, error)
}

// Client wraps the feed HTTP transport with retries and a shared base URL.
type Client struct {
	http *resty.Client
}

// NewClient creates a feed client rooted at the API origin.
func NewClient(baseURL string, timeout time.Duration, retries int) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(retries).
			SetRetryWaitTime(500 * time.Millisecond),
	}
}

// GetJSON fetches a path and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetch %s: status %d", path, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// FlexString decodes a JSON value that feeds deliver as either a string or a
// number ("37.77" vs 37.77).
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(b)
	return nil
}

// base carries the identity and collaborators shared by all point-feed
// adapters.
type base struct {
	name     string
	order    RenderOrder
	client   *Client
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func (b *base) Name() string             { return b.name }
func (b *base) RenderOrder() RenderOrder { return b.order }

func (b *base) skip(reason string, args ...any) {
	b.metrics.RecordsSkipped.WithLabelValues(b.name, reason).Inc()
	b.logger.Debug("record skipped", append([]any{"source", b.name, "reason", reason}, args...)...)
}

// coords resolves a record's position: explicit lat/lng when parseable,
// otherwise a forward-geocode of the address when a geocoder is wired.
// ok=false means the record has no usable geometry and must be skipped.
func (b *base) coords(ctx context.Context, latRaw, lngRaw FlexString, address string) (float64, float64, bool) {
	lat, lng, err := domain.ParseCoords(string(latRaw), string(lngRaw))
	if err == nil {
		return lat, lng, true
	}

	if b.geocoder == nil || address == "" {
		return 0, 0, false
	}

	result, gerr := b.geocoder.ForwardGeocode(ctx, address)
	if gerr != nil {
		b.logger.Warn("forward geocoding failed", "source", b.name, "address", address, "error", gerr)
		return 0, 0, false
	}
	if !domain.ValidCoords(result.Lat, result.Lng) || (result.Lat == 0 && result.Lng == 0) {
		return 0, 0, false
	}
	return result.Lat, result.Lng, true
}

// normalizeDates validates a raw start/end pair. A malformed or inverted end
// is dropped so the record degrades to start-only rendering.
func normalizeDates(startISO, endISO string) domain.DateRange {
	dr := domain.DateRange{
		StartISO: startISO,
		AllDay:   domain.IsAllDay(startISO),
	}
	if endISO == "" {
		return dr
	}

	start, serr := time.Parse(time.RFC3339, startISO)
	end, eerr := time.Parse(time.RFC3339, endISO)
	if serr != nil || eerr != nil || end.Before(start) {
		return dr
	}
	dr.EndISO = endISO
	return dr
}
