package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/feed"
	"github.com/fogbelt/eventmap/internal/mapengine"
	"github.com/fogbelt/eventmap/internal/observability"
	"github.com/fogbelt/eventmap/internal/render"
)

// fakeSource is a canned feed for pipeline tests.
type fakeSource struct {
	name    string
	order   feed.RenderOrder
	result  feed.Result
	err     error
	fetches int
}

func (f *fakeSource) Name() string                  { return f.name }
func (f *fakeSource) RenderOrder() feed.RenderOrder { return f.order }
func (f *fakeSource) Fetch(context.Context) (feed.Result, error) {
	f.fetches++
	return f.result, f.err
}

// failingPublisher always rejects the batch.
type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishMarkers(context.Context, []domain.MarkerRecord) error {
	p.calls++
	return errors.New("broker unreachable")
}

type capturingPublisher struct{ got []domain.MarkerRecord }

func (p *capturingPublisher) PublishMarkers(_ context.Context, markers []domain.MarkerRecord) error {
	p.got = markers
	return nil
}

func testMarker(id string) domain.MarkerRecord {
	return domain.MarkerRecord{
		ID:        id,
		Title:     "Event " + id,
		DateRange: domain.DateRange{StartISO: "2025-07-04T00:00:00.000Z", AllDay: true},
		Location:  domain.GeoPoint{Lat: 37.77, Lng: -122.41},
		Source:    "events",
	}
}

func newTestPipeline(t *testing.T, sources []feed.Source, pub MarkerPublisher) (*Pipeline, *mapengine.Headless) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	engine := mapengine.NewHeadless(mapengine.LngLat{Lng: -122.446747, Lat: 37.775}, 12.5, "streets")
	driver := render.NewDriver(engine, time.UTC, false, logger, metrics)
	return New(sources, driver, pub, logger, metrics), engine
}

func waitReady(t *testing.T, p *Pipeline) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Wait(ctx))
}

func TestPipeline_FailingFeedIsIsolated(t *testing.T) {
	good := &fakeSource{
		name:   "events",
		order:  feed.RenderForward,
		result: feed.Result{Markers: []domain.MarkerRecord{testMarker("a"), testMarker("b")}},
	}
	bad := &fakeSource{name: "vendors", order: feed.RenderForward, err: errors.New("status 500")}
	parks := &fakeSource{
		name:  "parks",
		order: feed.RenderForward,
		result: feed.Result{Areas: []domain.AreaRecord{{
			ID: "p1", Name: "Dolores Park", Weight: 15.9,
			Geometry: domain.PointGeometry(-122.427, 37.759),
		}}},
	}

	p, engine := newTestPipeline(t, []feed.Source{good, bad, parks}, nil)
	p.Init(context.Background())
	waitReady(t, p)

	assert.Equal(t, StateReady, p.State(), "one failing feed never blocks readiness")
	assert.Len(t, engine.Markers(), 2)
	layer, ok := engine.Layer("parks")
	require.True(t, ok)
	assert.Len(t, layer.Features, 1)
	assert.Len(t, p.Markers(), 2)
}

func TestPipeline_InitIsIdempotent(t *testing.T) {
	src := &fakeSource{
		name:   "events",
		order:  feed.RenderForward,
		result: feed.Result{Markers: []domain.MarkerRecord{testMarker("a")}},
	}

	p, engine := newTestPipeline(t, []feed.Source{src}, nil)
	p.Init(context.Background())
	waitReady(t, p)

	p.Init(context.Background())
	p.Init(context.Background())

	assert.Equal(t, 1, src.fetches, "repeat init never refetches")
	assert.Len(t, engine.Markers(), 1, "repeat init never duplicates markers")
}

func TestPipeline_Readiness(t *testing.T) {
	p, _ := newTestPipeline(t, nil, nil)

	err := p.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uninitialized")

	p.Init(context.Background())
	waitReady(t, p)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_PublishesAfterSettle(t *testing.T) {
	src := &fakeSource{
		name:   "events",
		order:  feed.RenderForward,
		result: feed.Result{Markers: []domain.MarkerRecord{testMarker("a"), testMarker("b")}},
	}
	pub := &capturingPublisher{}

	p, _ := newTestPipeline(t, []feed.Source{src}, pub)
	p.Init(context.Background())
	waitReady(t, p)

	assert.Len(t, pub.got, 2)
}

func TestPipeline_PublishFailureDoesNotBlockReady(t *testing.T) {
	src := &fakeSource{
		name:   "events",
		order:  feed.RenderForward,
		result: feed.Result{Markers: []domain.MarkerRecord{testMarker("a")}},
	}
	pub := &failingPublisher{}

	p, _ := newTestPipeline(t, []feed.Source{src}, pub)
	p.Init(context.Background())
	waitReady(t, p)

	assert.Equal(t, StateReady, p.State())
	assert.Equal(t, 1, pub.calls)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "ready", StateReady.String())
}
