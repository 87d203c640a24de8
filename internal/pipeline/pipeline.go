// Package pipeline coordinates the fetch→normalize→render flow. Each source
// runs in its own goroutine so one slow or failing feed never delays the
// others; the pipeline reaches Ready once every source has reported in,
// successfully or not.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/feed"
	"github.com/fogbelt/eventmap/internal/observability"
	"github.com/fogbelt/eventmap/internal/render"
)

// State is the pipeline lifecycle: markers and layers are only created
// during the Uninitialized→Initializing transition, so a repeated Init can
// never duplicate them.
type State int32

// Lifecycle states.
const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// MarkerPublisher receives the normalized marker set once all feeds settle.
type MarkerPublisher interface {
	PublishMarkers(ctx context.Context, markers []domain.MarkerRecord) error
}

// Pipeline fans the configured sources out, renders their results through
// the driver, and keeps the normalized marker set for read-back.
type Pipeline struct {
	sources   []feed.Source
	driver    *render.Driver
	publisher MarkerPublisher // nil when publishing is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics

	state   atomic.Int32
	settled chan struct{}

	mu      sync.Mutex
	markers []domain.MarkerRecord
}

// New creates a pipeline over the given sources. publisher may be nil.
func New(sources []feed.Source, driver *render.Driver, publisher MarkerPublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	p := &Pipeline{
		sources:   sources,
		driver:    driver,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		settled:   make(chan struct{}),
	}
	metrics.PipelineState.Set(float64(StateUninitialized))
	return p
}

// State reports the current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Init starts every source concurrently. Only the first call does anything;
// later calls return immediately without touching the map.
func (p *Pipeline) Init(ctx context.Context) {
	if !p.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		p.logger.Debug("init skipped, already started", "state", p.State().String())
		return
	}
	p.metrics.PipelineState.Set(float64(StateInitializing))
	p.logger.Info("pipeline initializing", "sources", len(p.sources))

	var wg sync.WaitGroup
	for _, src := range p.sources {
		wg.Add(1)
		go func(src feed.Source) {
			defer wg.Done()
			p.runSource(ctx, src)
		}(src)
	}

	go func() {
		wg.Wait()
		p.state.Store(int32(StateReady))
		p.metrics.PipelineState.Set(float64(StateReady))
		p.logger.Info("pipeline ready", "markers", len(p.Markers()))
		p.publish(ctx)
		close(p.settled)
	}()
}

// runSource fetches and renders one feed. Failures are contained here: they
// are counted, logged, and never propagate to sibling sources.
func (p *Pipeline) runSource(ctx context.Context, src feed.Source) {
	timer := prometheus.NewTimer(p.metrics.FeedFetchDuration.WithLabelValues(src.Name()))
	res, err := src.Fetch(ctx)
	timer.ObserveDuration()

	if err != nil {
		p.metrics.FeedFetches.WithLabelValues(src.Name(), "error").Inc()
		p.logger.Warn("feed fetch failed", "source", src.Name(), "error", err)
		return
	}
	p.metrics.FeedFetches.WithLabelValues(src.Name(), "success").Inc()

	if len(res.Markers) > 0 {
		p.driver.RenderMarkers(res.Markers, src.RenderOrder())
		p.mu.Lock()
		p.markers = append(p.markers, res.Markers...)
		p.mu.Unlock()
	}
	if len(res.Areas) > 0 {
		if err := p.driver.RegisterAreas(src.Name(), res.Areas); err != nil {
			p.logger.Warn("area layer registration failed", "source", src.Name(), "error", err)
		}
	}
}

func (p *Pipeline) publish(ctx context.Context) {
	if p.publisher == nil {
		return
	}
	markers := p.Markers()
	if err := p.publisher.PublishMarkers(ctx, markers); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("marker publish failed", "count", len(markers), "error", err)
		return
	}
	p.metrics.MarkersPublished.Add(float64(len(markers)))
}

// Wait blocks until every source has settled and the pipeline is Ready, or
// the context expires.
func (p *Pipeline) Wait(ctx context.Context) error {
	select {
	case <-p.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Markers returns a snapshot of the normalized marker set.
func (p *Pipeline) Markers() []domain.MarkerRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.MarkerRecord, len(p.markers))
	copy(out, p.markers)
	return out
}

// CheckReadiness satisfies the readiness probe: the service is ready once
// every feed has settled.
func (p *Pipeline) CheckReadiness(context.Context) error {
	if p.State() != StateReady {
		return fmt.Errorf("pipeline %s", p.State())
	}
	return nil
}
