// Command genfixtures writes mock feed JSON plus the normalized records the
// service derives from it. It runs the actual feed adapters so the expected
// output can never drift from pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures -out-dir data/mock
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/feed"
	"github.com/fogbelt/eventmap/internal/observability"
)

// feedBodies is the raw mock payload per feed path, shaped like the real
// APIs: bare arrays, a "shops" envelope for vendors, GeoJSON shapes for
// parks.
var feedBodies = map[string]string{
	"/events": `[
  {"name":"[Cleanup] Baker Beach","description":"Gloves and bags provided. https://sfcleanup.example/baker","start":"2025-07-04T00:00:00.000Z","end":"2025-07-05T00:00:00.000Z","address":"Baker Beach\nSan Francisco, CA","lat":"37.7936","lng":"-122.4844"},
  {"name":"[Volunteer] Tree Planting","description":"Shovels on site","start":"2025-07-12T00:00:00.000Z","address":"Sunset Blvd\nSan Francisco, CA","lat":"37.7431","lng":"-122.4938"},
  {"name":"Night Market","description":"Food stalls and live music","start":"2025-07-11T18:00:00Z","end":"2025-07-12T02:00:00Z","lat":37.7648,"lng":-122.4195,"emoji":"🏮","url":"https://nightmarket.example"}
]`,
	"/cleanups": `[
  {"name":"Mission Creek Cleanup","description":"Meet at the kayak launch","start":"2025-07-19T00:00:00.000Z","location":"Mission Creek Park\n290 Channel St, San Francisco, CA","lat":"37.7716","lng":"-122.3931"},
  {"name":"Ocean Beach Cleanup","description":"<a href=\"https://surfrider.example/ob\">RSVP here</a> Supplies provided","start":"2025-07-26T00:00:00.000Z","location":"Ocean Beach\nGreat Hwy, San Francisco, CA","lat":"37.7596","lng":"-122.5107"}
]`,
	"/illuminate": `[
  {"title":"Bay Lights","description":"Nightly on the western span","start_date":"2025-07-01T00:00:00.000Z","end_date":"2025-07-31T00:00:00.000Z","venue":"Pier 14","latitude":37.7902,"longitude":-122.3887,"image":"https://illuminate.example/baylights.png","url":"https://illuminate.example/baylights"}
]`,
	"/vendors": `{"shops":[
  {"name":"El Tonayense","description":"Classic mission truck","start":"2025-07-04T17:00:00Z","address":"Harrison St & 19th St","lat":"37.7601","lng":"-122.4128","website":"https://tonayense.example"}
]}`,
	"/parks": `[
  {"property_name":"Mission Dolores Park","property_id":"P001","acres":15.9,"shape":{"type":"Polygon","coordinates":[[[-122.428,37.758],[-122.426,37.758],[-122.426,37.761],[-122.428,37.761],[-122.428,37.758]]]}},
  {"property_name":"Pocket Park","property_id":"P002","acres":0,"latitude":"37.77","longitude":"-122.41"}
]`,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "output directory for fixture files")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}

	// Fixed clock for reproducible NormalizedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.July, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := feedBodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	client := feed.NewClient(srv.URL, 10*time.Second, 0)

	sources := []feed.Source{
		feed.NewGeneralSource(client, feed.DefaultTagTable(), nil, logger, metrics),
		feed.NewCleanupSource(client, nil, logger, metrics),
		feed.NewIlluminateSource(client, nil, logger, metrics),
		feed.NewVendorSource(client, nil, logger, metrics),
		feed.NewParkSource(client, logger, metrics),
	}

	var markers []domain.MarkerRecord
	var areas []domain.AreaRecord
	for _, src := range sources {
		res, err := src.Fetch(context.Background())
		if err != nil {
			return fmt.Errorf("fetch %s: %w", src.Name(), err)
		}
		markers = append(markers, res.Markers...)
		areas = append(areas, res.Areas...)
		log.Printf("%s: %d markers, %d areas", src.Name(), len(res.Markers), len(res.Areas))
	}

	for path, body := range feedBodies {
		name := filepath.Join(*outDir, "feeds", path[1:]+".json")
		if err := writeFile(name, []byte(body)); err != nil {
			return fmt.Errorf("writing feed fixture: %w", err)
		}
		log.Printf("wrote feed fixture: %s", name)
	}

	if err := writeJSON(filepath.Join(*outDir, "normalized", "markers.json"), markers); err != nil {
		return fmt.Errorf("writing marker fixture: %w", err)
	}
	if err := writeJSON(filepath.Join(*outDir, "normalized", "areas.json"), areas); err != nil {
		return fmt.Errorf("writing area fixture: %w", err)
	}

	log.Printf("total: %d markers, %d areas", len(markers), len(areas))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
