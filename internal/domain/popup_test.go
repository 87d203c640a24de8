package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() MarkerRecord {
	return MarkerRecord{
		ID:    "events-abc",
		Title: "Film Night",
		DateRange: DateRange{
			StartISO: "2025-07-04T00:00:00.000Z",
			EndISO:   "2025-07-05T00:00:00.000Z",
			AllDay:   true,
		},
		Location: GeoPoint{
			Lat:        37.7596,
			Lng:        -122.4269,
			RawAddress: "Dolores Park\n19th St, San Francisco, CA 94114",
		},
		Description: "Outdoor movie at dusk.",
		LinkURL:     "https://example.com/film",
		IconHint:    "film",
		Source:      "events",
	}
}

func TestBuildPopupContent(t *testing.T) {
	content := BuildPopupContent(testRecord(), time.UTC)

	assert.Equal(t, "Friday & Saturday", content.Header.DateText)
	assert.Equal(t, "July 4, 2025", content.Header.DateTitle)
	assert.Equal(t, "2025-07-04T00:00:00.000Z", content.Header.StartISO)
	assert.Equal(t, "Film Night", content.Header.Title)

	assert.Equal(t, "Dolores Park", content.Body.Address)
	assert.Equal(t, "Outdoor movie at dusk.", content.Body.Description)
	assert.Equal(t, "https://example.com/film", content.Body.LinkURL)
	assert.Nil(t, content.Media)
}

func TestBuildPopupContent_NoLinkNoAffordance(t *testing.T) {
	rec := testRecord()
	rec.LinkURL = ""

	content := BuildPopupContent(rec, time.UTC)
	assert.Empty(t, content.Body.LinkURL)
}

func TestBuildPopupContent_MediaFromImageURL(t *testing.T) {
	rec := testRecord()
	rec.ImageURL = "https://img.example/pic.jpg"

	content := BuildPopupContent(rec, time.UTC)
	require.NotNil(t, content.Media)
	assert.Equal(t, "https://img.example/pic.jpg", content.Media.ImageURL)
}

func TestBuildPopupContent_BadStartDegradesToEmptyLabel(t *testing.T) {
	rec := testRecord()
	rec.DateRange.StartISO = "when the fog lifts"

	content := BuildPopupContent(rec, time.UTC)
	assert.Empty(t, content.Header.DateText)
	assert.Empty(t, content.Header.DateTitle)
	assert.Equal(t, "Film Night", content.Header.Title)
}
