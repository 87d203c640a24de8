// Package domain models normalized map marker and area data for the San
// Francisco events overlay.
//
// # Data Sources
//
// Raw records arrive from several independently maintained public JSON feeds
// (general events, neighborhood cleanups, illuminate installations, food
// vendors, and a parks polygon inventory). Each feed has its own shape; the
// adapters in internal/feed map them onto [MarkerRecord] and [AreaRecord].
//
// # Feed Conventions
//
// Timestamps:
//
//	RFC 3339 / ISO 8601 strings. An event whose raw start encodes midnight
//	UTC ("T00:00:00.000Z") is an all-day event and is formatted
//	timezone-neutrally so the intended calendar day is shown rather than
//	the previous local day. Timed events format in the configured display
//	timezone.
//
// Date range labels (a UX heuristic, not a calendar standard):
//
//	d = round(|end - start| / 24h)
//	d = 0  →  "Friday"
//	d = 1  →  "Friday & Saturday"
//	d = 2  →  "Friday to Sunday"
//	d ≥ 3  →  "July 4 to July 10"
//
// Addresses:
//
//	Feeds typically prefix a venue name before the street address
//	("Dolores Park, 19th St, San Francisco, CA 94114"). [ShortenAddress]
//	truncates at the first street number or "san francisco" occurrence,
//	yielding the venue name for compact popup display.
//
// Descriptions:
//
//	Free text that may embed an HTML anchor or bare http(s) URLs.
//	[ExtractFirstLink] pulls out a single "more info" link and returns the
//	cleaned remainder. Anchors take precedence over bare URLs.
//
// Titles:
//
//	The general feed prefixes titles with bracketed source tags
//	("[Cleanup] Ocean Beach"). The tag selects an icon hint and is stripped
//	(optionally rewritten) before display; see internal/feed.
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of source|title|lat|lng|start,
// so reprocessing the same feed yields the same IDs and downstream consumers
// can upsert idempotently. See [GenerateID].
package domain
