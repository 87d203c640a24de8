package domain

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// bareURLRe matches a bare http(s) URL up to the next whitespace.
	bareURLRe = regexp.MustCompile(`https?://\S+`)

	// digitRe finds the first street-number digit in an address.
	digitRe = regexp.MustCompile(`[0-9]`)
)

// ExtractFirstLink pulls a single "more info" URL out of free text.
//
// HTML anchors take priority: when the text contains at least one
// <a href="..."> element, every href is collected in document order, the
// anchor markup is removed, and the first href is returned. Only when no
// anchor is present are bare http(s) URLs scanned and stripped. Text with
// neither returns an empty URL and the trimmed input.
//
// A description yields at most one link regardless of how many URLs appear.
func ExtractFirstLink(text string) (url, remainder string) {
	if strings.Contains(text, "<a") {
		if u, rest, ok := extractAnchors(text); ok {
			return u, rest
		}
	}

	matches := bareURLRe.FindAllString(text, -1)
	if len(matches) > 0 {
		cleaned := bareURLRe.ReplaceAllString(text, "")
		return matches[0], strings.TrimSpace(cleaned)
	}

	return "", strings.TrimSpace(text)
}

// extractAnchors parses the text as an HTML fragment and removes every
// anchor carrying an href. Returns ok=false when no such anchor exists so
// the caller can fall back to bare-URL scanning.
func extractAnchors(text string) (string, string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", "", false
	}

	var urls []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			urls = append(urls, href)
		}
	})
	if len(urls) == 0 {
		return "", "", false
	}

	doc.Find("a[href]").Remove()
	remainder := strings.TrimSpace(doc.Find("body").Text())
	return urls[0], remainder, true
}

// ShortenAddress compacts a free-text address down to its venue-name prefix.
//
// Newlines collapse to ", ", then the address is truncated strictly before
// the earliest of (a) the first digit (a street number) or (b) the substring
// "san francisco" (case-insensitive), and any trailing comma/whitespace is
// stripped. "Dolores Park, 19th St, San Francisco, CA 94114" becomes
// "Dolores Park". When neither cut point exists the whole trimmed string is
// returned. Empty input returns "".
func ShortenAddress(address string) string {
	if address == "" {
		return ""
	}

	addr := strings.ReplaceAll(address, "\n", ", ")

	cut := len(addr)
	if i := strings.Index(strings.ToLower(addr), "san francisco"); i >= 0 && i < cut {
		cut = i
	}
	if loc := digitRe.FindStringIndex(addr); loc != nil && loc[0] < cut {
		cut = loc[0]
	}

	return strings.TrimSpace(strings.TrimRight(addr[:cut], ", \t"))
}
