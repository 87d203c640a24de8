package domain

import "time"

// PopupContent is the declarative content block for one marker popup:
// header, body, optional trailing media. It carries no rendering-engine
// markup; the render driver translates it to whatever popup primitive the
// underlying map engine expects, escaping user-supplied text as it goes.
type PopupContent struct {
	Header PopupHeader
	Body   PopupBody
	Media  *PopupMedia
}

// PopupHeader carries the date label and title line.
type PopupHeader struct {
	DateText  string // e.g. "Friday & Saturday"
	DateTitle string // full start date for the tooltip/title attribute
	StartISO  string // machine-readable start, for a <time datetime> attribute
	Title     string
}

// PopupBody carries the shortened address, the cleaned description, and the
// external-link affordance. LinkURL empty means no affordance is rendered.
type PopupBody struct {
	Address     string
	Description string
	LinkURL     string
}

// PopupMedia is an optional trailing image.
type PopupMedia struct {
	ImageURL string
}

// BuildPopupContent composes the normalized fields of a record into a popup
// content block. Pure: a failed date parse degrades to an empty date label
// rather than an error, so a record with a bad start still gets a popup.
func BuildPopupContent(rec MarkerRecord, loc *time.Location) PopupContent {
	label, err := ComputeDateRangeLabel(rec.DateRange.StartISO, rec.DateRange.EndISO, loc)
	if err != nil {
		label = DateRangeLabel{}
	}

	content := PopupContent{
		Header: PopupHeader{
			DateText:  label.DisplayText,
			DateTitle: label.FullDateTitle,
			StartISO:  rec.DateRange.StartISO,
			Title:     rec.Title,
		},
		Body: PopupBody{
			Address:     ShortenAddress(rec.Location.RawAddress),
			Description: rec.Description,
			LinkURL:     rec.LinkURL,
		},
	}

	if rec.ImageURL != "" {
		content.Media = &PopupMedia{ImageURL: rec.ImageURL}
	}

	return content
}
