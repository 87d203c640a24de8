package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/fogbelt/eventmap/internal/domain"
)

// popupTmpl translates a declarative popup content block into the HTML the
// map engine's popup primitive expects. All record text flows through the
// template engine's contextual escaping; nothing from a feed reaches the
// popup as raw markup.
var popupTmpl = template.Must(template.New("popup").Parse(`<div class="popup">
<div class="popup-date" title="{{.Header.DateTitle}}"><time datetime="{{.Header.StartISO}}">{{.Header.DateText}}</time></div>
<h3 class="popup-title">{{.Header.Title}}</h3>
{{- if .Body.Address}}
<div class="popup-address">{{.Body.Address}}</div>
{{- end}}
{{- if .Body.Description}}
<p class="popup-description">{{.Body.Description}}</p>
{{- end}}
{{- if .Body.LinkURL}}
<a class="popup-link" href="{{.Body.LinkURL}}" target="_blank" rel="noopener">More info</a>
{{- end}}
{{- if .Media}}
<img class="popup-image" src="{{.Media.ImageURL}}" alt="">
{{- end}}
</div>`))

// RenderPopupHTML executes the popup template over a content block.
func RenderPopupHTML(content domain.PopupContent) (string, error) {
	var buf bytes.Buffer
	if err := popupTmpl.Execute(&buf, content); err != nil {
		return "", fmt.Errorf("render popup: %w", err)
	}
	return buf.String(), nil
}
