package feed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// genericIcon is the pin glyph used when neither a tag rule nor an emoji
// field selects anything better.
const genericIcon = "pin"

// TagRule maps one bracketed title prefix to an icon hint and an optional
// friendly label substituted for the tag.
type TagRule struct {
	Prefix string `yaml:"prefix"`
	Icon   string `yaml:"icon"`
	Label  string `yaml:"label,omitempty"`
}

// TagTable is the declarative prefix→{icon, rewrite} table consulted by the
// general adapter. The exact prefixes in use are deployment configuration,
// not code.
type TagTable struct {
	Rules []TagRule `yaml:"tags"`
}

// LoadTagTable reads a YAML tag table. An empty path returns the built-in
// defaults.
func LoadTagTable(path string) (*TagTable, error) {
	if path == "" {
		return DefaultTagTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag table: %w", err)
	}

	var table TagTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse tag table: %w", err)
	}
	for i, rule := range table.Rules {
		if rule.Prefix == "" || rule.Icon == "" {
			return nil, fmt.Errorf("tag rule %d: prefix and icon are required", i)
		}
	}
	return &table, nil
}

// DefaultTagTable returns the rules shipped with the service.
func DefaultTagTable() *TagTable {
	return &TagTable{Rules: []TagRule{
		{Prefix: "[Cleanup]", Icon: "broom"},
		{Prefix: "[Film]", Icon: "film"},
		{Prefix: "[Market]", Icon: "market"},
		{Prefix: "[Music]", Icon: "music"},
		{Prefix: "[Volunteer]", Icon: "hands", Label: "Volunteer Day"},
	}}
}

// Apply resolves a raw title against the table. On a prefix match the tag is
// stripped and the rule's icon selected; a rule label, when present, is
// substituted for the removed tag. Without a match the title passes through
// and the icon falls back to the record's emoji, then the generic pin.
func (t *TagTable) Apply(title, emoji string) (displayTitle, iconHint string) {
	trimmed := strings.TrimSpace(title)

	for _, rule := range t.Rules {
		if !strings.HasPrefix(trimmed, rule.Prefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, rule.Prefix))
		if rule.Label != "" {
			rest = strings.TrimSpace(strings.Join([]string{rule.Label, rest}, " "))
		}
		return rest, rule.Icon
	}

	if emoji != "" {
		return trimmed, emoji
	}
	return trimmed, genericIcon
}
