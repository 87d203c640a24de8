package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagTable_Apply(t *testing.T) {
	table := DefaultTagTable()

	tests := []struct {
		name      string
		title     string
		emoji     string
		wantTitle string
		wantIcon  string
	}{
		{
			name:      "prefix stripped",
			title:     "[Cleanup] Ocean Beach",
			wantTitle: "Ocean Beach",
			wantIcon:  "broom",
		},
		{
			name:      "label substituted for tag",
			title:     "[Volunteer] Tree Planting",
			wantTitle: "Volunteer Day Tree Planting",
			wantIcon:  "hands",
		},
		{
			name:      "no match falls back to emoji",
			title:     "Night Market",
			emoji:     "🏮",
			wantTitle: "Night Market",
			wantIcon:  "🏮",
		},
		{
			name:      "no match no emoji uses pin",
			title:     "Night Market",
			wantTitle: "Night Market",
			wantIcon:  "pin",
		},
		{
			name:      "tag mid-title is not a prefix",
			title:     "Free [Film] Screening",
			wantTitle: "Free [Film] Screening",
			wantIcon:  "pin",
		},
		{
			name:      "leading whitespace tolerated",
			title:     "  [Music] Bandshell Show",
			wantTitle: "Bandshell Show",
			wantIcon:  "music",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			title, icon := table.Apply(tc.title, tc.emoji)
			assert.Equal(t, tc.wantTitle, title)
			assert.Equal(t, tc.wantIcon, icon)
		})
	}
}

func TestLoadTagTable(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		table, err := LoadTagTable("")
		require.NoError(t, err)
		assert.NotEmpty(t, table.Rules)
	})

	t.Run("loads yaml rules", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tags.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`tags:
  - prefix: "[Art]"
    icon: palette
  - prefix: "[Run]"
    icon: shoe
    label: Fun Run
`), 0o600))

		table, err := LoadTagTable(path)
		require.NoError(t, err)
		require.Len(t, table.Rules, 2)

		title, icon := table.Apply("[Run] Bay to Breakers", "")
		assert.Equal(t, "Fun Run Bay to Breakers", title)
		assert.Equal(t, "shoe", icon)
	})

	t.Run("missing icon rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tags.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tags:\n  - prefix: \"[Art]\"\n"), 0o600))

		_, err := LoadTagTable(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prefix and icon are required")
	})

	t.Run("missing file rejected", func(t *testing.T) {
		_, err := LoadTagTable(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
