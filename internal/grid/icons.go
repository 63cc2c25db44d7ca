package grid

import "sort"

// DefaultIcon is the glyph name used for unknown names and new links.
const DefaultIcon = "Compass"

var glyphs = map[string]string{
	"Compass":     "🧭",
	"Map":         "🗺",
	"Scroll":      "📜",
	"Sword":       "🗡",
	"ShoppingBag": "🛍",
	"Youtube":     "▶",
	"Github":      "🐙",
	"Code":        "⌨",
	"Mail":        "✉",
	"Calendar":    "📅",
	"Image":       "🖼",
	"Music":       "♫",
}

// Glyph resolves a symbolic icon name. Unknown names resolve to the
// DefaultIcon glyph.
func Glyph(name string) string {
	if g, ok := glyphs[name]; ok {
		return g
	}
	return glyphs[DefaultIcon]
}

// IconNames returns the registered symbolic names, sorted.
func IconNames() []string {
	names := make([]string, 0, len(glyphs))
	for n := range glyphs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FolderGlyph is drawn for folders whose preview is empty.
const FolderGlyph = "▦"
