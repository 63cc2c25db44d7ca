package grid

// InitialSlotIndices are the slots the default items occupy on first run.
var InitialSlotIndices = []int{2, 3, 4}

// DockSize is the number of links shown in the dock.
const DockSize = 7

// DefaultLink is the seeded standalone link.
func DefaultLink() Link {
	return Link{
		ID:       "single-link",
		Title:    "Traveler's Log",
		URL:      "https://genshin.hoyoverse.com",
		IconName: "Compass",
		IsCustom: true,
	}
}

// DefaultFolders returns the seeded folders, smallest first.
func DefaultFolders() []Folder {
	return []Folder{
		{
			ID:    "folder-2x2",
			Title: "Small Stash",
			Size:  Size2x2,
			Links: []Link{
				{ID: "g1", Title: "Gmail", URL: "https://mail.google.com", IconName: "Mail"},
				{ID: "g2", Title: "Maps", URL: "https://maps.google.com", IconName: "Map"},
				{ID: "g3", Title: "Calendar", URL: "https://calendar.google.com", IconName: "Calendar"},
				{ID: "g4", Title: "Drive", URL: "https://drive.google.com", IconName: "Scroll"},
			},
		},
		{
			ID:    "folder-3x3",
			Title: "Treasure Trove",
			Size:  Size3x3,
			Links: []Link{
				{ID: "t1", Title: "YouTube", URL: "https://youtube.com", IconName: "Youtube"},
				{ID: "t2", Title: "GitHub", URL: "https://github.com", IconName: "Github"},
				{ID: "t3", Title: "ChatGPT", URL: "https://chat.openai.com", IconName: "Code"},
				{ID: "t4", Title: "Netflix", URL: "https://netflix.com", IconName: "Image"},
				{ID: "t5", Title: "Spotify", URL: "https://open.spotify.com", IconName: "Music"},
				{ID: "t6", Title: "Shopping", URL: "https://amazon.com", IconName: "ShoppingBag"},
				{ID: "t7", Title: "Stack", URL: "https://stackoverflow.com", IconName: "Scroll"},
				{ID: "t8", Title: "Wiki", URL: "https://wikipedia.org", IconName: "Compass"},
				{ID: "t9", Title: "Hoyolab", URL: "https://www.hoyolab.com", IconName: "Sword"},
			},
		},
	}
}

// DefaultItems returns the seeded items in InitialSlotIndices order.
func DefaultItems() []Item {
	items := []Item{DefaultLink()}
	for _, f := range DefaultFolders() {
		items = append(items, f)
	}
	return items
}

// Seed returns the first-run desktop.
func Seed() Grid {
	g := NewDesktop()
	for i, it := range DefaultItems() {
		if i >= len(InitialSlotIndices) {
			break
		}
		if idx := InitialSlotIndices[i]; g.InRange(idx) {
			g.Set(idx, it)
		}
	}
	return g
}

// DockLinks returns the fixed dock shortcuts: the first DockSize links of
// the default folders.
func DockLinks() []Link {
	var links []Link
	for _, f := range DefaultFolders() {
		links = append(links, f.Links...)
	}
	if len(links) > DockSize {
		links = links[:DockSize]
	}
	return links
}
