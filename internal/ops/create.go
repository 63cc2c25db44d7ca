package ops

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/perch/internal/config"
	"github.com/hpungsan/perch/internal/errors"
	"github.com/hpungsan/perch/internal/grid"
)

// CreateLinkInput contains parameters for creating a link.
type CreateLinkInput struct {
	Title   string // required
	Address string // required, scheme optional
	// IconName overrides the symbolic icon. Unknown names render as the
	// default glyph.
	IconName string
}

// CreateFolderInput contains parameters for creating a folder.
type CreateFolderInput struct {
	Title string // required
	Size  string // "2x2" or "3x3", default "3x3"
}

// NewLink builds a user-created link. The address gets an https:// prefix
// when it has no scheme, and an icon URL when its host can be parsed.
func NewLink(cfg *config.Config, id string, input CreateLinkInput) (grid.Link, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return grid.Link{}, errors.NewInvalidRequest("title is required")
	}
	url := grid.NormalizeURL(input.Address)
	if url == "" {
		return grid.Link{}, errors.NewInvalidRequest("url is required")
	}

	icon := strings.TrimSpace(input.IconName)
	if icon == "" {
		icon = grid.DefaultIcon
	}
	link := grid.Link{
		ID:       id,
		Title:    title,
		URL:      url,
		IconName: icon,
		IsCustom: true,
	}
	service := ""
	if cfg != nil {
		service = cfg.FaviconService
	}
	if iconURL, ok := grid.FaviconURL(service, url); ok {
		link.IconURL = iconURL
	}
	return link, nil
}

// NewFolder builds an empty folder.
func NewFolder(id string, input CreateFolderInput) (grid.Folder, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return grid.Folder{}, errors.NewInvalidRequest("title is required")
	}
	size, err := grid.ParseSizeMode(input.Size)
	if err != nil {
		return grid.Folder{}, errors.NewInvalidRequest(err.Error())
	}
	return grid.Folder{ID: id, Title: title, Size: size, Links: []grid.Link{}}, nil
}

// Insert places item in the first empty desktop slot.
func Insert(d Desktop, item grid.Item) (Desktop, Outcome, error) {
	if item == nil {
		return d, unchanged("insert"), errors.NewInvalidRequest("item is required")
	}
	if _, ok := d.Grid.Locate(item.ItemID()); ok {
		return d, unchanged("insert"), errors.NewConflict("id already on the desktop: " + item.ItemID())
	}
	slot, ok := d.Grid.FirstEmpty()
	if !ok {
		return d, unchanged("insert"), errors.NewGridFull(d.Grid.Len())
	}
	out := d.Clone()
	out.Grid.Set(slot, item)
	return out, changed("insert", slot, item.ItemID()), nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
