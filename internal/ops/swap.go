package ops

import (
	"github.com/hpungsan/perch/internal/grid"
)

// Swap exchanges the contents of desktop slots i and j, empty or not.
// Out-of-range indices and i == j leave the desktop unchanged.
func Swap(d Desktop, i, j int) (Desktop, Outcome, error) {
	if i == j || !d.Grid.InRange(i) || !d.Grid.InRange(j) {
		return d, unchanged("swap"), nil
	}
	a, b := d.Grid.Get(i), d.Grid.Get(j)
	if a == nil && b == nil {
		return d, unchanged("swap"), nil
	}
	out := d.Clone()
	out.Grid.Set(i, b)
	out.Grid.Set(j, a)
	id := ""
	if a != nil {
		id = a.ItemID()
	}
	return out, changed("swap", j, id), nil
}

// Merge appends the link at slot src to the folder at slot dst and clears
// src. Anything other than a link over a folder is left unchanged.
func Merge(d Desktop, src, dst int) (Desktop, Outcome, error) {
	if src == dst || !d.Grid.InRange(src) || !d.Grid.InRange(dst) {
		return d, unchanged("merge"), nil
	}
	link, ok := grid.AsLink(d.Grid.Get(src))
	if !ok {
		return d, unchanged("merge"), nil
	}
	folder, ok := grid.AsFolder(d.Grid.Get(dst))
	if !ok {
		return d, unchanged("merge"), nil
	}

	out := d.Clone()
	out.Grid.Set(dst, folder.WithLinks(append(append([]grid.Link(nil), folder.Links...), link)))
	out.Grid.Set(src, nil)
	return out, changed("merge", dst, link.ID), nil
}

// Drop resolves a release of src onto dst: a link dropped on a folder merges,
// everything else swaps.
func Drop(d Desktop, src, dst int) (Desktop, Outcome, error) {
	if d.Grid.InRange(src) && d.Grid.InRange(dst) {
		_, isLink := grid.AsLink(d.Grid.Get(src))
		_, isFolder := grid.AsFolder(d.Grid.Get(dst))
		if isLink && isFolder {
			return Merge(d, src, dst)
		}
	}
	return Swap(d, src, dst)
}
