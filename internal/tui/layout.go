package tui

import (
	"github.com/hpungsan/perch/internal/gesture"
	"github.com/hpungsan/perch/internal/grid"
)

// Terminal cells are mapped to a virtual pixel space so the gesture radii
// from config keep their meaning: one column is 8px wide, one row 16px tall.
const (
	pxPerCol = 8
	pxPerRow = 16
)

// Tile geometry in terminal cells. Tiles include their border.
const (
	desktopColumns = 6
	tileCols       = 12
	tileRows       = 4
	gapCols        = 2
	gapRows        = 1

	// gridLeft and gridTop place the desktop grid below the two header lines
	// and a blank line.
	gridLeft = 2
	gridTop  = 3

	// The folder window has a one-cell border, one column of padding and a
	// header line above its tiles.
	windowInsetCols = 2
	windowInsetRows = 2
)

// toPoint maps a terminal cell to the center of its virtual pixel box.
func toPoint(col, row int) gesture.Point {
	return gesture.Point{
		X: float64(col*pxPerCol) + pxPerCol/2,
		Y: float64(row*pxPerRow) + pxPerRow/2,
	}
}

func tileLayout(originCol, originRow, columns, slots int) gesture.Layout {
	return gesture.Layout{
		Origin:  gesture.Point{X: float64(originCol * pxPerCol), Y: float64(originRow * pxPerRow)},
		Columns: columns,
		Slots:   slots,
		CellW:   tileCols * pxPerCol,
		CellH:   tileRows * pxPerRow,
		GapX:    gapCols * pxPerCol,
		GapY:    gapRows * pxPerRow,
	}
}

// desktopLayout is where the 24 desktop tiles are drawn.
func desktopLayout() gesture.Layout {
	return tileLayout(gridLeft, gridTop, desktopColumns, grid.DesktopSlots)
}

// folderColumns is 2 for a 2x2 folder and 3 for a 3x3 folder.
func folderColumns(size grid.SizeMode) int {
	if size.Normalized() == grid.Size2x2 {
		return 2
	}
	return 3
}

// folderLayout is where the tiles of an open folder are drawn.
func folderLayout(size grid.SizeMode) gesture.Layout {
	cols := folderColumns(size)
	return tileLayout(gridLeft+windowInsetCols, gridTop+windowInsetRows, cols, size.Capacity())
}

// folderWindow is the bounding box of the folder window, border included.
func folderWindow(size grid.SizeMode) gesture.Rect {
	cols := folderColumns(size)
	rows := size.Capacity() / cols
	width := 2*windowInsetCols + cols*tileCols + (cols-1)*gapCols
	height := windowInsetRows + 1 + rows*tileRows + (rows-1)*gapRows
	return gesture.Rect{
		Left:   float64(gridLeft * pxPerCol),
		Top:    float64(gridTop * pxPerRow),
		Width:  float64(width * pxPerCol),
		Height: float64(height * pxPerRow),
	}
}
