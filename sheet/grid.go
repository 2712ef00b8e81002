package sheet

import (
	"image"

	"github.com/bradfitz/iter"
	"github.com/pkg/errors"
)

// Grid describes how a sheet is partitioned into cells.
//
// CardWidth and CardHeight may be left at zero, in which case a card fills
// its whole cell. Otherwise the card is taken from the top-left corner of the
// cell; sheets often leave a few pixels of gutter between cards.
type Grid struct {
	Rows       int `toml:"rows"`
	Columns    int `toml:"columns"`
	CellWidth  int `toml:"cell_width"`
	CellHeight int `toml:"cell_height"`
	CardWidth  int `toml:"card_width"`
	CardHeight int `toml:"card_height"`
}

// Cells is the number of cells in the grid.
func (g Grid) Cells() int {
	return g.Rows * g.Columns
}

// Size is the pixel size a sheet must have to match the grid.
func (g Grid) Size() image.Point {
	return image.Pt(g.Columns*g.CellWidth, g.Rows*g.CellHeight)
}

// CardSize is the pixel size of each extracted card.
func (g Grid) CardSize() image.Point {
	sz := image.Pt(g.CardWidth, g.CardHeight)
	if sz.X == 0 {
		sz.X = g.CellWidth
	}
	if sz.Y == 0 {
		sz.Y = g.CellHeight
	}
	return sz
}

// Validate checks the grid on its own, without a sheet.
func (g Grid) Validate() error {
	if g.Rows <= 0 || g.Columns <= 0 {
		return errors.Wrapf(ErrGeometryMismatch, "grid of %dx%d cells", g.Rows, g.Columns)
	}
	if g.CellWidth <= 0 || g.CellHeight <= 0 {
		return errors.Wrapf(ErrGeometryMismatch, "cell size %dx%d", g.CellWidth, g.CellHeight)
	}
	if g.CardWidth < 0 || g.CardHeight < 0 || g.CardWidth > g.CellWidth || g.CardHeight > g.CellHeight {
		return errors.Wrapf(ErrGeometryMismatch, "card size %dx%d does not fit cell size %dx%d", g.CardWidth, g.CardHeight, g.CellWidth, g.CellHeight)
	}
	return nil
}

// Check verifies that a sheet with the passed bounds is exactly the size the
// grid describes.
func (g Grid) Check(bounds image.Rectangle) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if want := g.Size(); bounds.Size() != want {
		return errors.Wrapf(ErrGeometryMismatch, "sheet is %dx%d, grid of %dx%d cells of %dx%d needs %dx%d",
			bounds.Dx(), bounds.Dy(), g.Columns, g.Rows, g.CellWidth, g.CellHeight, want.X, want.Y)
	}
	return nil
}

// Rect returns the rectangle of the card at (row, col) on a sheet with the
// passed bounds.
func (g Grid) Rect(bounds image.Rectangle, row, col int) image.Rectangle {
	origin := bounds.Min.Add(image.Pt(col*g.CellWidth, row*g.CellHeight))
	return image.Rectangle{Min: origin, Max: origin.Add(g.CardSize())}
}

// Each calls fn for every cell in row-major order, stopping at the first
// error.
func (g Grid) Each(fn func(row, col int) error) error {
	for row := range iter.N(g.Rows) {
		for col := range iter.N(g.Columns) {
			if err := fn(row, col); err != nil {
				return err
			}
		}
	}
	return nil
}
