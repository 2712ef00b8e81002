package sheet

import (
	"fmt"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-cards/cards"
)

var (
	ErrGeometryMismatch = errors.New("geometry mismatch")
	ErrDuplicateLabel   = errors.New("duplicate label")
	ErrMissingLabel     = errors.New("missing label")
	ErrInvalidLabel     = errors.New("invalid label")
)

// CellError reports which cell of the grid failed. Use errors.Is against the
// Err* values above to classify it.
type CellError struct {
	Row, Column int
	Label       cards.Card
	Err         error
}

func (e *CellError) Error() string {
	if e.Label.IsZero() {
		return fmt.Sprintf("sheet: cell row %d column %d: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("sheet: cell row %d column %d (%v): %v", e.Row, e.Column, e.Label, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

func cellError(row, col int, label cards.Card, err error) error {
	return &CellError{Row: row, Column: col, Label: label, Err: err}
}
