package sheet

import (
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-cards/cards"
)

// NamingScheme assigns a card to each cell of a grid, indexed [row][column].
// A zero cards.Card means the cell has no label.
type NamingScheme [][]cards.Card

// RowMajor builds a scheme with one suit per row and one rank per column.
func RowMajor(suits []cards.Suit, ranks []cards.Rank) NamingScheme {
	n := make(NamingScheme, len(suits))
	for row, s := range suits {
		n[row] = make([]cards.Card, len(ranks))
		for col, r := range ranks {
			n[row][col] = cards.Card{Suit: s, Rank: r}
		}
	}
	return n
}

// DefaultSuits and DefaultRanks describe the stock sheet: suits run down the
// rows and ranks run across the columns from the ace down to the two.
var (
	DefaultSuits = []cards.Suit{cards.Spades, cards.Hearts, cards.Clubs, cards.Diamonds}
	DefaultRanks = []cards.Rank{cards.Ace, cards.King, cards.Queen, cards.Jack, 10, 9, 8, 7, 6, 5, 4, 3, 2}
)

// DefaultNaming is the scheme of the stock 4x13 sheet.
func DefaultNaming() NamingScheme {
	return RowMajor(DefaultSuits, DefaultRanks)
}

// Label returns the card at (row, col), or the zero card when the scheme does
// not reach that far.
func (n NamingScheme) Label(row, col int) cards.Card {
	if row < 0 || row >= len(n) || col < 0 || col >= len(n[row]) {
		return cards.Card{}
	}
	return n[row][col]
}

// Set labels (row, col), growing the table as needed.
func (n *NamingScheme) Set(row, col int, c cards.Card) {
	for len(*n) <= row {
		*n = append(*n, nil)
	}
	r := (*n)[row]
	for len(r) <= col {
		r = append(r, cards.Card{})
	}
	r[col] = c
	(*n)[row] = r
}

// Check verifies that every cell of g has exactly one valid label, that no
// card labels two cells and that every card of the deck has a cell.
func (n NamingScheme) Check(g Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if len(n) > g.Rows {
		return cellError(g.Rows, 0, n.Label(g.Rows, 0), errors.Wrapf(ErrGeometryMismatch, "naming scheme has %d rows, grid has %d", len(n), g.Rows))
	}
	for row := range n {
		if len(n[row]) > g.Columns {
			return cellError(row, g.Columns, n.Label(row, g.Columns), errors.Wrapf(ErrGeometryMismatch, "naming scheme row has %d columns, grid has %d", len(n[row]), g.Columns))
		}
	}

	type pos struct{ row, col int }
	seen := make(map[cards.Card]pos, g.Cells())
	err := g.Each(func(row, col int) error {
		c := n.Label(row, col)
		if c.IsZero() {
			return cellError(row, col, c, ErrMissingLabel)
		}
		if !c.Valid() {
			return cellError(row, col, c, ErrInvalidLabel)
		}
		if p, ok := seen[c]; ok {
			return cellError(row, col, c, errors.Wrapf(ErrDuplicateLabel, "also at row %d column %d", p.row, p.col))
		}
		seen[c] = pos{row, col}
		return nil
	})
	if err != nil {
		return err
	}
	for _, s := range cards.Suits {
		for r := cards.Ace; r <= cards.King; r++ {
			c := cards.Card{Suit: s, Rank: r}
			if _, ok := seen[c]; !ok {
				return errors.Wrapf(ErrMissingLabel, "no cell is labelled %v", c)
			}
		}
	}
	return nil
}
