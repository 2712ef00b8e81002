package sheet

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-cards/cards"
	"badc0de.net/pkg/go-cards/datafiles"
)

// Layout is the TOML description of a sheet: where to find it, its grid and
// its naming scheme. datafiles/layout.toml holds the stock layout.
type Layout struct {
	// Sheet and Back are file names of the composite sheet and the deck back
	// source, relative to the layout file.
	Sheet string `toml:"sheet"`
	Back  string `toml:"back"`

	Grid   Grid         `toml:"grid"`
	Naming LayoutNaming `toml:"naming"`
}

type LayoutNaming struct {
	// Suits label the rows top to bottom; Ranks label the columns left to
	// right.
	Suits []cards.Suit `toml:"suits"`
	Ranks []cards.Rank `toml:"ranks"`

	Cells []LayoutCell `toml:"cell"`
}

// LayoutCell relabels a single cell, e.g. for sheets in an unusual order.
type LayoutCell struct {
	Row    int    `toml:"row"`
	Column int    `toml:"column"`
	Card   string `toml:"card"`
}

// LoadLayout decodes a layout. Keys the Layout type does not know about are
// an error, since a misspelt key would otherwise silently fall back to zero.
func LoadLayout(r io.Reader) (*Layout, error) {
	var l Layout
	md, err := toml.NewDecoder(r).Decode(&l)
	if err != nil {
		return nil, errors.Wrap(err, "decoding layout")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("layout: unknown keys %s", strings.Join(keys, ", "))
	}
	return &l, nil
}

func LoadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening layout")
	}
	defer f.Close()
	l, err := LoadLayout(f)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	return l, nil
}

// DefaultLayout returns the layout of the stock card sheet.
func DefaultLayout() (*Layout, error) {
	return LoadLayout(strings.NewReader(datafiles.DefaultLayout))
}

// NamingScheme builds the scheme the layout describes: the suits x ranks
// table with any per-cell overrides applied on top.
func (l *Layout) NamingScheme() (NamingScheme, error) {
	n := RowMajor(l.Naming.Suits, l.Naming.Ranks)
	for _, c := range l.Naming.Cells {
		if c.Row < 0 || c.Column < 0 {
			return nil, errors.Wrapf(ErrGeometryMismatch, "layout cell at row %d column %d", c.Row, c.Column)
		}
		card, err := cards.ParseCard(c.Card)
		if err != nil {
			return nil, cellError(c.Row, c.Column, cards.Card{}, errors.Wrap(ErrInvalidLabel, err.Error()))
		}
		if c.Row >= l.Grid.Rows || c.Column >= l.Grid.Columns {
			return nil, cellError(c.Row, c.Column, card, errors.Wrapf(ErrGeometryMismatch, "grid is %dx%d", l.Grid.Rows, l.Grid.Columns))
		}
		n.Set(c.Row, c.Column, card)
	}
	return n, nil
}
