package sheet

import (
	"image"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-cards/cards"
	"badc0de.net/pkg/go-cards/ttesting"
)

func TestDefaultLayout(t *testing.T) {
	l, err := DefaultLayout()
	if err != nil {
		t.Fatalf("DefaultLayout: %v", err)
	}
	ttesting.AssertEqualString(t, "sheet", l.Sheet, "cards.png")
	ttesting.AssertEqualString(t, "back", l.Back, "deck.png")
	if got := l.Grid.Size(); got != image.Pt(2808, 1152) {
		t.Errorf("sheet size: got %v; want 2808x1152", got)
	}
	if got := l.Grid.CardSize(); got != image.Pt(212, 287) {
		t.Errorf("card size: got %v; want 212x287", got)
	}

	n, err := l.NamingScheme()
	if err != nil {
		t.Fatalf("NamingScheme: %v", err)
	}
	if err := n.Check(l.Grid); err != nil {
		t.Fatalf("default naming does not fit default grid: %v", err)
	}
	if n.Label(1, 0) != (cards.Card{Suit: cards.Hearts, Rank: cards.Ace}) {
		t.Errorf("row 1 column 0: got %v; want ace of hearts", n.Label(1, 0))
	}
	if n.Label(3, 4) != (cards.Card{Suit: cards.Diamonds, Rank: 10}) {
		t.Errorf("row 3 column 4: got %v; want 10 of diamonds", n.Label(3, 4))
	}
}

const swapLayout = `
[grid]
rows = 4
columns = 13
cell_width = 10
cell_height = 10

[naming]
suits = ["spades", "hearts", "clubs", "diamonds"]
ranks = ["ace", "king", "queen", "jack", "10", "9", "8", "7", "6", "5", "4", "3", "2"]

[[naming.cell]]
row = 0
column = 0
card = "king of spades"

[[naming.cell]]
row = 0
column = 1
card = "ace of spades"
`

func TestLayoutCellOverride(t *testing.T) {
	l, err := LoadLayout(strings.NewReader(swapLayout))
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	n, err := l.NamingScheme()
	if err != nil {
		t.Fatalf("NamingScheme: %v", err)
	}
	if got := n.Label(0, 0); got != (cards.Card{Suit: cards.Spades, Rank: cards.King}) {
		t.Errorf("row 0 column 0: got %v; want king of spades", got)
	}
	if got := n.Label(0, 1); got != (cards.Card{Suit: cards.Spades, Rank: cards.Ace}) {
		t.Errorf("row 0 column 1: got %v; want ace of spades", got)
	}
	if err := n.Check(l.Grid); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestLayoutCellOutsideGrid(t *testing.T) {
	for name, cell := range map[string]string{
		"huge row":      "row = 1000000000\ncolumn = 0\n",
		"row past grid": "row = 4\ncolumn = 0\n",
		"column":        "row = 0\ncolumn = 13\n",
		"negative":      "row = -1\ncolumn = 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			l, err := LoadLayout(strings.NewReader(swapLayout + "\n[[naming.cell]]\n" + cell + "card = \"2 of hearts\"\n"))
			if err != nil {
				t.Fatalf("LoadLayout: %v", err)
			}
			_, err = l.NamingScheme()
			ttesting.AssertErrorIs(t, "NamingScheme", err, ErrGeometryMismatch)
		})
	}
}

func TestCheckCoversDeck(t *testing.T) {
	n := NamingScheme{{
		{Suit: cards.Hearts, Rank: cards.Ace},
		{Suit: cards.Hearts, Rank: 2},
	}}
	err := n.Check(Grid{Rows: 1, Columns: 2, CellWidth: 10, CellHeight: 10})
	ttesting.AssertErrorIs(t, "Check", err, ErrMissingLabel)
	if err != nil && !strings.Contains(err.Error(), "ace of clubs") {
		t.Errorf("error %q does not name the ace of clubs", err)
	}
}

func TestLayoutErrors(t *testing.T) {
	for name, src := range map[string]string{
		"unknown key": "[grid]\nrowz = 4\n",
		"bad suit":    "[naming]\nsuits = [\"cups\"]\n",
		"bad rank":    "[naming]\nranks = [\"14\"]\n",
		"not toml":    "[grid\n",
	} {
		if _, err := LoadLayout(strings.NewReader(src)); err == nil {
			t.Errorf("%s: want error", name)
		}
	}

	l, err := LoadLayout(strings.NewReader("[[naming.cell]]\nrow = 0\ncolumn = 0\ncard = \"joker\"\n"))
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	_, err = l.NamingScheme()
	if !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("got %v; want ErrInvalidLabel", err)
	}
}
