package sheet

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-cards/cards"
	"badc0de.net/pkg/go-cards/ttesting"
)

var gutter = color.RGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}

// cellColor gives every pixel of a cell a colour unique to that pixel, so a
// crop from the wrong offset cannot go unnoticed.
func cellColor(row, col, x, y int) color.RGBA {
	return color.RGBA{R: uint8(row*16 + col), G: uint8(x), B: uint8(y), A: 0xFF}
}

// testSheet draws a sheet for g; pixels outside each card are gutter.
func testSheet(g Grid) *image.RGBA {
	sz := g.Size()
	card := g.CardSize()
	img := image.NewRGBA(image.Rect(0, 0, sz.X, sz.Y))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			for y := 0; y < g.CellHeight; y++ {
				for x := 0; x < g.CellWidth; x++ {
					c := gutter
					if x < card.X && y < card.Y {
						c = cellColor(row, col, x, y)
					}
					img.SetRGBA(col*g.CellWidth+x, row*g.CellHeight+y, c)
				}
			}
		}
	}
	return img
}

func smallGrid() Grid {
	return Grid{Rows: 4, Columns: 13, CellWidth: 9, CellHeight: 12}
}

func TestExtractAll(t *testing.T) {
	for name, g := range map[string]Grid{
		"full cells":  smallGrid(),
		"with gutter": {Rows: 4, Columns: 13, CellWidth: 9, CellHeight: 12, CardWidth: 7, CardHeight: 11},
	} {
		t.Run(name, func(t *testing.T) {
			src := testSheet(g)
			imgs, err := ExtractAll(context.Background(), src, g, DefaultNaming(), DrawCropper{}, 3)
			if err != nil {
				t.Fatalf("ExtractAll: %v", err)
			}
			ttesting.AssertEqualInt(t, "one image per cell", len(imgs), g.Rows*g.Columns)

			seen := map[cards.Card]bool{}
			for _, ci := range imgs {
				if got, want := ci.Image.Bounds().Size(), g.CardSize(); got != want {
					t.Errorf("%v: size %v; want %v", ci.Card, got, want)
				}
				if want := DefaultNaming().Label(ci.Row, ci.Column); ci.Card != want {
					t.Errorf("cell %d,%d: label %v; want %v", ci.Row, ci.Column, ci.Card, want)
				}
				seen[ci.Card] = true

				b := ci.Image.Bounds()
				for y := b.Min.Y; y < b.Max.Y; y++ {
					for x := b.Min.X; x < b.Max.X; x++ {
						got := color.RGBAModel.Convert(ci.Image.At(x, y)).(color.RGBA)
						want := cellColor(ci.Row, ci.Column, x-b.Min.X, y-b.Min.Y)
						if got != want {
							t.Fatalf("%v pixel %d,%d: got %v; want %v", ci.Card, x, y, got, want)
						}
					}
				}
			}
			for _, c := range cards.FactoryOrder() {
				if !seen[c] {
					t.Errorf("no image for %v", c)
				}
			}
			ttesting.AssertEqualInt(t, "all 52 cards once", len(seen), 52)
		})
	}
}

func TestExtractAllRowMajor(t *testing.T) {
	g := smallGrid()
	imgs, err := ExtractAll(context.Background(), testSheet(g), g, DefaultNaming(), DrawCropper{}, 0)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	for i, ci := range imgs {
		if ci.Row != i/g.Columns || ci.Column != i%g.Columns {
			t.Fatalf("image %d is cell %d,%d", i, ci.Row, ci.Column)
		}
	}
	ttesting.AssertEqualString(t, "first image", imgs[0].Filename(), "spades_ace.png")
	ttesting.AssertEqualString(t, "last image", imgs[len(imgs)-1].Filename(), "diamonds_2.png")
}

func TestExtractAllOffsetSheet(t *testing.T) {
	g := smallGrid()
	big := image.NewRGBA(image.Rect(0, 0, g.Size().X+20, g.Size().Y+20))
	inner := testSheet(g)
	for y := 0; y < g.Size().Y; y++ {
		for x := 0; x < g.Size().X; x++ {
			big.SetRGBA(x+10, y+10, inner.RGBAAt(x, y))
		}
	}
	src := big.SubImage(image.Rect(10, 10, 10+g.Size().X, 10+g.Size().Y))

	imgs, err := ExtractAll(context.Background(), src, g, DefaultNaming(), DrawCropper{}, 2)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	got := color.RGBAModel.Convert(imgs[14].Image.At(0, 0)).(color.RGBA)
	if want := cellColor(1, 1, 0, 0); got != want {
		t.Errorf("cell 1,1 origin: got %v; want %v", got, want)
	}
}

func TestExtractAllErrors(t *testing.T) {
	g := smallGrid()
	src := testSheet(g)

	dup := DefaultNaming()
	dup[2][5] = dup[0][0]

	missing := DefaultNaming()
	missing[3] = missing[3][:12]

	zero := DefaultNaming()
	zero[1][1] = cards.Card{}

	extraRow := append(DefaultNaming(), DefaultNaming()[0])

	for _, tc := range []struct {
		name     string
		src      image.Image
		g        Grid
		naming   NamingScheme
		want     error
		row, col int
	}{
		{name: "sheet too wide", src: testSheet(Grid{Rows: 4, Columns: 14, CellWidth: 9, CellHeight: 12}), g: g, naming: DefaultNaming(), want: ErrGeometryMismatch, row: -1},
		{name: "cell does not divide sheet", src: src, g: Grid{Rows: 4, Columns: 13, CellWidth: 8, CellHeight: 12}, naming: DefaultNaming(), want: ErrGeometryMismatch, row: -1},
		{name: "zero grid", src: src, g: Grid{}, naming: DefaultNaming(), want: ErrGeometryMismatch, row: -1},
		{name: "card bigger than cell", src: src, g: Grid{Rows: 4, Columns: 13, CellWidth: 9, CellHeight: 12, CardWidth: 10}, naming: DefaultNaming(), want: ErrGeometryMismatch, row: -1},
		{name: "duplicate", src: src, g: g, naming: dup, want: ErrDuplicateLabel, row: 2, col: 5},
		{name: "short row", src: src, g: g, naming: missing, want: ErrMissingLabel, row: 3, col: 12},
		{name: "zero label", src: src, g: g, naming: zero, want: ErrMissingLabel, row: 1, col: 1},
		{name: "no labels", src: src, g: g, naming: nil, want: ErrMissingLabel, row: 0, col: 0},
		{name: "extra row", src: src, g: g, naming: extraRow, want: ErrGeometryMismatch, row: 4, col: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractAll(context.Background(), tc.src, tc.g, tc.naming, DrawCropper{}, 0)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v; want %v", err, tc.want)
			}
			if tc.row < 0 {
				return
			}
			var ce *CellError
			if !errors.As(err, &ce) {
				t.Fatalf("error %v does not name a cell", err)
			}
			if ce.Row != tc.row || ce.Column != tc.col {
				t.Errorf("got cell %d,%d; want %d,%d", ce.Row, ce.Column, tc.row, tc.col)
			}
		})
	}
}

type failingCropper struct {
	failAt image.Point
}

func (f failingCropper) Crop(ctx context.Context, src image.Image, r image.Rectangle) (image.Image, error) {
	if r.Min == f.failAt {
		return nil, fmt.Errorf("cannot crop")
	}
	return DrawCropper{}.Crop(ctx, src, r)
}

func TestExtractAllCropperFailure(t *testing.T) {
	g := smallGrid()
	_, err := ExtractAll(context.Background(), testSheet(g), g, DefaultNaming(), failingCropper{failAt: image.Pt(2*g.CellWidth, g.CellHeight)}, 4)
	var ce *CellError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v; want a CellError", err)
	}
	if ce.Row != 1 || ce.Column != 2 || ce.Label != (cards.Card{Suit: cards.Hearts, Rank: cards.Queen}) {
		t.Errorf("got %+v; want row 1 column 2 queen of hearts", ce)
	}
}

func TestExtractAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := smallGrid()
	imgs, err := ExtractAll(ctx, testSheet(g), g, DefaultNaming(), DrawCropper{}, 2)
	ttesting.AssertErrorIs(t, "ExtractAll", err, context.Canceled)
	if imgs != nil {
		t.Errorf("got %d images from a cancelled extraction", len(imgs))
	}
}

func TestWriteAllIdempotent(t *testing.T) {
	g := smallGrid()
	src := testSheet(g)
	dirs := []string{filepath.Join(t.TempDir(), "a"), filepath.Join(t.TempDir(), "b")}
	for _, dir := range dirs {
		imgs, err := ExtractAll(context.Background(), src, g, DefaultNaming(), DrawCropper{}, 0)
		if err != nil {
			t.Fatalf("ExtractAll: %v", err)
		}
		if err := WriteAll(context.Background(), dir, imgs, PNG, 0); err != nil {
			t.Fatalf("WriteAll: %v", err)
		}
	}

	entries, err := os.ReadDir(dirs[0])
	if err != nil {
		t.Fatalf("reading %s: %v", dirs[0], err)
	}
	ttesting.AssertEqualInt(t, "52 files written", len(entries), 52)
	for _, c := range cards.FactoryOrder() {
		a, err := os.ReadFile(filepath.Join(dirs[0], c.Filename()))
		if err != nil {
			t.Fatalf("reading first run: %v", err)
		}
		b, err := os.ReadFile(filepath.Join(dirs[1], c.Filename()))
		if err != nil {
			t.Fatalf("reading second run: %v", err)
		}
		ttesting.AssertEqualBytes(t, c.Filename()+" identical", a, b)
	}
}

func TestWriteImageReplaces(t *testing.T) {
	dir := t.TempDir()
	small := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range small.Pix {
		small.Pix[i] = uint8(i * 20)
	}
	for i := 3; i < len(small.Pix); i += 4 {
		small.Pix[i] = 0xFF
	}
	big := image.NewRGBA(image.Rect(0, 0, 20, 20))
	if _, err := WriteImage(dir, "x.png", big, nil); err != nil {
		t.Fatalf("first write: %v", err)
	}
	path, err := WriteImage(dir, "x.png", small, PalettedPNG{Colors: 16})
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ttesting.AssertEqualInt(t, "replaced width", cfg.Width, 2)

	entries, _ := os.ReadDir(dir)
	ttesting.AssertEqualInt(t, "no temporary files left", len(entries), 1)
}

func TestDeckBack(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 600))
	back := DeckBack(src, image.Pt(212, 287))
	if got := back.Bounds().Size(); got != image.Pt(212, 287) {
		t.Errorf("got %v; want 212x287", got)
	}
	if same := DeckBack(src, image.Pt(400, 600)); same != image.Image(src) {
		t.Errorf("correctly sized back should be returned as is")
	}
}
