// Command cardsplit cuts a composite card sheet into one image per card, plus
// the deck back, ready for cardserv to serve.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-cards/cards"
	"badc0de.net/pkg/go-cards/paths"
	"badc0de.net/pkg/go-cards/preview"
	"badc0de.net/pkg/go-cards/sheet"
)

// sheetPath, backPath and layoutPath default to files found next to the
// binary or in the working directory. An empty sheet or back falls back to
// the file named by the layout; an empty layout means the stock one.
var sheetPath, backPath, layoutPath string

func init() {
	paths.SetupFilePathFlag("cards.png", "sheet", &sheetPath)
	paths.SetupFilePathFlag("deck.png", "back", &backPath)
	paths.SetupFilePathFlag("layout.toml", "layout", &layoutPath)
}

var (
	outDir      = flag.String("out_dir", filepath.Join("htdocs", "images"), "Directory to write card images to")
	cropperName = flag.String("cropper", "draw", "How to crop: draw (in process) or convert (ImageMagick)")
	convertPath = flag.String("convert_path", "convert", "convert executable used by --cropper=convert")
	jobs        = flag.Int("jobs", 0, "Cards cropped and written in parallel; 0 means one per CPU")
	paletted    = flag.Bool("paletted", false, "Write 256 colour paletted PNGs")
	dryRun      = flag.Bool("dry_run", false, "Print what would be done without writing anything")
	previewCard = flag.String("preview", "", "Print this card (e.g. \"queen of hearts\") to the terminal after extracting")
	previewMode = flag.String("preview_mode", "auto", "Preview output: auto, rasterm, 24bit, 256 or none")
)

var (
	info = color.New(color.FgCyan).SprintFunc()
	good = color.New(color.FgGreen).SprintFunc()
	bad  = color.New(color.FgRed, color.Bold).SprintFunc()
)

// loadLayout returns the layout and the directory its file names are
// relative to.
func loadLayout() (*sheet.Layout, []string, error) {
	if layoutPath == "" {
		l, err := sheet.DefaultLayout()
		return l, paths.SearchDirs(), err
	}
	l, err := sheet.LoadLayoutFile(layoutPath)
	return l, []string{filepath.Dir(layoutPath)}, err
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image")
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return img, nil
}

func newCropper(src string) (sheet.Cropper, func(), error) {
	switch *cropperName {
	case "draw":
		return sheet.DrawCropper{}, func() {}, nil
	case "convert":
		c := &sheet.ConvertCropper{Command: *convertPath, SourcePath: src}
		return c, func() { c.Close() }, nil
	}
	return nil, nil, errors.Errorf("unknown cropper %q", *cropperName)
}

// printPlan lists every crop without performing it.
func printPlan(src string, img image.Image, g sheet.Grid, naming sheet.NamingScheme) error {
	if err := g.Check(img.Bounds()); err != nil {
		return err
	}
	if err := naming.Check(g); err != nil {
		return err
	}
	conv := &sheet.ConvertCropper{Command: *convertPath, SourcePath: src}
	return g.Each(func(row, col int) error {
		card := naming.Label(row, col)
		r := g.Rect(img.Bounds(), row, col)
		fmt.Printf("%s %s\n", info(filepath.Join(*outDir, card.Filename())), r)
		if *cropperName == "convert" {
			fmt.Printf("  %s\n", conv.CommandLine(r))
		}
		return nil
	})
}

func run(ctx context.Context) error {
	layout, dirs, err := loadLayout()
	if err != nil {
		return err
	}
	naming, err := layout.NamingScheme()
	if err != nil {
		return err
	}

	src := sheetPath
	if src == "" {
		if src = paths.FindIn(dirs, layout.Sheet); src == "" {
			return errors.Errorf("sheet %s not found in %v; pass --sheet", layout.Sheet, dirs)
		}
	}
	img, err := decodeImage(src)
	if err != nil {
		return err
	}
	glog.Infof("sheet %s is %dx%d", src, img.Bounds().Dx(), img.Bounds().Dy())

	if *dryRun {
		return printPlan(src, img, layout.Grid, naming)
	}

	cropper, done, err := newCropper(src)
	if err != nil {
		return err
	}
	defer done()

	imgs, err := sheet.ExtractAll(ctx, img, layout.Grid, naming, cropper, *jobs)
	if err != nil {
		return err
	}

	var enc sheet.Encoder = sheet.PNG
	if *paletted {
		enc = sheet.PalettedPNG{Colors: 256}
	}
	if err := sheet.WriteAll(ctx, *outDir, imgs, enc, *jobs); err != nil {
		return err
	}
	fmt.Printf("%s %d cards to %s\n", good("wrote"), len(imgs), *outDir)

	back := backPath
	if back == "" {
		back = paths.FindIn(dirs, layout.Back)
	}
	if back == "" {
		fmt.Printf("%s no deck back found, %s not written\n", bad("warning:"), sheet.BackFilename)
	} else {
		b, err := decodeImage(back)
		if err != nil {
			return err
		}
		name, err := sheet.WriteImage(*outDir, sheet.BackFilename, sheet.DeckBack(b, layout.Grid.CardSize()), enc)
		if err != nil {
			return err
		}
		fmt.Printf("%s deck back to %s\n", good("wrote"), name)
	}

	if *previewCard != "" {
		return printPreview(imgs)
	}
	return nil
}

func printPreview(imgs []sheet.CardImage) error {
	want, err := cards.ParseCard(*previewCard)
	if err != nil {
		return err
	}
	mode, err := preview.ParseMode(*previewMode)
	if err != nil {
		return err
	}
	for _, ci := range imgs {
		if ci.Card == want {
			fmt.Printf("%s (row %d, column %d)\n", info(want), ci.Row, ci.Column)
			return preview.Printer{Out: os.Stdout, Mode: mode, Fit: true}.Print(ci.Image)
		}
	}
	return errors.Errorf("the sheet has no %s", want)
}

func main() {
	flagutil.Parse()
	defer glog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", bad("error:"), err)
		glog.Errorf("cardsplit: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}
