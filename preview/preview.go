// Package preview prints images on a terminal, either as coloured character
// cells or, where the terminal supports it, as real pixels.
package preview

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/gookit/color"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Mode selects how images are drawn.
type Mode int

const (
	ModeAuto Mode = iota
	// ModeRasTerm uses the kitty, iTerm2 or sixel graphics protocols.
	ModeRasTerm
	Mode24Bit
	Mode256
	ModeNoColor
)

var modeNames = map[Mode]string{
	ModeAuto:    "auto",
	ModeRasTerm: "rasterm",
	Mode24Bit:   "24bit",
	Mode256:     "256",
	ModeNoColor: "none",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "bad mode"
}

func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return ModeAuto, errors.Errorf("unknown preview mode %q", s)
}

// DetectMode picks the best mode the current terminal is known to support.
func DetectMode() Mode {
	if rasTermCapable() {
		return ModeRasTerm
	}
	switch strings.ToLower(os.Getenv("COLORTERM")) {
	case "truecolor", "24bit":
		return Mode24Bit
	}
	return Mode256
}

// Printer draws images to Out.
type Printer struct {
	Out  io.Writer
	Mode Mode
	// Blanks draws plain coloured cells instead of shaded characters.
	Blanks bool
	// Fit shrinks images to fit the terminal before drawing.
	Fit bool
}

func (p Printer) Print(img image.Image) error {
	mode := p.Mode
	if mode == ModeAuto {
		mode = DetectMode()
	}
	if p.Fit {
		ts, err := GetTermSize()
		if err != nil {
			glog.V(2).Infof("not fitting preview, no terminal size: %v", err)
		} else {
			img = Fit(img, ts, mode == ModeRasTerm)
		}
	}

	switch mode {
	case ModeRasTerm:
		return PrintRasTerm(p.Out, img)
	case Mode24Bit:
		return Print24bit(p.Out, img, p.Blanks)
	case Mode256:
		return Print256Color(p.Out, img, p.Blanks)
	case ModeNoColor:
		return PrintNoColor(p.Out, img, p.Blanks)
	}
	return errors.Errorf("unknown preview mode %d", mode)
}

// Fit shrinks img, keeping its aspect ratio, so that it fits on a terminal
// of size ts. Character modes use two columns per pixel; with pixels set the
// image may take half the window's pixel size instead.
func Fit(img image.Image, ts TermSize, pixels bool) image.Image {
	if pixels && ts.XPixel != 0 && ts.YPixel != 0 {
		return resize.Thumbnail(ts.XPixel/2, ts.YPixel/2, img, resize.Lanczos3)
	}
	if ts.Cols < 2 || ts.Rows < 2 {
		return img
	}
	return resize.Thumbnail(ts.Cols/2, ts.Rows-1, img, resize.Lanczos3)
}

// glyph is the two-character cell for a pixel of the given colour.
func glyph(r, g, b uint32, blanks bool) string {
	if blanks {
		return "  "
	}
	switch a := ((r + g + b) / 3) >> 8; {
	case a < 32:
		return ".."
	case a < 64:
		return "--"
	case a < 128:
		return "=="
	}
	return "##"
}

// printCells writes img one line per pixel row. paint wraps the cell of each
// visible pixel in colour; transparent pixels are left blank.
func printCells(w io.Writer, img image.Image, blanks bool, paint func(r, g, b uint8, s string) string) error {
	bw := bufio.NewWriter(w)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				bw.WriteString("  ")
				continue
			}
			bw.WriteString(paint(uint8(r>>8), uint8(g>>8), uint8(b>>8), glyph(r, g, b, blanks)))
		}
		bw.WriteString("\n")
	}
	return errors.Wrap(bw.Flush(), "writing preview")
}

// Print24bit draws an image using 24bit color escape sequences by changing background.
func Print24bit(w io.Writer, img image.Image, blanks bool) error {
	return printCells(w, img, blanks, func(r, g, b uint8, s string) string {
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm%s\x1b[0m", r, g, b, s)
	})
}

// Print256Color draws an image with the nearest colours the terminal offers.
func Print256Color(w io.Writer, img image.Image, blanks bool) error {
	return printCells(w, img, blanks, func(r, g, b uint8, s string) string {
		return color.RGB(r, g, b, true).Sprint(s)
	})
}

// PrintNoColor draws an image without using color escape sequences. Only
// makes sense with blanks unset.
func PrintNoColor(w io.Writer, img image.Image, blanks bool) error {
	return printCells(w, img, blanks, func(r, g, b uint8, s string) string {
		return s
	})
}
