//go:build !windows

package preview

import (
	"image"
	"io"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
	"github.com/pkg/errors"
)

func rasTermCapable() bool {
	return rasterm.IsTermKitty() || rasterm.IsTermItermWez()
}

// PrintRasTerm draws an image as pixels using the kitty or iTerm2 protocols,
// falling back to sixels, quantized to 64 colours.
func PrintRasTerm(w io.Writer, img image.Image) error {
	var err error
	switch {
	case rasterm.IsTermKitty():
		err = rasterm.Settings{}.KittyWriteImage(w, img)
	case rasterm.IsTermItermWez():
		err = rasterm.Settings{}.ItermWriteImage(w, img)
	default:
		capable, cerr := rasterm.IsSixelCapable()
		if cerr != nil || !capable {
			return errors.New("terminal cannot display images")
		}
		paletted := image.NewPaletted(img.Bounds(), nil)
		quantizer := gogif.MedianCutQuantizer{NumColor: 64}
		quantizer.Quantize(paletted, img.Bounds(), img, img.Bounds().Min)
		err = rasterm.Settings{}.SixelWriteImage(w, paletted)
	}
	if err != nil {
		return errors.Wrap(err, "drawing image")
	}
	_, err = io.WriteString(w, "\n")
	return err
}
