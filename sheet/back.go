package sheet

import (
	"image"

	"github.com/nfnt/resize"
)

// DeckBack scales the source image of the card back to size, so that it
// lines up with the card faces.
func DeckBack(src image.Image, size image.Point) image.Image {
	if src.Bounds().Size() == size {
		return src
	}
	return resize.Resize(uint(size.X), uint(size.Y), src, resize.Lanczos3)
}
