package preview

import (
	"image"
	"io"

	"github.com/pkg/errors"
)

func rasTermCapable() bool {
	return false
}

func PrintRasTerm(w io.Writer, img image.Image) error {
	return errors.New("image output is not supported on windows")
}
