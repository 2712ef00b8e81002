package sheet

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BackFilename is the name of the deck back image in the output directory.
const BackFilename = "back.png"

// Encoder writes an image to w.
type Encoder interface {
	Encode(w io.Writer, m image.Image) error
}

// PNG is the default encoder. image/png output depends only on the pixels,
// so rewriting the same image gives the same bytes.
var PNG Encoder = &png.Encoder{CompressionLevel: png.DefaultCompression}

// PalettedPNG reduces images to at most Colors colours with a median cut
// quantizer before encoding them as PNG.
type PalettedPNG struct {
	Colors int
}

func (p PalettedPNG) Encode(w io.Writer, m image.Image) error {
	n := p.Colors
	if n <= 0 || n > 256 {
		n = 256
	}
	q := quantize.MedianCutQuantizer{}
	palette := q.Quantize(make(color.Palette, 0, n), m)
	pm := image.NewPaletted(m.Bounds(), palette)
	draw.Draw(pm, pm.Bounds(), m, m.Bounds().Min, draw.Src)
	return PNG.Encode(w, pm)
}

// WriteImage encodes m into dir/name, replacing any existing file only once
// the new one is complete. It returns the path written.
func WriteImage(dir, name string, m image.Image, enc Encoder) (string, error) {
	if enc == nil {
		enc = PNG
	}
	path := filepath.Join(dir, name)
	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", errors.Wrapf(err, "creating temporary file for %s", path)
	}
	tmp := f.Name()
	if err := enc.Encode(f, m); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", errors.Wrapf(err, "encoding %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "writing %s", path)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "setting mode of %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "renaming into %s", path)
	}
	return path, nil
}

// WriteAll writes each card image into dir under its Filename, creating dir
// if needed. Writes run on up to jobs goroutines; jobs <= 0 means one per CPU.
func WriteAll(ctx context.Context, dir string, imgs []CardImage, enc Encoder, jobs int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for _, ci := range imgs {
		ci := ci
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := WriteImage(dir, ci.Filename(), ci.Image, enc)
			if err != nil {
				return cellError(ci.Row, ci.Column, ci.Card, err)
			}
			glog.V(2).Infof("wrote %s", path)
			return nil
		})
	}
	return eg.Wait()
}
