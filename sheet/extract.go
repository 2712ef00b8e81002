package sheet

import (
	"context"
	"image"
	"runtime"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-cards/cards"
)

// CardImage is one card cut out of a sheet.
type CardImage struct {
	Card        cards.Card
	Row, Column int
	Image       image.Image
}

// Filename is the name the image is written under, e.g. "hearts_ace.png".
func (c CardImage) Filename() string {
	return c.Card.Filename()
}

// ExtractAll cuts every cell of g out of src with cropper, labelling each
// with the card naming assigns to it. The result is in row-major order.
//
// The grid must match the sheet's size exactly and the naming scheme must
// label every cell with a distinct card; see Grid.Check and
// NamingScheme.Check. Crops run on up to jobs goroutines; jobs <= 0 means one
// per CPU. src is only read.
func ExtractAll(ctx context.Context, src image.Image, g Grid, naming NamingScheme, cropper Cropper, jobs int) ([]CardImage, error) {
	bounds := src.Bounds()
	if err := g.Check(bounds); err != nil {
		return nil, err
	}
	if err := naming.Check(g); err != nil {
		return nil, err
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	out := make([]CardImage, g.Cells())
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	schedErr := g.Each(func(row, col int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		i := row*g.Columns + col
		label := naming.Label(row, col)
		r := g.Rect(bounds, row, col)
		eg.Go(func() error {
			img, err := cropper.Crop(ctx, src, r)
			if err != nil {
				return cellError(row, col, label, errors.Wrapf(err, "cropping %v", r))
			}
			if got, want := img.Bounds().Size(), g.CardSize(); got != want {
				return cellError(row, col, label, errors.Wrapf(ErrGeometryMismatch, "cropped image is %v, want %v", got, want))
			}
			glog.V(2).Infof("cropped %v at %v", label, r)
			out[i] = CardImage{Card: label, Row: row, Column: col, Image: img}
			return nil
		})
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if schedErr != nil {
		return nil, schedErr
	}
	return out, nil
}
