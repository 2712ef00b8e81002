package sheet

import (
	"context"
	"image"
	"image/draw"

	"github.com/pkg/errors"
)

// Cropper copies a rectangle out of an image. The returned image has its
// origin at (0, 0) and the size of r.
type Cropper interface {
	Crop(ctx context.Context, src image.Image, r image.Rectangle) (image.Image, error)
}

// DrawCropper crops in-process with image/draw.
type DrawCropper struct{}

func (DrawCropper) Crop(ctx context.Context, src image.Image, r image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Empty() || !r.In(src.Bounds()) {
		return nil, errors.Wrapf(ErrGeometryMismatch, "crop %v outside of %v", r, src.Bounds())
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst, nil
}
