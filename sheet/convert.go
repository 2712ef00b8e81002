package sheet

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ConvertCropper crops by running an ImageMagick compatible convert binary:
//
//	convert <source> -crop WxH+X+Y +repage png:-
//
// and decoding the PNG it writes to stdout.
//
// If SourcePath is set it must hold the same image that is passed to Crop;
// the file is then handed to convert directly. Otherwise the source is
// encoded to a temporary file once and reused for subsequent crops of the
// same image. Call Close to remove it.
type ConvertCropper struct {
	// Command defaults to "convert".
	Command    string
	SourcePath string

	mu      sync.Mutex
	tmpSrc  image.Image
	tmpPath string
}

func (c *ConvertCropper) command() string {
	if c.Command == "" {
		return "convert"
	}
	return c.Command
}

// Args returns the convert arguments cropping r out of the file at src. r is
// in the file's own coordinates.
func (c *ConvertCropper) Args(src string, r image.Rectangle) []string {
	geometry := fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
	return []string{src, "-crop", geometry, "+repage", "png:-"}
}

// CommandLine renders the command that Crop would run, for dry runs.
func (c *ConvertCropper) CommandLine(r image.Rectangle) string {
	src := c.SourcePath
	if src == "" {
		src = "<sheet>"
	}
	return strings.Join(append([]string{c.command()}, c.Args(src, r)...), " ")
}

func (c *ConvertCropper) Crop(ctx context.Context, src image.Image, r image.Rectangle) (image.Image, error) {
	if r.Empty() || !r.In(src.Bounds()) {
		return nil, errors.Wrapf(ErrGeometryMismatch, "crop %v outside of %v", r, src.Bounds())
	}
	path, err := c.sourceFile(src)
	if err != nil {
		return nil, err
	}
	// Files always start at (0, 0).
	r = r.Sub(src.Bounds().Min)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command(), c.Args(path, r)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	glog.V(2).Infof("running %s", strings.Join(cmd.Args, " "))
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "running %s: %s", c.command(), strings.TrimSpace(stderr.String()))
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding output of %s", c.command())
	}
	if img.Bounds().Size() != r.Size() {
		return nil, errors.Wrapf(ErrGeometryMismatch, "%s returned %v, want %v", c.command(), img.Bounds().Size(), r.Size())
	}
	return img, nil
}

func (c *ConvertCropper) sourceFile(src image.Image) (string, error) {
	if c.SourcePath != "" {
		return c.SourcePath, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tmpPath != "" && sameImage(c.tmpSrc, src) {
		return c.tmpPath, nil
	}
	c.removeTemp()

	f, err := os.CreateTemp("", "cardsheet-*.png")
	if err != nil {
		return "", errors.Wrap(err, "creating temporary sheet")
	}
	if err := png.Encode(f, src); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", errors.Wrap(err, "encoding temporary sheet")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "closing temporary sheet")
	}
	c.tmpSrc, c.tmpPath = src, f.Name()
	return c.tmpPath, nil
}

func (c *ConvertCropper) removeTemp() {
	if c.tmpPath == "" {
		return
	}
	if err := os.Remove(c.tmpPath); err != nil && !os.IsNotExist(err) {
		glog.Errorf("removing %s: %v", c.tmpPath, err)
	}
	c.tmpSrc, c.tmpPath = nil, ""
}

// Close removes the temporary copy of the source, if one was made.
func (c *ConvertCropper) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeTemp()
	return nil
}

func sameImage(a, b image.Image) bool {
	if a == nil || b == nil || reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
