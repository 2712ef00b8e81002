package web

import (
	"bytes"
	"html/template"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path"

	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"

	"badc0de.net/pkg/go-cards/datafiles"
	"badc0de.net/pkg/go-cards/sheet"
)

var indexTemplate = template.Must(template.New("index.html").Parse(datafiles.IndexTemplate))

type indexData struct {
	Title       string
	Placeholder template.URL
	BackImage   string
	CardWidth   int
	CardHeight  int
}

// placeholderCard draws an empty card slot: a faint fill with a darker rim.
func placeholderCard(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rim := color.NRGBA{R: 0x20, G: 0x40, B: 0x20, A: 0xa0}
	fill := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x30}
	draw.Draw(img, img.Bounds(), &image.Uniform{rim}, image.Point{}, draw.Src)
	if w > 4 && h > 4 {
		draw.Draw(img, image.Rect(2, 2, w-2, h-2), &image.Uniform{fill}, image.Point{}, draw.Src)
	}
	return img
}

// renderIndex produces the built-in index page for cfg.
func renderIndex(cfg *Config) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, placeholderCard(cfg.CardWidth, cfg.CardHeight)); err != nil {
		return nil, errors.Wrap(err, "encoding placeholder card")
	}

	data := indexData{
		Title:       cfg.Title,
		Placeholder: template.URL(dataurl.New(pngBuf.Bytes(), "image/png").String()),
		BackImage:   path.Join(cfg.ImagesPath, sheet.BackFilename),
		CardWidth:   cfg.CardWidth,
		CardHeight:  cfg.CardHeight,
	}
	var out bytes.Buffer
	if err := indexTemplate.Execute(&out, data); err != nil {
		return nil, errors.Wrap(err, "rendering index page")
	}
	return out.Bytes(), nil
}
