// Package datafiles carries the files the binaries need even when nothing
// has been installed next to them: the stock sheet layout and the page that
// shows the deck.
package datafiles

import (
	"embed"
	"io/fs"
)

// DefaultLayout is the TOML layout of the stock card sheet.
//
//go:embed layout.toml
var DefaultLayout string

// IndexTemplate is the html/template source of the built-in index page.
//
//go:embed index.html.tmpl
var IndexTemplate string

//go:embed htdocs
var htdocsEmbed embed.FS

// HTDocs returns the built-in static files (scripts, styles), rooted so that
// "cards.js" names htdocs/cards.js.
func HTDocs() fs.FS {
	sub, err := fs.Sub(htdocsEmbed, "htdocs")
	if err != nil {
		// Only possible if the embed directive above is broken.
		panic(err)
	}
	return sub
}
