// Command cardserv serves the deck page, the card images under its content
// root and the deck API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-cards/cards"
	"badc0de.net/pkg/go-cards/paths"
	"badc0de.net/pkg/go-cards/sheet"
	"badc0de.net/pkg/go-cards/web"
)

var port int

func init() {
	flag.IntVar(&port, "port", web.DefaultPort, "TCP port to listen on, 1-65535")
	flag.IntVar(&port, "p", web.DefaultPort, "Shorthand for --port")
}

func config() *web.Config {
	cfg := web.DefaultConfig()
	cfg.Port = port
	cfg.AccessLog = web.GlogWriter{}
	if cfg.ContentRoot = paths.Find("htdocs"); cfg.ContentRoot == "" {
		glog.Warningf("no htdocs directory found, serving built-in files only")
	}
	if l, err := layout(); err == nil {
		sz := l.Grid.CardSize()
		cfg.CardWidth, cfg.CardHeight = sz.X, sz.Y
	} else {
		glog.Warningf("sheet layout: %v; using %dx%d cards", err, cfg.CardWidth, cfg.CardHeight)
	}
	return cfg
}

// layout returns the layout.toml cardsplit would pick up by default, or the
// stock layout if there is none.
func layout() (*sheet.Layout, error) {
	f, err := paths.Open("layout.toml")
	if errors.Is(err, os.ErrNotExist) {
		return sheet.DefaultLayout()
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	glog.Infof("card size from %s", f.Name())
	return sheet.LoadLayout(f)
}

func main() {
	flagutil.Parse()
	defer glog.Flush()

	if !web.ValidPort(port) {
		fmt.Fprintf(os.Stderr, "invalid port %d: must be 1-65535\n", port)
		flag.Usage()
		os.Exit(2)
	}

	cfg := config()
	h, err := web.NewHandler(cfg, cards.NewTable(nil))
	if err != nil {
		glog.Exitf("setting up: %v", err)
	}
	srv := web.NewServer(cfg, h.Router())
	srv.RegisterOnShutdown(h.Close)

	if err := srv.Listen(); errors.Is(err, web.ErrPortInUse) {
		fmt.Fprintf(os.Stderr, "port %d is already in use\n", port)
		glog.Exitf("%v", err)
	} else if err != nil {
		glog.Exitf("%v", err)
	}

	figure.NewFigure("cards", "", true).Print()
	root := cfg.ContentRoot
	if root == "" {
		root = "built-in pages"
	}
	fmt.Printf("\nServing %s on http://localhost:%d/\n", root, port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Serve(ctx); err != nil {
		glog.Exitf("%v", err)
	}
	glog.Infof("cardserv stopped")
}
