package main

import (
	"os"
	"testing"

	"badc0de.net/pkg/go-cards/ttesting"
)

// inDir runs the test from a fresh temporary directory.
func inDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestConfigCardSize(t *testing.T) {
	for _, tc := range []struct {
		name   string
		layout string
		w, h   int
	}{
		{"local layout", "[grid]\nrows = 4\ncolumns = 13\ncell_width = 100\ncell_height = 150\n", 100, 150},
		{"broken layout keeps defaults", "[grid\n", 212, 287},
		{"unknown key keeps defaults", "[grid]\nrowz = 4\n", 212, 287},
	} {
		t.Run(tc.name, func(t *testing.T) {
			inDir(t)
			if err := os.WriteFile("layout.toml", []byte(tc.layout), 0644); err != nil {
				t.Fatal(err)
			}
			cfg := config()
			ttesting.AssertEqualInt(t, "width", cfg.CardWidth, tc.w)
			ttesting.AssertEqualInt(t, "height", cfg.CardHeight, tc.h)
		})
	}
}

func TestLayoutStock(t *testing.T) {
	inDir(t)
	l, err := layout()
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	ttesting.AssertEqualString(t, "sheet", l.Sheet, "cards.png")
}
