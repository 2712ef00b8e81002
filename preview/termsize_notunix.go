//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package preview

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

type TermSize struct {
	Rows, Cols     uint
	XPixel, YPixel uint
}

func GetTermSize() (TermSize, error) {
	w, h, err := terminal.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return TermSize{}, err
	}
	return TermSize{Rows: uint(h), Cols: uint(w)}, nil
}
