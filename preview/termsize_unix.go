//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package preview

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

// TermSize is the size of the controlling terminal in characters and, when
// the terminal reports it, in pixels.
type TermSize struct {
	Rows, Cols     uint
	XPixel, YPixel uint
}

func GetTermSize() (TermSize, error) {
	f, err := os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666)
	if err == nil {
		defer f.Close()
		sz, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err == nil {
			return TermSize{Rows: uint(sz.Row), Cols: uint(sz.Col), XPixel: uint(sz.Xpixel), YPixel: uint(sz.Ypixel)}, nil
		}
	}
	w, h, err := terminal.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return TermSize{}, err
	}
	return TermSize{Rows: uint(h), Cols: uint(w)}, nil
}
