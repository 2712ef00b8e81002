package web

import (
	"io"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// DefaultPort is the TCP port the server listens on unless told otherwise.
const DefaultPort = 8080

var ErrInvalidPort = errors.New("invalid port")

// Config is built once at startup and shared, read-only, by the handler and
// the server.
type Config struct {
	// Host is the address to bind; empty means all interfaces.
	Host string
	Port int

	// ContentRoot is the directory static files are served from. When empty
	// only the built-in page and scripts are served.
	ContentRoot string
	// ImagesPath is where card images live, relative to ContentRoot.
	ImagesPath string

	// CardWidth and CardHeight size the cards on the built-in page.
	CardWidth, CardHeight int
	Title                 string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// AccessLog receives one combined log format line per request, if set.
	AccessLog io.Writer
}

func DefaultConfig() *Config {
	return &Config{
		Port:            DefaultPort,
		ImagesPath:      "images",
		CardWidth:       212,
		CardHeight:      287,
		Title:           "Cards",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: 5 * time.Second,
	}
}

// ValidPort reports whether p can be listened on.
func ValidPort(p int) bool {
	return p >= 1 && p <= 65535
}

func (c *Config) Validate() error {
	if !ValidPort(c.Port) {
		return errors.Wrapf(ErrInvalidPort, "%d is not in 1-65535", c.Port)
	}
	if c.CardWidth <= 0 || c.CardHeight <= 0 {
		return errors.Errorf("invalid card size %dx%d", c.CardWidth, c.CardHeight)
	}
	return nil
}

// Address is the host:port to listen on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
