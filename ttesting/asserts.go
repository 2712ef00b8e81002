// Package ttesting holds small assertion helpers shared by the tests of this
// module. Each helper runs as its own subtest so a failing check is reported
// under a readable name.
package ttesting

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualString(t *testing.T, name string, got, want string) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %q; want %q", got, want)
		}
	})
}

func AssertEqualBytes(t *testing.T, name string, got, want []byte) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if !bytes.Equal(got, want) {
			t.Errorf("got %d bytes; want %d bytes, contents differ", len(got), len(want))
		}
	})
}

// AssertErrorIs checks that err wraps want.
func AssertErrorIs(t *testing.T, name string, err, want error) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if !errors.Is(err, want) {
			t.Errorf("got error %v; want %v", err, want)
		}
	})
}
