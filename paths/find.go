// Package paths locates data files and directories (the content root, the
// card sheet, its layout) without the user having to pass paths explicitly.
package paths

import (
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ImportPath is where a GOPATH checkout of this module lives.
const ImportPath = "badc0de.net/pkg/go-cards"

// SearchDirs returns the directories Find looks in, in order: the working
// directory, the directory of the running binary, its Bazel-style runfiles
// directory, and a GOPATH checkout.
func SearchDirs() []string {
	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe), exe+".runfiles/go_cards")
	}
	if gopath := os.Getenv("GOPATH"); gopath != "" {
		dirs = append(dirs, filepath.Join(gopath, "src", ImportPath))
	}
	return dirs
}

// Find locates the passed data file or directory shortname and returns an
// absolute or relative path to it, or "" if it is nowhere to be found.
//
// For example, for "htdocs" it may return "htdocs" when run from a checkout,
// or "/usr/local/bin/cardserv.runfiles/go_cards/htdocs".
func Find(name string) string {
	return FindIn(SearchDirs(), name)
}

// FindIn is Find over an explicit list of directories.
func FindIn(dirs []string, name string) string {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name
		}
		return ""
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			glog.V(2).Infof("paths.Find(%q)=%s", name, path)
			return path
		}
	}
	return ""
}

// Open locates the passed file in the same locations that Find would look,
// and opens it. If Find returns an empty string, an error wrapping
// os.ErrNotExist is returned.
func Open(name string) (*os.File, error) {
	path := Find(name)
	if path == "" {
		return nil, errors.Wrapf(os.ErrNotExist, "paths.Open(%q): not found in %v", name, SearchDirs())
	}
	return os.Open(path)
}
