package web

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// contentTypes maps lower-case file extensions to the Content-Type they are
// served with. Anything else is application/octet-stream.
var contentTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".gif":  "image/gif",
	".htm":  "text/html; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".ico":  "image/x-icon",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".txt":  "text/plain; charset=utf-8",
	".wasm": "application/wasm",
	".xml":  "application/xml",
}

// ContentType returns the Content-Type for a file name.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Response is the outcome of a static file request.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	ModTime     time.Time
}

func errorResponse(status int) *Response {
	return &Response{
		Status:      status,
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(http.StatusText(status) + "\n"),
	}
}

var errOutsideRoot = errors.New("outside of content root")

type builtinFile struct {
	body    []byte
	modTime time.Time
}

// Static serves files from a content root. Request paths map directly onto
// file paths below the root; paths that climb out of it are refused.
//
// Built-in files fill in for names the root does not have, so a bare content
// root holding only card images still gets a working page.
type Static struct {
	root fs.FS
	// realRoot is the absolute, symlink-free directory behind root when
	// serving from disk. Files must resolve to somewhere below it.
	realRoot string
	builtin  map[string]builtinFile
}

// NewStatic serves root, which may be nil to serve built-in files only.
func NewStatic(root fs.FS) *Static {
	return &Static{root: root, builtin: map[string]builtinFile{}}
}

// NewStaticDir serves the directory dir. Symbolic links are followed only
// as long as they stay inside dir.
func NewStaticDir(dir string) (*Static, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "content root")
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, errors.Wrap(err, "content root")
	}
	s := NewStatic(os.DirFS(resolved))
	s.realRoot = resolved
	return s, nil
}

// contained returns errOutsideRoot if name, once symbolic links are
// resolved, is not below the content root.
func (s *Static) contained(name string) error {
	if s.realRoot == "" {
		return nil
	}
	resolved, err := filepath.EvalSymlinks(filepath.Join(s.realRoot, filepath.FromSlash(name)))
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(s.realRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errOutsideRoot
	}
	return nil
}

// AddBuiltin registers body under name (slash separated, no leading slash).
func (s *Static) AddBuiltin(name string, body []byte, modTime time.Time) {
	s.builtin[name] = builtinFile{body: body, modTime: modTime}
}

// AddBuiltinFS registers every regular file of fsys as a built-in.
func (s *Static) AddBuiltinFS(fsys fs.FS, modTime time.Time) error {
	return fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return errors.Wrapf(err, "reading built-in %s", name)
		}
		s.AddBuiltin(name, b, modTime)
		return nil
	})
}

// cleanPath turns a URL path into a file name relative to the content root.
// ok is false if the path would leave the root.
func cleanPath(urlPath string) (name string, ok bool) {
	var parts []string
	for _, seg := range strings.Split(urlPath, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(parts) == 0 {
				return "", false
			}
			parts = parts[:len(parts)-1]
		default:
			if strings.ContainsAny(seg, "\\\x00") {
				return "", false
			}
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/"), true
}

// Handle resolves a request for urlPath. Only GET and HEAD are served; the
// body is filled in for both, leaving it to the caller to drop it for HEAD.
func (s *Static) Handle(method, urlPath string) *Response {
	if method != http.MethodGet && method != http.MethodHead {
		return errorResponse(http.StatusMethodNotAllowed)
	}
	name, ok := cleanPath(urlPath)
	if !ok {
		glog.V(2).Infof("refusing %q: outside of content root", urlPath)
		return errorResponse(http.StatusForbidden)
	}
	if name == "" {
		name = "index.html"
	}

	body, modTime, served, err := s.read(name)
	switch {
	case err == nil:
	case errors.Is(err, errOutsideRoot):
		glog.V(2).Infof("refusing %q: links outside of content root", urlPath)
		return errorResponse(http.StatusForbidden)
	case errors.Is(err, fs.ErrNotExist):
		if b, ok := s.builtin[name]; ok {
			body, modTime, served = b.body, b.modTime, name
			break
		}
		return errorResponse(http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		return errorResponse(http.StatusForbidden)
	default:
		glog.Errorf("reading %s: %v", name, err)
		return errorResponse(http.StatusInternalServerError)
	}

	return &Response{
		Status:      http.StatusOK,
		ContentType: ContentType(served),
		Body:        body,
		ModTime:     modTime,
	}
}

// read returns the contents of name, or of its index.html if name is a
// directory, together with the name of the file actually read.
func (s *Static) read(name string) ([]byte, time.Time, string, error) {
	if s.root == nil {
		return nil, time.Time{}, "", fs.ErrNotExist
	}
	if err := s.contained(name); err != nil {
		return nil, time.Time{}, "", err
	}
	fi, err := fs.Stat(s.root, name)
	if err != nil {
		return nil, time.Time{}, "", err
	}
	if fi.IsDir() {
		name = path.Join(name, "index.html")
		if err := s.contained(name); err != nil {
			return nil, time.Time{}, "", err
		}
		if fi, err = fs.Stat(s.root, name); err != nil {
			return nil, time.Time{}, "", err
		}
		if fi.IsDir() {
			return nil, time.Time{}, "", fs.ErrNotExist
		}
	}
	b, err := fs.ReadFile(s.root, name)
	if err != nil {
		return nil, time.Time{}, "", err
	}
	return b, fi.ModTime(), name, nil
}

func etag(resp *Response) string {
	return fmt.Sprintf(`W/"%x-%x"`, len(resp.Body), resp.ModTime.UnixNano())
}

func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := s.Handle(r.Method, r.URL.Path)

	if resp.Status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", "GET, HEAD")
	}
	if resp.Status == http.StatusOK {
		tag := etag(resp)
		w.Header().Set("ETag", tag)
		w.Header().Set("Cache-Control", "public, max-age=300")
		if !resp.ModTime.IsZero() {
			w.Header().Set("Last-Modified", resp.ModTime.UTC().Format(http.TimeFormat))
		}
		if r.Header.Get("If-None-Match") == tag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	if r.Method != http.MethodHead {
		w.Write(resp.Body)
	}
}
