package web

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-cards/cards"
	"badc0de.net/pkg/go-cards/datafiles"
)

// Handler serves the deck page, its static files and the deck API.
type Handler struct {
	cfg    *Config
	table  *cards.Table
	static *Static
	events *hub
}

// NewHandler builds the handler for cfg, dealing from table.
//
// Files under cfg.ContentRoot take precedence over the built-in page, script
// and stylesheet.
func NewHandler(cfg *Config, table *cards.Table) (*Handler, error) {
	static := NewStatic(nil)
	if cfg.ContentRoot != "" {
		fi, err := os.Stat(cfg.ContentRoot)
		if err != nil {
			return nil, errors.Wrap(err, "content root")
		}
		if !fi.IsDir() {
			return nil, errors.Errorf("content root %s is not a directory", cfg.ContentRoot)
		}
		if static, err = NewStaticDir(cfg.ContentRoot); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := static.AddBuiltinFS(datafiles.HTDocs(), now); err != nil {
		return nil, err
	}
	index, err := renderIndex(cfg)
	if err != nil {
		return nil, err
	}
	static.AddBuiltin("index.html", index, now)

	return &Handler{
		cfg:    cfg,
		table:  table,
		static: static,
		events: newHub(),
	}, nil
}

// State is what the deck API reports after every request.
type State struct {
	XMLName      xml.Name    `json:"-" xml:"state"`
	DeckLength   int         `json:"deck_length" xml:"deck-length"`
	Drawn        int         `json:"drawn" xml:"drawn"`
	Discard      *cards.Card `json:"discard,omitempty" xml:"discard,omitempty"`
	DiscardName  string      `json:"discard_name,omitempty" xml:"discard-name,omitempty"`
	DiscardImage string      `json:"discard_image,omitempty" xml:"discard-filename,omitempty"`
	Message      string      `json:"message,omitempty" xml:"message,omitempty"`
}

func (h *Handler) state(msg string) State {
	ts := h.table.State()
	st := State{
		DeckLength: ts.Remaining,
		Drawn:      ts.Drawn,
		Discard:    ts.Discard,
		Message:    msg,
	}
	if ts.Discard != nil {
		st.DiscardName = ts.Discard.String()
		st.DiscardImage = path.Join(h.cfg.ImagesPath, ts.Discard.Filename())
	}
	return st
}

// wantsXML reports whether the client asked for XML rather than JSON.
func wantsXML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "xml") && !strings.Contains(accept, "json")
}

func (h *Handler) writeState(w http.ResponseWriter, r *http.Request, status int, st State) {
	w.Header().Set("Cache-Control", "no-store")
	if wantsXML(r) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		fmt.Fprint(w, xml.Header)
		if err := xml.NewEncoder(w).Encode(st); err != nil {
			glog.Errorf("encoding state: %v", err)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(st); err != nil {
		glog.Errorf("encoding state: %v", err)
	}
}

// allowMethod answers 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	if method == http.MethodGet {
		w.Header().Set("Allow", "GET, HEAD")
	} else {
		w.Header().Set("Allow", method)
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

func (h *Handler) stateHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeState(w, r, http.StatusOK, h.state(""))
}

func (h *Handler) drawHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	c, err := h.table.Draw()
	if errors.Is(err, cards.ErrEmptyDeck) {
		h.writeState(w, r, http.StatusOK, h.state("The deck is empty."))
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	glog.V(2).Infof("drew the %s", c)
	h.changed(w, r, "")
}

func (h *Handler) resetHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	h.table.Reset()
	glog.V(2).Infof("deck reset")
	h.changed(w, r, "Deck has been reset and shuffled")
}

func (h *Handler) shuffleHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	style := cards.ShuffleStyle(r.URL.Query().Get("style"))
	err := h.table.Shuffle(style)
	switch {
	case errors.Is(err, cards.ErrUnknownStyle):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	glog.V(2).Infof("deck shuffled (%q)", style)
	h.changed(w, r, fmt.Sprintf("Shuffled using %q algorithm", shuffleNames[style]))
}

// shuffleNames are the names shuffle styles are announced under.
var shuffleNames = map[cards.ShuffleStyle]string{
	"":                  "random",
	cards.ShuffleRandom: "random",
	cards.ShuffleCut:    "3-way-cut",
	cards.ShuffleRiffle: "Riffle",
}

// findHandler reports where the card named by the card parameter sits in
// the deck, counting from the top.
func (h *Handler) findHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	c, err := cards.ParseCard(r.URL.Query().Get("card"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	msg := fmt.Sprintf("%v not found in deck", c)
	if pos, ok := h.table.Find(c); ok {
		msg = fmt.Sprintf("%v found in deck at position %d", c, pos)
	}
	h.writeState(w, r, http.StatusOK, h.state(msg))
}

// changed answers a mutating request and pushes the new state to listeners.
func (h *Handler) changed(w http.ResponseWriter, r *http.Request, msg string) {
	st := h.state(msg)
	h.events.broadcast(st)
	h.writeState(w, r, http.StatusOK, st)
}

// Close disconnects every event listener.
func (h *Handler) Close() {
	h.events.closeAll()
}

// RegisterRoutes adds the deck API, the trace pages and, catching
// everything else, the static files to r.
//
// r should have SkipClean set, otherwise paths climbing out of the content
// root get redirected before they can be refused.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/state", h.stateHandler)
	r.HandleFunc("/api/draw", h.drawHandler)
	r.HandleFunc("/api/reset", h.resetHandler)
	r.HandleFunc("/api/shuffle", h.shuffleHandler)
	r.HandleFunc("/api/find", h.findHandler)
	r.HandleFunc("/api/events", h.eventsHandler)

	r.HandleFunc("/debug/requests", trace.Traces)
	r.HandleFunc("/debug/events", trace.Events)

	r.PathPrefix("/").Handler(h.static)
}

// Router returns a router with all of h's routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter().SkipClean(true)
	h.RegisterRoutes(r)
	return r
}
