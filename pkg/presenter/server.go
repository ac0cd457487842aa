package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"time"
)

// Window describes the view's window. The page reads it from /window.json.
type Window struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DefaultWindow is an 800x800 window.
var DefaultWindow = Window{Title: "Symbol Export", Width: 800, Height: 800}

// NavigationEvent is what the page posts to /navigate whenever it is about
// to leave the current address.
type NavigationEvent struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NavigationResult is the /navigate response.
type NavigationResult struct {
	Triggered bool   `json:"triggered"`
	Error     string `json:"error,omitempty"`
}

// Server serves the web view assets and forwards navigation events to a
// Trigger.
type Server struct {
	Dir     string // directory holding index.html and symbolData.js
	Addr    string // listen address, e.g. "localhost:8080"
	Window  Window
	Trigger *Trigger
	// Logf, if not nil, receives ignored and rejected navigation events.
	Logf func(format string, args ...any)

	srv *http.Server
	ln  net.Listener
	ctx context.Context
}

// NewServer returns a server for the assets in dir.
func NewServer(dir, addr string, trigger *Trigger) *Server {
	return &Server{
		Dir:     dir,
		Addr:    addr,
		Window:  DefaultWindow,
		Trigger: trigger,
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServer(http.Dir(s.Dir)))
	mux.HandleFunc("GET /window.json", s.handleWindow)
	mux.HandleFunc("POST /navigate", s.handleNavigate)
	return mux
}

// Open starts listening. The export runs with ctx, not with the context of
// the request that triggered it, so a closed browser tab does not abort it.
func (s *Server) Open(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr, err)
	}

	s.ln = ln
	s.ctx = ctx
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// URL is the address of the page, valid after Open.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String() + "/"
}

// Serve blocks until Close is called.
func (s *Server) Serve() error {
	if s.srv == nil {
		return errors.New("presenter: Serve called before Open")
	}
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts the view down, waiting for in-flight requests up to ctx.
func (s *Server) Close(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Window)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if !sameOrigin(r) {
		s.logf("Rejected navigation event from origin %q", r.Header.Get("Origin"))
		http.Error(w, "cross-origin navigation events are not accepted", http.StatusForbidden)
		return
	}

	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		http.Error(w, "navigation events must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var ev NavigationEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&ev); err != nil {
		http.Error(w, "invalid navigation event", http.StatusBadRequest)
		return
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if !s.Trigger.Navigate(ctx, ev.Source, ev.Target) {
		s.logf("Ignored navigation to %q", ev.Target)
		writeJSON(w, http.StatusOK, NavigationResult{})
		return
	}

	if err := s.Trigger.Err(); err != nil {
		writeJSON(w, http.StatusInternalServerError, NavigationResult{Triggered: true, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, NavigationResult{Triggered: true})
}

func (s *Server) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// sameOrigin accepts requests sent by the served page itself and by
// non-browser clients, which send neither Origin nor Sec-Fetch-Site.
func sameOrigin(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
	default:
		return false
	}

	origin := r.Header.Get("Origin")
	return origin == "" || origin == "http://"+r.Host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
