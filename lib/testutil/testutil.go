package testutil

import (
	"jobtracker-backend/lib/chrono"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Route is a canned response served by NewServer.
type Route struct {
	Status      int
	ContentType string
	Body        string
}

func HTML(body string) Route {
	return Route{Status: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: body}
}

func JSON(body string) Route {
	return Route{Status: http.StatusOK, ContentType: "application/json", Body: body}
}

func Status(code int) Route {
	return Route{Status: code, ContentType: "text/plain", Body: http.StatusText(code)}
}

// Server serves fixed routes keyed by path and records every request it saw.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

// NewServer starts a server answering `routes`, unknown paths get a 404.
// the server is closed when the test finishes.
func NewServer(t testing.TB, routes map[string]Route) *Server {
	t.Helper()
	return NewServerFunc(t, func(r *http.Request) Route {
		route, ok := routes[r.URL.Path]
		if !ok {
			return Status(http.StatusNotFound)
		}
		return route
	})
}

// NewServerFunc starts a server whose responses are computed by `handle`.
func NewServerFunc(t testing.TB, handle func(r *http.Request) Route) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		s.mu.Unlock()

		route := handle(r)
		if route.Status == 0 {
			route.Status = http.StatusOK
		}
		if route.ContentType != "" {
			w.Header().Set("content-type", route.ContentType)
		}
		w.WriteHeader(route.Status)
		w.Write([]byte(route.Body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// Link joins `path` onto the server's base url.
func (s *Server) Link(path string) string {
	return s.URL + "/" + strings.TrimPrefix(path, "/")
}

// Clock returns a clock fixed at noon of the given date in Seoul.
func Clock(year int, month time.Month, day int) chrono.FixedImpl {
	return chrono.FixedImpl{At: time.Date(year, month, day, 12, 0, 0, 0, chrono.Seoul())}
}
