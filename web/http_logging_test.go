// ABOUTME: Tests for the request logging middleware: route patterns and static suppression.
// ABOUTME: Captures log output to assert on the emitted key=value fields.
package web

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestWebRequestLoggerRoutePattern(t *testing.T) {
	buf := captureLog(t)

	r := chi.NewRouter()
	r.Use(webRequestLogger)
	r.Get("/b/{slug}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/b/farewell-sam", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if !strings.Contains(line, "route=/b/{slug}") {
		t.Errorf("log missing route pattern: %q", line)
	}
	if !strings.Contains(line, "path=/b/farewell-sam") {
		t.Errorf("log missing concrete path: %q", line)
	}
	if !strings.Contains(line, "status=200") {
		t.Errorf("log missing status: %q", line)
	}
}

func TestWebRequestLoggerSkipsStatic(t *testing.T) {
	buf := captureLog(t)

	r := chi.NewRouter()
	r.Use(webRequestLogger)
	r.Get("/static/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/static/board.css", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if buf.Len() != 0 {
		t.Errorf("static request logged: %q", buf.String())
	}
}
