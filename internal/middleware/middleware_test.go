package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.Use(gin.CustomRecovery(HandlePanics()))
	return r
}

func TestLoggingMiddleware(t *testing.T) {
	logs := captureLogs(t)
	r := newRouter()
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "fine") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	out := logs.String()
	for _, want := range []string{`"path":"/ok"`, `"status":200`, `"method":"GET"`, `"level":"info"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %s, got %s", want, out)
		}
	}
}

func TestLoggingMiddlewareErrorLevel(t *testing.T) {
	logs := captureLogs(t)
	r := newRouter()
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.AbortWithStatus(http.StatusServiceUnavailable)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	out := logs.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "boom") {
		t.Errorf("expected an error-level log mentioning the error, got %s", out)
	}
}

func TestHandlePanics(t *testing.T) {
	logs := captureLogs(t)
	r := newRouter()
	r.GET("/panic", func(c *gin.Context) { panic(errors.New("exploded")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "exploded") {
		t.Errorf("expected body to carry the panic message, got %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "Recovered from panic") {
		t.Errorf("expected the panic to be logged, got %s", logs.String())
	}
}
