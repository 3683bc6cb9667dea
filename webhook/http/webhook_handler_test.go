package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
)

const testSecret = "s3cret"

type countingWarmer struct {
	calls atomic.Int32
}

func (w *countingWarmer) WarmInBackground() bool {
	w.calls.Add(1)
	return true
}

func newTestRouter(t *testing.T, warmer Warmer) *gin.Engine {
	t.Helper()
	h, err := NewWebhookHandler(testSecret, "samchencode/stroke-content", "main", warmer)
	if err != nil {
		t.Fatalf("NewWebhookHandler failed: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func deliver(r *gin.Engine, event, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/content", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-Hub-Signature-256", signature)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewWebhookHandlerRequiresSecret(t *testing.T) {
	if _, err := NewWebhookHandler("", "o/r", "main", &countingWarmer{}); err == nil {
		t.Fatal("expected an error without a secret")
	}
}

func TestHandleContentWebhook(t *testing.T) {
	tests := []struct {
		name      string
		event     string
		body      string
		secret    string
		wantCode  int
		wantWarms int32
	}{
		{
			name:      "push to tracked branch",
			event:     "push",
			body:      `{"ref":"refs/heads/main","after":"abc123","repository":{"full_name":"samchencode/stroke-content"}}`,
			secret:    testSecret,
			wantCode:  http.StatusAccepted,
			wantWarms: 1,
		},
		{
			name:     "push to another branch",
			event:    "push",
			body:     `{"ref":"refs/heads/draft","repository":{"full_name":"samchencode/stroke-content"}}`,
			secret:   testSecret,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "push to another repository",
			event:    "push",
			body:     `{"ref":"refs/heads/main","repository":{"full_name":"someone/else"}}`,
			secret:   testSecret,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "ping",
			event:    "ping",
			body:     `{"zen":"Keep it logically awesome."}`,
			secret:   testSecret,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "bad signature",
			event:    "push",
			body:     `{"ref":"refs/heads/main","repository":{"full_name":"samchencode/stroke-content"}}`,
			secret:   "wrong",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warmer := &countingWarmer{}
			r := newTestRouter(t, warmer)

			w := deliver(r, tt.event, tt.body, sign(tt.secret, tt.body))

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d (%s)", tt.wantCode, w.Code, w.Body.String())
			}
			if got := warmer.calls.Load(); got != tt.wantWarms {
				t.Errorf("expected %d warm-ups, got %d", tt.wantWarms, got)
			}
		})
	}
}
