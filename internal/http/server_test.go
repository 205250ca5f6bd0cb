package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kakeibo/internal/line"
)

type fakeEventHandler struct {
	mu     sync.Mutex
	events []line.Event
	err    error
}

func (f *fakeEventHandler) HandleEvents(ctx context.Context, events []line.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return f.err
}

func newTestServer(t *testing.T, handler EventHandler) *Server {
	t.Helper()
	s, err := NewServer(":0", "test-secret", handler)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookGetIsHealthCheck(t *testing.T) {
	s := newTestServer(t, &fakeEventHandler{})

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	handler := &fakeEventHandler{}
	s := newTestServer(t, handler)

	body := `{"events":[]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", "not-a-valid-signature")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.events) != 0 {
		t.Errorf("handler should not run on bad signature")
	}
}

func TestWebhookDispatchesEvents(t *testing.T) {
	handler := &fakeEventHandler{}
	s := newTestServer(t, handler)

	body := `{"events":[{"type":"message","replyToken":"tok","source":{"userId":"U1"},"message":{"type":"text","text":"ランチ 1200"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", sign("test-secret", []byte(body)))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(handler.events))
	}
	if handler.events[0].Message.Text != "ランチ 1200" {
		t.Errorf("unexpected event text: %q", handler.events[0].Message.Text)
	}
}

func TestWebhookReturns200OnHandlerError(t *testing.T) {
	handler := &fakeEventHandler{err: context.DeadlineExceeded}
	s := newTestServer(t, handler)

	body := `{"events":[]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", sign("test-secret", []byte(body)))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 even on handler error, got %d", rec.Code)
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeEventHandler{})

	req := httptest.NewRequest(http.MethodDelete, "/webhook", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestChartRendersPage(t *testing.T) {
	s := newTestServer(t, &fakeEventHandler{})

	req := httptest.NewRequest(http.MethodGet, "/chart?labels=%E9%A3%9F%E8%B2%BB,%E4%BA%A4%E9%80%9A%E8%B2%BB&values=120000,35000&title=%E6%94%AF%E5%87%BA%E5%88%86%E6%9E%90", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "支出分析") {
		t.Errorf("title missing from page")
	}
	if !strings.Contains(body, "食費") {
		t.Errorf("labels missing from page")
	}
	if !strings.Contains(body, "120000") {
		t.Errorf("values missing from page")
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("unexpected content type %q", got)
	}
}

func TestChartDefaultsTitle(t *testing.T) {
	s := newTestServer(t, &fakeEventHandler{})

	req := httptest.NewRequest(http.MethodGet, "/chart?labels=a&values=1", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "支出内訳") {
		t.Errorf("default title missing")
	}
}

func TestChartRequiresParams(t *testing.T) {
	s := newTestServer(t, &fakeEventHandler{})

	for _, target := range []string{"/chart", "/chart?labels=a", "/chart?values=1", "/chart?labels=a&values=x"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestBalanceChartRendersPage(t *testing.T) {
	s := newTestServer(t, &fakeEventHandler{})

	req := httptest.NewRequest(http.MethodGet, "/balance-chart?months=2025-12,2026-01&balances=50000,166300", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "2025-12") || !strings.Contains(body, "166300") {
		t.Errorf("chart data missing from page")
	}
}

func TestBalanceChartRequiresParams(t *testing.T) {
	s := newTestServer(t, &fakeEventHandler{})

	req := httptest.NewRequest(http.MethodGet, "/balance-chart?months=2026-01", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeEventHandler{})

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Errorf("%s: got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("203.0.113.5") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("203.0.113.5") {
		t.Error("request 61 should be blocked")
	}
	if !rl.allow("203.0.113.9") {
		t.Error("other clients should not be affected")
	}
}
