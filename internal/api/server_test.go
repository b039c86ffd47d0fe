package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRootAndHealth(t *testing.T) {
	h := newTestServer(t, Config{}, false).Handler()

	w := get(h, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("root status = %d", w.Code)
	}
	root := decodeData[map[string]interface{}](t, w)
	if root["version"] != Version {
		t.Errorf("root = %v", root)
	}

	get(h, "/verse?version=kjv&id=Gen.1.1")
	health := decodeData[HealthInfo](t, get(h, "/health"))
	if health.Status != "healthy" || health.Store || health.Driver != "" || health.Loaded.Size != 1 {
		t.Errorf("health = %+v", health)
	}
	if health.Cache.Misses == 0 {
		t.Errorf("cache = %+v; the verse lookup should have missed", health.Cache)
	}
}

func TestHandler_Middleware(t *testing.T) {
	cfg := Config{
		Auth:              AuthConfig{Enabled: true, APIKey: "0123456789abcdef"},
		RateLimitRequests: 60,
		RateLimitBurst:    1,
	}
	h := newTestServer(t, cfg, false).Handler()

	w := get(h, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if w.Header().Get("Content-Security-Policy") == "" || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("headers = %v", w.Header())
	}

	req := httptest.NewRequest(http.MethodGet, "/verse?version=kjv&id=Gen.1.1", nil)
	req.RemoteAddr = "192.0.2.10:5000"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/verse?version=kjv&id=Gen.1.1", nil)
	req.RemoteAddr = "192.0.2.10:5000"
	req.Header.Set("X-API-Key", "0123456789abcdef")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d; the burst of one was spent by the previous request", w.Code)
	}
}

func TestNewServer_Validation(t *testing.T) {
	if _, err := NewServer(Config{Auth: AuthConfig{Enabled: true, APIKey: "short"}}, nil, nil); err == nil {
		t.Error("short API key should fail")
	}
	if _, err := NewServer(Config{TLS: TLSConfig{Enabled: true}}, nil, nil); err == nil {
		t.Error("TLS without files should fail")
	}
	if _, err := NewServer(Config{Port: 70000}, nil, nil); err == nil {
		t.Error("out of range port should fail")
	}
	if _, err := NewServer(Config{}, nil, nil); err == nil {
		t.Error("nil registry should fail")
	}
}

func TestRun_Shutdown(t *testing.T) {
	s := newTestServer(t, Config{Port: 0}, false)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
