package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCORSHandler(called *bool) http.Handler {
	mw := NewCORSMiddleware([]string{"http://localhost:3000", " https://shop.example.com/ "})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSMiddleware_AllowedOrigin_SetsHeaders(t *testing.T) {
	var called bool
	handler := newCORSHandler(&called)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK || !called {
		t.Fatalf("status = %d called=%v", resp.StatusCode, called)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q", got)
	}
}

func TestCORSMiddleware_NoOrigin_PassesThrough(t *testing.T) {
	var called bool
	handler := newCORSHandler(&called)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !called {
		t.Error("next handler should be called")
	}
	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestCORSMiddleware_DisallowedOrigin_NoHeaders(t *testing.T) {
	var called bool
	handler := newCORSHandler(&called)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("simple request should reach handler")
	}
	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		wantStatus int
	}{
		{"allowed", "http://localhost:3000", http.StatusNoContent},
		{"disallowed", "https://evil.example.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := newCORSHandler(&called)

			req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if called {
				t.Error("preflight should not reach handler")
			}
			if tt.wantStatus == http.StatusNoContent {
				if got := resp.Header.Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Session-Id" {
					t.Errorf("Access-Control-Allow-Headers = %q", got)
				}
				if got := resp.Header.Get("Access-Control-Max-Age"); got != "86400" {
					t.Errorf("Access-Control-Max-Age = %q", got)
				}
			}
		})
	}
}
