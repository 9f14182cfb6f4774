package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestAllowedOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		frontendURL string
		want        []string
	}{
		{
			name:        "empty keeps local dev origin",
			frontendURL: "",
			want:        []string{"http://localhost:3000"},
		},
		{
			name:        "single origin",
			frontendURL: "https://habit.example.com",
			want:        []string{"http://localhost:3000", "https://habit.example.com"},
		},
		{
			name:        "comma separated with whitespace and duplicates",
			frontendURL: " https://habit.example.com , http://localhost:3000 ",
			want:        []string{"http://localhost:3000", "https://habit.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := AllowedOrigins(tt.frontendURL)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AllowedOrigins(%q) = %v, want %v", tt.frontendURL, got, tt.want)
			}
		})
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	middleware := CORSFromEnv("https://habit.example.com")(handler)

	req := httptest.NewRequest("GET", "/api/v1/routines", nil)
	req.Header.Set("Origin", "https://habit.example.com")
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://habit.example.com" {
		t.Errorf("Expected allow-origin header for allowed origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Expected allow-credentials header, got %q", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	middleware := CORSFromEnv("https://habit.example.com")(handler)

	req := httptest.NewRequest("GET", "/api/v1/routines", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no allow-origin header for disallowed origin, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})
	middleware := CORSFromEnv("https://habit.example.com")(handler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/routines", nil)
	req.Header.Set("Origin", "https://habit.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if handlerCalled {
		t.Error("Expected preflight to be answered by the middleware, not the handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://habit.example.com" {
		t.Errorf("Expected allow-origin header on preflight, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("Expected allow-methods header on preflight")
	}
}
