package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/services/token"
)

func newAuthRouter(repo *mockUserRepo) (*mux.Router, *AuthHandler) {
	tokens := token.NewService("test-secret", time.Hour)
	h := NewAuthHandler(repo, tokens)
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/auth").Subrouter())
	protected := r.PathPrefix("/auth").Subrouter()
	h.RegisterProtectedRoutes(protected)
	return r, h
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	repo := newMockUserRepo()
	router, _ := newAuthRouter(repo)

	payload := `{"email":"user@example.com","password":"correct horse"}`
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data SessionResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Data.Token == "" {
		t.Error("Expected a session token")
	}
	if body.Data.User.Email != "user@example.com" {
		t.Errorf("Unexpected user: %+v", body.Data.User)
	}

	// The hash must never serialize
	if bytes.Contains(w.Body.Bytes(), []byte("password_hash")) {
		t.Error("Password hash leaked in response")
	}

	// Login with the same credentials
	req = httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Wrong password
	req = httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(`{"email":"user@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for wrong password, got %d", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newMockUserRepo()
	router, _ := newAuthRouter(repo)

	payload := `{"email":"user@example.com","password":"correct horse"}`
	for i, wantStatus := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != wantStatus {
			t.Errorf("Attempt %d: expected status %d, got %d", i, wantStatus, w.Code)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "bad email", body: `{"email":"not-an-email","password":"correct horse"}`},
		{name: "short password", body: `{"email":"user@example.com","password":"short"}`},
		{name: "missing fields", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newAuthRouter(newMockUserRepo())

			req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	router, _ := newAuthRouter(newMockUserRepo())

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(`{"email":"ghost@example.com","password":"whatever1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestMe(t *testing.T) {
	t.Parallel()

	repo := newMockUserRepo()
	router, _ := newAuthRouter(repo)

	user := &models.User{Email: "user@example.com"}
	req := authedRequest(t, "GET", "/auth/me", nil, user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data models.User `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Data.Email != "user@example.com" {
		t.Errorf("Unexpected user: %+v", body.Data)
	}
}
