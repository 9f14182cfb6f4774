package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/services/ai"
)

type stubProvider struct {
	suggestions []string
	err         error
	gotPrev     *string
	gotNext     *string
}

func (s *stubProvider) SuggestHabits(ctx context.Context, prevTask, nextTask *string) ([]string, error) {
	s.gotPrev = prevTask
	s.gotNext = nextTask
	if s.err != nil {
		return ai.FallbackCandidates()[:3], s.err
	}
	return s.suggestions, nil
}

func (s *stubProvider) SummarizeDay(ctx context.Context, tasks []string) (string, error) {
	return "", nil
}

func (s *stubProvider) GenerateIllustration(ctx context.Context, focus string, tasks []string) (string, error) {
	return "", nil
}

func newSuggestionRouter(provider ai.Provider) *mux.Router {
	h := NewSuggestionHandler(provider, zap.NewNop())
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	provider := &stubProvider{suggestions: []string{"2분 스트레칭", "3분 명상", "물 한잔"}}
	router := newSuggestionRouter(provider)

	payload := `{"prev_task":"아침 운동","next_task":"출근 준비"}`
	req := authedRequest(t, "POST", "/suggestions", bytes.NewBufferString(payload), user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data SuggestResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Data.Suggestions) != 3 {
		t.Errorf("Expected 3 suggestions, got %d", len(body.Data.Suggestions))
	}
	if body.Data.Fallback {
		t.Error("Expected AI suggestions, not fallback")
	}
	if provider.gotPrev == nil || *provider.gotPrev != "아침 운동" {
		t.Errorf("Expected prev task forwarded, got %v", provider.gotPrev)
	}
}

func TestSuggestFallbackOnError(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	provider := &stubProvider{err: errors.New("upstream down")}
	router := newSuggestionRouter(provider)

	payload := `{"prev_task":"아침 운동"}`
	req := authedRequest(t, "POST", "/suggestions", bytes.NewBufferString(payload), user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 despite provider error, got %d", w.Code)
	}

	var body struct {
		Data SuggestResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !body.Data.Fallback {
		t.Error("Expected fallback flag on provider error")
	}
	if len(body.Data.Suggestions) != 3 {
		t.Errorf("Expected 3 fallback suggestions, got %d", len(body.Data.Suggestions))
	}
}

func TestSuggestWithoutContextUsesPool(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	provider := &stubProvider{suggestions: ai.FallbackCandidates()[:3]}
	router := newSuggestionRouter(provider)

	req := authedRequest(t, "POST", "/suggestions", bytes.NewBufferString(`{}`), user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Data SuggestResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !body.Data.Fallback {
		t.Error("Expected fallback flag when no surrounding tasks are given")
	}
}

func TestSuggestEmptyTasksUsePool(t *testing.T) {
	t.Parallel()

	// Tasks that are present but blank collapse to no context after
	// sanitization; the provider answers from the built-in pool, so the
	// response must say so.
	user := &models.User{ID: uuid.New()}
	provider := &stubProvider{suggestions: ai.FallbackCandidates()[:3]}
	router := newSuggestionRouter(provider)

	payload := `{"prev_task":"  ","next_task":""}`
	req := authedRequest(t, "POST", "/suggestions", bytes.NewBufferString(payload), user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Data SuggestResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !body.Data.Fallback {
		t.Error("Expected fallback flag when both tasks sanitize to empty")
	}
}

func TestSuggestUnauthorized(t *testing.T) {
	t.Parallel()

	router := newSuggestionRouter(&stubProvider{})

	req := httptest.NewRequest("POST", "/suggestions", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}
