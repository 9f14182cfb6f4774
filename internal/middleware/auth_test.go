package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/services/token"
)

type stubUserRepo struct {
	users map[uuid.UUID]*models.User
	err   error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, database.ErrNotFound
}

func TestAuth(t *testing.T) {
	t.Parallel()

	tokens := token.NewService("test-secret", time.Hour)
	user := &models.User{ID: uuid.New(), Email: "user@example.com"}
	repo := &stubUserRepo{users: map[uuid.UUID]*models.User{user.ID: user}}

	validToken, err := tokens.Issue(user.ID, user.Email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	orphanToken, err := tokens.Issue(uuid.New(), "gone@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUser   bool
	}{
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: "Basic abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer not-a-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token for deleted user",
			authHeader: "Bearer " + orphanToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + validToken,
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser *models.User
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = UserFromContext(r)
				w.WriteHeader(http.StatusOK)
			})

			middleware := Auth(tokens, repo)(handler)

			req := httptest.NewRequest("GET", "/api/v1/routines", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantUser {
				if gotUser == nil || gotUser.ID != user.ID {
					t.Errorf("Expected user %s in context, got %v", user.ID, gotUser)
				}
			} else if gotUser != nil {
				t.Error("Expected no user in context")
			}
		})
	}
}

func TestUserFromContextMissing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	if got := UserFromContext(req); got != nil {
		t.Errorf("Expected nil user, got %v", got)
	}
}

func TestWithUser(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(WithUser(req.Context(), user))

	got := UserFromContext(req)
	if got == nil || got.ID != user.ID {
		t.Errorf("Expected user %s, got %v", user.ID, got)
	}
}
