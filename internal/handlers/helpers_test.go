package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/middleware"
	"github.com/haneulpark/habit-diary/internal/models"
)

// mockRoutineRepo is an in-memory RoutineRepositoryInterface
type mockRoutineRepo struct {
	routines []models.Routine
	err      error
}

func (m *mockRoutineRepo) Create(ctx context.Context, routine *models.Routine) error {
	if m.err != nil {
		return m.err
	}
	routine.Position = len(m.routines)
	m.routines = append(m.routines, *routine)
	return nil
}

func (m *mockRoutineRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.routines {
		if m.routines[i].ID == id {
			r := m.routines[i]
			return &r, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *mockRoutineRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Routine, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Routine
	for _, r := range m.routines {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRoutineRepo) ToggleDone(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	for i := range m.routines {
		if m.routines[i].ID == id {
			m.routines[i].Done = !m.routines[i].Done
			if !m.routines[i].Done {
				m.routines[i].Rating = 0
			}
			r := m.routines[i]
			return &r, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *mockRoutineRepo) SetRating(ctx context.Context, id uuid.UUID, rating int) (*models.Routine, error) {
	for i := range m.routines {
		if m.routines[i].ID == id {
			if !m.routines[i].Done {
				return nil, database.ErrNotCompleted
			}
			m.routines[i].Rating = models.ClampRating(rating)
			r := m.routines[i]
			return &r, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *mockRoutineRepo) InsertAfter(ctx context.Context, userID, afterID uuid.UUID, habit *models.Routine) error {
	for i := range m.routines {
		if m.routines[i].ID == afterID {
			habit.Position = m.routines[i].Position + 1
			rest := append([]models.Routine{*habit}, m.routines[i+1:]...)
			m.routines = append(m.routines[:i+1], rest...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *mockRoutineRepo) ReplaceAll(ctx context.Context, userID uuid.UUID, routines []models.Routine) error {
	if m.err != nil {
		return m.err
	}
	var kept []models.Routine
	for _, r := range m.routines {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	m.routines = append(kept, routines...)
	return nil
}

// mockDiaryRepo is an in-memory DiaryRepositoryInterface
type mockDiaryRepo struct {
	diaries map[string]*models.Diary // keyed by userID|date
	err     error
}

func newMockDiaryRepo() *mockDiaryRepo {
	return &mockDiaryRepo{diaries: make(map[string]*models.Diary)}
}

func diaryKey(userID uuid.UUID, date string) string {
	return userID.String() + "|" + date
}

func (m *mockDiaryRepo) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*models.Diary, error) {
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.diaries[diaryKey(userID, date)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return d, nil
}

func (m *mockDiaryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Diary, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Diary
	for _, d := range m.diaries {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDiaryRepo) ClaimTier(ctx context.Context, userID uuid.UUID, date string, tier int) (bool, error) {
	k := diaryKey(userID, date)
	d, ok := m.diaries[k]
	if !ok {
		d = &models.Diary{UserID: userID, Date: date}
		m.diaries[k] = d
	}
	if d.GeneratedTier >= tier {
		return false, nil
	}
	d.GeneratedTier = tier
	return true, nil
}

func (m *mockDiaryRepo) SaveContent(ctx context.Context, userID uuid.UUID, date, summary, imageURL string) error {
	d, ok := m.diaries[diaryKey(userID, date)]
	if !ok {
		return database.ErrNotFound
	}
	if summary != "" {
		d.Summary = summary
	}
	if imageURL != "" {
		d.ImageURL = imageURL
	}
	return nil
}

// mockUserRepo is an in-memory UserRepositoryInterface
type mockUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return database.ErrEmailTaken
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, database.ErrNotFound
}

// mockTrigger records Check calls and returns a fixed tier
type mockTrigger struct {
	tier  int
	err   error
	calls int
}

func (m *mockTrigger) Check(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	m.calls++
	return m.tier, m.err
}

// authedRequest builds a request carrying the user in its context
func authedRequest(t *testing.T, method, path string, body io.Reader, user *models.User) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUser(req.Context(), user))
}
