package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/queue"
)

type mockProvider struct {
	summary    string
	summaryErr error
	imageURL   string
	imageErr   error

	summarizeCalls   int
	illustrateCalls  int
	illustrateFocus  string
	summarizedTasks  []string
	illustratedTasks []string
}

func (m *mockProvider) SuggestHabits(ctx context.Context, prevTask, nextTask *string) ([]string, error) {
	return nil, nil
}

func (m *mockProvider) SummarizeDay(ctx context.Context, tasks []string) (string, error) {
	m.summarizeCalls++
	m.summarizedTasks = tasks
	return m.summary, m.summaryErr
}

func (m *mockProvider) GenerateIllustration(ctx context.Context, focus string, tasks []string) (string, error) {
	m.illustrateCalls++
	m.illustrateFocus = focus
	m.illustratedTasks = tasks
	return m.imageURL, m.imageErr
}

type mockRoutineRepo struct {
	routines []models.Routine
	err      error
}

func (m *mockRoutineRepo) Create(ctx context.Context, routine *models.Routine) error { return nil }
func (m *mockRoutineRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	return nil, nil
}
func (m *mockRoutineRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Routine, error) {
	return m.routines, m.err
}
func (m *mockRoutineRepo) ToggleDone(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	return nil, nil
}
func (m *mockRoutineRepo) SetRating(ctx context.Context, id uuid.UUID, rating int) (*models.Routine, error) {
	return nil, nil
}
func (m *mockRoutineRepo) InsertAfter(ctx context.Context, userID, afterID uuid.UUID, habit *models.Routine) error {
	return nil
}
func (m *mockRoutineRepo) ReplaceAll(ctx context.Context, userID uuid.UUID, routines []models.Routine) error {
	return nil
}

type savedContent struct {
	userID   uuid.UUID
	date     string
	summary  string
	imageURL string
}

type mockDiaryRepo struct {
	saved []savedContent
	err   error
}

func (m *mockDiaryRepo) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*models.Diary, error) {
	return nil, nil
}
func (m *mockDiaryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Diary, error) {
	return nil, nil
}
func (m *mockDiaryRepo) ClaimTier(ctx context.Context, userID uuid.UUID, date string, tier int) (bool, error) {
	return false, nil
}
func (m *mockDiaryRepo) SaveContent(ctx context.Context, userID uuid.UUID, date, summary, imageURL string) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, savedContent{userID: userID, date: date, summary: summary, imageURL: imageURL})
	return nil
}

func dayRoutines(userID uuid.UUID, date string) []models.Routine {
	return []models.Routine{
		{ID: uuid.New(), UserID: userID, Date: date, Task: "아침 운동", Done: true, Rating: 8},
		{ID: uuid.New(), UserID: userID, Date: date, Task: "독서", Done: true, Rating: 9},
		{ID: uuid.New(), UserID: userID, Date: date, Task: "물 마시기", Done: true, Rating: 6},
		{ID: uuid.New(), UserID: userID, Date: date, Task: "산책", Done: true},
		{ID: uuid.New(), UserID: userID, Date: date, Task: "명상", Done: true, Rating: 9},
		{ID: uuid.New(), UserID: userID, Date: date, Task: "저녁 정리", Done: false},
	}
}

func TestProcessDiaryJobTierFive(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	provider := &mockProvider{summary: "오늘도 수고했어요.", imageURL: "https://example.com/diary.png"}
	diaryRepo := &mockDiaryRepo{}
	gen := NewDiaryGenerator(provider, &mockRoutineRepo{routines: dayRoutines(userID, "2025-07-09")}, diaryRepo, false)

	job := queue.NewDiaryJob(userID, "2025-07-09", 5)
	if err := gen.ProcessDiaryJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessDiaryJob() error = %v", err)
	}

	if provider.summarizeCalls != 1 {
		t.Errorf("Expected one summarize call, got %d", provider.summarizeCalls)
	}
	if len(provider.summarizedTasks) != 5 {
		t.Errorf("Expected 5 completed tasks summarized, got %d", len(provider.summarizedTasks))
	}
	if provider.illustrateCalls != 1 {
		t.Errorf("Expected one illustration call for tier 5, got %d", provider.illustrateCalls)
	}
	wantFocus := "오늘 만족도가 가장 높았던 행동: 독서, 명상"
	if provider.illustrateFocus != wantFocus {
		t.Errorf("Expected focus %q, got %q", wantFocus, provider.illustrateFocus)
	}

	if len(diaryRepo.saved) != 1 {
		t.Fatalf("Expected one save, got %d", len(diaryRepo.saved))
	}
	got := diaryRepo.saved[0]
	if got.summary != "오늘도 수고했어요." || got.imageURL != "https://example.com/diary.png" {
		t.Errorf("Unexpected saved content: %+v", got)
	}
}

func TestProcessDiaryJobTierTenIllustrationGated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		tier10Illustrated bool
		wantCalls         int
	}{
		{name: "gate off", tier10Illustrated: false, wantCalls: 0},
		{name: "gate on", tier10Illustrated: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userID := uuid.New()
			provider := &mockProvider{summary: "요약", imageURL: "https://example.com/x.png"}
			gen := NewDiaryGenerator(provider, &mockRoutineRepo{routines: dayRoutines(userID, "2025-07-09")}, &mockDiaryRepo{}, tt.tier10Illustrated)

			job := queue.NewDiaryJob(userID, "2025-07-09", 10)
			if err := gen.ProcessDiaryJob(context.Background(), job); err != nil {
				t.Fatalf("ProcessDiaryJob() error = %v", err)
			}
			if provider.illustrateCalls != tt.wantCalls {
				t.Errorf("Expected %d illustration calls, got %d", tt.wantCalls, provider.illustrateCalls)
			}
		})
	}
}

func TestProcessDiaryJobAIFailureSavesEmpty(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	provider := &mockProvider{
		summaryErr: errors.New("upstream timeout"),
		imageErr:   errors.New("upstream timeout"),
	}
	diaryRepo := &mockDiaryRepo{}
	gen := NewDiaryGenerator(provider, &mockRoutineRepo{routines: dayRoutines(userID, "2025-07-09")}, diaryRepo, false)

	job := queue.NewDiaryJob(userID, "2025-07-09", 5)
	if err := gen.ProcessDiaryJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessDiaryJob() error = %v, want nil (AI failures are non-fatal)", err)
	}

	if len(diaryRepo.saved) != 1 {
		t.Fatalf("Expected one save, got %d", len(diaryRepo.saved))
	}
	got := diaryRepo.saved[0]
	if got.summary != "" || got.imageURL != "" {
		t.Errorf("Expected empty content after AI failure, got %+v", got)
	}
}

func TestProcessDiaryJobNoCompletedTasks(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	provider := &mockProvider{}
	diaryRepo := &mockDiaryRepo{}
	routines := []models.Routine{
		{ID: uuid.New(), UserID: userID, Date: "2025-07-09", Task: "산책", Done: false},
	}
	gen := NewDiaryGenerator(provider, &mockRoutineRepo{routines: routines}, diaryRepo, false)

	job := queue.NewDiaryJob(userID, "2025-07-09", 5)
	if err := gen.ProcessDiaryJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessDiaryJob() error = %v", err)
	}
	if provider.summarizeCalls != 0 || provider.illustrateCalls != 0 {
		t.Error("Expected no provider calls when nothing is completed")
	}
	if len(diaryRepo.saved) != 0 {
		t.Errorf("Expected no save, got %d", len(diaryRepo.saved))
	}
}

func TestProcessDiaryJobListFailure(t *testing.T) {
	t.Parallel()

	gen := NewDiaryGenerator(&mockProvider{}, &mockRoutineRepo{err: errors.New("db down")}, &mockDiaryRepo{}, false)

	job := queue.NewDiaryJob(uuid.New(), "2025-07-09", 5)
	if err := gen.ProcessDiaryJob(context.Background(), job); err == nil {
		t.Fatal("Expected error when routine listing fails")
	}
}
