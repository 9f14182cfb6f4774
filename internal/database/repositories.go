package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/haneulpark/habit-diary/internal/models"
)

// RoutineRepositoryInterface defines the routine store operations consumed
// by handlers and the diary trigger. Enables mock implementations in tests.
type RoutineRepositoryInterface interface {
	Create(ctx context.Context, routine *models.Routine) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Routine, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Routine, error)
	ToggleDone(ctx context.Context, id uuid.UUID) (*models.Routine, error)
	SetRating(ctx context.Context, id uuid.UUID, rating int) (*models.Routine, error)
	InsertAfter(ctx context.Context, userID, afterID uuid.UUID, habit *models.Routine) error
	ReplaceAll(ctx context.Context, userID uuid.UUID, routines []models.Routine) error
}

// DiaryRepositoryInterface defines the diary record operations, including
// the durable tier guard.
type DiaryRepositoryInterface interface {
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*models.Diary, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Diary, error)
	ClaimTier(ctx context.Context, userID uuid.UUID, date string, tier int) (bool, error)
	SaveContent(ctx context.Context, userID uuid.UUID, date, summary, imageURL string) error
}

// UserRepositoryInterface defines the user lookup operations used by auth.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ RoutineRepositoryInterface = (*RoutineRepository)(nil)
	_ DiaryRepositoryInterface   = (*DiaryRepository)(nil)
	_ UserRepositoryInterface    = (*UserRepository)(nil)
)
