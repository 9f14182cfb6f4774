package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haneulpark/habit-diary/internal/models"
)

// DiaryRepository handles per-date diary records. The generated_tier column
// is the durable idempotency guard for AI content generation: claiming a
// tier is a conditional update, so a tier fires at most once per (user,
// date) even across restarts and concurrent checks.
type DiaryRepository struct {
	db *DB
}

// NewDiaryRepository creates a new diary repository
func NewDiaryRepository(db *DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

// GetByUserAndDate retrieves the diary record for one date.
func (r *DiaryRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*models.Diary, error) {
	diary := &models.Diary{}
	query := `
		SELECT user_id, date, summary, image_url, generated_tier, created_at, updated_at
		FROM diaries
		WHERE user_id = $1 AND date = $2
	`

	err := r.db.QueryRowContext(ctx, query, userID, date).Scan(
		&diary.UserID,
		&diary.Date,
		&diary.Summary,
		&diary.ImageURL,
		&diary.GeneratedTier,
		&diary.CreatedAt,
		&diary.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("diary not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diary: %w", err)
	}

	return diary, nil
}

// ListByUser retrieves all diary records for a user ordered by date.
func (r *DiaryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Diary, error) {
	query := `
		SELECT user_id, date, summary, image_url, generated_tier, created_at, updated_at
		FROM diaries
		WHERE user_id = $1
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diaries: %w", err)
	}
	defer rows.Close()

	var diaries []models.Diary
	for rows.Next() {
		var diary models.Diary
		err := rows.Scan(
			&diary.UserID,
			&diary.Date,
			&diary.Summary,
			&diary.ImageURL,
			&diary.GeneratedTier,
			&diary.CreatedAt,
			&diary.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diary: %w", err)
		}
		diaries = append(diaries, diary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diaries: %w", err)
	}

	return diaries, nil
}

// ClaimTier atomically claims a generation tier for a date. Returns true
// when this caller won the claim and must generate content; false when the
// tier (or a higher one) has already fired.
func (r *DiaryRepository) ClaimTier(ctx context.Context, userID uuid.UUID, date string, tier int) (bool, error) {
	now := time.Now()

	// Ensure the row exists, then claim conditionally. The conditional
	// update is what makes the trigger idempotent per (user, date, tier).
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO diaries (user_id, date, summary, image_url, generated_tier, created_at, updated_at)
		VALUES ($1, $2, '', '', $3, $4, $4)
		ON CONFLICT (user_id, date) DO NOTHING
	`, userID, date, models.DiaryTierNone, now); err != nil {
		return false, fmt.Errorf("failed to ensure diary row: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE diaries
		SET generated_tier = $3, updated_at = $4
		WHERE user_id = $1 AND date = $2 AND generated_tier < $3
	`, userID, date, tier, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim diary tier: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// SaveContent writes generated content onto the diary row. Empty fields are
// left untouched so a failed illustration call does not erase an earlier
// summary (and vice versa).
func (r *DiaryRepository) SaveContent(ctx context.Context, userID uuid.UUID, date, summary, imageURL string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE diaries
		SET summary = CASE WHEN $3 <> '' THEN $3 ELSE summary END,
		    image_url = CASE WHEN $4 <> '' THEN $4 ELSE image_url END,
		    updated_at = $5
		WHERE user_id = $1 AND date = $2
	`, userID, date, summary, imageURL, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save diary content: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("diary not found: %w", ErrNotFound)
	}

	return nil
}
