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

const routineColumns = "id, user_id, date, start_time, end_time, task, done, rating, is_habit, position, created_at, updated_at"

// RoutineRepository handles routine database operations. Entries are ordered
// by a user-scoped position column, which is also where AI-suggested habits
// are spliced in. There is no delete operation.
type RoutineRepository struct {
	db *DB
}

// NewRoutineRepository creates a new routine repository
func NewRoutineRepository(db *DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

// Create appends a routine at the end of the user's list.
func (r *RoutineRepository) Create(ctx context.Context, routine *models.Routine) error {
	query := `
		INSERT INTO routines (id, user_id, date, start_time, end_time, task, done, rating, is_habit, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM routines WHERE user_id = $2),
			$10, $10)
		RETURNING position, created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		routine.ID,
		routine.UserID,
		routine.Date,
		routine.Start,
		routine.End,
		routine.Task,
		routine.Done,
		routine.Rating,
		routine.IsHabit,
		now,
	).Scan(&routine.Position, &routine.CreatedAt, &routine.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create routine: %w", err)
	}

	return nil
}

// GetByID retrieves a routine by ID
func (r *RoutineRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	routine := &models.Routine{}
	query := `SELECT ` + routineColumns + ` FROM routines WHERE id = $1`

	err := scanRoutine(r.db.QueryRowContext(ctx, query, id), routine)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("routine not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}

	return routine, nil
}

// ListByUser retrieves all routines for a user in insertion/splice order.
func (r *RoutineRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Routine, error) {
	query := `SELECT ` + routineColumns + ` FROM routines WHERE user_id = $1 ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query routines: %w", err)
	}
	defer rows.Close()

	var routines []models.Routine
	for rows.Next() {
		var routine models.Routine
		if err := scanRoutine(rows, &routine); err != nil {
			return nil, fmt.Errorf("failed to scan routine: %w", err)
		}
		routines = append(routines, routine)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating routines: %w", err)
	}

	return routines, nil
}

// ToggleDone flips the done flag and returns the updated routine. Clearing
// the flag also clears the rating, since a rating is only meaningful on a
// completed entry.
func (r *RoutineRepository) ToggleDone(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	routine := &models.Routine{}
	query := `
		UPDATE routines
		SET done = NOT done,
		    rating = CASE WHEN done THEN 0 ELSE rating END,
		    updated_at = $2
		WHERE id = $1
		RETURNING ` + routineColumns

	err := scanRoutine(r.db.QueryRowContext(ctx, query, id, time.Now()), routine)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("routine not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle routine: %w", err)
	}

	return routine, nil
}

// SetRating sets the satisfaction score on a completed routine. Returns
// ErrNotCompleted when the routine exists but is not done.
func (r *RoutineRepository) SetRating(ctx context.Context, id uuid.UUID, rating int) (*models.Routine, error) {
	routine := &models.Routine{}
	query := `
		UPDATE routines
		SET rating = $2, updated_at = $3
		WHERE id = $1 AND done = true
		RETURNING ` + routineColumns

	err := scanRoutine(r.db.QueryRowContext(ctx, query, id, models.ClampRating(rating), time.Now()), routine)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing routine from an uncompleted one.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotCompleted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set rating: %w", err)
	}

	return routine, nil
}

// InsertAfter splices a habit immediately after the routine with afterID,
// shifting the positions of everything behind it. Used exclusively for
// AI-suggested habits.
func (r *RoutineRepository) InsertAfter(ctx context.Context, userID, afterID uuid.UUID, habit *models.Routine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			_ = rollbackErr
		}
	}()

	var afterPos int
	err = tx.QueryRowContext(ctx,
		`SELECT position FROM routines WHERE id = $1 AND user_id = $2`,
		afterID, userID,
	).Scan(&afterPos)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("routine not found: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to locate splice point: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE routines SET position = position + 1 WHERE user_id = $1 AND position > $2`,
		userID, afterPos,
	); err != nil {
		return fmt.Errorf("failed to shift positions: %w", err)
	}

	now := time.Now()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO routines (id, user_id, date, start_time, end_time, task, done, rating, is_habit, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING created_at, updated_at
	`,
		habit.ID,
		userID,
		habit.Date,
		habit.Start,
		habit.End,
		habit.Task,
		habit.Done,
		habit.Rating,
		habit.IsHabit,
		afterPos+1,
		now,
	).Scan(&habit.CreatedAt, &habit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	habit.Position = afterPos + 1

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit habit insert: %w", err)
	}
	return nil
}

// ReplaceAll replaces the user's whole list in one transaction, re-indexing
// positions from the slice order.
func (r *RoutineRepository) ReplaceAll(ctx context.Context, userID uuid.UUID, routines []models.Routine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			_ = rollbackErr
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM routines WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear routines: %w", err)
	}

	now := time.Now()
	for i := range routines {
		routine := &routines[i]
		if routine.ID == uuid.Nil {
			routine.ID = uuid.New()
		}
		routine.UserID = userID
		routine.Position = i
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO routines (id, user_id, date, start_time, end_time, task, done, rating, is_habit, position, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		`,
			routine.ID,
			userID,
			routine.Date,
			routine.Start,
			routine.End,
			routine.Task,
			routine.Done,
			models.ClampRating(routine.Rating),
			routine.IsHabit,
			i,
			now,
		); err != nil {
			return fmt.Errorf("failed to insert routine %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoutine(row rowScanner, routine *models.Routine) error {
	return row.Scan(
		&routine.ID,
		&routine.UserID,
		&routine.Date,
		&routine.Start,
		&routine.End,
		&routine.Task,
		&routine.Done,
		&routine.Rating,
		&routine.IsHabit,
		&routine.Position,
		&routine.CreatedAt,
		&routine.UpdatedAt,
	)
}
