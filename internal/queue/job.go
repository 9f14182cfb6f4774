package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeDiaryGeneration generates AI diary content for one (user, date, tier).
	JobTypeDiaryGeneration JobType = "diary_generation"
)

// Job represents a job in the queue. Diary jobs are keyed by (user, date,
// tier); the durable tier guard was already claimed before enqueueing, so a
// job is processed at most once per key.
type Job struct {
	ID        uuid.UUID `json:"id"`
	Type      JobType   `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	Date      string    `json:"date"`
	Tier      int       `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDiaryJob creates a diary generation job.
func NewDiaryJob(userID uuid.UUID, date string, tier int) *Job {
	return &Job{
		ID:        uuid.New(),
		Type:      JobTypeDiaryGeneration,
		UserID:    userID,
		Date:      date,
		Tier:      tier,
		CreatedAt: time.Now(),
	}
}
