package models

import (
	"time"

	"github.com/google/uuid"
)

// Diary tier thresholds: completed-task counts that gate one-time AI diary
// content generation for a date.
const (
	DiaryTierNone  = 0
	DiaryTierFive  = 5
	DiaryTierTen   = 10
)

// Diary holds the AI-generated content for one (user, date) pair.
// GeneratedTier is the durable idempotency guard: a tier fires at most once
// per date because claiming a tier is a conditional update on this field.
type Diary struct {
	UserID        uuid.UUID `json:"user_id"`
	Date          string    `json:"date"`
	Summary       string    `json:"summary"`
	ImageURL      string    `json:"image_url"`
	GeneratedTier int       `json:"generated_tier"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
