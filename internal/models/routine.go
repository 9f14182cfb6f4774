package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DateFormat is the wire format for calendar dates (ISO, YYYY-MM-DD).
const DateFormat = "2006-01-02"

// HabitStartSentinel marks the start field of AI-suggested habits, which are
// not scheduled to a time window.
const HabitStartSentinel = "(습관)"

// dayLabels are the Korean weekday labels, Monday first, matching the UI
// grouping order.
var dayLabels = [7]string{"월", "화", "수", "목", "금", "토", "일"}

const (
	// RatingMin is the lowest satisfaction score (0 means unset).
	RatingMin = 0
	// RatingMax is the highest satisfaction score.
	RatingMax = 10
)

// Routine is a scheduled task for a specific date with completion and
// satisfaction tracking. Habits are short AI-suggested routines inserted
// between two existing entries and flagged IsHabit.
//
// The weekday label is not stored; it is derived from Date so the two can
// never drift apart.
type Routine struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Date      string    `json:"date"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Task      string    `json:"task"`
	Done      bool      `json:"done"`
	Rating    int       `json:"rating"`
	IsHabit   bool      `json:"is_habit"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Day returns the weekday label derived from Date (월..일), or "" when Date
// does not parse.
func (r *Routine) Day() string {
	return DayLabel(r.Date)
}

// MarshalJSON includes the derived day label alongside the stored fields.
func (r Routine) MarshalJSON() ([]byte, error) {
	type alias Routine
	return json.Marshal(struct {
		alias
		Day string `json:"day"`
	}{alias: alias(r), Day: r.Day()})
}

// DayLabel returns the Korean weekday label for an ISO date string, or ""
// when the date does not parse.
func DayLabel(date string) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return ""
	}
	return dayLabels[MondayIndex(t.Weekday())]
}

// MondayIndex maps a time.Weekday (Sunday=0) onto the Monday-first label
// order (Monday=0 .. Sunday=6).
func MondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// DayLabels returns the weekday labels in Monday-first order.
func DayLabels() []string {
	out := make([]string, len(dayLabels))
	copy(out, dayLabels[:])
	return out
}

// ValidDayLabel reports whether s is one of the weekday labels.
func ValidDayLabel(s string) bool {
	for _, d := range dayLabels {
		if d == s {
			return true
		}
	}
	return false
}

// ClampRating clamps a satisfaction score into [RatingMin, RatingMax].
func ClampRating(v int) int {
	if v < RatingMin {
		return RatingMin
	}
	if v > RatingMax {
		return RatingMax
	}
	return v
}
