// Package stats computes completion-rate and satisfaction statistics over
// routine snapshots. Everything here is pure: functions take a snapshot and
// a reference date and never touch storage.
package stats

import (
	"math"
	"time"

	"github.com/haneulpark/habit-diary/internal/models"
)

// Pair is one reporting unit: completion percentage and average satisfaction.
type Pair struct {
	Completion   int `json:"completion"`
	Satisfaction int `json:"satisfaction"`
}

// DayBucket carries the six per-day numbers of the weekly view: the Pair for
// all entries, for user-authored routines only and for AI-suggested habits
// only.
type DayBucket struct {
	Date     string `json:"date"`
	Day      string `json:"day"`
	Total    Pair   `json:"total"`
	Routines Pair   `json:"routines"`
	Habits   Pair   `json:"habits"`
}

// MonthDay is one matching calendar day of the monthly view.
type MonthDay struct {
	Date       string `json:"date"`
	DayOfMonth int    `json:"day_of_month"`
	Stats      Pair   `json:"stats"`
}

// CompletionRate returns round(done/total*100), or 0 for an empty subset.
func CompletionRate(items []models.Routine) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, r := range items {
		if r.Done {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(items)) * 100))
}

// AverageSatisfaction returns the rounded mean rating over done items, or 0
// when nothing in the subset is done. Rounding is half-up on the mean
// (ratings are non-negative, so math.Round matches).
func AverageSatisfaction(items []models.Routine) int {
	done := 0
	sum := 0
	for _, r := range items {
		if r.Done {
			done++
			sum += r.Rating
		}
	}
	if done == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(done)))
}

// PairOf computes both statistics for a subset.
func PairOf(items []models.Routine) Pair {
	return Pair{
		Completion:   CompletionRate(items),
		Satisfaction: AverageSatisfaction(items),
	}
}

// WeekStart returns the Monday of the week containing ref, at ref's
// year/month/day granularity. Computed as ref minus (weekday+6) mod 7 days
// with Sunday=0.
func WeekStart(ref time.Time) time.Time {
	day := truncateToDay(ref)
	return day.AddDate(0, 0, -models.MondayIndex(ref.Weekday()))
}

// WeekRange returns the inclusive Monday..Sunday span containing ref.
func WeekRange(ref time.Time) (time.Time, time.Time) {
	start := WeekStart(ref)
	return start, start.AddDate(0, 0, 6)
}

// WeeklySummary buckets the snapshot into the seven days (Monday..Sunday) of
// the week containing ref. Entries are matched on their ISO date falling on
// the bucket's calendar day; weekday-label matching would conflate different
// weeks, so it is not used.
func WeeklySummary(items []models.Routine, ref time.Time) []DayBucket {
	start := WeekStart(ref)
	buckets := make([]DayBucket, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		iso := d.Format(models.DateFormat)
		onDay := filterByDate(items, iso)

		var routines, habits []models.Routine
		for _, r := range onDay {
			if r.IsHabit {
				habits = append(habits, r)
			} else {
				routines = append(routines, r)
			}
		}

		buckets = append(buckets, DayBucket{
			Date:     iso,
			Day:      models.DayLabel(iso),
			Total:    PairOf(onDay),
			Routines: PairOf(routines),
			Habits:   PairOf(habits),
		})
	}
	return buckets
}

// MonthlyByWeekday returns, for each calendar day in ref's month whose
// weekday label equals day, the statistics for entries dated that day.
func MonthlyByWeekday(items []models.Routine, ref time.Time, day string) []MonthDay {
	year, month, _ := ref.Date()
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, ref.Location()).Day()

	var out []MonthDay
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, ref.Location())
		iso := date.Format(models.DateFormat)
		if models.DayLabel(iso) != day {
			continue
		}
		out = append(out, MonthDay{
			Date:       iso,
			DayOfMonth: d,
			Stats:      PairOf(filterByDate(items, iso)),
		})
	}
	return out
}

// DaySnapshot computes the unsplit statistics for a single ISO date.
func DaySnapshot(items []models.Routine, date string) Pair {
	return PairOf(filterByDate(items, date))
}

// CompletedTasks returns the task labels of done entries on a date, in
// snapshot order.
func CompletedTasks(items []models.Routine, date string) []string {
	var tasks []string
	for _, r := range items {
		if r.Date == date && r.Done {
			tasks = append(tasks, r.Task)
		}
	}
	return tasks
}

// TopRatedTasks returns the done tasks on a date tied for the highest
// rating. Empty when nothing on the date is done.
func TopRatedTasks(items []models.Routine, date string) []string {
	max := -1
	for _, r := range items {
		if r.Date == date && r.Done && r.Rating > max {
			max = r.Rating
		}
	}
	if max < 0 {
		return nil
	}
	var tasks []string
	for _, r := range items {
		if r.Date == date && r.Done && r.Rating == max {
			tasks = append(tasks, r.Task)
		}
	}
	return tasks
}

func filterByDate(items []models.Routine, iso string) []models.Routine {
	var out []models.Routine
	for _, r := range items {
		if r.Date == iso {
			out = append(out, r)
		}
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
