package diary

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/queue"
	"github.com/haneulpark/habit-diary/internal/stats"
)

const fallbackTemplate = "오늘 당신은 %s 등 다양한 일과를 멋지게 해냈어요.\n작은 습관 하나하나가 큰 변화를 만들어가고 있답니다.\n이 페이스를 유지하며 행복한 하루하루 보내길 응원할게요!"

// fallbackTaskCount is how many completed tasks the fallback summary mentions.
const fallbackTaskCount = 5

// JobEnqueuer publishes diary generation jobs.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// Trigger inspects a user's completion count for a date and claims diary
// generation tiers. A tier is claimed at most once per (user, date); the
// claim is persisted before the job is published, so a crash between the
// two loses the job but never duplicates it.
type Trigger struct {
	routineRepo database.RoutineRepositoryInterface
	diaryRepo   database.DiaryRepositoryInterface
	jobs        JobEnqueuer
	logger      *zap.Logger
}

// NewTrigger creates a diary trigger.
func NewTrigger(routineRepo database.RoutineRepositoryInterface, diaryRepo database.DiaryRepositoryInterface, jobs JobEnqueuer, logger *zap.Logger) *Trigger {
	return &Trigger{
		routineRepo: routineRepo,
		diaryRepo:   diaryRepo,
		jobs:        jobs,
		logger:      logger,
	}
}

// Check evaluates the completion count for the given user and date and
// claims every tier threshold the count has newly reached, enqueueing one
// generation job per claim. Tiers are climbed in ascending order: a count
// that jumps straight past 5 (bulk replace followed by a check) must still
// fire the tier-5 job, which is the one carrying the illustration. Returns
// the highest tier enqueued, or 0 when nothing new was triggered.
func (t *Trigger) Check(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	items, err := t.routineRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list routines: %w", err)
	}

	doneCount := len(stats.CompletedTasks(items, date))

	fired := 0
	for _, tier := range []int{models.DiaryTierFive, models.DiaryTierTen} {
		if doneCount < tier {
			break
		}

		claimed, err := t.diaryRepo.ClaimTier(ctx, userID, date, tier)
		if err != nil {
			return fired, fmt.Errorf("failed to claim diary tier: %w", err)
		}
		if !claimed {
			// This tier already generated for the date
			continue
		}

		job := queue.NewDiaryJob(userID, date, tier)
		if err := t.jobs.Enqueue(ctx, job); err != nil {
			t.logger.Error("diary_job_enqueue_failed",
				zap.String("user_id", userID.String()),
				zap.String("date", date),
				zap.Int("tier", tier),
				zap.Error(err))
			return fired, fmt.Errorf("failed to enqueue diary job: %w", err)
		}

		t.logger.Info("diary_job_enqueued",
			zap.String("user_id", userID.String()),
			zap.String("date", date),
			zap.Int("tier", tier),
			zap.Int("done_count", doneCount))
		fired = tier
	}

	return fired, nil
}

// FallbackSummary builds a canned encouragement from the first completed
// tasks of the day. Returns "" when fewer than five tasks are done, meaning
// no diary should be shown at all.
func FallbackSummary(completedTasks []string) string {
	if len(completedTasks) < fallbackTaskCount {
		return ""
	}
	return fmt.Sprintf(fallbackTemplate, strings.Join(completedTasks[:fallbackTaskCount], ", "))
}
