package workers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/queue"
	"github.com/haneulpark/habit-diary/internal/services/ai"
	"github.com/haneulpark/habit-diary/internal/stats"
)

// focusFormat describes the highest rated actions of the day for the
// illustration prompt.
const focusFormat = "오늘 만족도가 가장 높았던 행동: %s"

// DiaryGenerator processes diary generation jobs. Each job is a single
// attempt: AI failures are logged and the diary record keeps whatever
// content was produced, never blocking the queue on a flaky provider.
type DiaryGenerator struct {
	aiProvider        ai.Provider
	routineRepo       database.RoutineRepositoryInterface
	diaryRepo         database.DiaryRepositoryInterface
	tier10Illustrated bool
}

// NewDiaryGenerator creates a new diary generator. tier10Illustrated enables
// illustration generation for tier 10 jobs; tier 5 jobs are always
// illustrated.
func NewDiaryGenerator(
	aiProvider ai.Provider,
	routineRepo database.RoutineRepositoryInterface,
	diaryRepo database.DiaryRepositoryInterface,
	tier10Illustrated bool,
) *DiaryGenerator {
	return &DiaryGenerator{
		aiProvider:        aiProvider,
		routineRepo:       routineRepo,
		diaryRepo:         diaryRepo,
		tier10Illustrated: tier10Illustrated,
	}
}

// ProcessDiaryJob generates diary content for one (user, date, tier).
func (g *DiaryGenerator) ProcessDiaryJob(ctx context.Context, job *queue.Job) error {
	routines, err := g.routineRepo.ListByUser(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to list routines: %w", err)
	}

	tasks := stats.CompletedTasks(routines, job.Date)
	if len(tasks) == 0 {
		// Nothing completed anymore (e.g. user unchecked everything); keep
		// the claimed tier but store no content.
		log.Printf("Diary job %s has no completed tasks for %s, skipping generation", job.ID, job.Date)
		return nil
	}

	summary, err := g.aiProvider.SummarizeDay(ctx, tasks)
	if err != nil {
		log.Printf("Diary summary failed for job %s: %v", job.ID, err)
		summary = ""
	}

	imageURL := ""
	if g.shouldIllustrate(job.Tier) {
		focus := illustrationFocus(routines, job.Date)
		imageURL, err = g.aiProvider.GenerateIllustration(ctx, focus, tasks)
		if err != nil {
			log.Printf("Diary illustration failed for job %s: %v", job.ID, err)
			imageURL = ""
		}
	}

	if err := g.diaryRepo.SaveContent(ctx, job.UserID, job.Date, summary, imageURL); err != nil {
		return fmt.Errorf("failed to save diary content: %w", err)
	}

	log.Printf("Generated diary for user %s date %s tier %d (summary=%d chars, image=%v)",
		job.UserID, job.Date, job.Tier, len(summary), imageURL != "")
	return nil
}

func (g *DiaryGenerator) shouldIllustrate(tier int) bool {
	if tier == models.DiaryTierFive {
		return true
	}
	return tier == models.DiaryTierTen && g.tier10Illustrated
}

// illustrationFocus names the completed tasks tied for the day's highest
// satisfaction rating.
func illustrationFocus(routines []models.Routine, date string) string {
	top := stats.TopRatedTasks(routines, date)
	if len(top) == 0 {
		return ""
	}
	return fmt.Sprintf(focusFormat, strings.Join(top, ", "))
}

// ProcessJob processes a job based on its type
func (g *DiaryGenerator) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	switch job.Type {
	case queue.JobTypeDiaryGeneration:
		if err := g.ProcessDiaryJob(ctx, job); err != nil {
			// Persistence failure: single attempt, send to DLQ
			if nackErr := msg.Nack(false); nackErr != nil {
				log.Printf("Failed to nack diary job: %v", nackErr)
			}
			return fmt.Errorf("diary generation failed: %w", err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack diary job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
