package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/diary"
	"github.com/haneulpark/habit-diary/internal/middleware"
	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/stats"
	"github.com/haneulpark/habit-diary/internal/validation"
)

// DiaryHandler serves generated diary pages
type DiaryHandler struct {
	diaryRepo   database.DiaryRepositoryInterface
	routineRepo database.RoutineRepositoryInterface
	trigger     DiaryTrigger
	logger      *zap.Logger
}

// NewDiaryHandler creates a new diary handler
func NewDiaryHandler(diaryRepo database.DiaryRepositoryInterface, routineRepo database.RoutineRepositoryInterface, trigger DiaryTrigger, logger *zap.Logger) *DiaryHandler {
	return &DiaryHandler{diaryRepo: diaryRepo, routineRepo: routineRepo, trigger: trigger, logger: logger}
}

// RegisterRoutes registers diary routes on the given router
// The router should already have the /diaries prefix
func (h *DiaryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListDiaries).Methods("GET")
	r.HandleFunc("/{date}", h.GetDiary).Methods("GET")
	r.HandleFunc("/{date}/check", h.CheckDiary).Methods("POST")
}

// DiaryResponse is one diary page. Fallback marks a summary synthesized
// locally because generated content was not (yet) available.
type DiaryResponse struct {
	Date          string `json:"date"`
	Day           string `json:"day"`
	Summary       string `json:"summary"`
	ImageURL      string `json:"image_url,omitempty"`
	GeneratedTier int    `json:"generated_tier"`
	Fallback      bool   `json:"fallback"`
}

// CheckDiaryResponse reports the tier a manual check enqueued, 0 for none
type CheckDiaryResponse struct {
	Date          string `json:"date"`
	TriggeredTier int    `json:"triggered_tier"`
}

// ListDiaries lists the user's diary records in date order
func (h *DiaryHandler) ListDiaries(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	diaries, err := h.diaryRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve diaries")
		return
	}

	if diaries == nil {
		diaries = []models.Diary{}
	}
	respondJSON(w, http.StatusOK, diaries)
}

// GetDiary returns the diary page for one date. When the generated summary
// is missing but the date qualifies, a local fallback summary is served so
// the page never renders empty.
func (h *DiaryHandler) GetDiary(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	date := mux.Vars(r)["date"]
	if err := validation.ValidateISODate(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	ctx := r.Context()
	record, err := h.diaryRepo.GetByUserAndDate(ctx, user.ID, date)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve diary")
		return
	}

	resp := DiaryResponse{Date: date, Day: models.DayLabel(date)}
	if record != nil {
		resp.Summary = record.Summary
		resp.ImageURL = record.ImageURL
		resp.GeneratedTier = record.GeneratedTier
	}

	if resp.Summary == "" {
		routines, err := h.routineRepo.ListByUser(ctx, user.ID)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve routines")
			return
		}
		fallback := diary.FallbackSummary(stats.CompletedTasks(routines, date))
		if fallback == "" {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No diary for this date")
			return
		}
		resp.Summary = fallback
		resp.Fallback = true
	}

	respondJSON(w, http.StatusOK, resp)
}

// CheckDiary re-runs the tier check for a date, catching completions whose
// trigger was missed (e.g. enqueue failed after the toggle).
func (h *DiaryHandler) CheckDiary(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	date := mux.Vars(r)["date"]
	if err := validation.ValidateISODate(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	tier, err := h.trigger.Check(r.Context(), user.ID, date)
	if err != nil {
		h.logger.Error("diary_check_failed",
			zap.String("user_id", user.ID.String()),
			zap.String("date", date),
			zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to check diary")
		return
	}

	respondJSON(w, http.StatusOK, CheckDiaryResponse{Date: date, TriggeredTier: tier})
}
