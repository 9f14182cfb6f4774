package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/middleware"
	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/stats"
	"github.com/haneulpark/habit-diary/internal/validation"
)

// StatsHandler serves the weekly, monthly and single-day statistics views
type StatsHandler struct {
	routineRepo database.RoutineRepositoryInterface
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(routineRepo database.RoutineRepositoryInterface) *StatsHandler {
	return &StatsHandler{routineRepo: routineRepo}
}

// RegisterRoutes registers stats routes on the given router
// The router should already have the /stats prefix
func (h *StatsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/weekly", h.Weekly).Methods("GET")
	r.HandleFunc("/monthly", h.Monthly).Methods("GET")
	r.HandleFunc("/day", h.Day).Methods("GET")
}

// WeeklyResponse is the seven-bucket weekly view plus its date span
type WeeklyResponse struct {
	WeekStart string           `json:"week_start"`
	WeekEnd   string           `json:"week_end"`
	Days      []stats.DayBucket `json:"days"`
}

// MonthlyResponse lists the month's days matching one weekday label
type MonthlyResponse struct {
	Month string           `json:"month"`
	Day   string           `json:"day"`
	Days  []stats.MonthDay `json:"days"`
}

// DayResponse is the unsplit snapshot for one date
type DayResponse struct {
	Date  string     `json:"date"`
	Day   string     `json:"day"`
	Stats stats.Pair `json:"stats"`
}

// Weekly returns per-day statistics for the Monday..Sunday week containing
// ?date= (default today).
func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ref, ok := refDate(w, r)
	if !ok {
		return
	}

	routines, err := h.routineRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve routines")
		return
	}

	start, end := stats.WeekRange(ref)
	respondJSON(w, http.StatusOK, WeeklyResponse{
		WeekStart: start.Format(models.DateFormat),
		WeekEnd:   end.Format(models.DateFormat),
		Days:      stats.WeeklySummary(routines, ref),
	})
}

// Monthly returns the statistics for every day in ?date='s month whose
// weekday label matches ?day= (월..일).
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ref, ok := refDate(w, r)
	if !ok {
		return
	}

	day := r.URL.Query().Get("day")
	if err := validation.ValidateDayLabel(day); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	routines, err := h.routineRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve routines")
		return
	}

	respondJSON(w, http.StatusOK, MonthlyResponse{
		Month: ref.Format("2006-01"),
		Day:   day,
		Days:  stats.MonthlyByWeekday(routines, ref, day),
	})
}

// Day returns the snapshot statistics for a single date
func (h *StatsHandler) Day(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	date := r.URL.Query().Get("date")
	if err := validation.ValidateISODate(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	routines, err := h.routineRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve routines")
		return
	}

	respondJSON(w, http.StatusOK, DayResponse{
		Date:  date,
		Day:   models.DayLabel(date),
		Stats: stats.DaySnapshot(routines, date),
	})
}

// refDate parses the optional ?date= reference, defaulting to today. Writes
// the error response on a malformed value.
func refDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now(), true
	}
	ref, err := time.Parse(models.DateFormat, raw)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid date (must be YYYY-MM-DD)")
		return time.Time{}, false
	}
	return ref, true
}
