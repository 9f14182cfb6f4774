package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/export"
	"github.com/haneulpark/habit-diary/internal/middleware"
	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/validation"
)

const (
	// MaxTaskLength is the maximum length for a task label
	MaxTaskLength = 1000
	// MaxBulkRoutines caps a bulk replace payload
	MaxBulkRoutines = 500
)

// DiaryTrigger checks whether a completion pushed a date over a diary tier
// threshold. Satisfied by *diary.Trigger.
type DiaryTrigger interface {
	Check(ctx context.Context, userID uuid.UUID, date string) (int, error)
}

// RoutineHandler handles routine CRUD, completion and the CSV export
type RoutineHandler struct {
	routineRepo database.RoutineRepositoryInterface
	trigger     DiaryTrigger
	logger      *zap.Logger
}

// NewRoutineHandler creates a new routine handler
func NewRoutineHandler(routineRepo database.RoutineRepositoryInterface, trigger DiaryTrigger, logger *zap.Logger) *RoutineHandler {
	return &RoutineHandler{routineRepo: routineRepo, trigger: trigger, logger: logger}
}

// RegisterRoutes registers routine routes on the given router
// The router should already have the /routines prefix
func (h *RoutineHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListRoutines).Methods("GET")
	r.HandleFunc("", h.CreateRoutine).Methods("POST")
	r.HandleFunc("", h.ReplaceRoutines).Methods("PUT")
	r.HandleFunc("/export", h.ExportCSV).Methods("GET")
	r.HandleFunc("/{id}/done", h.ToggleDone).Methods("POST")
	r.HandleFunc("/{id}/rating", h.SetRating).Methods("POST")
	r.HandleFunc("/{id}/habits", h.InsertHabit).Methods("POST")
}

// CreateRoutineRequest represents a create routine request
type CreateRoutineRequest struct {
	Date  string `json:"date" validate:"required,iso_date"`
	Start string `json:"start" validate:"max=20"`
	End   string `json:"end" validate:"max=20"`
	Task  string `json:"task" validate:"required,min=1,max=1000"`
}

// BulkRoutineEntry is one entry of a bulk replace payload
type BulkRoutineEntry struct {
	Date    string `json:"date" validate:"required,iso_date"`
	Start   string `json:"start" validate:"max=20"`
	End     string `json:"end" validate:"max=20"`
	Task    string `json:"task" validate:"required,min=1,max=1000"`
	Done    bool   `json:"done"`
	Rating  int    `json:"rating" validate:"min=0,max=10"`
	IsHabit bool   `json:"is_habit"`
}

// SetRatingRequest represents a satisfaction rating request
type SetRatingRequest struct {
	Rating int `json:"rating" validate:"min=0,max=10"`
}

// InsertHabitRequest represents an accepted habit suggestion
type InsertHabitRequest struct {
	Task string `json:"task" validate:"required,min=1,max=1000"`
}

// ToggleDoneResponse carries the toggled routine and the diary tier the
// completion triggered, if any.
type ToggleDoneResponse struct {
	Routine       *models.Routine `json:"routine"`
	TriggeredTier int             `json:"triggered_tier,omitempty"`
}

// ListRoutines lists the user's routines in position order, optionally
// filtered to one date with ?date=YYYY-MM-DD.
func (h *RoutineHandler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	date := r.URL.Query().Get("date")
	if date != "" {
		if err := validation.ValidateISODate(date); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	ctx := r.Context()
	routines, err := h.routineRepo.ListByUser(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve routines")
		return
	}

	if date != "" {
		filtered := make([]models.Routine, 0, len(routines))
		for _, routine := range routines {
			if routine.Date == date {
				filtered = append(filtered, routine)
			}
		}
		routines = filtered
	}

	if routines == nil {
		routines = []models.Routine{}
	}
	respondJSON(w, http.StatusOK, routines)
}

// CreateRoutine creates a new routine
func (h *RoutineHandler) CreateRoutine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateRoutineRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	task := validation.SanitizeText(req.Task)
	if task == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Task is required and cannot be empty after sanitization")
		return
	}

	ctx := r.Context()
	routine := &models.Routine{
		ID:     uuid.New(),
		UserID: user.ID,
		Date:   req.Date,
		Start:  req.Start,
		End:    req.End,
		Task:   task,
	}

	if err := h.routineRepo.Create(ctx, routine); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create routine")
		return
	}

	respondJSON(w, http.StatusCreated, routine)
}

// ReplaceRoutines replaces the user's whole routine set in payload order.
// Positions are reassigned from the slice order.
func (h *RoutineHandler) ReplaceRoutines(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var entries []BulkRoutineEntry
	if err := decodeBody(w, r, &entries); err != nil {
		return
	}
	if len(entries) > MaxBulkRoutines {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Payload exceeds maximum of %d routines", MaxBulkRoutines))
		return
	}

	routines := make([]models.Routine, 0, len(entries))
	for i, entry := range entries {
		if !validateStruct(w, entry) {
			return
		}
		task := validation.SanitizeText(entry.Task)
		if task == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Entry %d has an empty task", i))
			return
		}
		routines = append(routines, models.Routine{
			ID:      uuid.New(),
			UserID:  user.ID,
			Date:    entry.Date,
			Start:   entry.Start,
			End:     entry.End,
			Task:    task,
			Done:    entry.Done,
			Rating:  models.ClampRating(entry.Rating),
			IsHabit: entry.IsHabit,
		})
	}

	ctx := r.Context()
	if err := h.routineRepo.ReplaceAll(ctx, user.ID, routines); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to replace routines")
		return
	}

	respondJSON(w, http.StatusOK, routines)
}

// ToggleDone flips a routine's completion state. Unchecking clears the
// rating. Completions feed the diary trigger.
func (h *RoutineHandler) ToggleDone(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	routine, ok := h.ownedRoutine(w, r, user.ID)
	if !ok {
		return
	}

	ctx := r.Context()
	updated, err := h.routineRepo.ToggleDone(ctx, routine.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update routine")
		return
	}

	resp := ToggleDoneResponse{Routine: updated}
	if updated.Done && h.trigger != nil {
		tier, err := h.trigger.Check(ctx, user.ID, updated.Date)
		if err != nil {
			// Diary generation is best-effort, the toggle itself succeeded
			h.logger.Error("diary_trigger_failed",
				zap.String("user_id", user.ID.String()),
				zap.String("date", updated.Date),
				zap.Error(err))
		} else {
			resp.TriggeredTier = tier
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// SetRating records a satisfaction score on a completed routine
func (h *RoutineHandler) SetRating(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	routine, ok := h.ownedRoutine(w, r, user.ID)
	if !ok {
		return
	}

	var req SetRatingRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}
	if err := validation.ValidateRating(req.Rating); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	ctx := r.Context()
	updated, err := h.routineRepo.SetRating(ctx, routine.ID, req.Rating)
	if err != nil {
		if errors.Is(err, database.ErrNotCompleted) {
			respondJSONError(w, http.StatusConflict, "Conflict", "Only completed routines can be rated")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to set rating")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// InsertHabit inserts an accepted habit suggestion directly below the given
// routine, shifting later positions down.
func (h *RoutineHandler) InsertHabit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	routine, ok := h.ownedRoutine(w, r, user.ID)
	if !ok {
		return
	}

	var req InsertHabitRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	task := validation.SanitizeText(req.Task)
	if task == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Task is required and cannot be empty after sanitization")
		return
	}

	ctx := r.Context()
	habit := &models.Routine{
		ID:      uuid.New(),
		UserID:  user.ID,
		Date:    routine.Date,
		Start:   models.HabitStartSentinel,
		Task:    task,
		IsHabit: true,
	}

	if err := h.routineRepo.InsertAfter(ctx, user.ID, routine.ID, habit); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to insert habit")
		return
	}

	respondJSON(w, http.StatusCreated, habit)
}

// ExportCSV streams the user's routines as a UTF-8 CSV download
func (h *RoutineHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()
	routines, err := h.routineRepo.ListByUser(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve routines")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="routines.csv"`)

	if err := export.WriteCSV(w, routines); err != nil {
		// Headers are out already, log and give up on this response
		h.logger.Error("csv_export_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}

// ownedRoutine parses {id}, loads the routine and verifies ownership,
// writing the error response itself when any step fails.
func (h *RoutineHandler) ownedRoutine(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Routine, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid routine ID")
		return nil, false
	}

	routine, err := h.routineRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Routine not found")
		return nil, false
	}

	if routine.UserID != userID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Routine does not belong to user")
		return nil, false
	}

	return routine, true
}

// decodeBody decodes a JSON body, writing the error response on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return err
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return err
	}
	return nil
}

// validateStruct runs struct validation, writing the error response on
// failure.
func validateStruct(w http.ResponseWriter, v any) bool {
	if err := validation.Validate.Struct(v); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return false
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}
	return true
}
