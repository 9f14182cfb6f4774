package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/haneulpark/habit-diary/internal/middleware"
	"github.com/haneulpark/habit-diary/internal/services/ai"
	"github.com/haneulpark/habit-diary/internal/validation"
)

// SuggestionHandler serves habit suggestions for a gap between two tasks
type SuggestionHandler struct {
	aiProvider ai.Provider
	logger     *zap.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(aiProvider ai.Provider, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{aiProvider: aiProvider, logger: logger}
}

// RegisterRoutes registers suggestion routes on the given router
func (h *SuggestionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/suggestions", h.Suggest).Methods("POST")
}

// SuggestRequest names the tasks around the gap. Either may be omitted.
type SuggestRequest struct {
	PrevTask *string `json:"prev_task,omitempty" validate:"omitempty,max=1000"`
	NextTask *string `json:"next_task,omitempty" validate:"omitempty,max=1000"`
}

// SuggestResponse carries 3 to 5 habit suggestions. Fallback is set when the
// list came from the built-in pool instead of the AI provider.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
	Fallback    bool     `json:"fallback"`
}

// Suggest returns habit suggestions bridging the previous and next task
func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req SuggestRequest
	if err := decodeBody(w, r, &req); err != nil {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	if req.PrevTask != nil {
		sanitized := validation.SanitizeText(*req.PrevTask)
		req.PrevTask = &sanitized
	}
	if req.NextTask != nil {
		sanitized := validation.SanitizeText(*req.NextTask)
		req.NextTask = &sanitized
	}

	suggestions, err := h.aiProvider.SuggestHabits(r.Context(), req.PrevTask, req.NextTask)
	if err != nil {
		// The provider already substituted fallback suggestions
		h.logger.Warn("suggestion_fallback",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	// Without any context left after sanitization the provider answers from
	// the built-in pool without calling the API, even when both tasks were
	// present but empty
	hasContext := (req.PrevTask != nil && *req.PrevTask != "") ||
		(req.NextTask != nil && *req.NextTask != "")
	fromPool := err != nil || !hasContext

	respondJSON(w, http.StatusOK, SuggestResponse{
		Suggestions: suggestions,
		Fallback:    fromPool,
	})
}
