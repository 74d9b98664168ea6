package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightpilot/insightpilot-api/internal/services"
)

type AnswerHandler struct {
	questionnaire *services.QuestionnaireService
}

func NewAnswerHandler(questionnaire *services.QuestionnaireService) *AnswerHandler {
	return &AnswerHandler{questionnaire: questionnaire}
}

// ListByIdea returns every saved answer for an idea.
func (h *AnswerHandler) ListByIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	answers, err := h.questionnaire.ListAnswers(r.Context(), chi.URLParam(r, "ideaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answers)
}

// ListByQuestion returns the user's answers to one question across all their
// ideas, selected by the question_id query parameter.
func (h *AnswerHandler) ListByQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	questionID := r.URL.Query().Get("question_id")
	if questionID == "" {
		http.Error(w, "question_id is required", http.StatusBadRequest)
		return
	}

	answers, err := h.questionnaire.ListAnswersByQuestion(r.Context(), questionID, userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answers)
}
