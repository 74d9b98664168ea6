package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/insightpilot/insightpilot-api/internal/services"
)

type IdeaHandler struct {
	ideas         *services.IdeaService
	questionnaire *services.QuestionnaireService
}

func NewIdeaHandler(ideas *services.IdeaService, questionnaire *services.QuestionnaireService) *IdeaHandler {
	return &IdeaHandler{ideas: ideas, questionnaire: questionnaire}
}

type createIdeaRequest struct {
	IdeaName        string `json:"idea_name"`
	IdeaDescription string `json:"idea_description"`
	Pin             *int   `json:"pin"`
}

func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}
	if req.IdeaName == "" {
		http.Error(w, "idea_name is required", 400)
		return
	}

	idea, err := h.ideas.Create(ctx, userID, req.IdeaName, req.IdeaDescription, req.Pin)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, idea)
}

func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ideas, err := h.ideas.List(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ideas)
}

func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	idea, err := h.ideas.Get(r.Context(), chi.URLParam(r, "ideaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

// GetQuestions serves the questionnaire for one step.
func (h *IdeaHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		http.Error(w, "invalid step", 400)
		return
	}

	questions, err := h.questionnaire.GetQuestionsForStep(r.Context(), step)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"step":      step,
		"questions": questions,
	})
}

type submitAnswersRequest struct {
	Answers []services.AnswerSubmission `json:"answers"`
}

// SubmitAnswers saves a step's answers and returns the updated progress.
func (h *IdeaHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ideaID := chi.URLParam(r, "ideaID")
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		http.Error(w, "invalid step", 400)
		return
	}

	var req submitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}
	if len(req.Answers) == 0 {
		http.Error(w, "answers are required", 400)
		return
	}

	idea, err := h.questionnaire.SubmitStep(ctx, userID, ideaID, step, req.Answers)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

func (h *IdeaHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	idea, err := h.questionnaire.GetProgress(r.Context(), chi.URLParam(r, "ideaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"idea_id":         idea.ID,
		"current_step":    idea.CurrentStep,
		"completed_steps": idea.CompletedSteps,
		"is_complete":     idea.IsComplete,
		"total_steps":     h.questionnaire.FinalStep(),
	})
}
