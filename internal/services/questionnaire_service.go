package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// AnswerSubmission is one answered question inside a step submission.
type AnswerSubmission struct {
	QuestionID string          `json:"question_id"`
	Value      json.RawMessage `json:"answer"`
}

// QuestionnaireService serves questionnaire steps and records answers,
// advancing the idea's progress as steps complete.
type QuestionnaireService struct {
	db        core.DbClient
	finalStep int
}

func NewQuestionnaireService(db core.DbClient) *QuestionnaireService {
	return &QuestionnaireService{db: db, finalStep: len(DefaultSections())}
}

func (s *QuestionnaireService) FinalStep() int { return s.finalStep }

func (s *QuestionnaireService) GetQuestionsForStep(ctx context.Context, step int) ([]models.Question, error) {
	if step < 1 || step > s.finalStep {
		return nil, fmt.Errorf("%w: step %d out of range", apperrors.ErrNotFound, step)
	}
	return s.db.ListQuestionsByPrefix(ctx, fmt.Sprintf("step_%d_", step))
}

// SubmitStep upserts the step's answers and advances progress. Resubmitting a
// step overwrites its answers without losing progress: completed steps only
// accumulate and current_step never moves backwards.
func (s *QuestionnaireService) SubmitStep(ctx context.Context, userID, ideaID string, step int, answers []AnswerSubmission) (*models.Idea, error) {
	if step < 1 || step > s.finalStep {
		return nil, fmt.Errorf("%w: step %d out of range", apperrors.ErrNotFound, step)
	}

	idea, err := s.db.GetIdeaByID(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperrors.ErrNotFound
	}

	for _, a := range answers {
		if a.QuestionID == "" || len(a.Value) == 0 {
			continue
		}
		ans := &models.Answer{
			ID:         uuid.NewString(),
			QuestionID: a.QuestionID,
			IdeaID:     ideaID,
			UserID:     userID,
			Value:      a.Value,
		}
		if err := s.db.UpsertAnswer(ctx, ans); err != nil {
			return nil, fmt.Errorf("save answer for question %s: %w", a.QuestionID, err)
		}
	}

	idea.CompletedSteps = addStep(idea.CompletedSteps, step)

	maxCompleted := 0
	for _, done := range idea.CompletedSteps {
		if done > maxCompleted {
			maxCompleted = done
		}
	}
	next := maxCompleted + 1
	if next > s.finalStep {
		next = s.finalStep
	}
	if next > idea.CurrentStep {
		idea.CurrentStep = next
	}
	if step == s.finalStep {
		idea.IsComplete = true
	}

	if err := s.db.UpdateIdeaProgress(ctx, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

// GetProgress returns the idea's questionnaire state.
func (s *QuestionnaireService) GetProgress(ctx context.Context, ideaID, userID string) (*models.Idea, error) {
	idea, err := s.db.GetIdeaByID(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperrors.ErrNotFound
	}
	return idea, nil
}

// ListAnswers returns all saved answers for an idea.
func (s *QuestionnaireService) ListAnswers(ctx context.Context, ideaID, userID string) ([]models.Answer, error) {
	return s.db.ListAnswersByIdea(ctx, ideaID, userID)
}

// ListAnswersByQuestion returns a user's answers to one question across all
// their ideas.
func (s *QuestionnaireService) ListAnswersByQuestion(ctx context.Context, questionID, userID string) ([]models.Answer, error) {
	return s.db.ListAnswersByQuestion(ctx, questionID, userID)
}

func addStep(steps []int, step int) []int {
	for _, existing := range steps {
		if existing == step {
			return steps
		}
	}
	return append(steps, step)
}
