package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

func freshIdea() *models.Idea {
	return &models.Idea{
		ID:             testIdea,
		UserID:         testUser,
		IdeaName:       "Meal Prep Subscription",
		CurrentStep:    1,
		CompletedSteps: []int{},
	}
}

func TestSubmitStepAdvancesProgress(t *testing.T) {
	db := newFakeDB()
	db.addIdea(freshIdea())
	qID := db.addQuestion("step_1_primary_customer", "Who is your primary target customer?")
	svc := NewQuestionnaireService(db)

	idea, err := svc.SubmitStep(context.Background(), testUser, testIdea, 1, []AnswerSubmission{
		{QuestionID: qID, Value: json.RawMessage(`"busy professionals"`)},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, idea.CompletedSteps)
	assert.Equal(t, 2, idea.CurrentStep)
	assert.False(t, idea.IsComplete)
}

func TestSubmitStepOverwritesAnswer(t *testing.T) {
	db := newFakeDB()
	db.addIdea(freshIdea())
	qID := db.addQuestion("step_1_primary_customer", "Who is your primary target customer?")
	svc := NewQuestionnaireService(db)
	ctx := context.Background()

	_, err := svc.SubmitStep(ctx, testUser, testIdea, 1, []AnswerSubmission{
		{QuestionID: qID, Value: json.RawMessage(`"first answer"`)},
	})
	require.NoError(t, err)
	_, err = svc.SubmitStep(ctx, testUser, testIdea, 1, []AnswerSubmission{
		{QuestionID: qID, Value: json.RawMessage(`"second answer"`)},
	})
	require.NoError(t, err)

	answers, err := svc.ListAnswers(ctx, testIdea, testUser)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.JSONEq(t, `"second answer"`, string(answers[0].Value))
}

func TestResubmittingEarlierStepKeepsProgress(t *testing.T) {
	db := newFakeDB()
	idea := freshIdea()
	idea.CurrentStep = 6
	idea.CompletedSteps = []int{1, 2, 3, 4, 5}
	db.addIdea(idea)
	qID := db.addQuestion("step_3_cost_of_inaction", "What does inaction cost?")
	svc := NewQuestionnaireService(db)

	updated, err := svc.SubmitStep(context.Background(), testUser, testIdea, 3, []AnswerSubmission{
		{QuestionID: qID, Value: json.RawMessage(`"a lot"`)},
	})
	require.NoError(t, err)

	// current_step never moves backwards and step 3 is not duplicated.
	assert.Equal(t, 6, updated.CurrentStep)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, updated.CompletedSteps)
}

func TestFinalStepLatchesCompletion(t *testing.T) {
	db := newFakeDB()
	idea := freshIdea()
	idea.CurrentStep = 11
	idea.CompletedSteps = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	db.addIdea(idea)
	qID := db.addQuestion("step_11_timeline", "How long until a first version?")
	svc := NewQuestionnaireService(db)

	updated, err := svc.SubmitStep(context.Background(), testUser, testIdea, 11, []AnswerSubmission{
		{QuestionID: qID, Value: json.RawMessage(`"three months"`)},
	})
	require.NoError(t, err)

	assert.True(t, updated.IsComplete)
	assert.Equal(t, 11, updated.CurrentStep)
	assert.Contains(t, updated.CompletedSteps, 11)
}

func TestSubmitStepOutOfRange(t *testing.T) {
	db := newFakeDB()
	db.addIdea(freshIdea())
	svc := NewQuestionnaireService(db)

	_, err := svc.SubmitStep(context.Background(), testUser, testIdea, 12, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.SubmitStep(context.Background(), testUser, testIdea, 0, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSubmitStepUnknownIdea(t *testing.T) {
	db := newFakeDB()
	svc := NewQuestionnaireService(db)

	_, err := svc.SubmitStep(context.Background(), testUser, "missing", 1, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetQuestionsForStep(t *testing.T) {
	db := newFakeDB()
	db.addQuestion("step_2_core_problem", "What problem do you solve?")
	db.addQuestion("step_2_problem_frequency", "How often does it occur?")
	db.addQuestion("step_3_urgency", "How urgent is it?")
	svc := NewQuestionnaireService(db)

	questions, err := svc.GetQuestionsForStep(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	_, err = svc.GetQuestionsForStep(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListAnswersByQuestionFiltersAcrossIdeas(t *testing.T) {
	db := newFakeDB()
	qID := db.addQuestion("step_1_primary_customer", "Who is your primary target customer?")
	other := db.addQuestion("step_1_problem", "What problem are you solving?")
	db.addAnswer(qID, "idea-1", testUser, `"busy parents"`)
	db.addAnswer(qID, "idea-2", testUser, `"college students"`)
	db.addAnswer(other, "idea-1", testUser, `"meal planning"`)
	db.addAnswer(qID, "idea-3", "someone-else", `"commuters"`)
	svc := NewQuestionnaireService(db)

	answers, err := svc.ListAnswersByQuestion(context.Background(), qID, testUser)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	for _, a := range answers {
		assert.Equal(t, qID, a.QuestionID)
		assert.Equal(t, testUser, a.UserID)
	}
}
