package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// fakeDB is an in-memory core.DbClient. Only the methods the services under
// test touch are implemented; anything else panics via the embedded nil.
type fakeDB struct {
	core.DbClient

	mu        sync.Mutex
	ideas     map[string]*models.Idea
	reports   map[string]*models.Report // keyed by report id
	answers   map[string]*models.Answer // keyed by questionID|ideaID
	questions []models.Question
	users     map[string]*models.User
	trash     map[string]*models.Trash
	archive   map[string]*models.Archive
	revoked   map[string]time.Time

	answersErr   error // forced failure for ListAnswersByIdea
	purgeCutoffs []time.Time
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		ideas:   make(map[string]*models.Idea),
		reports: make(map[string]*models.Report),
		answers: make(map[string]*models.Answer),
		users:   make(map[string]*models.User),
		trash:   make(map[string]*models.Trash),
		archive: make(map[string]*models.Archive),
		revoked: make(map[string]time.Time),
	}
}

func (f *fakeDB) addUser(user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
}

func (f *fakeDB) addIdea(idea *models.Idea) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *idea
	f.ideas[idea.ID] = &cp
}

func (f *fakeDB) addQuestion(quuid, text string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("q-%d", len(f.questions)+1)
	f.questions = append(f.questions, models.Question{
		ID: id, QUUID: quuid, Text: text, InputType: "text", Status: 1,
	})
	return id
}

func (f *fakeDB) addAnswer(questionID, ideaID, userID, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := questionID + "|" + ideaID
	f.answers[key] = &models.Answer{
		ID: "a-" + key, QuestionID: questionID, IdeaID: ideaID, UserID: userID,
		Value: json.RawMessage(value),
	}
}

func (f *fakeDB) reportByIdea(ideaID string) *models.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.IdeaID == ideaID {
			cp := *r
			return &cp
		}
	}
	return nil
}

func (f *fakeDB) GetIdeaByID(_ context.Context, id, userID string) (*models.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID {
		return nil, nil
	}
	cp := *idea
	return &cp, nil
}

func (f *fakeDB) CreateIdea(_ context.Context, idea *models.Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *idea
	f.ideas[idea.ID] = &cp
	return nil
}

func (f *fakeDB) InsertIdeaWithID(_ context.Context, idea *models.Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.ideas[idea.ID]; exists {
		return apperrors.ErrConflict
	}
	cp := *idea
	f.ideas[idea.ID] = &cp
	return nil
}

func (f *fakeDB) UpdateIdeaProgress(_ context.Context, idea *models.Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ideas[idea.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *idea
	f.ideas[idea.ID] = &cp
	return nil
}

func (f *fakeDB) DeleteIdea(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idea, ok := f.ideas[id]
	if !ok || idea.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(f.ideas, id)
	return nil
}

func (f *fakeDB) ListQuestionsByPrefix(_ context.Context, prefix string) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Question
	for _, q := range f.questions {
		if strings.HasPrefix(q.QUUID, prefix) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeDB) UpsertAnswer(_ context.Context, a *models.Answer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := a.QuestionID + "|" + a.IdeaID
	if existing, ok := f.answers[key]; ok {
		existing.Value = a.Value
		return nil
	}
	cp := *a
	f.answers[key] = &cp
	return nil
}

func (f *fakeDB) ListAnswersByIdea(_ context.Context, ideaID, userID string) ([]models.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answersErr != nil {
		return nil, f.answersErr
	}
	var out []models.Answer
	for _, a := range f.answers {
		if a.IdeaID == ideaID && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeDB) ListAnswersByQuestion(_ context.Context, questionID, userID string) ([]models.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Answer
	for _, a := range f.answers {
		if a.QuestionID == questionID && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeDB) CreateReport(_ context.Context, r *models.Report) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reports {
		if existing.IdeaID == r.IdeaID {
			return false, nil
		}
	}
	cp := *r
	cp.UpdatedAt = time.Now()
	f.reports[r.ID] = &cp
	return true, nil
}

func (f *fakeDB) GetReportByIdea(_ context.Context, ideaID, userID string) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.IdeaID == ideaID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetReportByID(_ context.Context, id, userID string) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeDB) setReport(id string, mutate func(r *models.Report)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	mutate(r)
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeDB) RequeueReport(_ context.Context, id string) error {
	return f.setReport(id, func(r *models.Report) {
		r.Status = models.ReportStatusQueued
		r.Content = nil
		r.ErrorMessage = ""
	})
}

func (f *fakeDB) MarkReportProcessing(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.setReport(id, func(r *models.Report) {
		r.Status = models.ReportStatusProcessing
	})
}

func (f *fakeDB) MarkReportFailed(ctx context.Context, id, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.setReport(id, func(r *models.Report) {
		r.Status = models.ReportStatusFailed
		r.ErrorMessage = msg
	})
}

func (f *fakeDB) CompleteReport(_ context.Context, id string, content json.RawMessage) error {
	return f.setReport(id, func(r *models.Report) {
		r.Status = models.ReportStatusCompleted
		r.Content = content
		r.ErrorMessage = ""
	})
}

func (f *fakeDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) SetStripeCustomerID(_ context.Context, userID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.StripeCustomerID = customerID
	return nil
}

func (f *fakeDB) GetUserByStripeCustomerID(_ context.Context, customerID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.StripeCustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetUserByStripeSubscriptionID(_ context.Context, subscriptionID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.StripeSubscriptionID == subscriptionID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) UpdateUserBilling(_ context.Context, userID string, b core.BillingMirror) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.StripeCustomerID = strOrEmpty(b.StripeCustomerID)
	u.StripeSubscriptionID = strOrEmpty(b.StripeSubscriptionID)
	u.SubscriptionPlan = strOrEmpty(b.SubscriptionPlan)
	u.SubscriptionStatus = strOrEmpty(b.SubscriptionStatus)
	u.CurrentPeriodEnd = b.CurrentPeriodEnd
	u.TrialEnd = b.TrialEnd
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (f *fakeDB) CreateTrash(_ context.Context, t *models.Trash) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	if cp.DeletedAt.IsZero() {
		cp.DeletedAt = time.Now()
	}
	f.trash[t.ID] = &cp
	return nil
}

func (f *fakeDB) GetTrashByID(_ context.Context, id, userID string) (*models.Trash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trash[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeDB) ListTrashByUser(_ context.Context, userID string) ([]models.Trash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Trash
	for _, t := range f.trash {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeDB) DeleteTrash(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trash[id]
	if !ok || t.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(f.trash, id)
	return nil
}

func (f *fakeDB) PurgeTrashOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgeCutoffs = append(f.purgeCutoffs, cutoff)
	var purged int64
	for id, t := range f.trash {
		if t.DeletedAt.Before(cutoff) {
			delete(f.trash, id)
			purged++
		}
	}
	return purged, nil
}

func (f *fakeDB) CreateArchive(_ context.Context, a *models.Archive) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.archive[a.ID] = &cp
	return nil
}

func (f *fakeDB) GetArchiveByID(_ context.Context, id, userID string) (*models.Archive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.archive[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeDB) ListArchiveByUser(_ context.Context, userID string) ([]models.Archive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Archive
	for _, a := range f.archive {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeDB) DeleteArchive(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.archive[id]
	if !ok || a.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(f.archive, id)
	return nil
}

func (f *fakeDB) RevokeToken(_ context.Context, hash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[hash] = expiresAt
	return nil
}

func (f *fakeDB) IsTokenRevoked(_ context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, ok := f.revoked[hash]
	return ok && exp.After(time.Now()), nil
}

// fakeProvider returns canned analyses. failSections and failOverview force
// vendor-side errors; panicSections force a panic inside the call.
type fakeProvider struct {
	mu            sync.Mutex
	failSections  map[string]bool
	panicSections map[string]bool
	failOverview  bool
	panicOverview bool
	sectionCalls  []string
}

func (p *fakeProvider) GenerateSectionAnalysis(_ context.Context, section string, maxScore int, items []core.QA) (*core.SectionAnalysis, error) {
	p.mu.Lock()
	p.sectionCalls = append(p.sectionCalls, section)
	p.mu.Unlock()

	if p.panicSections[section] {
		panic("provider exploded")
	}
	if p.failSections[section] {
		return nil, fmt.Errorf("vendor error for %s", section)
	}
	return &core.SectionAnalysis{
		Insight:         "insight for " + section,
		Recommendations: []string{"do a thing", "do another thing"},
		Score:           maxScore,
	}, nil
}

func (p *fakeProvider) GenerateStrategicOverview(_ context.Context, ideaName string, _ []models.ReportSection) (*core.StrategicOverview, error) {
	if p.panicOverview {
		panic("provider exploded")
	}
	if p.failOverview {
		return nil, fmt.Errorf("overview vendor error")
	}
	return &core.StrategicOverview{
		Overview:           "overview for " + ideaName,
		StrategicNextSteps: []string{"ship it"},
		KeyStrengths:       []string{"strong team"},
		KeyChallenges:      []string{"crowded market"},
	}, nil
}

func (p *fakeProvider) Close() error { return nil }
