package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/insightpilot/insightpilot-api/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	GetUserByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error)
	UpdateUserBilling(ctx context.Context, userID string, b BillingMirror) error

	ListQuestionsByPrefix(ctx context.Context, prefix string) ([]models.Question, error)

	CreateIdea(ctx context.Context, idea *models.Idea) error
	InsertIdeaWithID(ctx context.Context, idea *models.Idea) error
	GetIdeaByID(ctx context.Context, id, userID string) (*models.Idea, error)
	ListIdeasByUser(ctx context.Context, userID string) ([]models.Idea, error)
	UpdateIdeaProgress(ctx context.Context, idea *models.Idea) error
	DeleteIdea(ctx context.Context, id, userID string) error

	UpsertAnswer(ctx context.Context, a *models.Answer) error
	ListAnswersByIdea(ctx context.Context, ideaID, userID string) ([]models.Answer, error)
	ListAnswersByQuestion(ctx context.Context, questionID, userID string) ([]models.Answer, error)

	CreateReport(ctx context.Context, r *models.Report) (inserted bool, err error)
	GetReportByIdea(ctx context.Context, ideaID, userID string) (*models.Report, error)
	GetReportByID(ctx context.Context, id, userID string) (*models.Report, error)
	RequeueReport(ctx context.Context, id string) error
	MarkReportProcessing(ctx context.Context, id string) error
	MarkReportFailed(ctx context.Context, id, errorMessage string) error
	CompleteReport(ctx context.Context, id string, content json.RawMessage) error

	CreateTrash(ctx context.Context, t *models.Trash) error
	GetTrashByID(ctx context.Context, id, userID string) (*models.Trash, error)
	ListTrashByUser(ctx context.Context, userID string) ([]models.Trash, error)
	DeleteTrash(ctx context.Context, id, userID string) error
	PurgeTrashOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	CreateArchive(ctx context.Context, a *models.Archive) error
	GetArchiveByID(ctx context.Context, id, userID string) (*models.Archive, error)
	ListArchiveByUser(ctx context.Context, userID string) ([]models.Archive, error)
	DeleteArchive(ctx context.Context, id, userID string) error

	CreatePersona(ctx context.Context, p *models.CustomerPersona) error
	GetPersonaByID(ctx context.Context, id, userID string) (*models.CustomerPersona, error)
	ListPersonasByUser(ctx context.Context, userID string, ideaID *string) ([]models.CustomerPersona, error)
	UpdatePersona(ctx context.Context, p *models.CustomerPersona) error
	DeletePersona(ctx context.Context, id, userID string) error

	RevokeToken(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error)

	Close() error
}

// BillingMirror is the set of provider-owned subscription fields mirrored onto
// a user row by webhook events.
type BillingMirror struct {
	StripeCustomerID     *string
	StripeSubscriptionID *string
	SubscriptionPlan     *string
	SubscriptionStatus   *string
	CurrentPeriodEnd     *time.Time
	TrialEnd             *time.Time
}

// QA pairs a question's text with the user's raw answer value for analysis.
type QA struct {
	Question string
	Answer   json.RawMessage
}

// SectionAnalysis is the structured result of analyzing one report section.
type SectionAnalysis struct {
	Insight         string   `json:"insight"`
	Recommendations []string `json:"recommendations"`
	Score           int      `json:"score"`
	Reasoning       string   `json:"reasoning,omitempty"`
}

// StrategicOverview is the cross-section result closing a report.
type StrategicOverview struct {
	Overview           string   `json:"overview"`
	StrategicNextSteps []string `json:"strategic_next_steps"`
	KeyStrengths       []string `json:"key_strengths"`
	KeyChallenges      []string `json:"key_challenges"`
}

// AnalysisProvider abstracts the outbound text-generation service. One
// conforming implementation exists per vendor; the orchestrator never sees a
// vendor's request or response shape.
type AnalysisProvider interface {
	GenerateSectionAnalysis(ctx context.Context, section string, maxScore int, items []QA) (*SectionAnalysis, error)
	GenerateStrategicOverview(ctx context.Context, ideaName string, sections []models.ReportSection) (*StrategicOverview, error)
	Close() error
}
