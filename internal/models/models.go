package models

import (
	"encoding/json"
	"time"
)

// User represents an authenticated user of the system. The stripe_* and
// subscription_* columns mirror the billing provider's state and are kept in
// sync by webhook events, not by local writes.
type User struct {
	ID                   string     `db:"id" json:"id"`
	Email                string     `db:"email" json:"email"`
	FirstName            string     `db:"first_name" json:"first_name"`
	LastName             string     `db:"last_name" json:"last_name"`
	PasswordHash         string     `db:"password_hash" json:"-"`
	StripeCustomerID     string     `db:"stripe_customer_id" json:"-"`
	StripeSubscriptionID string     `db:"stripe_subscription_id" json:"-"`
	SubscriptionPlan     string     `db:"subscription_plan" json:"subscription_plan,omitempty"`
	SubscriptionStatus   string     `db:"subscription_status" json:"subscription_status,omitempty"`
	CurrentPeriodEnd     *time.Time `db:"current_period_end" json:"current_period_end,omitempty"`
	TrialEnd             *time.Time `db:"trial_end" json:"trial_end,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// Question is one questionnaire entry. QUUID namespaces questions by step,
// e.g. "step_3_problem_urgency".
type Question struct {
	ID        string          `db:"id" json:"id"`
	QUUID     string          `db:"q_uuid" json:"q_uuid"`
	Text      string          `db:"text" json:"text"`
	Body      string          `db:"body" json:"body,omitempty"`
	Remarks   string          `db:"remarks" json:"remarks,omitempty"`
	InputType string          `db:"input_type" json:"input_type"`
	Range     json.RawMessage `db:"range" json:"range,omitempty"`
	Status    int             `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Idea is a user's business-idea workspace tracking questionnaire progress.
type Idea struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	IdeaName        string    `db:"idea_name" json:"idea_name"`
	IdeaDescription string    `db:"idea_description" json:"idea_description,omitempty"`
	Pin             *int      `db:"pin" json:"pin,omitempty"`
	CurrentStep     int       `db:"current_step" json:"current_step"`
	IsComplete      bool      `db:"is_complete" json:"is_complete"`
	CompletedSteps  []int     `db:"completed_steps" json:"completed_steps"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Answer holds one answer value per (question, idea) pair. Value carries the
// raw client payload: free text, single choice or multiple choice.
type Answer struct {
	ID         string          `db:"id" json:"id"`
	QuestionID string          `db:"question_id" json:"question_id"`
	IdeaID     string          `db:"idea_id" json:"idea_id"`
	UserID     string          `db:"user_id" json:"user_id"`
	Value      json.RawMessage `db:"value" json:"answer"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// Report lifecycle states.
const (
	ReportStatusQueued     = "queued"
	ReportStatusProcessing = "processing"
	ReportStatusCompleted  = "completed"
	ReportStatusFailed     = "failed"
)

// Report is the one-per-idea validation report record.
type Report struct {
	ID           string          `db:"id" json:"report_id"`
	IdeaID       string          `db:"idea_id" json:"idea_id"`
	UserID       string          `db:"user_id" json:"-"`
	Status       string          `db:"status" json:"status"`
	Content      json.RawMessage `db:"content" json:"content,omitempty"`
	ErrorMessage string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// ReportSection is one scored category inside a completed report.
type ReportSection struct {
	Category        string   `json:"category"`
	Score           int      `json:"score"`
	MaxScore        int      `json:"max_score"`
	Insight         string   `json:"insight"`
	Recommendations []string `json:"recommendations"`
}

// ReportContent is the full document persisted on a completed report.
type ReportContent struct {
	IdeaName           string          `json:"idea_name"`
	OverallScore       int             `json:"overall_score"`
	MaxScore           int             `json:"max_score"`
	ReportOverview     string          `json:"report_overview"`
	Sections           []ReportSection `json:"sections"`
	StrategicNextSteps []string        `json:"strategic_next_steps"`
	KeyStrengths       []string        `json:"key_strengths,omitempty"`
	KeyChallenges      []string        `json:"key_challenges,omitempty"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// CustomerPersona is a user-owned customer profile, optionally linked to an
// idea.
type CustomerPersona struct {
	ID                             string    `db:"id" json:"id"`
	UserID                         string    `db:"user_id" json:"user_id"`
	IdeaID                         *string   `db:"idea_id" json:"idea_id,omitempty"`
	PersonaName                    string    `db:"persona_name" json:"persona_name"`
	Tag                            string    `db:"tag" json:"tag,omitempty"`
	AgeRange                       string    `db:"age_range" json:"age_range,omitempty"`
	GenderIdentity                 string    `db:"gender_identity" json:"gender_identity,omitempty"`
	EducationLevel                 string    `db:"education_level" json:"education_level,omitempty"`
	LocationRegion                 string    `db:"location_region" json:"location_region,omitempty"`
	RoleOccupation                 string    `db:"role_occupation" json:"role_occupation,omitempty"`
	CompanySize                    string    `db:"company_size" json:"company_size,omitempty"`
	IndustryTypes                  []string  `db:"industry_types" json:"industry_types,omitempty"`
	AnnualIncome                   string    `db:"annual_income" json:"annual_income,omitempty"`
	WorkStyles                     []string  `db:"work_styles" json:"work_styles,omitempty"`
	TechProficiency                *int      `db:"tech_proficiency" json:"tech_proficiency,omitempty"`
	Goals                          []string  `db:"goals" json:"goals,omitempty"`
	Challenges                     []string  `db:"challenges" json:"challenges,omitempty"`
	ToolsUsed                      []string  `db:"tools_used" json:"tools_used,omitempty"`
	DecisionFactors                []string  `db:"decision_factors" json:"decision_factors,omitempty"`
	InfoSources                    []string  `db:"info_sources" json:"info_sources,omitempty"`
	Emotions                       []string  `db:"emotions" json:"emotions,omitempty"`
	PreferredFeatures              []string  `db:"preferred_features" json:"preferred_features,omitempty"`
	PreferredCommunicationChannels []string  `db:"preferred_communication_channels" json:"preferred_communication_channels,omitempty"`
	UserJourneyStage               string    `db:"user_journey_stage" json:"user_journey_stage,omitempty"`
	PainPoints                     []string  `db:"pain_points" json:"pain_points,omitempty"`
	Motivations                    []string  `db:"motivations" json:"motivations,omitempty"`
	CreatedAt                      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                      time.Time `db:"updated_at" json:"updated_at"`
}

// Trash holds a soft-deleted idea until it is restored or purged.
type Trash struct {
	ID              string    `db:"id" json:"id"`
	IdeaID          string    `db:"idea_id" json:"idea_id"`
	IdeaName        string    `db:"idea_name" json:"idea_name"`
	IdeaDescription string    `db:"idea_description" json:"idea_description,omitempty"`
	UserID          string    `db:"user_id" json:"user_id"`
	DeletedAt       time.Time `db:"deleted_at" json:"deleted_at"`
}

// Archive holds an archived idea until it is restored or deleted.
type Archive struct {
	ID              string    `db:"id" json:"id"`
	IdeaID          string    `db:"idea_id" json:"idea_id"`
	IdeaName        string    `db:"idea_name" json:"idea_name"`
	IdeaDescription string    `db:"idea_description" json:"idea_description,omitempty"`
	UserID          string    `db:"user_id" json:"user_id"`
	ArchivedAt      time.Time `db:"archived_at" json:"archived_at"`
}
