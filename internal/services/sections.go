package services

import "fmt"

// SectionConfig binds one report section to the questionnaire step that feeds
// it and the share of the overall score it carries.
type SectionConfig struct {
	Step     int
	Key      string
	Title    string
	MaxScore int
}

// QuestionPrefix returns the q_uuid namespace for the section's step.
func (s SectionConfig) QuestionPrefix() string {
	return fmt.Sprintf("step_%d_", s.Step)
}

// DefaultSections is the scoring rubric. Weights sum to 100.
func DefaultSections() []SectionConfig {
	return []SectionConfig{
		{Step: 1, Key: "target_audience", Title: "Target Audience", MaxScore: 9},
		{Step: 2, Key: "problem_identification", Title: "Problem Identification", MaxScore: 9},
		{Step: 3, Key: "consequences_of_inaction", Title: "Consequences of Inaction", MaxScore: 9},
		{Step: 4, Key: "articulate_solution", Title: "Articulate Solution", MaxScore: 9},
		{Step: 5, Key: "before_after", Title: "Before & After", MaxScore: 9},
		{Step: 6, Key: "key_benefits", Title: "Key Benefits & Differentiation", MaxScore: 9},
		{Step: 7, Key: "market_opportunity", Title: "Market Opportunity", MaxScore: 9},
		{Step: 8, Key: "competitive_advantage", Title: "Competitive Advantage", MaxScore: 9},
		{Step: 9, Key: "customer_adoption", Title: "Customer Adoption Potential", MaxScore: 9},
		{Step: 10, Key: "key_metrics", Title: "Key Metrics & Goals", MaxScore: 9},
		{Step: 11, Key: "feasibility", Title: "Feasibility", MaxScore: 10},
	}
}

// TotalMaxScore sums the section weights.
func TotalMaxScore(sections []SectionConfig) int {
	total := 0
	for _, s := range sections {
		total += s.MaxScore
	}
	return total
}
