package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightpilot/insightpilot-api/internal/models"
)

func TestRenderProducesPDF(t *testing.T) {
	svc := NewPDFService()

	content := &models.ReportContent{
		IdeaName:       "Dog Walking Marketplace",
		OverallScore:   87,
		MaxScore:       100,
		ReportOverview: "A promising two-sided marketplace with strong early signals.",
		Sections: []models.ReportSection{
			{
				Category: "Target Audience", Score: 9, MaxScore: 9,
				Insight:         "The target segment is well defined.",
				Recommendations: []string{"Interview ten dog owners", "Map the buyer journey"},
			},
			{
				Category: "Feasibility", Score: 8, MaxScore: 10,
				Insight:         "The MVP is buildable with a small team.",
				Recommendations: []string{"Scope a four week prototype"},
			},
		},
		StrategicNextSteps: []string{"Run a landing page test", "Recruit five pilot walkers"},
		KeyStrengths:       []string{"Clear demand signal"},
		KeyChallenges:      []string{"Supply-side liquidity"},
		GeneratedAt:        time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	doc, err := svc.Render(content)
	require.NoError(t, err)
	require.NotEmpty(t, doc)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestRenderEmptySections(t *testing.T) {
	svc := NewPDFService()

	doc, err := svc.Render(&models.ReportContent{
		IdeaName:    "Bare Idea",
		MaxScore:    100,
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}
