package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/insightpilot/insightpilot-api/internal/config"
	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// generator is the minimal vendor surface: one prompt in, one text out.
// Each vendor client implements it; Provider layers prompt construction and
// JSON parsing on top so the orchestrator stays vendor-agnostic.
type generator interface {
	generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
	close() error
}

// Provider implements core.AnalysisProvider over a configured vendor client.
type Provider struct {
	gen    generator
	vendor string
	logger *zap.Logger
}

// NewProvider selects the analysis vendor from configuration.
func NewProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Provider, error) {
	var (
		gen generator
		err error
	)
	switch cfg.AnalysisProvider {
	case "openai":
		gen, err = newOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "gemini":
		gen, err = newGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "anthropic":
		gen, err = newAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.AnalysisProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.AnalysisProvider, err)
	}
	return &Provider{gen: gen, vendor: cfg.AnalysisProvider, logger: logger.Named("llm")}, nil
}

func (p *Provider) GenerateSectionAnalysis(ctx context.Context, section string, maxScore int, items []core.QA) (*core.SectionAnalysis, error) {
	raw, err := p.gen.generate(ctx, sectionSystemPrompt(section, maxScore), sectionUserPrompt(section, items), 0.5)
	if err != nil {
		return nil, fmt.Errorf("section analysis for %q: %w", section, err)
	}

	analysis, err := parseJSONResponse[core.SectionAnalysis](raw)
	if err != nil {
		return nil, fmt.Errorf("section analysis for %q: %w", section, err)
	}

	if analysis.Score < 0 {
		analysis.Score = 0
	}
	if analysis.Score > maxScore {
		p.logger.Warn("model score above maximum, clamping",
			zap.String("section", section),
			zap.Int("score", analysis.Score),
			zap.Int("max_score", maxScore))
		analysis.Score = maxScore
	}
	return &analysis, nil
}

func (p *Provider) GenerateStrategicOverview(ctx context.Context, ideaName string, sections []models.ReportSection) (*core.StrategicOverview, error) {
	raw, err := p.gen.generate(ctx, overviewSystemPrompt(), overviewUserPrompt(ideaName, sections), 0.7)
	if err != nil {
		return nil, fmt.Errorf("strategic overview for %q: %w", ideaName, err)
	}

	overview, err := parseJSONResponse[core.StrategicOverview](raw)
	if err != nil {
		return nil, fmt.Errorf("strategic overview for %q: %w", ideaName, err)
	}
	return &overview, nil
}

func (p *Provider) Close() error {
	return p.gen.close()
}

var _ core.AnalysisProvider = (*Provider)(nil)
