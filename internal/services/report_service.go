package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

const noAnswersMessage = "No answers found for this idea"

// GenerationStatus is what a generation request returns to the client.
type GenerationStatus struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// ReportService owns the report lifecycle: one report row per idea moving
// through queued, processing and a terminal completed or failed state.
type ReportService struct {
	db         core.DbClient
	llm        core.AnalysisProvider
	notifier   Notifier
	logger     *zap.Logger
	sections   []SectionConfig
	staleAfter time.Duration
	genTimeout time.Duration

	// spawn launches the background generation; replaced in tests.
	spawn func(reportID string, idea *models.Idea)
}

func NewReportService(db core.DbClient, llm core.AnalysisProvider, notifier Notifier, logger *zap.Logger, staleAfter time.Duration) *ReportService {
	s := &ReportService{
		db:         db,
		llm:        llm,
		notifier:   notifier,
		logger:     logger.Named("report"),
		sections:   DefaultSections(),
		staleAfter: staleAfter,
		genTimeout: 10 * time.Minute,
	}
	s.spawn = func(reportID string, idea *models.Idea) {
		go s.runGeneration(reportID, idea)
	}
	return s
}

// RequestGeneration decides, per the current report state, whether to start a
// new generation, restart a stuck or failed one, or just report progress.
func (s *ReportService) RequestGeneration(ctx context.Context, ideaID, userID string) (*GenerationStatus, error) {
	idea, err := s.db.GetIdeaByID(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperrors.ErrNotFound
	}
	if !idea.IsComplete {
		return nil, apperrors.ErrIncomplete
	}

	report, err := s.db.GetReportByIdea(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}

	if report == nil {
		fresh := &models.Report{
			ID:     uuid.NewString(),
			IdeaID: ideaID,
			UserID: userID,
			Status: models.ReportStatusQueued,
		}
		inserted, err := s.db.CreateReport(ctx, fresh)
		if err != nil {
			return nil, err
		}
		if inserted {
			s.spawn(fresh.ID, idea)
			return &GenerationStatus{
				ReportID: fresh.ID,
				Status:   models.ReportStatusQueued,
				Message:  "Report generation started.",
			}, nil
		}
		// Lost the insert race; another request created the row first.
		report, err = s.db.GetReportByIdea(ctx, ideaID, userID)
		if err != nil {
			return nil, err
		}
		if report == nil {
			return nil, apperrors.ErrNotFound
		}
	}

	switch report.Status {
	case models.ReportStatusCompleted:
		return &GenerationStatus{
			ReportID: report.ID,
			Status:   models.ReportStatusCompleted,
			Message:  "Report already generated.",
		}, nil

	case models.ReportStatusProcessing:
		if time.Since(report.UpdatedAt) <= s.staleAfter {
			return &GenerationStatus{
				ReportID: report.ID,
				Status:   models.ReportStatusProcessing,
				Message:  "Report generation in progress.",
			}, nil
		}
		s.logger.Warn("restarting stale report generation",
			zap.String("report_id", report.ID),
			zap.Time("last_update", report.UpdatedAt))
		fallthrough

	default: // queued, failed or stale processing
		if err := s.db.RequeueReport(ctx, report.ID); err != nil {
			return nil, err
		}
		s.spawn(report.ID, idea)
		return &GenerationStatus{
			ReportID: report.ID,
			Status:   models.ReportStatusQueued,
			Message:  "Report generation restarted.",
		}, nil
	}
}

// GetByIdea returns the report row for an idea, nil when none exists.
func (s *ReportService) GetByIdea(ctx context.Context, ideaID, userID string) (*models.Report, error) {
	return s.db.GetReportByIdea(ctx, ideaID, userID)
}

// GetByID returns a report by its id, nil when none exists.
func (s *ReportService) GetByID(ctx context.Context, id, userID string) (*models.Report, error) {
	return s.db.GetReportByID(ctx, id, userID)
}

// runGeneration is the background task boundary. It owns its own context so
// the generation survives the originating HTTP request, and it converts a
// panic into a failed report instead of crashing the process.
func (s *ReportService) runGeneration(reportID string, idea *models.Idea) {
	ctx, cancel := context.WithTimeout(context.Background(), s.genTimeout)
	defer cancel()

	// The generation context may already be expired when we get here (that
	// is one of the ways generation fails), so the terminal status write
	// runs on an uncancellable copy.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("report generation panicked",
				zap.String("report_id", reportID),
				zap.Any("panic", r))
			s.fail(context.WithoutCancel(ctx), reportID, idea,
				fmt.Sprintf("internal error during report generation: %v", r))
		}
	}()

	if err := s.generate(ctx, reportID, idea); err != nil {
		s.logger.Error("report generation failed",
			zap.String("report_id", reportID),
			zap.Error(err))
		s.fail(context.WithoutCancel(ctx), reportID, idea,
			fmt.Sprintf("report generation failed: %v", err))
	}
}

func (s *ReportService) fail(ctx context.Context, reportID string, idea *models.Idea, message string) {
	if err := s.db.MarkReportFailed(ctx, reportID, message); err != nil {
		s.logger.Error("mark report failed", zap.String("report_id", reportID), zap.Error(err))
	}
	s.notifier.ReportFailed(ctx, idea.UserID, idea.IdeaName, message)
}

func (s *ReportService) generate(ctx context.Context, reportID string, idea *models.Idea) error {
	if err := s.db.MarkReportProcessing(ctx, reportID); err != nil {
		return err
	}

	answers, err := s.db.ListAnswersByIdea(ctx, idea.ID, idea.UserID)
	if err != nil {
		return err
	}
	if len(answers) == 0 {
		s.fail(ctx, reportID, idea, noAnswersMessage)
		return nil
	}

	answerByQuestion := make(map[string]json.RawMessage, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a.Value
	}

	// One slot per section keeps the output in rubric order; failed or empty
	// sections leave their slot nil and are omitted from the report.
	results := make([]*models.ReportSection, len(s.sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, sec := range s.sections {
		i, sec := i, sec
		g.Go(func() error {
			// A panicking section is omitted like any other section failure.
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("section analysis panicked",
						zap.String("section", sec.Title), zap.Any("panic", r))
				}
			}()

			questions, err := s.db.ListQuestionsByPrefix(gctx, sec.QuestionPrefix())
			if err != nil {
				s.logger.Warn("load section questions",
					zap.String("section", sec.Title), zap.Error(err))
				return nil
			}

			var items []core.QA
			for _, q := range questions {
				if val, ok := answerByQuestion[q.ID]; ok {
					items = append(items, core.QA{Question: q.Text, Answer: val})
				}
			}
			if len(items) == 0 {
				return nil
			}

			analysis, err := s.llm.GenerateSectionAnalysis(gctx, sec.Title, sec.MaxScore, items)
			if err != nil {
				s.logger.Warn("section analysis failed",
					zap.String("section", sec.Title), zap.Error(err))
				return nil
			}
			results[i] = &models.ReportSection{
				Category:        sec.Title,
				Score:           analysis.Score,
				MaxScore:        sec.MaxScore,
				Insight:         analysis.Insight,
				Recommendations: analysis.Recommendations,
			}
			return nil
		})
	}
	_ = g.Wait()

	var (
		sections     []models.ReportSection
		overallScore int
	)
	for _, r := range results {
		if r == nil {
			continue
		}
		sections = append(sections, *r)
		overallScore += r.Score
	}
	if len(sections) == 0 {
		s.fail(ctx, reportID, idea, "analysis failed for all sections")
		return nil
	}

	overview, err := s.llm.GenerateStrategicOverview(ctx, idea.IdeaName, sections)
	if err != nil {
		s.logger.Warn("strategic overview failed, using fallback",
			zap.String("report_id", reportID), zap.Error(err))
		overview = &core.StrategicOverview{
			Overview:           "Analysis completed. Review the section insights below for details.",
			StrategicNextSteps: []string{"Review the recommendations in each section."},
		}
	}

	content := models.ReportContent{
		IdeaName:           idea.IdeaName,
		OverallScore:       overallScore,
		MaxScore:           TotalMaxScore(s.sections),
		ReportOverview:     overview.Overview,
		Sections:           sections,
		StrategicNextSteps: overview.StrategicNextSteps,
		KeyStrengths:       overview.KeyStrengths,
		KeyChallenges:      overview.KeyChallenges,
		GeneratedAt:        time.Now().UTC(),
	}
	payload, err := json.Marshal(content)
	if err != nil {
		return err
	}
	if err := s.db.CompleteReport(ctx, reportID, payload); err != nil {
		return err
	}

	s.notifier.ReportReady(ctx, idea.UserID, idea.IdeaName, reportID)
	return nil
}
