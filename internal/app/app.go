package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/insightpilot/insightpilot-api/internal/config"
	"github.com/insightpilot/insightpilot-api/internal/core"
	db "github.com/insightpilot/insightpilot-api/internal/core/database"
	"github.com/insightpilot/insightpilot-api/internal/core/llm"
	"github.com/insightpilot/insightpilot-api/internal/services"
)

type App struct {
	DBClient core.DbClient
	Provider core.AnalysisProvider
	Server   *Server
	Logger   *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	provider, err := llm.NewProvider(appCtx, cfg, logger)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	logger.Info("analysis provider ready", zap.String("vendor", cfg.AnalysisProvider))

	userSvc := services.NewUserService(dbClient)
	tokenSvc := services.NewTokenService(dbClient, cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLDays)*24*time.Hour)
	ideaSvc := services.NewIdeaService(dbClient)
	questionnaireSvc := services.NewQuestionnaireService(dbClient)
	notifier := services.NewLogNotifier(logger)
	reportSvc := services.NewReportService(dbClient, provider, notifier, logger,
		time.Duration(cfg.ReportStaleAfterMin)*time.Minute)
	lifecycleSvc := services.NewLifecycleService(dbClient, logger, cfg.TrashRetentionDays)
	personaSvc := services.NewPersonaService(dbClient)
	billingSvc := services.NewBillingService(dbClient, cfg, logger)
	pdfSvc := services.NewPDFService()

	server := NewServer(cfg, &Services{
		Users:         userSvc,
		Tokens:        tokenSvc,
		Ideas:         ideaSvc,
		Questionnaire: questionnaireSvc,
		Reports:       reportSvc,
		Lifecycle:     lifecycleSvc,
		Personas:      personaSvc,
		Billing:       billingSvc,
		PDF:           pdfSvc,
	}, logger)

	return &App{DBClient: dbClient, Provider: provider, Server: server, Logger: logger}, nil
}

func (a *App) Close() {
	if a.Provider != nil {
		_ = a.Provider.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
