package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/insightpilot/insightpilot-api/internal/api/handlers"
	appMiddleware "github.com/insightpilot/insightpilot-api/internal/api/middlewares"
	"github.com/insightpilot/insightpilot-api/internal/config"
	"github.com/insightpilot/insightpilot-api/internal/services"
)

// Services groups everything the router needs.
type Services struct {
	Users         *services.UserService
	Tokens        *services.TokenService
	Ideas         *services.IdeaService
	Questionnaire *services.QuestionnaireService
	Reports       *services.ReportService
	Lifecycle     *services.LifecycleService
	Personas      *services.PersonaService
	Billing       *services.BillingService
	PDF           *services.PDFService
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, svc *Services, logger *zap.Logger) *Server {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Tokens)
	userHandler := handlers.NewUserHandler(svc.Users)
	ideaHandler := handlers.NewIdeaHandler(svc.Ideas, svc.Questionnaire)
	answerHandler := handlers.NewAnswerHandler(svc.Questionnaire)
	reportHandler := handlers.NewReportHandler(svc.Reports, svc.PDF)
	personaHandler := handlers.NewPersonaHandler(svc.Personas)
	trashHandler := handlers.NewTrashHandler(svc.Lifecycle)
	archiveHandler := handlers.NewArchiveHandler(svc.Lifecycle)
	billingHandler := handlers.NewBillingHandler(svc.Billing)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)
		api.Post("/auth/refresh-token", authHandler.RefreshToken)

		// Stripe calls this directly; auth is the signature header.
		api.Post("/billing/webhook", billingHandler.Webhook)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(svc.Tokens))

			protected.Post("/auth/logout", authHandler.Logout)
			protected.Get("/user/me", userHandler.Me)

			protected.Post("/ideaboard", ideaHandler.Create)
			protected.Get("/ideaboard", ideaHandler.List)
			protected.Get("/ideaboard/{ideaID}", ideaHandler.Get)
			protected.Get("/ideaboard/questions/{step}", ideaHandler.GetQuestions)
			protected.Post("/ideaboard/answers/{ideaID}/{step}", ideaHandler.SubmitAnswers)
			protected.Get("/ideaboard/progress/{ideaID}", ideaHandler.GetProgress)

			protected.Get("/answer/answers", answerHandler.ListByQuestion)
			protected.Get("/answer/{ideaID}", answerHandler.ListByIdea)

			protected.Post("/report/generate/{ideaID}", reportHandler.Generate)
			protected.Get("/report/status/{reportID}", reportHandler.Status)
			protected.Get("/report/report/{ideaID}", reportHandler.Get)
			protected.Get("/report/download/{ideaID}", reportHandler.Download)

			protected.Post("/customerboard", personaHandler.Create)
			protected.Get("/customerboard", personaHandler.List)
			protected.Get("/customerboard/{personaID}", personaHandler.Get)
			protected.Put("/customerboard/{personaID}", personaHandler.Update)
			protected.Delete("/customerboard/{personaID}", personaHandler.Delete)

			protected.Post("/trash/{ideaID}", trashHandler.Move)
			protected.Get("/trash", trashHandler.List)
			protected.Post("/trash/restore/{trashID}", trashHandler.Restore)
			protected.Delete("/trash/{trashID}", trashHandler.Delete)

			protected.Post("/archive/{ideaID}", archiveHandler.Move)
			protected.Get("/archive", archiveHandler.List)
			protected.Post("/archive/restore/{archiveID}", archiveHandler.Restore)
			protected.Delete("/archive/{archiveID}", archiveHandler.Delete)

			protected.Get("/billing/plans", billingHandler.Plans)
			protected.Post("/billing/checkout", billingHandler.Checkout)
			protected.Post("/billing/portal", billingHandler.Portal)
			protected.Post("/billing/cancel", billingHandler.Cancel)
			protected.Get("/billing/status", billingHandler.Status)
		})
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv, logger: logger.Named("http")}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.httpServer.Shutdown(ctx)
}
