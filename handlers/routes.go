package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kevinaaaquil/newsroom/middleware"
	"github.com/kevinaaaquil/newsroom/service"
)

type RouterConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	CORSOrigin     string
	MaxUploadBytes int64
	// AccessLog turns on chi's request logger.
	AccessLog bool
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewRouter mounts the JSON API over engine. users resolves bearer tokens to accounts.
func NewRouter(engine *service.Engine, users middleware.UserLookup, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	authHandler := &AuthHandler{
		Accounts:  engine.Accounts,
		Reset:     engine.PasswordReset,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Now:       cfg.Now,
		Logger:    logger,
	}
	articlesHandler := &ArticlesHandler{
		Articles:  engine.Articles,
		Approvals: engine.Approvals,
		MaxBytes:  cfg.MaxUploadBytes,
		Logger:    logger,
	}
	newslettersHandler := &NewslettersHandler{Newsletters: engine.Newsletters, Logger: logger}
	subscriptionsHandler := &SubscriptionsHandler{Subscriptions: engine.Subscriptions, Logger: logger}
	directoryHandler := &DirectoryHandler{Directory: engine.Directory, Accounts: engine.Accounts, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.CORSOrigin))
	if cfg.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "welcome to newsroom."})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Get("/auth/reset-password/{token}", authHandler.CheckResetToken)
		r.Post("/auth/reset-password/{token}", authHandler.ResetPassword)
		r.Post("/publishers/register", directoryHandler.RegisterPublisher)

		r.Get("/home", articlesHandler.Home)
		r.Get("/search", articlesHandler.Search)
		r.Get("/public/articles/{id}", articlesHandler.GetPublic)
		r.Get("/public/articles/{id}/image", articlesHandler.Image)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret, users))
			r.Get("/me", authHandler.Me)

			r.Get("/articles", articlesHandler.List)
			r.Post("/articles", articlesHandler.Create)
			r.Get("/articles/{id}", articlesHandler.Get)
			r.Put("/articles/{id}", articlesHandler.Update)
			r.Patch("/articles/{id}", articlesHandler.Update)
			r.Delete("/articles/{id}", articlesHandler.Delete)
			r.Post("/articles/{id}/approve", articlesHandler.Approve)
			r.Post("/articles/{id}/submit", articlesHandler.Submit)
			r.Post("/articles/{id}/reject", articlesHandler.Reject)
			r.Post("/articles/{id}/image", articlesHandler.UploadImage)
			r.Get("/articles/{id}/image", articlesHandler.Image)

			r.Get("/newsletters", newslettersHandler.List)
			r.Post("/newsletters", newslettersHandler.Create)
			r.Get("/newsletters/{id}", newslettersHandler.Get)
			r.Delete("/newsletters/{id}", newslettersHandler.Delete)

			r.Get("/subscriptions", subscriptionsHandler.List)
			r.Post("/subscriptions", subscriptionsHandler.Create)
			r.Get("/subscriptions/mine", subscriptionsHandler.Overview)
			r.Get("/subscriptions/{id}", subscriptionsHandler.Get)
			r.Delete("/subscriptions/{id}", subscriptionsHandler.Delete)

			r.Get("/publishers", directoryHandler.Publishers)
			r.Get("/publishers/dashboard", directoryHandler.Dashboard)
			r.Post("/publishers/{id}/journalists", directoryHandler.AddJournalist)
			r.Post("/publishers/{id}/editors", directoryHandler.AddEditor)
			r.Get("/categories", directoryHandler.Categories)
			r.Post("/categories", directoryHandler.CreateCategory)
			r.Get("/journalists", directoryHandler.Journalists)
		})
	})
	return r
}
