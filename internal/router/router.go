package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-git-cms/internal/config"
	"go-git-cms/internal/handler"
	"go-git-cms/internal/middleware"
	"go-git-cms/internal/service"
)

func New(
	cfg *config.Config,
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	contentHandler *handler.ContentHandler,
	mediaHandler *handler.MediaHandler,
	trashHandler *handler.TrashHandler,
	statsHandler *handler.StatsHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPM, cfg.AuthRateRPM)
	requireAuth := middleware.RequireAuth(authService)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.With(requireAuth).Get("/me", authHandler.Me)
		})

		// Media is served unauthenticated so the public site and the admin
		// preview can embed asset URLs directly.
		api.Get("/media/serve/*", mediaHandler.Serve)

		api.Group(func(protected chi.Router) {
			protected.Use(requireAuth)

			protected.Route("/content/{slug}", func(content chi.Router) {
				content.Get("/", contentHandler.List)
				content.Get("/{id}", contentHandler.Read)
				content.Post("/{id}", contentHandler.Write)
				content.Post("/{id}/delete", contentHandler.Delete)
			})

			protected.Post("/upload", mediaHandler.Upload)
			protected.Get("/files/{name}", mediaHandler.ServeFile)

			protected.Route("/media", func(media chi.Router) {
				media.Get("/", mediaHandler.List)
				media.Post("/move", mediaHandler.Move)
				media.Post("/delete", mediaHandler.Delete)
				media.Get("/references", mediaHandler.References)
			})

			protected.Route("/trash", func(trash chi.Router) {
				trash.Get("/", trashHandler.List)
				trash.Post("/restore", trashHandler.Restore)
				trash.Post("/delete", trashHandler.Delete)
				trash.Post("/empty", trashHandler.Empty)
			})

			protected.Route("/stats", func(stats chi.Router) {
				stats.Get("/system", statsHandler.System)
				stats.Get("/collections", statsHandler.Collections)
				stats.Get("/localization", statsHandler.Localization)
				stats.Get("/media", statsHandler.Media)
				stats.Get("/activity", statsHandler.Activity)
			})
		})
	})

	return r
}
