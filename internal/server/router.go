package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cloud-disk/internal/config"
	"cloud-disk/internal/middleware"
)

func NewRouter(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *AuthHandler,
	filesHandler *FilesHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimit.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.Post("/refresh", authHandler.Refresh)
		})

		api.Route("/files", func(files chi.Router) {
			files.Use(authMiddleware.RequireAuth)

			files.Post("/paginated", filesHandler.ListPaginated)
			files.Post("/all", filesHandler.ListAll)
			files.Put("/createFolder", filesHandler.CreateFolder)
			files.Patch("/rename", filesHandler.Rename)
			files.Post("/delete", filesHandler.Delete)
			files.Patch("/move", filesHandler.Move)
			files.Post("/path", filesHandler.Path)
			files.Post("/upload", filesHandler.Upload)
			files.Get("/thumbnail", filesHandler.Thumbnail)
			files.Get("/usedSpace", filesHandler.UsedSpace)
		})
	})

	return r
}
