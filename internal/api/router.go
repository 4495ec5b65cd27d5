package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/api/handlers"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/api/middleware"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/auth"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/config"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/extract"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/media"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/queue"
)

type Router struct {
	mux      *chi.Mux
	redis    *redis.Client
	cfg      *config.Config
	gateway  *llm.Gateway
	sessions *auth.Sessions
}

func NewRouter(rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		redis:    rdb,
		cfg:      cfg,
		gateway:  llm.NewGateway(cfg.Providers),
		sessions: auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(5, 20)
	r.Use(rl.Limit)

	// Health endpoints (no session)
	health := handlers.NewHealthHandler(rt.redis, rt.gateway)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	orchestrator := extract.NewOrchestrator(rt.gateway, rt.cfg.Extraction, rt.cfg.Providers)
	crafter := media.NewCrafter(rt.gateway, rt.cfg.Media.CraftModel)
	imageGen := media.NewImageGenerator(rt.gateway, crafter, rt.cfg.Media.ImageModel)
	videoGen := media.NewVideoGenerator(rt.gateway, crafter, rt.cfg.Media)
	jobStore := media.NewJobStore(rt.redis, rt.cfg.Media.ResultTTL)
	queueClient := queue.NewClient(rt.cfg.Redis, rt.cfg.Media)

	credentialH := handlers.NewCredentialHandler(rt.gateway, rt.sessions)
	recipeH := handlers.NewRecipeHandler(orchestrator)
	mediaH := handlers.NewMediaHandler(imageGen, videoGen, jobStore, queueClient)

	r.Route("/api/v1", func(r chi.Router) {
		// Pre-flight credential step, no session required
		r.Route("/credentials", func(r chi.Router) {
			r.Get("/", credentialH.Status)
			r.Post("/verify", credentialH.Verify)
		})

		// Everything downstream requires a verified credential session
		r.Group(func(r chi.Router) {
			r.Use(rt.sessions.Require)

			r.Route("/recipes", func(r chi.Router) {
				r.Post("/extract", recipeH.Extract)
			})

			r.Route("/media", func(r chi.Router) {
				r.Post("/image", mediaH.GenerateImage)
				r.Post("/video", mediaH.SubmitVideo)
				r.Get("/video/{id}", mediaH.VideoStatus)
			})
		})
	})

	return r
}
