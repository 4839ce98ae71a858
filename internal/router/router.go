package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"user-service/internal/config"
	"user-service/internal/handler"
	"user-service/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Web    *handler.WebHandler
	Health *handler.HealthHandler
}

func New(
	cfg *config.Config,
	sessions *middleware.SessionManager,
	jwt *middleware.JWTMiddleware,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimit.Handler)

	r.Get("/health", h.Health.Health)
	r.Get("/ping", h.Health.Ping)
	r.Get("/hello/{name}", h.Health.Hello)

	// Session surface: every route runs the cookie-to-principal chain;
	// only the dashboard demands an authenticated principal.
	r.Group(func(web chi.Router) {
		web.Use(sessions.Handler)

		web.Get("/", h.Web.Welcome)
		web.Get("/signup", h.Web.SignupPage)
		web.Post("/signup", h.Web.Signup)
		web.Get("/login", h.Web.LoginPage)
		web.Post("/login", h.Web.Login)
		web.Post("/logout", h.Web.Logout)
		web.With(sessions.EnsureAuthenticated).Get("/dashboard", h.Web.Dashboard)
		web.Get("/api/v1/session", h.Web.SessionInfo)
	})

	// Token surface: stateless, no session chain.
	r.Route("/api/v1/auth", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Post("/login", h.Auth.Login)
		api.Post("/refresh", h.Auth.Refresh)
		api.With(jwt.Authenticate, middleware.RequireJWT).Get("/me", h.Auth.Me)
	})

	return r
}
