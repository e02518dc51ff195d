// Package server assembles the HTTP router: global middleware, CORS, the
// swagger UI, the health check and every resource's routes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/contributions"
	// Registers the OpenAPI document served under /swagger.
	_ "github.com/user/forum-go/docs"
	"github.com/user/forum-go/middleware"
	"github.com/user/forum-go/response"
	"github.com/user/forum-go/threads"
	"github.com/user/forum-go/topics"
	"github.com/user/forum-go/users"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the router needs. AuthLimiter may be nil to disable
// rate limiting.
type Deps struct {
	Logger         *zap.Logger
	Storage        Pinger
	AllowedOrigins []string

	Auth          *auth.AuthService
	SecureCookie  bool
	AuthLimiter   *middleware.RateLimiter
	Users         *users.UserService
	Topics        *topics.TopicService
	Threads       *threads.ThreadService
	ThreadEvents  threads.Streamer
	Contributions *contributions.ContributionService
}

// NewRouter builds the API's http.Handler.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, apperror.NewNotFoundError("Cannot "+r.Method+" "+r.URL.Path, nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, apperror.NewNotFoundError("Cannot "+r.Method+" "+r.URL.Path, nil))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/health", handleHealth(d.Storage))

	r.Route("/auth", func(r chi.Router) {
		if d.AuthLimiter != nil {
			r.Use(d.AuthLimiter.Middleware)
		}
		auth.NewHandlers(d.Auth, d.SecureCookie).RegisterRoutes(r)
	})

	topicHandlers := topics.NewTopicHandlers(d.Topics)

	r.Group(func(r chi.Router) {
		r.Use(auth.JWTMiddleware(d.Auth))

		r.Route("/users", func(r chi.Router) {
			users.NewUserHandlers(d.Users).RegisterRoutes(r)
			r.Get("/me/topics", topicHandlers.HandleListMyTopics())
		})
		r.Route("/topics", topicHandlers.RegisterRoutes)
		r.Route("/threads", threads.NewThreadHandlers(d.Threads, d.ThreadEvents).RegisterRoutes)
		r.Route("/contributions", contributions.NewContributionHandlers(d.Contributions).RegisterRoutes)
	})

	return r
}

// handleHealth godoc
// @Summary Health check
// @Description Reports whether the API and its storage are up.
// @Tags Health
// @Produce json
// @Success 200 {object} response.MessageOnly "ok"
// @Failure 503 {object} apperror.ErrorResponse "Storage unreachable"
// @Router /health [get]
func handleHealth(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			response.Error(w, r, apperror.NewUnavailableError("storage unavailable", err))
			return
		}
		response.Message(w, http.StatusOK, "ok")
	}
}
