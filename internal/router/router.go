package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-task-manager-api/docs"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/auth"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/task"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/user"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            auth.Handler
	UserHandler            user.Handler
	TaskHandler            task.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected
// to be applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/me", cfg.UserHandler.Me)
			r.Put("/profile", cfg.UserHandler.UpdateProfile)
			r.Put("/password", cfg.UserHandler.UpdatePassword)
		})
	})

	r.Route("/api/task", func(r chi.Router) {
		r.Use(cfg.AuthenticateMiddleware)

		r.Get("/gp", cfg.TaskHandler.ListTasks)
		r.Post("/gp", cfg.TaskHandler.CreateTask)
		r.Get("/{id}/gp", cfg.TaskHandler.GetTask)
		r.Put("/{id}/gp", cfg.TaskHandler.UpdateTask)
		r.Delete("/{id}/gp", cfg.TaskHandler.DeleteTask)
	})

	return r
}
