package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the resource handlers mounted by Routes.
type Handlers struct {
	Auth      *AuthHandler
	Employees *EmployeeHandler
	Tasks     *TaskHandler
	Config    *ConfigHandler
	Stats     *StatsHandler
}

// Routes registers the API on r. authenticate guards every route except
// register, login and health; limitAuth wraps register and login.
func Routes(h Handlers, authenticate, limitAuth func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/health", Health)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limitAuth)
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
			})
			r.With(authenticate).Get("/me", h.Auth.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employees.List)
				r.Post("/", h.Employees.Create)
				r.Put("/{id}", h.Employees.Update)
				r.Delete("/{id}", h.Employees.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Tasks.List)
				r.Post("/", h.Tasks.Create)
				r.Put("/{id}", h.Tasks.Update)
				r.Delete("/{id}", h.Tasks.Delete)
			})

			r.Get("/config", h.Config.Get)
			r.Put("/config", h.Config.Update)
			r.Post("/config/test-telegram", h.Config.TestTelegram)

			r.Get("/stats", h.Stats.Get)
		})
	}
}
