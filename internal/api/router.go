package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/maya-ai/engine/internal/api/handlers"
	mw "github.com/maya-ai/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret       []byte
	AuthHandler      *handlers.AuthHandler
	ProjectsHandler  *handlers.ProjectsHandler
	FloorsHandler    *handlers.FloorsHandler
	InteriorsHandler *handlers.InteriorsHandler
	ExteriorsHandler *handlers.ExteriorsHandler
	ChatsHandler     *handlers.ChatsHandler
	AdminHandler     *handlers.AdminHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/docs/doc.json"),
	))

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/signup", dep.AuthHandler.Signup)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
			ar.Post("/reset-password", dep.AuthHandler.ResetPassword)
			ar.Post("/reset-password/confirm", dep.AuthHandler.ResetPasswordConfirm)
			ar.Get("/google", dep.AuthHandler.Google)
			ar.Get("/github", dep.AuthHandler.GitHub)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			// Projects and workspace
			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Put("/{id}", dep.ProjectsHandler.Update)
				pr.Delete("/{id}", dep.ProjectsHandler.Delete)
				pr.Get("/{id}/workspace", dep.ProjectsHandler.Workspace)
				pr.Post("/{id}/export", dep.ProjectsHandler.Export)
				pr.Get("/{id}/export/latest", dep.ProjectsHandler.LatestExport)
			})

			// Floor plans
			protected.Route("/floors", func(fr chi.Router) {
				fr.Post("/", dep.FloorsHandler.Create)
				fr.Post("/save-rooms", dep.FloorsHandler.SaveRooms)
				fr.Get("/by-project/{id}", dep.FloorsHandler.GetByProject)
				fr.Get("/{id}/rooms", dep.FloorsHandler.Rooms)
			})

			// Interiors
			protected.Route("/interiors", func(ir chi.Router) {
				ir.Post("/", dep.InteriorsHandler.Create)
				ir.Get("/by-project/{id}", dep.InteriorsHandler.GetByProject)
				ir.Get("/{id}/rooms", dep.InteriorsHandler.Rooms)
				ir.Post("/{id}/save-rooms", dep.InteriorsHandler.SaveRooms)
			})

			// Exteriors
			protected.Route("/exteriors", func(er chi.Router) {
				er.Post("/", dep.ExteriorsHandler.Create)
				er.Get("/latest-by-project/{id}", dep.ExteriorsHandler.LatestByProject)
			})

			// Chats
			protected.Route("/chats", func(cr chi.Router) {
				cr.Get("/", dep.ChatsHandler.List)
				cr.Post("/", dep.ChatsHandler.Create)
				cr.Get("/{id}", dep.ChatsHandler.Get)
				cr.Patch("/{id}", dep.ChatsHandler.Rename)
				cr.Delete("/{id}", dep.ChatsHandler.Delete)
				cr.Post("/{id}/message", dep.ChatsHandler.SendMessage)
			})

			// Admin
			protected.Route("/admin", func(admin chi.Router) {
				admin.Use(mw.RequireAdmin)
				admin.Get("/users", dep.AdminHandler.ListUsers)
				admin.Put("/users/{id}/role", dep.AdminHandler.UpdateUserRole)
				admin.Delete("/users/{id}", dep.AdminHandler.DeleteUser)
				admin.Get("/projects", dep.AdminHandler.ListProjects)
				admin.Delete("/projects/{id}", dep.AdminHandler.DeleteProject)
				admin.Get("/chats", dep.AdminHandler.ListChats)
				admin.Post("/chats/bulk-delete", dep.AdminHandler.BulkDeleteChats)
				admin.Get("/metrics/summary", dep.AdminHandler.MetricsSummary)
				admin.Get("/settings", dep.AdminHandler.ListSettings)
				admin.Put("/settings/{key}", dep.AdminHandler.PutSetting)
				admin.Delete("/settings/{key}", dep.AdminHandler.DeleteSetting)
			})
		})
	})

	return r
}
