package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/corpdesk/corpdesk/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// dashboard API. Uploaded blobs are served statically under /uploads;
// everything under /api except login and registration requires a bearer
// token. Catalog and settings mutation plus user deletion additionally
// require the admin role; per-action registration permissions are
// enforced in the service layer.
func NewRouter(
	authHandler *AuthHandler,
	registrationHandler *RegistrationHandler,
	catalogHandler *CatalogHandler,
	settingsHandler *SettingsHandler,
	fileHandler *FileHandler,
	tokens middleware.TokenParser,
	uploadsDir string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Serve stored blobs under their predictable public prefix
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(uploadsDir))))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))

			r.Route("/registrations", func(r chi.Router) {
				r.Get("/", registrationHandler.List)
				r.Post("/", registrationHandler.Create)
				r.Get("/{id}", registrationHandler.Get)
				r.Put("/{id}", registrationHandler.Update)
				r.Delete("/{id}", registrationHandler.Delete)
				r.Post("/{id}/actions", registrationHandler.Action)
				r.Put("/{id}/balance-payment", registrationHandler.BalancePayment)
				r.Put("/{id}/customer-documents", registrationHandler.CustomerDocuments)
			})

			r.Route("/packages", func(r chi.Router) {
				r.Get("/", catalogHandler.ListPackages)
				r.Get("/{id}", catalogHandler.GetPackage)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", catalogHandler.ReplacePackages)
					r.Put("/", catalogHandler.ReplacePackages)
				})
			})

			r.Route("/bank-details", func(r chi.Router) {
				r.Get("/", catalogHandler.ListBankDetails)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", catalogHandler.ReplaceBankDetails)
					r.Put("/", catalogHandler.ReplaceBankDetails)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", settingsHandler.Get)
				r.With(middleware.RequireAdmin).Put("/", settingsHandler.Update)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/{id}", authHandler.GetUser)
				r.Put("/{id}", authHandler.UpdateUser)
				r.Put("/{id}/password", authHandler.ChangePassword)
				r.With(middleware.RequireAdmin).Delete("/{id}", authHandler.DeleteUser)
			})

			r.Post("/upload", fileHandler.Upload)
			r.Get("/files", fileHandler.List)
			r.Get("/files/{id}", fileHandler.Get)
			r.Delete("/files/{id}", fileHandler.Delete)
		})
	})

	return r
}
