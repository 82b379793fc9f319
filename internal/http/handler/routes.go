package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docrepo/internal/http/middleware"
	"docrepo/internal/service"
)

// RegisterRoutes attaches all HTTP routes. Handlers stay thin: parameter
// parsing and response shaping only, with business rules in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, authSvc service.AuthService, docSvc service.DocumentService, searchSvc service.SearchService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	auth := app.Group("/auth")
	auth.Post("/register", Register(authSvc))
	auth.Post("/login", Login(authSvc))
	auth.Post("/refresh", RefreshToken(authSvc))
	auth.Post("/logout", Logout(authSvc))
	auth.Get("/me", middleware.Authenticated(authSvc), CurrentUser())

	docs := app.Group("/documents", middleware.Authenticated(authSvc))
	docs.Post("/", CreateDocument(docSvc))
	docs.Get("/", SearchDocuments(searchSvc))
	// Facet routes precede /:id so the literal segment wins the match.
	docs.Get("/filters/tags", ListTagFacets(searchSvc))
	docs.Get("/filters/uploaders", ListUploaderFacets(searchSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
	docs.Get("/:id/versions", ListVersions(docSvc))
	docs.Post("/:id/versions", UploadVersion(docSvc))
	docs.Get("/:id/download", DownloadDocument(docSvc))
}
