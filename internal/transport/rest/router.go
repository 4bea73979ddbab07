package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	internal "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/leave"
	"github.com/arifwidianto/shift-management/internal/schedule"
	"github.com/arifwidianto/shift-management/internal/shift"
	"github.com/arifwidianto/shift-management/internal/transport/middleware"
	"github.com/arifwidianto/shift-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	cfg *internal.Config,
	shiftHandler *shift.Handler,
	scheduleHandler *schedule.Handler,
	leaveHandler *leave.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Everything else requires a caller identity
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.CallerIdentity(cfg.Security.TokenSecret, logger))

			if shiftHandler != nil {
				pr.Route("/shifts", func(sr chi.Router) {
					sr.Put("/", shiftHandler.UpsertDay)
					sr.Get("/day/{date}", shiftHandler.GetDay)
					sr.Get("/month/{month}", shiftHandler.GetMonth)
					sr.Get("/{userID}/{date}", shiftHandler.GetHeader)

					sr.Patch("/step-out", shiftHandler.SetStepOut)
					sr.Patch("/meal-ticket", shiftHandler.SetMealTicket)
					sr.Patch("/position", shiftHandler.SetPosition)
					sr.Patch("/published", shiftHandler.SetPublished)

					// Confirmation flips a whole date for every user
					sr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePrivileged(logger))
						mr.Post("/confirmation", shiftHandler.ToggleConfirmation)
					})
				})

				pr.Route("/details", func(dr chi.Router) {
					dr.Post("/", shiftHandler.CreateDetail)
					dr.Put("/{id}", shiftHandler.UpdateDetail)
					dr.Patch("/{id}/extend", shiftHandler.ExtendDetail)
					dr.Delete("/{id}", shiftHandler.DeleteDetail)
				})

				pr.Get("/users/{userID}/working-minutes", shiftHandler.WorkingMinutes)
			}

			if scheduleHandler != nil {
				pr.Route("/schedule", func(sr chi.Router) {
					sr.Post("/bulk", scheduleHandler.BulkUpsert)

					sr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePrivileged(logger))
						mr.Post("/sweep-preferred-holidays", scheduleHandler.SweepPreferredHolidays)
						mr.Post("/auto-register", scheduleHandler.AutoRegisterEmploymentPeriod)
					})
				})
			}

			if leaveHandler != nil {
				pr.Route("/applications", func(ar chi.Router) {
					ar.Post("/", leaveHandler.SubmitApplication)
					ar.Get("/", leaveHandler.ListApplications)
					ar.Get("/{id}", leaveHandler.GetApplication)

					ar.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePrivileged(logger))
						mr.Get("/pending", leaveHandler.ListPendingApplications)
						mr.Patch("/{id}/decide", leaveHandler.DecideApplication)
					})
				})

				pr.Get("/users/{userID}/leave-quota", leaveHandler.GetQuota)
			}
		})
	})
}
