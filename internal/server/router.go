package server

import (
	"log/slog"
	"net/http"
	"time"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health     handler.HealthHandler
	Docs       handler.DocsHandler
	Auth       handler.AuthHandler
	Scan       handler.ScanHandler
	Devices    handler.DeviceHandler
	Portal     handler.PortalHandler
	Snapshot   handler.SnapshotHandler
	Children   handler.ChildHandler
	Staff      handler.StaffHandler
	Invoices   handler.InvoiceHandler
	Accounts   handler.AccountHandler
	Attendance handler.AttendanceHandler
	Settings   handler.SettingsHandler
	Reports    handler.ReportHandler
	Export     handler.ExportHandler
	Logs       handler.ActivityLogHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(logger *slog.Logger, tokens TokenVerifier, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	h.Health.RegisterRoutes(r)
	h.Docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	// credential endpoints get a tighter budget
	r.Group(func(ar chi.Router) {
		ar.Use(httprate.LimitByIP(20, 1*time.Minute))
		h.Auth.RegisterRoutes(ar)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(tokens))
		h.Auth.RegisterProtectedRoutes(pr)
		h.Devices.RegisterRoutes(pr)
		h.Portal.RegisterRoutes(pr)
		// the resolver applies per-payload role rules itself
		h.Scan.RegisterRoutes(pr)

		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin))
			h.Snapshot.RegisterRoutes(ar)
			h.Children.RegisterRoutes(ar)
			h.Staff.RegisterRoutes(ar)
			h.Invoices.RegisterRoutes(ar)
			h.Accounts.RegisterRoutes(ar)
			h.Attendance.RegisterRoutes(ar)
			h.Settings.RegisterRoutes(ar)
			h.Reports.RegisterRoutes(ar)
			h.Export.RegisterRoutes(ar)
			h.Logs.RegisterRoutes(ar)
		})
	})

	return r
}
