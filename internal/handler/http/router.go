package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Report     ReportHandler
	Employee   EmployeeHandler
	Live       LiveHandler
}

func NewRouter(app config.AppConfig, JWTService jwt.Service, revocations auth.RevocationStore, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	// The network check reads RemoteAddr; only rewrite it behind a known proxy.
	if app.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource clients authenticate with a stream token in the query.
		r.Get("/live/stream", h.Live.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader))
			r.Use(middleware.AuthRequired(revocations))

			r.Route("/auth", func(r chi.Router) {
				r.Get("/me", h.Auth.Me)
				r.Post("/logout", h.Auth.Logout)
			})

			r.Get("/live/token", h.Live.GetStreamToken)

			r.Route("/attendances", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/today", h.Attendance.Today)
				r.Get("/", h.Attendance.List)
				r.Get("/{id}", h.Attendance.Get)

				r.With(middleware.RequireAdmin).Delete("/{id}", h.Attendance.Delete)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", h.Leave.CreateRequest)
				r.Get("/", h.Leave.ListRequests)
				r.Get("/{id}", h.Leave.GetRequest)

				// Manager or admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/{id}/approve", h.Leave.ApproveRequest)
					r.Post("/{id}/reject", h.Leave.RejectRequest)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/{id}", h.Employee.GetEmployee)
				r.With(middleware.RequireManager).Get("/", h.Employee.ListEmployees)
				r.With(middleware.RequireAdmin).Post("/", h.Employee.CreateEmployee)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Get("/daily", h.Report.GetDailyReport)
				r.Get("/monthly", h.Report.GetMonthlyReport)
				r.Get("/monthly/export", h.Report.ExportMonthlyReport)
			})

			r.With(middleware.RequireAdmin).Post("/reconciliation/run", h.Report.RunReconciliation)
		})
	})
	return r
}
