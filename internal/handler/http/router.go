package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger             *slog.Logger
	AllowedOrigins     []string
	RateLimitPerMinute int
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

type Handlers struct {
	Attendance AttendanceHandler
	Calendar   CalendarHandler
	Shift      ShiftHandler
	Payroll    PayrollHandler
}

// NewLogger builds the JSON request logger in the ECS schema.
func NewLogger(env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce-engine"),
		slog.String("env", env),
	)
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	clockLimit := opts.RateLimitPerMinute
	if clockLimit <= 0 {
		clockLimit = 30
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)

					r.Group(func(r chi.Router) {
						r.Use(httprate.Limit(clockLimit, time.Minute,
							httprate.WithKeyFuncs(employeeKey),
							httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
								response.TooManyRequests(w, "Too many clock events, try again later")
							}),
						))
						r.Post("/clock-in", h.Attendance.ClockIn)
						r.Post("/clock-out", h.Attendance.ClockOut)
					})
					r.Get("/status", h.Attendance.GetCurrentStatus)
				})

				r.Get("/monthly", h.Attendance.GetMonthly)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/records", h.Attendance.Record)
					r.Post("/records/bulk", h.Attendance.BulkRecord)
					r.Delete("/records/{employeeId}/{date}", h.Attendance.Delete)
					r.Post("/absentees", h.Attendance.MarkAbsentees)
				})
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/working-days", h.Calendar.WorkingDays)
				r.Get("/configurations", h.Calendar.List)
				r.Get("/configurations/{id}", h.Calendar.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/configurations", h.Calendar.Create)
					r.Put("/configurations/{id}", h.Calendar.Update)
					r.Delete("/configurations/{id}", h.Calendar.Delete)
				})
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/", h.Shift.List)
				r.Get("/{id}", h.Shift.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/", h.Shift.Create)
					r.Put("/{id}", h.Shift.Update)
					r.Post("/assignments", h.Shift.Assign)
					r.Get("/assignments/{employeeId}", h.Shift.ListAssignments)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Route("/components", func(r chi.Router) {
					r.Get("/", h.Payroll.ListComponents)
					r.Post("/", h.Payroll.CreateComponent)
				})

				r.Route("/employees/{employeeId}/components", func(r chi.Router) {
					r.Get("/", h.Payroll.GetEmployeeComponents)
					r.Post("/", h.Payroll.AssignComponent)
					r.Delete("/{id}", h.Payroll.RemoveEmployeeComponent)
				})

				r.Route("/slips", func(r chi.Router) {
					r.Get("/", h.Payroll.ListSlips)
					r.Post("/generate", h.Payroll.GenerateSlip)
					r.Post("/recompute", h.Payroll.RecomputeSlip)
					r.Post("/bulk-generate", h.Payroll.BulkGenerateSlips)
					r.Post("/pay", h.Payroll.BulkMarkSlipsPaid)
					r.Get("/{id}", h.Payroll.GetSlip)
					r.Post("/{id}/pay", h.Payroll.MarkSlipPaid)
				})
			})
		})
	})
	return r
}

// employeeKey rate limits clock events per employee, not per IP.
func employeeKey(r *http.Request) (string, error) {
	if identity, ok := middleware.IdentityFrom(r.Context()); ok && identity.EmployeeID != "" {
		return identity.CompanyID + ":" + identity.EmployeeID, nil
	}
	return httprate.KeyByIP(r)
}
