package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the deployment settings the router needs.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Quiet drops request logging below warnings, used by tests.
	Quiet bool
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, assignmentHandler AssignmentHandler, dayLockHandler DayLockHandler, crewHandler CrewHandler, eventHandler EventHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	level := slog.LevelDebug
	if opts.Quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "labor-roster"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  level,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot set headers, so the stream also takes ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.With(middleware.RequirePermission(user.PermissionRosterView)).Get("/events/stream", eventHandler.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/assignments", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionRosterView)).Get("/", assignmentHandler.List)
				r.With(middleware.RequirePermission(user.PermissionRosterEdit)).Post("/", assignmentHandler.Upsert)
				r.Route("/{id}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionRosterView)).Get("/", assignmentHandler.Get)
					r.With(middleware.RequirePermission(user.PermissionRosterEdit)).Delete("/", assignmentHandler.Delete)
				})
			})

			r.With(middleware.RequirePermission(user.PermissionRosterView)).Get("/candidates", assignmentHandler.Candidates)

			r.Route("/suggestions", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionRosterView)).Get("/", assignmentHandler.Suggest)
				r.With(middleware.RequirePermission(user.PermissionRosterEdit)).Post("/accept", assignmentHandler.AcceptSuggestions)
			})

			r.Route("/day-locks", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionRosterView)).Get("/", dayLockHandler.Status)
				r.With(middleware.RequirePermission(user.PermissionRosterLock)).Post("/", dayLockHandler.Lock)
			})

			r.Route("/machines/{machineID}", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCrewView))
					r.Get("/crews", crewHandler.List)
					r.Get("/rotation", crewHandler.Rotation)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCrewManage))
					r.Post("/crews", crewHandler.Create)
					r.Post("/crews/{crewID}/override", crewHandler.OverrideShift)
					r.Post("/crew-schedule", crewHandler.GenerateSchedule)
				})
			})

			r.With(middleware.RequirePermission(user.PermissionCrewManage)).Put("/crews/{crewID}/members", crewHandler.UpdateMembers)
		})
	})
	return r
}
