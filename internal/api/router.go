package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/eventreg-be/internal/api/handlers"
	"github.com/isdelr/eventreg-be/internal/auth"
	"github.com/isdelr/eventreg-be/internal/notify"
	"github.com/isdelr/eventreg-be/internal/services"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

const (
	loginPath      = "/login"
	adminLoginPath = "/adminlogin"
)

// Options carries the settings the router needs from configuration.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(
	opts Options,
	tokens *auth.TokenManager,
	userService services.UserServiceProvider,
	eventService services.EventServiceProvider,
	registrationService services.RegistrationServiceProvider,
	activityService services.ActivityServiceProvider,
	notifier notify.Notifier,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.SameOriginMiddleware(opts.AllowedOrigins))
	r.Use(auth.SessionMiddleware(tokens, userService))

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(activityService, notifier)
	userHandler := handlers.NewUserHandler(userService, tokens, opts.SecureCookies)
	eventHandler := handlers.NewEventHandler(eventService, registrationService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	adminHandler := handlers.NewAdminHandler(eventService, registrationService, activityService)

	// Public pages
	r.Get("/", pageHandler.Index)
	r.Get("/healthz", pageHandler.Healthz)
	r.Get("/contact", pageHandler.ContactForm)
	r.Post("/contact", pageHandler.Contact)

	r.Get("/register", userHandler.RegisterForm)
	r.Post("/register", userHandler.Register)
	r.Get("/login", userHandler.LoginForm)
	r.Post("/login", userHandler.Login)
	r.Get("/adminlogin", userHandler.AdminLoginForm)
	r.Post("/adminlogin", userHandler.AdminLogin)

	// Signed-in users
	r.Group(func(r chi.Router) {
		r.Use(auth.Require(auth.CapabilityAuthenticated, loginPath))

		r.Get("/home", eventHandler.Home)
		r.Get("/profile", userHandler.Profile)
		r.Get("/logout", userHandler.Logout)
		r.Post("/logout", userHandler.Logout)

		r.Get("/event/{id}/register", eventHandler.RegistrationForm)
		r.Post("/event/{id}/register", eventHandler.Register)

		r.Get("/manage-registrations", registrationHandler.Manage)
		r.Post("/delete-registration/{id}", registrationHandler.Delete)
	})

	// Administrators
	r.Group(func(r chi.Router) {
		r.Use(auth.Require(auth.CapabilityAdministrator, adminLoginPath))

		r.Get("/admin_dashboard", adminHandler.Dashboard)
		r.Post("/admin_dashboard", adminHandler.DashboardAction)
		r.Post("/delete_event/{id}", adminHandler.DeleteEvent)
		r.Get("/registrations/{id}", adminHandler.Roster)
	})

	return r
}
