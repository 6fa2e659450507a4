package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/givebridge/givebridge-backend/api/controllers"
	webhookcontrollers "github.com/givebridge/givebridge-backend/api/controllers/webhooks"
	"github.com/givebridge/givebridge-backend/api/middleware"
	"github.com/givebridge/givebridge-backend/internal/aggregation"
	"github.com/givebridge/givebridge-backend/internal/auth"
	"github.com/givebridge/givebridge-backend/internal/causes"
	"github.com/givebridge/givebridge-backend/internal/donations"
	"github.com/givebridge/givebridge-backend/internal/users"
	stripewebhook "github.com/givebridge/givebridge-backend/internal/webhooks/stripe"
	"github.com/givebridge/givebridge-backend/pkg/auth/session"
	"github.com/givebridge/givebridge-backend/pkg/config"
	"github.com/givebridge/givebridge-backend/pkg/db"
	"github.com/givebridge/givebridge-backend/pkg/logger"
	"github.com/givebridge/givebridge-backend/pkg/redis"
	"github.com/givebridge/givebridge-backend/pkg/stripe"
)

// Deps carries everything the HTTP surface needs. Grouped in a struct so
// main stays readable as the wiring grows.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry

	AuthService        auth.Service
	CausesService      causes.Service
	DonationsService   donations.Service
	AggregationService aggregation.Service
	UsersRepo          *users.Repository

	StripeClient *stripe.Client
	WebhookSvc   *stripewebhook.Service
	WebhookGuard *stripewebhook.IdempotencyGuard
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(d.WebhookSvc, d.StripeClient, d.WebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.AuthRegister(d.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/send-reset-otp", controllers.AuthSendResetOTP(d.AuthService, logg))
		r.Post("/reset-password", controllers.AuthResetPassword(d.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(d.AuthService, logg))
			r.Post("/send-verify-otp", controllers.AuthSendVerifyOTP(d.AuthService, logg))
			r.Post("/verify-account", controllers.AuthVerifyAccount(d.AuthService, logg))
			r.Get("/is-auth", controllers.AuthProfile(d.AuthService, logg))
		})
	})

	r.Route("/api/v1/causes", func(r chi.Router) {
		r.Get("/", controllers.CausesList(d.CausesService, logg))
		r.Get("/{causeId}", controllers.CausesGet(d.CausesService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Get("/users/me", controllers.UsersMe(d.AggregationService, logg))

		r.Route("/donations", func(r chi.Router) {
			r.Post("/intent", controllers.DonationsCreateIntent(d.DonationsService, logg))
			r.Post("/confirm", controllers.DonationsConfirm(d.DonationsService, logg))
			r.Get("/", controllers.DonationsList(d.DonationsService, logg))
			r.Get("/{donationId}", controllers.DonationsGet(d.DonationsService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/causes", func(r chi.Router) {
			r.Post("/", controllers.CausesCreate(d.CausesService, logg))
			r.Put("/{causeId}", controllers.CausesUpdate(d.CausesService, logg))
			r.Delete("/{causeId}", controllers.CausesDelete(d.CausesService, logg))
		})

		r.Get("/donations", controllers.AdminDonations(d.AggregationService, logg))
		r.Get("/donors", controllers.AdminDonors(d.UsersRepo, logg))

		r.Route("/admins/{userId}", func(r chi.Router) {
			r.Post("/approve", controllers.AdminApprove(d.AuthService, logg))
			r.Post("/deny", controllers.AdminDeny(d.AuthService, logg))
		})
	})

	return r
}
