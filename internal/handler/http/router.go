package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stephenstephen/review/internal/access"
	"github.com/stephenstephen/review/internal/handler"
	"github.com/stephenstephen/review/internal/storage"
	"github.com/stephenstephen/review/pkg/health"
	"github.com/stephenstephen/review/pkg/middleware"
)

// uploadsMaxAge is the Cache-Control max-age for stored images. Keys are
// unique per upload so content never changes.
const uploadsMaxAge = 365 * 24 * 60 * 60

// RouterConfig carries the dependencies of NewRouter.
type RouterConfig struct {
	ServiceName string
	Products    handler.ProductService
	Reviews     handler.ReviewService
	Users       handler.UserService
	Images      storage.Storage
	Tokens      middleware.TokenValidator
	Health      *health.Handler
	// GraphQL is mounted at /graphql when set.
	GraphQL http.Handler

	CORS               middleware.CORSConfig
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
	UploadMaxBytes     int64
	PprofAllowedCIDRs  []string
	Logger             *slog.Logger
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Authenticate(cfg.Tokens))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	authenticated := middleware.Guard(access.Checks(access.Authenticated)...)
	adminOnly := middleware.Guard(access.Checks(access.AdminOnly)...)

	products := NewProductHandler(cfg.Products, cfg.Reviews, logger)
	reviews := NewReviewHandler(cfg.Reviews, logger)
	users := NewUserHandler(cfg.Users, logger)
	uploads := NewUploadHandler(cfg.Images, cfg.UploadMaxBytes, logger)

	if cfg.GraphQL != nil {
		r.With(middleware.NoStore).Post("/graphql", cfg.GraphQL.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.ListProducts)
			r.Get("/{id}", products.GetProduct)
			r.Get("/{id}/reviews", products.ListProductReviews)
			r.With(adminOnly).Post("/", products.CreateProduct)
			r.With(adminOnly).Patch("/{id}", products.UpdateProduct)
			r.With(adminOnly).Delete("/{id}", products.DeleteProduct)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", reviews.ListReviews)
			r.Get("/{id}", reviews.GetReview)
			r.Post("/", reviews.CreateReview)
			r.With(adminOnly).Patch("/{id}", reviews.UpdateReview)
			r.With(adminOnly).Delete("/{id}", reviews.DeleteReview)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, logger))
				r.Post("/register", users.Register)
				r.Post("/login", users.Login)
			})
			r.With(authenticated).Get("/profile", users.GetProfile)
			r.With(authenticated).Patch("/profile", users.UpdateProfile)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(authenticated).Get("/me/reviews", reviews.ListMyReviews)
			r.With(adminOnly).Get("/", users.ListUsers)
			r.With(adminOnly).Patch("/{id}/status", users.SetActive)
		})

		r.With(adminOnly).Post("/uploads", uploads.Upload)
	})

	r.With(middleware.ImmutableCache(uploadsMaxAge)).Get("/uploads/{filename}", uploads.Serve)

	return r
}
