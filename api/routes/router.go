package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ammargroup/storefront-backend/api/controllers"
	"github.com/ammargroup/storefront-backend/api/middleware"
	authsvc "github.com/ammargroup/storefront-backend/internal/auth"
	ordersvc "github.com/ammargroup/storefront-backend/internal/orders"
	productsvc "github.com/ammargroup/storefront-backend/internal/products"
	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/ammargroup/storefront-backend/pkg/db"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/ammargroup/storefront-backend/pkg/metrics"
	"github.com/ammargroup/storefront-backend/pkg/redis"
	"github.com/ammargroup/storefront-backend/pkg/storage/local"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	assetStore *local.Store,
	authService authsvc.Service,
	productService productsvc.Service,
	orderService ordersvc.Service,
	httpMetrics *metrics.HTTPMetrics,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	if assetStore != nil {
		fileServer := http.StripPrefix(assetStore.PublicPath(), http.FileServer(http.Dir(assetStore.Root())))
		r.Method(http.MethodGet, assetStore.PublicPath()+"/*", fileServer)
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(productService, logg))
		r.Get("/{id}", controllers.GetProduct(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))
			r.Post("/", controllers.CreateProduct(productService, cfg.Uploads, logg))
			r.Put("/{id}", controllers.UpdateProduct(productService, cfg.Uploads, logg))
			r.Delete("/{id}", controllers.DeleteProduct(productService, logg))
			r.Delete("/{id}/images", controllers.DeleteProductImage(productService, logg))
		})
	})

	r.Post("/api/order", controllers.PlaceOrder(orderService, logg))

	r.Route("/api/admin", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AdminLogin(authService, logg))
		r.With(middleware.AdminAuth(cfg.JWT, logg)).
			Get("/dashboard", controllers.AdminDashboard(logg))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/register", controllers.RegisterUser(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.UserLogin(authService, logg))
		r.With(middleware.UserAuth(cfg.JWT, logg)).
			Get("/me", controllers.UserProfile(logg))
	})

	return r
}
