package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hmartinez-dev/tiendita-backend/api/controllers"
	"github.com/hmartinez-dev/tiendita-backend/api/middleware"
	"github.com/hmartinez-dev/tiendita-backend/internal/analytics"
	"github.com/hmartinez-dev/tiendita-backend/internal/backup"
	"github.com/hmartinez-dev/tiendita-backend/internal/notifications"
	"github.com/hmartinez-dev/tiendita-backend/internal/products"
	"github.com/hmartinez-dev/tiendita-backend/internal/sales"
	"github.com/hmartinez-dev/tiendita-backend/pkg/config"
	"github.com/hmartinez-dev/tiendita-backend/pkg/kv"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	backend kv.Store,
	registry *prometheus.Registry,
	productService products.Service,
	salesService sales.Service,
	notificationsService notifications.Service,
	analyticsService analytics.Service,
	backupService backup.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(!cfg.App.IsProd()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, backend))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Get("/{productID}", controllers.GetProduct(productService, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(productService, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(productService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(salesService, logg))
			r.Post("/", controllers.RecordSale(salesService, logg))
			r.Get("/{saleID}", controllers.GetSale(salesService, logg))
			r.Patch("/{saleID}", controllers.EditSale(salesService, logg))
			r.Delete("/{saleID}", controllers.DeleteSale(salesService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/revenue", controllers.RevenueSeries(analyticsService, logg))
			r.Get("/top-products", controllers.TopProducts(analyticsService, logg))
		})

		r.Route("/backup", func(r chi.Router) {
			r.Get("/export", controllers.ExportBackup(backupService, logg))
			r.Post("/import", controllers.ImportBackup(backupService, logg))
			r.Get("/log", controllers.ListBackupLog(backupService, logg))
		})

		r.Post("/reset", controllers.ResetApplication(backupService, logg))
	})

	return r
}
