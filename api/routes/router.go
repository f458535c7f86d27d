package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/firn-fr/dashboard-backend/api/controllers"
	dashcontrollers "github.com/firn-fr/dashboard-backend/api/controllers/dashboard"
	"github.com/firn-fr/dashboard-backend/api/middleware"
	"github.com/firn-fr/dashboard-backend/pkg/config"
	"github.com/firn-fr/dashboard-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dashboardService dashcontrollers.Service,
	orderRelay controllers.OrderRelay,
	metricsHandler http.Handler,
	pingers ...controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers...))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", dashcontrollers.Load(dashboardService, logg))
			r.Get("/stats", dashcontrollers.Stats(dashboardService, logg))
			r.Get("/vendors", dashcontrollers.Vendors(dashboardService, logg))
			r.Get("/clients", dashcontrollers.Clients(dashboardService, logg))
		})
		r.Get("/shopify/orders", controllers.ProxyOrders(orderRelay, logg))
	})

	return r
}
