package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmesh/shopmesh-backend/api/controllers"
	"github.com/shopmesh/shopmesh-backend/api/middleware"
	inventorysvc "github.com/shopmesh/shopmesh-backend/internal/inventory"
	"github.com/shopmesh/shopmesh-backend/pkg/config"
	"github.com/shopmesh/shopmesh-backend/pkg/db"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP db.Pinger,
	inventoryService inventorysvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/products/{productID}/status", controllers.ProductStockStatus(inventoryService, logg))
		r.Get("/availability/{productID}", controllers.CheckAvailability(inventoryService, logg))
		r.Get("/low-stock", controllers.LowStockAlerts(inventoryService, logg))
		r.Get("/reservations/customers/{customerID}", controllers.CustomerReservations(inventoryService, logg))
		r.Get("/transactions", controllers.ListTransactions(inventoryService, logg))

		r.Post("/reserve", controllers.ReserveStock(inventoryService, logg))
		r.Delete("/reserve/{reservationID}", controllers.ReleaseReservation(inventoryService, logg))
		r.Post("/reserve/{reservationID}/confirm", controllers.ConfirmReservation(inventoryService, logg))
		r.Post("/reserve/{reservationID}/quantity", controllers.UpdateReservationQuantity(inventoryService, logg))

		r.Post("/bulk-update", controllers.BulkUpdateStock(inventoryService, logg))
		r.Post("/cleanup/expired-reservations", controllers.CleanupExpiredReservations(inventoryService, logg))
	})

	return r
}
