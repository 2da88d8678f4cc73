package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kebapci/pos-service/internal/catalog"
	"github.com/kebapci/pos-service/internal/handler"
	"github.com/kebapci/pos-service/internal/order"
	"github.com/kebapci/pos-service/internal/payment"
	"github.com/kebapci/pos-service/internal/staff"
	"github.com/kebapci/pos-service/internal/table"
)

// NewRouter wires repositories, services and handlers onto one chi mux.
func NewRouter(pool *pgxpool.Pool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	tableRepo := table.NewRepository(pool)
	catalogRepo := catalog.NewRepository(pool)
	orderRepo := order.NewRepository(pool)
	paymentRepo := payment.NewRepository(pool)
	staffRepo := staff.NewRepository(pool)

	tableSvc := table.NewService(tableRepo)
	catalogSvc := catalog.NewService(catalogRepo)
	orderSvc := order.NewService(orderRepo, catalogSvc, tableSvc)
	paymentSvc := payment.NewService(paymentRepo, orderRepo)
	staffSvc := staff.NewService(staffRepo)

	r.Route("/api", func(api chi.Router) {
		handler.NewTableHandler(tableSvc, orderSvc, paymentSvc).RegisterRoutes(api)
		handler.NewCatalogHandler(catalogSvc).RegisterRoutes(api)
		handler.NewOrderHandler(orderSvc, paymentSvc).RegisterRoutes(api)
		handler.NewPaymentHandler(paymentSvc).RegisterRoutes(api)
		handler.NewStaffHandler(staffSvc).RegisterRoutes(api)
	})

	return r
}
