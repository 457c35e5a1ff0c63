package server

import (
	"context"
	"net/http"

	"github.com/khaata-app/khaata-server/internal/auth"
	"github.com/khaata-app/khaata-server/internal/billing"
	"github.com/khaata-app/khaata-server/internal/handlers"
	"github.com/khaata-app/khaata-server/internal/httpx"
	"github.com/khaata-app/khaata-server/internal/models"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth verifies the session's user still exists on each request.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints (public)
	ah := handlers.NewAuthHandler(db)
	ah.Register(mux)
	mux.Handle("GET /me", protect(ah.Me))

	// Products
	ph := handlers.NewProductHandler(db)
	mux.Handle("GET /products", protect(ph.List))
	mux.Handle("POST /products", protect(ph.Create))
	mux.Handle("GET /products/low-stock", protect(ph.LowStock))
	mux.Handle("GET /products/{id}", protect(ph.Get))
	mux.Handle("PUT /products/{id}", protect(ph.Update))
	mux.Handle("DELETE /products/{id}", protect(ph.Delete))

	// Customers
	ch := handlers.NewCustomerHandler(db)
	mux.Handle("GET /customers", protect(ch.List))
	mux.Handle("POST /customers", protect(ch.Create))
	mux.Handle("GET /customers/{id}", protect(ch.Get))
	mux.Handle("PUT /customers/{id}", protect(ch.Update))
	mux.Handle("DELETE /customers/{id}", protect(ch.Delete))

	// Invoices (billing)
	ih := handlers.NewInvoiceHandler(db, billing.NewService(db))
	mux.Handle("GET /invoices", protect(ih.List))
	mux.Handle("POST /invoices", protect(ih.Create))
	mux.Handle("GET /invoices/next-number", protect(ih.NextNumber))
	mux.Handle("GET /invoices/{id}", protect(ih.Get))
	mux.Handle("DELETE /invoices/{id}", protect(ih.Delete))

	// Expenses
	eh := handlers.NewExpenseHandler(db)
	mux.Handle("GET /expenses", protect(eh.List))
	mux.Handle("POST /expenses", protect(eh.Create))
	mux.Handle("PUT /expenses/{id}", protect(eh.Update))
	mux.Handle("DELETE /expenses/{id}", protect(eh.Delete))
	mux.Handle("GET /expense-categories", protect(eh.ListCategories))
	mux.Handle("POST /expense-categories", protect(eh.CreateCategory))
	mux.Handle("DELETE /expense-categories/{id}", protect(eh.DeleteCategory))

	// Reports
	rh := handlers.NewReportsHandler(db)
	mux.Handle("GET /reports/dashboard", protect(rh.Dashboard))
	mux.Handle("GET /reports/sales", protect(rh.Sales))
	mux.Handle("GET /reports/products/{id}", protect(rh.ProductSales))
	mux.Handle("GET /reports/customers", protect(rh.Customers))
	mux.Handle("GET /reports/expenses", protect(rh.Expenses))

	return withRecover(auth.Middleware(mux))
}

func protect(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(h)
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
