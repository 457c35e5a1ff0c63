package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/khaata-app/khaata-server/internal/auth"
	"github.com/khaata-app/khaata-server/internal/format"
	"github.com/khaata-app/khaata-server/internal/httpx"
	"github.com/khaata-app/khaata-server/internal/models"
	"github.com/khaata-app/khaata-server/internal/reports"

	"gorm.io/gorm"
)

// ReportsHandler loads a user's collections and feeds them to the pure
// aggregation functions. Now is injectable so integration tests can pin the
// clock.
type ReportsHandler struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewReportsHandler(db *gorm.DB) *ReportsHandler {
	return &ReportsHandler{DB: db, Now: time.Now}
}

// Dashboard: GET /reports/dashboard
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var invoices []models.Invoice
	if err := h.DB.Preload("Items").Where("user_id = ?", userID).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoices", nil)
		return
	}
	var products []models.Product
	if err := h.DB.Preload("Variants").Where("user_id = ?", userID).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_products", nil)
		return
	}
	var customers []models.Customer
	if err := h.DB.Where("user_id = ?", userID).Find(&customers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_customers", nil)
		return
	}

	stats := reports.Dashboard(invoices, products, customers, h.Now())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"stats":               stats,
		"today_sales_display": format.Currency(stats.TodaySales),
	})
}

// Sales: GET /reports/sales?from=&to=
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	start, end, ok := h.rangeFrom(w, r)
	if !ok {
		return
	}
	var invoices []models.Invoice
	if err := h.DB.Preload("Items").Where("user_id = ?", userID).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, reports.Sales(invoices, start, end))
}

// ProductSales: GET /reports/products/{id}?from=&to=
// A JSON null body means no sale of this product fell in range, as opposed to
// a zero-valued report.
func (h *ReportsHandler) ProductSales(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	productID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || productID <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	start, end, ok := h.rangeFrom(w, r)
	if !ok {
		return
	}
	var invoices []models.Invoice
	if err := h.DB.Preload("Items").Where("user_id = ?", userID).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoices", nil)
		return
	}
	rep := reports.ProductSales(invoices, uint(productID), start, end)
	if rep == nil {
		httpx.JSON(w, http.StatusOK, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

// Customers: GET /reports/customers?from=&to=
func (h *ReportsHandler) Customers(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	start, end, ok := h.rangeFrom(w, r)
	if !ok {
		return
	}
	var invoices []models.Invoice
	if err := h.DB.Where("user_id = ?", userID).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": reports.Customers(invoices, start, end)})
}

// Expenses: GET /reports/expenses?from=&to=
func (h *ReportsHandler) Expenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	start, end, ok := h.rangeFrom(w, r)
	if !ok {
		return
	}
	var expenses []models.Expense
	if err := h.DB.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_expenses", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, reports.Expenses(expenses, start, end))
}

// rangeFrom parses from/to query params. Missing from means the beginning of
// time; missing to means now.
func (h *ReportsHandler) rangeFrom(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start := time.Time{}
	end := h.Now()
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_from", nil)
			return start, end, false
		}
		start = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_to", nil)
			return start, end, false
		}
		// A bare date means the whole day.
		if len(v) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = t
	}
	return start, end, true
}
