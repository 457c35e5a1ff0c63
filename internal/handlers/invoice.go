package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/khaata-app/khaata-server/internal/auth"
	"github.com/khaata-app/khaata-server/internal/billing"
	"github.com/khaata-app/khaata-server/internal/format"
	"github.com/khaata-app/khaata-server/internal/httpx"
	"github.com/khaata-app/khaata-server/internal/models"

	"gorm.io/gorm"
)

type InvoiceHandler struct {
	DB  *gorm.DB
	Svc *billing.Service
}

func NewInvoiceHandler(db *gorm.DB, svc *billing.Service) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc}
}

// Create: POST /invoices — commits a cart as a sale.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		CustomerID uint            `json:"customer_id"`
		Cart       billing.Cart    `json:"cart"`
		Payment    billing.Payment `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Payment.Type == "" {
		req.Payment.Type = models.PaymentCash
	}
	if !models.ValidPaymentType(req.Payment.Type) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payment_type", nil)
		return
	}

	inv, err := h.Svc.Commit(userID, req.CustomerID, &req.Cart, req.Payment)
	if err != nil {
		var stockErr *billing.InsufficientStockError
		switch {
		case errors.Is(err, billing.ErrNoCustomer), errors.Is(err, billing.ErrEmptyCart), errors.Is(err, billing.ErrBadQuantity):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
		case errors.As(err, &stockErr):
			httpx.JSONError(w, http.StatusConflict, "insufficient_stock", map[string]any{
				"product":   stockErr.ProductName,
				"pack_size": stockErr.PackSize,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			})
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, invoicePayload(inv))
}

// List: GET /invoices?page=&limit= — most recent first.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	dbq := h.DB.Where("user_id = ?", userID)
	var total int64
	dbq.Model(&models.Invoice{}).Count(&total)
	var invs []models.Invoice
	if err := dbq.Preload("Items").Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&invs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var inv models.Invoice
	if err := h.DB.Preload("Items").Where("id = ? AND user_id = ?", id, userID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoicePayload(&inv))
}

// Delete: DELETE /invoices/{id} — reverses stock and ledger effects.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(userID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// NextNumber: GET /invoices/next-number — preview for the billing screen.
// Non-binding: the commit transaction recomputes it.
func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var numbers []string
	if err := h.DB.Model(&models.Invoice{}).Where("user_id = ?", userID).Pluck("invoice_number", &numbers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"next_number": billing.NextInvoiceNumber(numbers)})
}

// invoicePayload decorates an invoice with display strings for receipt-style
// rendering on the client.
func invoicePayload(inv *models.Invoice) map[string]any {
	return map[string]any{
		"invoice":             inv,
		"grand_total_display": format.Currency(inv.GrandTotal),
		"balance_due_display": format.Currency(inv.BalanceDue),
	}
}
