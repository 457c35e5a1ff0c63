package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/khaata-app/khaata-server/internal/auth"
	"github.com/khaata-app/khaata-server/internal/httpx"
	"github.com/khaata-app/khaata-server/internal/models"
	"github.com/khaata-app/khaata-server/internal/validation"

	"gorm.io/gorm"
)

type CustomerHandler struct{ DB *gorm.DB }

func NewCustomerHandler(db *gorm.DB) *CustomerHandler { return &CustomerHandler{DB: db} }

type customerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// List: GET /customers?q=
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	dbq := h.DB.Where("user_id = ?", userID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(unsafeQueryChars.ReplaceAllString(q, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR phone LIKE ?", like, like)
	}
	var customers []models.Customer
	if err := dbq.Order("name").Find(&customers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": len(customers)})
}

// Create: POST /customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var in customerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	customer := models.Customer{UserID: userID, Name: in.Name, Phone: in.Phone, Address: in.Address, Notes: in.Notes}
	if err := h.DB.Create(&customer).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

// Get: GET /customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	customer, ok := h.load(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

// Update: PUT /customers/{id}. Only contact fields are writable: the ledger
// columns (credit_balance, total_purchases, last_visit) belong to invoice
// commit and delete alone.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	customer, ok := h.load(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	var in customerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	err := h.DB.Model(customer).Select("name", "phone", "address", "notes").Updates(map[string]any{
		"name": in.Name, "phone": in.Phone, "address": in.Address, "notes": in.Notes,
	}).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

// Delete: DELETE /customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	customer, ok := h.load(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	var invoiceCount int64
	h.DB.Model(&models.Invoice{}).Where("customer_id = ?", customer.ID).Count(&invoiceCount)
	if invoiceCount > 0 {
		httpx.JSONError(w, http.StatusConflict, "customer_has_invoices", nil)
		return
	}
	if err := h.DB.Delete(customer).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CustomerHandler) load(w http.ResponseWriter, idStr string, userID uint) (*models.Customer, bool) {
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var customer models.Customer
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_customer", nil)
		return nil, false
	}
	return &customer, true
}
