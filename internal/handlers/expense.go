package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/khaata-app/khaata-server/internal/auth"
	"github.com/khaata-app/khaata-server/internal/httpx"
	"github.com/khaata-app/khaata-server/internal/models"
	"github.com/khaata-app/khaata-server/internal/validation"

	"gorm.io/gorm"
)

type ExpenseHandler struct{ DB *gorm.DB }

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler { return &ExpenseHandler{DB: db} }

type expenseInput struct {
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Date          string  `json:"date"` // "2006-01-02" or RFC3339
	Vendor        string  `json:"vendor"`
	Notes         string  `json:"notes"`
	Description   string  `json:"description"`
}

func (in *expenseInput) validate() (time.Time, validation.Violations) {
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.NonNegativeFloat("amount", in.Amount, v)
	date, err := parseDate(in.Date)
	if err != nil {
		v["date"] = "invalid_date"
	}
	return date, v
}

// List: GET /expenses?from=&to=&category=
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	dbq := h.DB.Where("user_id = ?", userID)
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := parseDate(from); err == nil {
			dbq = dbq.Where("date >= ?", t)
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := parseDate(to); err == nil {
			dbq = dbq.Where("date <= ?", t)
		}
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		dbq = dbq.Where("category = ?", cat)
	}
	var expenses []models.Expense
	if err := dbq.Order("date desc, id desc").Find(&expenses).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_expenses", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": expenses, "total": len(expenses)})
}

// Create: POST /expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var in expenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	date, v := in.validate()
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	expense := models.Expense{
		UserID: userID, Title: in.Title, Category: in.Category, Amount: in.Amount,
		PaymentMethod: in.PaymentMethod, Date: date, Vendor: in.Vendor,
		Notes: in.Notes, Description: in.Description,
	}
	if err := h.DB.Create(&expense).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_expense", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}

// Update: PUT /expenses/{id}
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	expense, ok := h.load(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	var in expenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	date, v := in.validate()
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	err := h.DB.Model(expense).Updates(map[string]any{
		"title": in.Title, "category": in.Category, "amount": in.Amount,
		"payment_method": in.PaymentMethod, "date": date, "vendor": in.Vendor,
		"notes": in.Notes, "description": in.Description,
	}).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_expense", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

// Delete: DELETE /expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	expense, ok := h.load(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	if err := h.DB.Delete(expense).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_expense", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListCategories: GET /expense-categories
func (h *ExpenseHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var cats []models.ExpenseCategory
	if err := h.DB.Where("user_id = ?", userID).Order("name").Find(&cats).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": cats, "total": len(cats)})
}

// CreateCategory: POST /expense-categories
func (h *ExpenseHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var in struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}
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
	cat := models.ExpenseCategory{UserID: userID, Name: in.Name, Color: in.Color, Icon: in.Icon}
	if err := h.DB.Create(&cat).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_category", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, cat)
}

// DeleteCategory: DELETE /expense-categories/{id}
func (h *ExpenseHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.ExpenseCategory{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_category", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ExpenseHandler) load(w http.ResponseWriter, idStr string, userID uint) (*models.Expense, bool) {
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var expense models.Expense
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_expense", nil)
		return nil, false
	}
	return &expense, true
}

// parseDate accepts "2006-01-02" or RFC3339; empty means now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
