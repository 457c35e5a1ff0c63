package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khaata-app/khaata-server/internal/models"
)

func TestExpenseCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	h := NewExpenseHandler(env.conn)

	for _, body := range []map[string]any{
		{"title": "March rent", "category": "Rent", "amount": 5000, "payment_method": "cash", "date": "2025-03-01"},
		{"title": "Delivery", "category": "Transport", "amount": 300, "payment_method": "upi", "date": "2025-03-10"},
		{"title": "Old bill", "category": "Electricity", "amount": 900, "payment_method": "cash", "date": "2025-01-15"},
	} {
		rec := httptest.NewRecorder()
		h.Create(rec, env.request(t, http.MethodPost, "/expenses", body, ""))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %v: code = %d, body = %s", body["title"], rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	h.List(rec, env.request(t, http.MethodGet, "/expenses?from=2025-03-01&to=2025-03-31", nil, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: code = %d", rec.Code)
	}
	var resp struct {
		Items []models.Expense `json:"items"`
		Total int              `json:"total"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Total != 2 {
		t.Errorf("march expenses = %d, want 2", resp.Total)
	}
	// Most recent first.
	if len(resp.Items) == 2 && resp.Items[0].Title != "Delivery" {
		t.Errorf("order: first = %q", resp.Items[0].Title)
	}

	rec = httptest.NewRecorder()
	h.List(rec, env.request(t, http.MethodGet, "/expenses?category=Rent", nil, ""))
	decodeJSON(t, rec, &resp)
	if resp.Total != 1 || resp.Items[0].Category != "Rent" {
		t.Errorf("category filter = %+v", resp)
	}
}

func TestExpenseValidation(t *testing.T) {
	env := newTestEnv(t)
	h := NewExpenseHandler(env.conn)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"amount": 100}},
		{"negative amount", map[string]any{"title": "x", "amount": -5}},
		{"bad date", map[string]any{"title": "x", "amount": 100, "date": "15-03-2025"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, env.request(t, http.MethodPost, "/expenses", tt.body, ""))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestExpenseUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	h := NewExpenseHandler(env.conn)

	rec := httptest.NewRecorder()
	h.Create(rec, env.request(t, http.MethodPost, "/expenses", map[string]any{
		"title": "Rent", "category": "Rent", "amount": 5000, "date": "2025-03-01",
	}, ""))
	var e models.Expense
	decodeJSON(t, rec, &e)

	idStr := itoa(e.ID)
	rec = httptest.NewRecorder()
	h.Update(rec, env.request(t, http.MethodPut, "/expenses/"+idStr, map[string]any{
		"title": "March rent", "category": "Rent", "amount": 5500, "date": "2025-03-02",
	}, idStr))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var reloaded models.Expense
	if err := env.conn.First(&reloaded, e.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Title != "March rent" || reloaded.Amount != 5500 {
		t.Errorf("updated = %+v", reloaded)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, env.request(t, http.MethodDelete, "/expenses/"+idStr, nil, idStr))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: code = %d", rec.Code)
	}
	var count int64
	env.conn.Model(&models.Expense{}).Where("id = ?", e.ID).Count(&count)
	if count != 0 {
		t.Error("expense still present")
	}
}

func TestExpenseCategories(t *testing.T) {
	env := newTestEnv(t)
	h := NewExpenseHandler(env.conn)

	rec := httptest.NewRecorder()
	h.CreateCategory(rec, env.request(t, http.MethodPost, "/expense-categories", map[string]any{
		"name": "Packaging", "color": "#2ecc71", "icon": "package",
	}, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var cat models.ExpenseCategory
	decodeJSON(t, rec, &cat)

	rec = httptest.NewRecorder()
	h.ListCategories(rec, env.request(t, http.MethodGet, "/expense-categories", nil, ""))
	var resp struct {
		Items []models.ExpenseCategory `json:"items"`
		Total int                      `json:"total"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Total != 1 || resp.Items[0].Name != "Packaging" {
		t.Errorf("list = %+v", resp)
	}

	idStr := itoa(cat.ID)
	rec = httptest.NewRecorder()
	h.DeleteCategory(rec, env.request(t, http.MethodDelete, "/expense-categories/"+idStr, nil, idStr))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: code = %d", rec.Code)
	}

	// Deleting again is a 404.
	rec = httptest.NewRecorder()
	h.DeleteCategory(rec, env.request(t, http.MethodDelete, "/expense-categories/"+idStr, nil, idStr))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: code = %d, want 404", rec.Code)
	}
}
