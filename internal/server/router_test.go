package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/khaata-app/khaata-server/internal/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, m := range db.Models() {
		if err := conn.AutoMigrate(m); err != nil {
			t.Fatalf("automigrate %T: %v", m, err)
		}
	}
	return New(conn)
}

func TestHealthEndpoints(t *testing.T) {
	h := testRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: code = %d, want 200", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := testRouter(t)
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/me"},
		{http.MethodGet, "/products"},
		{http.MethodGet, "/products/low-stock"},
		{http.MethodGet, "/customers"},
		{http.MethodGet, "/invoices"},
		{http.MethodGet, "/invoices/next-number"},
		{http.MethodGet, "/expenses"},
		{http.MethodGet, "/reports/dashboard"},
		{http.MethodPost, "/invoices"},
	}
	for _, rt := range routes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: code = %d, want 401", rt.method, rt.path, rec.Code)
		}
	}
}

func TestSignupThenAuthenticatedRequest(t *testing.T) {
	h := testRouter(t)

	body := strings.NewReader(`{"email":"shop@example.com","password":"hunter2hunter2","name":"Ravi","shop_name":"Ravi Kirana"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup", body)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: code = %d, body = %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected session cookie, got %d cookies", len(cookies))
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated /products: code = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/invoices/next-number", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("next-number: code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "KHAATA-0001") {
		t.Errorf("next-number body = %s", rec.Body.String())
	}
}

func TestTamperedSessionRejected(t *testing.T) {
	h := testRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(&http.Cookie{Name: "khaata_session", Value: "1.Zm9yZ2Vk"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
}
