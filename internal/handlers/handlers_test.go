package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/khaata-app/khaata-server/internal/auth"
	"github.com/khaata-app/khaata-server/internal/db"
	"github.com/khaata-app/khaata-server/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	conn *gorm.DB
	user models.User
}

func newTestEnv(t *testing.T) *testEnv {
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
	env := &testEnv{conn: conn}
	env.user = models.User{Email: "shop@example.com", Password: "x", Name: "Ravi", ShopName: "Ravi Kirana"}
	if err := conn.Create(&env.user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return env
}

// request builds an authenticated request with an optional JSON body and
// optional {id} path value.
func (e *testEnv) request(t *testing.T, method, target string, body any, pathID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r = r.WithContext(auth.WithUserID(r.Context(), e.user.ID))
	if pathID != "" {
		r.SetPathValue("id", pathID)
	}
	return r
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func (e *testEnv) createCustomer(t *testing.T, name string) models.Customer {
	t.Helper()
	c := models.Customer{UserID: e.user.ID, Name: name}
	if err := e.conn.Create(&c).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return c
}

func (e *testEnv) createProduct(t *testing.T, name string, variants ...models.ProductVariant) models.Product {
	t.Helper()
	p := models.Product{UserID: e.user.ID, Name: name, Variants: variants}
	if err := e.conn.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}
