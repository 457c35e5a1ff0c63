package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khaata-app/khaata-server/internal/models"
)

func TestSignupLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.conn)

	body := map[string]any{
		"email":     "  New@Example.COM ",
		"password":  "hunter2hunter2",
		"name":      "Meena",
		"shop_name": "Meena Stores",
	}
	rec := httptest.NewRecorder()
	h.signup(rec, env.request(t, http.MethodPost, "/signup", body, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created models.User
	decodeJSON(t, rec, &created)
	if created.Email != "new@example.com" {
		t.Errorf("email = %q, want normalized new@example.com", created.Email)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("signup did not set a session cookie")
	}
	// Password hash never leaves the server.
	var stored models.User
	if err := env.conn.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.Password == "hunter2hunter2" {
		t.Error("password stored in plaintext")
	}

	// Login with the same credentials, any case of email.
	rec = httptest.NewRecorder()
	h.login(rec, env.request(t, http.MethodPost, "/login", map[string]any{
		"email": "NEW@example.com", "password": "hunter2hunter2",
	}, ""))
	if rec.Code != http.StatusOK {
		t.Errorf("login: code = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Wrong password.
	rec = httptest.NewRecorder()
	h.login(rec, env.request(t, http.MethodPost, "/login", map[string]any{
		"email": "new@example.com", "password": "wrong",
	}, ""))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: code = %d, want 401", rec.Code)
	}

	// Unknown email gets the same error as a wrong password.
	rec = httptest.NewRecorder()
	h.login(rec, env.request(t, http.MethodPost, "/login", map[string]any{
		"email": "nobody@example.com", "password": "hunter2hunter2",
	}, ""))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: code = %d, want 401", rec.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.conn)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing email", map[string]any{"password": "hunter2hunter2"}, http.StatusBadRequest},
		{"missing password", map[string]any{"email": "a@b.com"}, http.StatusBadRequest},
		{"short password", map[string]any{"email": "a@b.com", "password": "short"}, http.StatusBadRequest},
		{"duplicate email", map[string]any{"email": "shop@example.com", "password": "hunter2hunter2"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.signup(rec, env.request(t, http.MethodPost, "/signup", tt.body, ""))
			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d; body = %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.conn)

	rec := httptest.NewRecorder()
	h.Me(rec, env.request(t, http.MethodGet, "/me", nil, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var u models.User
	decodeJSON(t, rec, &u)
	if u.ID != env.user.ID || u.Email != env.user.Email {
		t.Errorf("me = %+v", u)
	}
}
