package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"sqlite path untouched", "file:khaata.db", "file:khaata.db"},
		{"url passes through", "postgres://u:p@localhost:5432/khaata", "postgres://u:p@localhost:5432/khaata"},
		{"quotes stripped", `"file:khaata.db"`, "file:khaata.db"},
		{"kv spacing collapsed", "host=localhost   user=khaata  dbname=khaata sslmode=require", "host=localhost user=khaata dbname=khaata sslmode=require"},
		{"kv gets sslmode default", "host=localhost user=khaata dbname=khaata", "host=localhost user=khaata dbname=khaata sslmode=disable"},
		{"whitespace trimmed", "  file:khaata.db  ", "file:khaata.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDSN(tt.in); got != tt.want {
				t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"postgres://u:p@localhost/khaata", true},
		{"postgresql://u:p@localhost/khaata", true},
		{"host=localhost user=khaata dbname=khaata", true},
		{"file:khaata.db", false},
		{"khaata.db", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPostgres(tt.in); got != tt.want {
			t.Errorf("IsPostgres(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
