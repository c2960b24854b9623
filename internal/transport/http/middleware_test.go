package httptransport

import (
	"net/http/httptest"
	"testing"
)

func TestParsePaginationClamps(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=5", 10, 5},
		{"?limit=0", 1, 0},
		{"?limit=-3&offset=-1", 1, 0},
		{"?limit=9999", 500, 0},
		{"?limit=abc&offset=xyz", 50, 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/claims"+tt.query, nil)
		limit, offset := ParsePagination(r)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Fatalf("%q = (%d, %d), want (%d, %d)", tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer pd_abc", "pd_abc", true},
		{"Bearer ", "", false},
		{"", "", false},
		{"Basic pd_abc", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/players/me", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, ok := bearerToken(r)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("header %q = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCheckAdminAuth(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/admin/sweep", nil)
	r.Header.Set("X-Admin-Key", "secret")
	if !checkAdminAuth(r, "secret") {
		t.Fatal("header key rejected")
	}

	r = httptest.NewRequest("POST", "/api/admin/sweep", nil)
	r.Header.Set("Authorization", "Bearer secret")
	if !checkAdminAuth(r, "secret") {
		t.Fatal("bearer key rejected")
	}

	r = httptest.NewRequest("POST", "/api/admin/sweep", nil)
	r.Header.Set("Authorization", "Bearer wrong")
	if checkAdminAuth(r, "secret") {
		t.Fatal("wrong key accepted")
	}
}
