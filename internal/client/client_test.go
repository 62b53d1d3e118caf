package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corpdesk/corpdesk/internal/models"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds["password"] != "pw" {
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    models.User{ID: "u1", Name: "Alice", Email: creds["email"], Role: models.RoleCustomer},
			"token":   "tok123",
		})
	})
	mux.HandleFunc("/api/registrations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok123" {
			http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]models.Registration{{ID: "r1", CompanyName: "Acme"}})
	})
	mux.HandleFunc("/api/packages", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Package{{ID: "p1", Name: "Starter"}})
	})
	return httptest.NewServer(mux)
}

func TestClient_LoginAndList(t *testing.T) {
	srv := newAPIServer(t)
	defer srv.Close()

	c := New(srv.URL, filepath.Join(t.TempDir(), "cache.json"))
	ctx := context.Background()

	u, err := c.Login(ctx, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != "u1" || c.Token != "tok123" {
		t.Errorf("user = %+v, token = %q", u, c.Token)
	}

	res, err := c.Registrations(ctx)
	if err != nil {
		t.Fatalf("registrations: %v", err)
	}
	if res.Offline {
		t.Error("live read must not be marked offline")
	}
	if len(res.Data) != 1 || res.Data[0].CompanyName != "Acme" {
		t.Errorf("unexpected registrations: %+v", res.Data)
	}
}

func TestClient_LoginRejected(t *testing.T) {
	srv := newAPIServer(t)
	defer srv.Close()

	c := New(srv.URL, filepath.Join(t.TempDir(), "cache.json"))
	if _, err := c.Login(context.Background(), "a@b.c", "wrong"); err == nil {
		t.Error("expected login failure")
	}
}

func TestClient_OfflineFallback(t *testing.T) {
	srv := newAPIServer(t)
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	c := New(srv.URL, cachePath)
	if _, err := c.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Registrations(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Packages(ctx); err != nil {
		t.Fatal(err)
	}

	// Server goes away; a fresh client on the same cache file keeps serving
	// list reads, labeled as offline.
	srv.Close()
	c2 := New(srv.URL, cachePath)
	c2.Token = "tok123"

	regs, err := c2.Registrations(ctx)
	if err != nil {
		t.Fatalf("offline registrations: %v", err)
	}
	if !regs.Offline {
		t.Error("cached read must be marked offline")
	}
	if len(regs.Data) != 1 || regs.Data[0].ID != "r1" {
		t.Errorf("unexpected cached registrations: %+v", regs.Data)
	}

	pkgs, err := c2.Packages(ctx)
	if err != nil {
		t.Fatalf("offline packages: %v", err)
	}
	if !pkgs.Offline || len(pkgs.Data) != 1 {
		t.Errorf("unexpected cached packages: %+v", pkgs)
	}

	// Single-record reads never serve stale data.
	if _, err := c2.Registration(ctx, "r1"); err == nil {
		t.Error("expected error for single read while offline")
	}
}

func TestClient_NoCacheNoFallback(t *testing.T) {
	srv := newAPIServer(t)
	srv.Close()

	c := New(srv.URL, filepath.Join(t.TempDir(), "cache.json"))
	if _, err := c.Registrations(context.Background()); err == nil {
		t.Error("expected error with no cache snapshot")
	}
}

func TestCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := NewCache(path)
	c.SetRegistrations([]models.Registration{{ID: "r1"}})
	c.SetBankDetails([]models.BankDetail{{ID: "b1", BankName: "Bank of Ceylon"}})
	if err := c.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.SavedAt.IsZero() {
		t.Error("SavedAt not stamped")
	}

	loaded := NewCache(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Registrations) != 1 || loaded.Registrations[0].ID != "r1" {
		t.Errorf("unexpected registrations: %+v", loaded.Registrations)
	}
	if len(loaded.BankDetails) != 1 || loaded.BankDetails[0].BankName != "Bank of Ceylon" {
		t.Errorf("unexpected bank details: %+v", loaded.BankDetails)
	}

	// Corrupt snapshots surface as errors instead of silently loading.
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := NewCache(path).Load(); err == nil {
		t.Error("expected decode error for corrupt cache")
	}

	// A missing file is not an error.
	fresh := NewCache(filepath.Join(t.TempDir(), "missing.json"))
	if err := fresh.Load(); err != nil {
		t.Errorf("missing file: %v", err)
	}
	if !fresh.SavedAt.Equal(time.Time{}) {
		t.Errorf("fresh cache should have zero SavedAt, got %v", fresh.SavedAt)
	}
}
