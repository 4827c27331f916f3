package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tbourn/go-onboarding-backend/internal/config"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.GeocodeConfig{
		BaseURL:   srv.URL,
		UserAgent: "EmployeeBadgeApp/1.0",
		Timeout:   2 * time.Second,
	})
}

func TestValidate_MatchFound(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/search" {
			t.Errorf("path = %q; want /search", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "1" || r.URL.Query().Get("format") != "json" {
			t.Errorf("unexpected query params: %v", r.URL.Query())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"place_id":12345,"display_name":"Athens, Greece"}]`))
	}))
	defer srv.Close()

	ok, err := newTestClient(srv).Validate(context.Background(), "Athens")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ok {
		t.Fatal("Validate = false; want true")
	}
	if gotQuery != "Athens" {
		t.Errorf("q = %q; want Athens", gotQuery)
	}
	if gotUA != "EmployeeBadgeApp/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestValidate_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ok, err := newTestClient(srv).Validate(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Fatal("Validate = true for empty result set")
	}
}

func TestValidate_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).Validate(context.Background(), "Athens"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestValidate_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).Validate(context.Background(), "Athens"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestValidate_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	if _, err := newTestClient(srv).Validate(context.Background(), "Athens"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestValidate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(srv).Validate(ctx, "Athens"); err == nil {
		t.Fatal("expected context error")
	}
}
