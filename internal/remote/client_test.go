package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRejectsHTTP(t *testing.T) {
	if _, err := New("http://example.com/policy.yaml", ""); err == nil {
		t.Fatalf("expected http:// URL to be rejected")
	}
}

func TestNewAcceptsHTTPS(t *testing.T) {
	if _, err := New("https://example.com/policy.yaml", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchReturnsUpdatedOn200(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc123"`)
		w.Write([]byte("policies: []"))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.httpClient = srv.Client()

	result, err := c.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.NotModified {
		t.Fatalf("expected an update, got NotModified")
	}
	if result.ETag != `"abc123"` {
		t.Errorf("ETag = %q", result.ETag)
	}
}

func TestFetchReturnsNotModifiedOn304(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"abc123"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"abc123"`)
		w.Write([]byte("policies: []"))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.httpClient = srv.Client()

	result, err := c.Fetch(context.Background(), `"abc123"`)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !result.NotModified {
		t.Fatalf("expected NotModified")
	}
}

func TestFetchClassifiesNotFound(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.httpClient = srv.Client()

	if _, err := c.Fetch(context.Background(), ""); err == nil {
		t.Fatalf("expected an error for 404")
	}
}
