package sourceinfo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["api_key"] != "s3cret" {
			t.Fatalf("api key not forwarded: %v", body)
		}
		json.NewEncoder(w).Encode(VideoInfo{ID: "abc123", Title: "Demo", Duration: 312, Channel: "acme"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s3cret", logrus.New())
	info, err := c.Resolve(context.Background(), "https://youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Title != "Demo" || info.Duration != 312 {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestResolve_NotConfigured(t *testing.T) {
	c := NewClient("", "", logrus.New())
	_, err := c.Resolve(context.Background(), "https://example.com/v.mp4")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestResolve_SidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "video not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", logrus.New())
	if _, err := c.Resolve(context.Background(), "https://example.com/missing"); err == nil {
		t.Fatal("expected error on 404")
	}
}
