package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"clipforge/internal/asynctask"
)

func TestTranscribe_SubmitAndPoll(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/transcriptions":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["media_url"] != "https://example.com/v.mp4" {
				t.Fatalf("unexpected media url %q", body["media_url"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "tr-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/transcriptions/tr-1":
			if atomic.AddInt32(&polls, 1) < 2 {
				w.Write([]byte(`{"status":"running"}`))
				return
			}
			w.Write([]byte(`{"status":"succeeded","output":{"chunks":[{"timestamp":[0,5],"text":"hi"}]}}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second, time.Millisecond, logrus.New())
	raw, err := c.Transcribe(context.Background(), "https://example.com/v.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Chunks []struct {
			Text string `json:"text"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("output is not the raw provider payload: %v", err)
	}
	if len(payload.Chunks) != 1 || payload.Chunks[0].Text != "hi" {
		t.Fatalf("unexpected payload %s", raw)
	}
}

func TestTranscribe_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "tr-2"})
			return
		}
		w.Write([]byte(`{"status":"failed","error":"audio stream missing"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second, time.Millisecond, logrus.New())
	_, err := c.Transcribe(context.Background(), "https://example.com/v.mp4")
	var fe *asynctask.FailedError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FailedError, got %v", err)
	}
	if fe.Reason != "audio stream missing" {
		t.Fatalf("unexpected reason %q", fe.Reason)
	}
}

func TestTranscribe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "tr-3"})
			return
		}
		w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", 15*time.Millisecond, 5*time.Millisecond, logrus.New())
	_, err := c.Transcribe(context.Background(), "https://example.com/v.mp4")
	var te *asynctask.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
}
