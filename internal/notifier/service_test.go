package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	logx "ffbot/pkg/logx"
)

func newTestServer(t *testing.T, status int, seen chan<- map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v3/bots/post" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Errorf("invalid json body %q: %v", b, err)
		}
		if seen != nil {
			seen <- m
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendAccepted(t *testing.T) {
	t.Parallel()
	seen := make(chan map[string]any, 1)
	srv := newTestServer(t, http.StatusAccepted, seen)

	s := New(Config{BotID: "bot-123", BaseURL: srv.URL + "/", HTTPClient: srv.Client()}, logx.Nop())
	if err := s.Send(context.Background(), "Score Update\nAAA 1.00 - 2.00 BBB"); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	body := <-seen
	if body["bot_id"] != "bot-123" {
		t.Fatalf("bot_id = %v", body["bot_id"])
	}
	if body["text"] != "Score Update\nAAA 1.00 - 2.00 BBB" {
		t.Fatalf("text = %v", body["text"])
	}
	att, ok := body["attachments"].([]any)
	if !ok || len(att) != 0 {
		t.Fatalf("attachments = %#v, want empty array", body["attachments"])
	}

	if h := s.History(); len(h) != 1 || h[0].Text != "Score Update\nAAA 1.00 - 2.00 BBB" {
		t.Fatalf("unexpected history: %+v", h)
	}
}

func TestSendNonAcceptedIsInvalidCredential(t *testing.T) {
	t.Parallel()
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		srv := newTestServer(t, status, nil)
		s := New(Config{BotID: "bad", BaseURL: srv.URL, HTTPClient: srv.Client()}, logx.Nop())

		err := s.Send(context.Background(), "hi")
		if !errors.Is(err, ErrInvalidCredential) {
			t.Fatalf("status %d: err = %v, want ErrInvalidCredential", status, err)
		}
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != status {
			t.Fatalf("status %d: want StatusError carrying the code, got %v", status, err)
		}
		if len(s.History()) != 0 {
			t.Fatalf("status %d: rejected post recorded in history", status)
		}
	}
}

func TestSendEmptyBotIDSkipsCall(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()}, logx.Nop())
	if err := s.Send(context.Background(), "hi"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
	if calls.Load() != 0 {
		t.Fatal("no request expected without a bot id")
	}
}

func TestSendHonorsCanceledContextWhileRateLimited(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, http.StatusAccepted, nil)
	s := New(Config{BotID: "b", BaseURL: srv.URL, HTTPClient: srv.Client(), RatePerSec: 0.001}, logx.Nop())

	// First post consumes the single burst token.
	if err := s.Send(context.Background(), "one"); err != nil {
		t.Fatalf("first Send error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Send(ctx, "two"); err == nil {
		t.Fatal("expected rate limiter wait to fail")
	}
}

func TestApplySwapsCredential(t *testing.T) {
	t.Parallel()
	seen := make(chan map[string]any, 2)
	srv := newTestServer(t, http.StatusAccepted, seen)

	s := New(Config{BotID: "old", BaseURL: srv.URL, HTTPClient: srv.Client()}, logx.Nop())
	s.Apply(Config{BotID: "new", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err := s.Send(context.Background(), "x"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if got := (<-seen)["bot_id"]; got != "new" {
		t.Fatalf("bot_id = %v, want new", got)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	for i := 0; i < 5; i++ {
		s.appendHistory("m", 3)
	}
	if n := len(s.History()); n != 3 {
		t.Fatalf("history len = %d, want 3", n)
	}
}
