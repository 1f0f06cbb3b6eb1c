package onesignal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harrisonrobin/tasknotify/pkg/engine"
	"github.com/harrisonrobin/tasknotify/pkg/model"
)

type staticSubscriber struct {
	id  string
	err error
}

func (s staticSubscriber) SubscriberID(context.Context) (string, error) { return s.id, s.err }

func newTestClient(t *testing.T, h http.HandlerFunc, sub engine.SubscriberSource) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(Config{AppID: "app-1", APIKey: "key-1", BaseURL: ts.URL + "/"}, sub)
}

var fire = time.Date(2030, 7, 15, 7, 0, 0, 0, time.UTC)

func TestCreateSendsNotification(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/notifications" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Basic key-1" {
			t.Errorf("Expected Basic auth header, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Expected JSON content type, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		w.Write([]byte(`{"id":"notif-123","external_id":null}`))
	}, staticSubscriber{id: "user-9"})

	id, err := c.Create(context.Background(), engine.Notification{Title: "Call", Body: "mom", SendAfter: fire})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != "notif-123" {
		t.Errorf("Expected notif-123, got %q", id)
	}

	checks := map[string]any{
		"app_id":         "app-1",
		"target_channel": "push",
		"send_after":     "2030-07-15T07:00:00.000Z",
	}
	for k, want := range checks {
		if body[k] != want {
			t.Errorf("%s: expected %v, got %v", k, want, body[k])
		}
	}
	if h := body["headings"].(map[string]any); h["en"] != "Call" {
		t.Errorf("Unexpected headings %v", h)
	}
	if ct := body["contents"].(map[string]any); ct["en"] != "mom" {
		t.Errorf("Unexpected contents %v", ct)
	}
	ext := body["include_aliases"].(map[string]any)["external_id"].([]any)
	if len(ext) != 1 || ext[0] != "user-9" {
		t.Errorf("Unexpected external_id %v", ext)
	}
	if key, _ := body["idempotency_key"].(string); len(key) != 36 {
		t.Errorf("Expected uuid idempotency key, got %q", key)
	}
}

func TestCreateProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"","errors":["All included players are not subscribed"]}`))
	}, staticSubscriber{id: "user-9"})

	_, err := c.Create(context.Background(), engine.Notification{Title: "x", SendAfter: fire})
	if model.KindOf(err) != model.KindProvider {
		t.Fatalf("Expected provider failure, got %v", err)
	}
	if !errors.Is(err, model.ErrProvider) {
		t.Error("Expected errors.Is ErrProvider")
	}
}

func TestCreateErrorStatusWithoutErrorsField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{}`))
	}, staticSubscriber{id: "user-9"})

	if _, err := c.Create(context.Background(), engine.Notification{Title: "x", SendAfter: fire}); model.KindOf(err) != model.KindProvider {
		t.Errorf("Expected provider failure, got %v", err)
	}
}

func TestCreateMissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":null}`))
	}, staticSubscriber{id: "user-9"})

	if _, err := c.Create(context.Background(), engine.Notification{Title: "x", SendAfter: fire}); model.KindOf(err) != model.KindProvider {
		t.Errorf("Expected provider failure for missing id, got %v", err)
	}
}

func TestCreateUnreadableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}, staticSubscriber{id: "user-9"})

	if _, err := c.Create(context.Background(), engine.Notification{Title: "x", SendAfter: fire}); model.KindOf(err) != model.KindTransport {
		t.Errorf("Expected transport failure, got %v", err)
	}
}

func TestCreateWithoutSubscriberSendsNothing(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, staticSubscriber{})

	_, err := c.Create(context.Background(), engine.Notification{Title: "x", SendAfter: fire})
	if !errors.Is(err, model.ErrNoSubscriber) || model.KindOf(err) != model.KindValidation {
		t.Errorf("Expected no-subscriber validation failure, got %v", err)
	}
	if called {
		t.Error("Expected no request without a subscriber")
	}
}

func TestCreateTimeout(t *testing.T) {
	block := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
	}, staticSubscriber{id: "user-9"})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Create(ctx, engine.Notification{Title: "x", SendAfter: fire}); model.KindOf(err) != model.KindTransport {
		t.Errorf("Expected transport failure on timeout, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/notifications/notif-123" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("app_id"); got != "app-1" {
			t.Errorf("Expected app_id query, got %q", got)
		}
		w.Write([]byte(`{"success":true}`))
	}, staticSubscriber{})

	if err := c.Cancel(context.Background(), "notif-123"); err != nil {
		t.Errorf("Cancel failed: %v", err)
	}
}

func TestCancelNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":["Notification not found"]}`))
	}, staticSubscriber{})

	err := c.Cancel(context.Background(), "gone")
	if model.KindOf(err) != model.KindProvider {
		t.Errorf("Expected provider failure for not found, got %v", err)
	}
}
