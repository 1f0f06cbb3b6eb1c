package fcm

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"

	"github.com/harrisonrobin/tasknotify/pkg/engine"
	"github.com/harrisonrobin/tasknotify/pkg/kv"
	"github.com/harrisonrobin/tasknotify/pkg/model"
)

type staticSubscriber string

func (s staticSubscriber) SubscriberID(context.Context) (string, error) { return string(s), nil }

type fakeSender struct {
	mu   sync.Mutex
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	if f.err != nil {
		return "", f.err
	}
	return "projects/p/messages/1", nil
}

func newOutbox(t *testing.T, sub string) *Outbox {
	t.Helper()
	s, err := kv.NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatal(err)
	}
	return NewOutbox(s, staticSubscriber(sub))
}

var now = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func TestOutboxCreateAndCancel(t *testing.T) {
	ctx := context.Background()
	o := newOutbox(t, "user-9")

	id, err := o.Create(ctx, engine.Notification{Title: "A", Body: "b", SendAfter: now})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	pending, _ := o.Pending(ctx)
	if len(pending) != 1 || pending[0].ID != id || pending[0].Subscriber != "user-9" {
		t.Fatalf("Unexpected outbox %+v", pending)
	}

	if err := o.Cancel(ctx, id); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if pending, _ := o.Pending(ctx); len(pending) != 0 {
		t.Errorf("Expected empty outbox, got %+v", pending)
	}
	if err := o.Cancel(ctx, id); model.KindOf(err) != model.KindProvider {
		t.Errorf("Expected provider failure for unknown id, got %v", err)
	}
}

func TestOutboxRequiresSubscriber(t *testing.T) {
	o := newOutbox(t, "")
	_, err := o.Create(context.Background(), engine.Notification{Title: "A", SendAfter: now})
	if !errors.Is(err, model.ErrNoSubscriber) {
		t.Errorf("Expected ErrNoSubscriber, got %v", err)
	}
}

func TestOutboxRejectsInvalidTopicNames(t *testing.T) {
	ctx := context.Background()
	for _, sub := range []string{"user 9", "user/9", "ünïcode", "a#b"} {
		o := newOutbox(t, sub)
		_, err := o.Create(ctx, engine.Notification{Title: "A", SendAfter: now})
		if model.KindOf(err) != model.KindValidation {
			t.Errorf("%q: expected validation failure, got %v", sub, err)
		}
		if pending, _ := o.Pending(ctx); len(pending) != 0 {
			t.Errorf("%q: expected nothing queued, got %+v", sub, pending)
		}
	}

	o := newOutbox(t, "3f2b9c1e-7a4d-4e8f-9b0a-1c2d3e4f5a6b_x.~%20")
	if _, err := o.Create(ctx, engine.Notification{Title: "A", SendAfter: now}); err != nil {
		t.Errorf("Expected valid topic name to be accepted, got %v", err)
	}
}

func TestDispatchSendsDueEntriesOnce(t *testing.T) {
	ctx := context.Background()
	o := newOutbox(t, "user-9")
	o.Create(ctx, engine.Notification{Title: "due", SendAfter: now.Add(-time.Minute)})
	o.Create(ctx, engine.Notification{Title: "later", SendAfter: now.Add(time.Hour)})

	sender := &fakeSender{}
	d := NewDispatcher(o, sender, time.Second)
	d.now = func() time.Time { return now }

	if sent := d.Dispatch(ctx); sent != 1 {
		t.Fatalf("Expected 1 sent, got %d", sent)
	}
	if m := sender.sent[0]; m.Topic != "user-9" || m.Notification.Title != "due" {
		t.Errorf("Unexpected message %+v", m)
	}
	if sent := d.Dispatch(ctx); sent != 0 {
		t.Errorf("Expected due entry to be sent only once, got %d", sent)
	}
	pending, _ := o.Pending(ctx)
	if len(pending) != 1 || pending[0].Title != "later" {
		t.Errorf("Expected only the later entry to remain, got %+v", pending)
	}
}

func TestDispatchDropsFailedSends(t *testing.T) {
	ctx := context.Background()
	o := newOutbox(t, "user-9")
	o.Create(ctx, engine.Notification{Title: "due", SendAfter: now})

	d := NewDispatcher(o, &fakeSender{err: errors.New("unavailable")}, 0)
	d.now = func() time.Time { return now }

	if sent := d.Dispatch(ctx); sent != 0 {
		t.Errorf("Expected nothing sent, got %d", sent)
	}
	if pending, _ := o.Pending(ctx); len(pending) != 0 {
		t.Errorf("Expected failed entry removed, got %+v", pending)
	}
	if d.interval != DefaultInterval {
		t.Errorf("Expected default interval, got %s", d.interval)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	o := newOutbox(t, "user-9")
	d := NewDispatcher(o, &fakeSender{}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
