package fcm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/tasknotify/pkg/engine"
	"github.com/harrisonrobin/tasknotify/pkg/kv"
	"github.com/harrisonrobin/tasknotify/pkg/model"
)

// OutboxKey is the kv key holding pending entries.
const OutboxKey = "fcm_outbox"

// The subscriber id is used as the FCM topic name.
var topicPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.~%]+$`)

// Entry is one scheduled, undelivered notification.
type Entry struct {
	ID         string    `json:"id"`
	Subscriber string    `json:"subscriber"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	SendAfter  time.Time `json:"send_after"`
}

// Outbox implements engine.Scheduler by recording notifications for the Dispatcher.
type Outbox struct {
	mu          sync.Mutex
	kv          kv.Store
	subscribers engine.SubscriberSource
}

var _ engine.Scheduler = (*Outbox)(nil)

func NewOutbox(store kv.Store, subscribers engine.SubscriberSource) *Outbox {
	return &Outbox{kv: store, subscribers: subscribers}
}

func (o *Outbox) Create(ctx context.Context, n engine.Notification) (string, error) {
	subscriber, err := o.subscribers.SubscriberID(ctx)
	if err != nil {
		return "", model.Fail(model.KindStore, "create", fmt.Errorf("read subscriber id: %w", err))
	}
	if subscriber == "" {
		return "", model.Fail(model.KindValidation, "create", model.ErrNoSubscriber)
	}
	if !topicPattern.MatchString(subscriber) {
		return "", model.Fail(model.KindValidation, "create", fmt.Errorf("subscriber id %q is not a valid FCM topic name", subscriber))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	entries, err := o.load(ctx)
	if err != nil {
		return "", model.Fail(model.KindStore, "create", err)
	}
	e := Entry{
		ID:         uuid.NewString(),
		Subscriber: subscriber,
		Title:      n.Title,
		Body:       n.Body,
		SendAfter:  n.SendAfter.UTC(),
	}
	if err := o.save(ctx, append(entries, e)); err != nil {
		return "", model.Fail(model.KindStore, "create", err)
	}
	return e.ID, nil
}

// Cancel drops a pending entry. An unknown id is a provider failure, the same
// way a remote provider reports a notification it no longer has.
func (o *Outbox) Cancel(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entries, err := o.load(ctx)
	if err != nil {
		return model.Fail(model.KindStore, "cancel", err)
	}
	i := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return model.Fail(model.KindProvider, "cancel", fmt.Errorf("notification %s not found", id))
	}
	if err := o.save(ctx, slices.Delete(entries, i, i+1)); err != nil {
		return model.Fail(model.KindStore, "cancel", err)
	}
	return nil
}

// Pending returns every entry not yet delivered.
func (o *Outbox) Pending(ctx context.Context) ([]Entry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.load(ctx)
}

// TakeDue removes and returns the entries whose SendAfter is not after now.
func (o *Outbox) TakeDue(ctx context.Context, now time.Time) ([]Entry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entries, err := o.load(ctx)
	if err != nil {
		return nil, err
	}
	var due, rest []Entry
	for _, e := range entries {
		if e.SendAfter.After(now) {
			rest = append(rest, e)
		} else {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	if err := o.save(ctx, rest); err != nil {
		return nil, err
	}
	return due, nil
}

func (o *Outbox) load(ctx context.Context) ([]Entry, error) {
	raw, ok, err := o.kv.Get(ctx, OutboxKey)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse outbox: %w", err)
	}
	return entries, nil
}

func (o *Outbox) save(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return o.kv.Set(ctx, OutboxKey, string(data))
}
