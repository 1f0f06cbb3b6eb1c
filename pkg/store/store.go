// Package store persists the task collection as one serialized snapshot and
// holds the installation's subscriber id.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/harrisonrobin/tasknotify/pkg/kv"
	"github.com/harrisonrobin/tasknotify/pkg/model"
)

const (
	TasksKey      = "tasks"
	SubscriberKey = "externalId"
)

// TaskStore loads and replaces the whole task collection.
type TaskStore struct {
	kv kv.Store
}

func New(s kv.Store) *TaskStore {
	return &TaskStore{kv: s}
}

// Load returns the stored tasks sorted by date. Missing, unreadable or
// unparsable snapshots yield an empty collection.
func (s *TaskStore) Load(ctx context.Context) []model.Task {
	raw, ok, err := s.kv.Get(ctx, TasksKey)
	if err != nil {
		log.Printf("[Store] Error reading tasks: %v", err)
		return []model.Task{}
	}
	if !ok || raw == "" {
		return []model.Task{}
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		log.Printf("[Store] Error parsing tasks: %v", err)
		return []model.Task{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	model.SortByDate(tasks)
	return tasks
}

// Replace overwrites the stored snapshot with tasks.
func (s *TaskStore) Replace(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, TasksKey, string(data)); err != nil {
		return fmt.Errorf("failed to write tasks: %w", err)
	}
	return nil
}

// SubscriberID reads the subscriber id from the store on every call.
func (s *TaskStore) SubscriberID(ctx context.Context) (string, error) {
	id, _, err := s.kv.Get(ctx, SubscriberKey)
	return id, err
}

func (s *TaskStore) SetSubscriberID(ctx context.Context, id string) error {
	return s.kv.Set(ctx, SubscriberKey, id)
}

// KV exposes the underlying store for components that keep their own keys.
func (s *TaskStore) KV() kv.Store {
	return s.kv
}
