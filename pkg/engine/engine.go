// Package engine keeps the local task collection and the remote scheduled
// notifications consistent with each other.
package engine

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/harrisonrobin/tasknotify/pkg/clock"
	"github.com/harrisonrobin/tasknotify/pkg/model"
	"github.com/harrisonrobin/tasknotify/pkg/overdue"
)

// Notification is what a Scheduler is asked to deliver once, at SendAfter.
type Notification struct {
	Title     string
	Body      string
	SendAfter time.Time
}

// Scheduler creates and cancels deferred notifications on a remote provider.
// Errors are *model.Failure values.
type Scheduler interface {
	Create(ctx context.Context, n Notification) (string, error)
	Cancel(ctx context.Context, id string) error
}

// SubscriberSource yields the subscriber a scheduler targets. It is read on every Create.
type SubscriberSource interface {
	SubscriberID(ctx context.Context) (string, error)
}

// Store is the durable snapshot of the task collection.
type Store interface {
	Load(ctx context.Context) []model.Task
	Replace(ctx context.Context, tasks []model.Task) error
}

type Options struct {
	// TargetZone is the zone whose wall clock the fire time is expressed in.
	TargetZone *time.Location
	// DeviceZone is the zone draft dates were entered in.
	DeviceZone *time.Location
}

type Engine struct {
	scheduler Scheduler
	store     Store
	target    *time.Location
	device    *time.Location

	guard *guard

	mu    sync.Mutex
	tasks []model.Task
}

func New(scheduler Scheduler, store Store, opts Options) *Engine {
	if opts.TargetZone == nil {
		opts.TargetZone = time.UTC
	}
	if opts.DeviceZone == nil {
		opts.DeviceZone = time.Local
	}
	return &Engine{
		scheduler: scheduler,
		store:     store,
		target:    opts.TargetZone,
		device:    opts.DeviceZone,
		guard:     newGuard(),
		tasks:     []model.Task{},
	}
}

// LoadTasks replaces the in-memory collection with the stored snapshot.
func (e *Engine) LoadTasks(ctx context.Context) []model.Task {
	tasks := e.store.Load(ctx)
	model.SortByDate(tasks)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = tasks
	return slices.Clone(e.tasks)
}

// Tasks returns a copy of the current collection.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.tasks)
}

// Overdue returns unfinished tasks whose date is before now.
func (e *Engine) Overdue(now time.Time) []model.Task {
	return overdue.Sweep(e.Tasks(), now)
}

// FireTime is the instant a draft's notification is scheduled for: the
// draft's wall clock in the device zone, reinterpreted in the target zone.
func (e *Engine) FireTime(d model.Draft) (time.Time, error) {
	wall := clock.WallClock(time.UnixMilli(d.Date).In(e.device))
	return wall.In(e.target)
}

// AddTask schedules the remote notification and, only once that succeeded,
// stores the task under the returned id.
func (e *Engine) AddTask(ctx context.Context, draft model.Draft) (model.Task, error) {
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}

	release, err := e.guard.acquire("add", draftKey(draft))
	if err != nil {
		return model.Task{}, err
	}
	defer release()

	sendAfter, err := e.FireTime(draft)
	if err != nil {
		return model.Task{}, err
	}

	id, err := e.scheduler.Create(ctx, Notification{
		Title:     draft.Name,
		Body:      draft.Description,
		SendAfter: sendAfter,
	})
	if err != nil {
		return model.Task{}, asFailure("create", err)
	}

	task := draft.Task(id)

	e.mu.Lock()
	next := append(slices.Clone(e.tasks), task)
	model.SortByDate(next)
	if err := e.store.Replace(ctx, next); err != nil {
		e.mu.Unlock()
		e.compensate(ctx, id)
		return model.Task{}, model.Fail(model.KindStore, "add", err)
	}
	e.tasks = next
	e.mu.Unlock()

	log.Printf("[Engine] Scheduled %q (%s) for %s", task.Name, task.ID, clock.FormatISO(sendAfter))
	return task, nil
}

// compensate cancels a notification whose task could not be stored.
func (e *Engine) compensate(ctx context.Context, id string) {
	if err := e.scheduler.Cancel(context.WithoutCancel(ctx), id); err != nil {
		log.Printf("[Engine] Error cancelling unstored notification %s: %v", id, err)
	}
}

// ToggleFinished flips the completion flag of one task. It never calls the
// provider: un-finishing a task does not schedule a new notification.
func (e *Engine) ToggleFinished(ctx context.Context, id string) ([]model.Task, error) {
	release, err := e.guard.acquire("toggle", id)
	if err != nil {
		return e.Tasks(), err
	}
	defer release()

	e.mu.Lock()
	defer e.mu.Unlock()

	i := model.Find(e.tasks, id)
	if i < 0 {
		return slices.Clone(e.tasks), nil
	}
	e.tasks[i].IsFinished = !e.tasks[i].IsFinished

	if err := e.store.Replace(ctx, e.tasks); err != nil {
		return slices.Clone(e.tasks), model.Fail(model.KindStore, "toggle", err)
	}
	return slices.Clone(e.tasks), nil
}

// DeleteTask removes a task. Unfinished tasks get their notification cancelled
// first; a failed cancel is logged and the task is removed anyway.
func (e *Engine) DeleteTask(ctx context.Context, id string) ([]model.Task, error) {
	release, err := e.guard.acquire("delete", id)
	if err != nil {
		return e.Tasks(), err
	}
	defer release()

	e.mu.Lock()
	i := model.Find(e.tasks, id)
	if i < 0 {
		defer e.mu.Unlock()
		return slices.Clone(e.tasks), nil
	}
	finished := e.tasks[i].IsFinished
	e.mu.Unlock()

	if !finished {
		if err := e.scheduler.Cancel(ctx, id); err != nil {
			log.Printf("[Engine] Error cancelling notification %s, deleting locally: %v", id, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.tasks = slices.DeleteFunc(e.tasks, func(t model.Task) bool { return t.ID == id })
	if err := e.store.Replace(ctx, e.tasks); err != nil {
		return slices.Clone(e.tasks), model.Fail(model.KindStore, "delete", err)
	}
	return slices.Clone(e.tasks), nil
}

func asFailure(op string, err error) error {
	if model.KindOf(err) != "" {
		return err
	}
	return model.Fail(model.KindTransport, op, err)
}
