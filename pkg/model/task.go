package model

import (
	"slices"
	"strings"
)

// Task represents a reminder whose notification has been scheduled remotely.
// The JSON layout is the persisted snapshot format.
type Task struct {
	ID          string `json:"id"` // Remote notification id
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        int64  `json:"date"` // Epoch milliseconds of the device-local fire time
	IsFinished  bool   `json:"isFinished"`
}

// Draft is a task the user wants to create. It has no ID until the remote
// notification exists.
type Draft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        int64  `json:"date"`
}

// Validate trims the name and rejects drafts that cannot be scheduled.
func (d *Draft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return &Failure{Kind: KindValidation, Op: "validate", Err: ErrEmptyName}
	}
	if d.Date <= 0 {
		return &Failure{Kind: KindValidation, Op: "validate", Err: ErrInvalidDate}
	}
	return nil
}

// Task builds the task for a draft once its notification id is known.
func (d Draft) Task(id string) Task {
	return Task{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Date:        d.Date,
	}
}

// SortByDate orders tasks ascending by Date. Equal dates keep their relative order.
func SortByDate(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
}

// Find returns the index of the task with the given id, or -1.
func Find(tasks []Task, id string) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}
