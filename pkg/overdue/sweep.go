package overdue

import (
	"time"

	"github.com/harrisonrobin/tasknotify/pkg/model"
)

// Sweep returns the unfinished tasks whose fire time is before now.
// Their notification has presumably gone out already.
func Sweep(tasks []model.Task, now time.Time) []model.Task {
	var swept []model.Task
	cutoff := now.UnixMilli()
	for _, t := range tasks {
		if !t.IsFinished && t.Date < cutoff {
			swept = append(swept, t)
		}
	}
	return swept
}

// IsOverdue reports whether a single task would be swept at now.
func IsOverdue(t model.Task, now time.Time) bool {
	return !t.IsFinished && t.Date < now.UnixMilli()
}
