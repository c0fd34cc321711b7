// internal/task/task.go
//
// Task records and the immutable Snapshot value handed to views.

package task

import (
	"errors"
	"strings"
)

var (
	// ErrEmptySubmission is returned when a name is blank after trimming.
	ErrEmptySubmission = errors.New("task name cannot be empty")
	// ErrNotFound is returned when no task carries the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrDuplicateID is returned when the id source keeps yielding ids that
	// are already in use.
	ErrDuplicateID = errors.New("task id already in use")
)

// Task is a single to-do record.
type Task struct {
	ID   string
	Name string
	// Seq is the creation sequence number. It only grows and is never reused.
	Seq uint64
}

// Snapshot is a point-in-time ordered copy of the task collection.
type Snapshot []Task

// Len reports the number of tasks.
func (s Snapshot) Len() int { return len(s) }

// Names returns task names in collection order.
func (s Snapshot) Names() []string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.Name
	}
	return names
}

// Index returns the position of id, or -1.
func (s Snapshot) Index(id string) int {
	for i := range s {
		if s[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the task with the given id.
func (s Snapshot) Find(id string) (Task, bool) {
	if idx := s.Index(id); idx >= 0 {
		return s[idx], true
	}
	return Task{}, false
}

// IsBlank reports whether name has no visible content.
func IsBlank(name string) bool {
	return strings.TrimSpace(name) == ""
}
