package model

import (
	"errors"
	"fmt"
	"time"
)

// Status is the persisted lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusDeleted   Status = "deleted"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Lifecycle separates live records from soft-deleted tombstones.
type Lifecycle int

const (
	Active Lifecycle = iota
	Deleted
)

// transitions lists every allowed move. cancelled -> pending is not part of
// the table.
var transitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusCancelled, StatusDeleted},
	StatusCompleted: {StatusPending, StatusDeleted},
	StatusCancelled: {StatusDeleted},
	StatusDeleted:   nil,
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

func (s Status) Lifecycle() Lifecycle {
	if s == StatusDeleted {
		return Deleted
	}
	return Active
}

// Transitions returns a copy of the transition table.
func Transitions() map[Status][]Status {
	out := make(map[Status][]Status, len(transitions))
	for from, to := range transitions {
		out[from] = append([]Status(nil), to...)
	}
	return out
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the task to status `to`, stamping CompletedAt when it
// enters completed and clearing it when it leaves.
func (t *Task) Transition(to Status, now time.Time) error {
	from := t.Status
	if from == "" {
		from = StatusPending
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	switch {
	case to == StatusCompleted:
		at := now
		t.CompletedAt = &at
	case from == StatusCompleted:
		t.CompletedAt = nil
	}
	t.Status = to
	return nil
}

// Live drops soft-deleted tasks. Everything that lists, lays out or
// aggregates tasks goes through it.
func Live(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status.Lifecycle() == Deleted {
			continue
		}
		out = append(out, t)
	}
	return out
}
