package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
	"team-tracker/internal/period"
)

var ErrUnknownTask = errors.New("task is not on this board")

// ErrNotCompletable is returned when completion is attempted anywhere but on
// the pending task's last day.
var ErrNotCompletable = errors.New("task cannot be completed from this day")

// ErrMutationFailed wraps a rejected status update. The board has already
// re-fetched, so the caller only needs to offer a retry.
var ErrMutationFailed = errors.New("status update failed")

// Store is the data source behind a board. ListTasks may return tasks
// outside the window; the board filters again. UpdateTaskStatus may return a
// nil task with a nil error, in which case the board keeps its local copy.
type Store interface {
	ListTasks(ctx context.Context, window dates.Range) ([]model.Task, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
	UpdateTaskStatus(ctx context.Context, id string, status model.Status, completedAt *time.Time) (*model.Task, error)
}

// Board keeps the fetched state behind one calendar view and rebuilds the
// grid from it after every change. A Board is not safe for concurrent use.
type Board struct {
	store  Store
	window dates.Range
	opts   Options

	members []model.Member
	tasks   []model.Task
	grid    Grid
}

func NewBoard(store Store, window dates.Range, opts Options) *Board {
	opts = opts.withDefaults()
	b := &Board{store: store, window: window, opts: opts}
	b.rebuild()
	return b
}

// Load replaces the board state with a fresh fetch.
func (b *Board) Load(ctx context.Context) error {
	members, err := b.store.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	tasks, err := b.store.ListTasks(ctx, b.window)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	b.members = members
	b.tasks = period.FilterByWindow(tasks, b.window)
	b.rebuild()
	return nil
}

// SetWindow pages the board to another window and reloads it.
func (b *Board) SetWindow(ctx context.Context, window dates.Range) error {
	b.window = window
	return b.Load(ctx)
}

func (b *Board) Window() dates.Range { return b.window }
func (b *Board) Grid() Grid          { return b.grid }

// Pending lists the visible pending tasks, earliest deadline first.
func (b *Board) Pending() []model.Task {
	var out []model.Task
	for _, t := range b.tasks {
		if t.Status != model.StatusPending {
			continue
		}
		if b.opts.MemberID != "" && t.MemberID != b.opts.MemberID {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Span()
		c, _ := out[j].Span()
		if cmp := a.End.Compare(c.End); cmp != 0 {
			return cmp < 0
		}
		return a.Start.Before(c.Start)
	})
	return out
}

// Complete marks a task completed from the cell of day `on`. The change is
// applied locally first, so the task leaves Pending immediately, and then
// written to the store. If the store rejects it the board re-fetches and the
// returned error wraps ErrMutationFailed.
func (b *Board) Complete(ctx context.Context, taskID string, on dates.Date) (model.Task, error) {
	i := b.indexOf(taskID)
	if i < 0 {
		return model.Task{}, ErrUnknownTask
	}
	bar, ok := b.grid.Bar(taskID)
	if !ok || !bar.CompletableOn(on) {
		return model.Task{}, fmt.Errorf("%w: %s on %s", ErrNotCompletable, taskID, on)
	}

	updated := b.tasks[i]
	if err := updated.Transition(model.StatusCompleted, b.opts.Clock.Now()); err != nil {
		return model.Task{}, err
	}
	b.tasks[i] = updated
	b.rebuild()

	stored, err := b.store.UpdateTaskStatus(ctx, taskID, updated.Status, updated.CompletedAt)
	if err != nil {
		mutationErr := fmt.Errorf("complete %s: %w: %w", taskID, ErrMutationFailed, err)
		if reloadErr := b.Load(ctx); reloadErr != nil {
			return model.Task{}, errors.Join(mutationErr, reloadErr)
		}
		return model.Task{}, mutationErr
	}

	if stored == nil {
		return updated, nil
	}
	if i := b.indexOf(taskID); i >= 0 {
		b.tasks[i] = *stored
		b.rebuild()
	}
	return *stored, nil
}

func (b *Board) indexOf(taskID string) int {
	for i, t := range b.tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

func (b *Board) rebuild() {
	b.grid = Build(b.window, b.members, b.tasks, b.opts)
}
