package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"team-tracker/internal/calendar"
	"team-tracker/internal/dates"
	"team-tracker/internal/model"
	"team-tracker/internal/repository"
)

// ErrInvalidTask is returned for input that cannot become a task.
var ErrInvalidTask = errors.New("invalid task")

// TaskInput represents data required to create a task. A member is picked by
// ID, or by name when MemberID is empty; unknown names become new members.
type TaskInput struct {
	Title      string      `json:"title"`
	Amount     int64       `json:"amount"`
	Points     int64       `json:"points"`
	MemberID   string      `json:"member_id"`
	MemberName string      `json:"member_name"`
	StartDate  *dates.Date `json:"start_date"`
	EndDate    *dates.Date `json:"end_date"`
	Notes      string      `json:"notes"`

	// ScheduledDate is accepted from older clients and stored as a one-day
	// range.
	ScheduledDate *dates.Date `json:"scheduled_date"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	memberRepo *repository.MemberRepository
	clock      dates.Clock
}

func NewTaskService(taskRepo *repository.TaskRepository, memberRepo *repository.MemberRepository, clock dates.Clock) *TaskService {
	return &TaskService{taskRepo: taskRepo, memberRepo: memberRepo, clock: clock}
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if input.Amount < 0 || input.Points < 0 {
		return nil, fmt.Errorf("%w: amount and points must not be negative", ErrInvalidTask)
	}

	span, err := normalizeDates(input)
	if err != nil {
		return nil, err
	}

	member, err := s.resolveMember(ctx, input)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Amount:    input.Amount,
		Points:    input.Points,
		MemberID:  member.ID,
		Status:    model.StatusPending,
		StartDate: &span.Start,
		EndDate:   &span.End,
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// normalizeDates turns whatever dates the input carries into a start/end
// pair. A lone start or end makes a one-day task.
func normalizeDates(input TaskInput) (dates.Range, error) {
	start, end := input.StartDate, input.EndDate
	if start == nil && end == nil {
		start, end = input.ScheduledDate, input.ScheduledDate
	}
	switch {
	case start == nil && end == nil:
		return dates.Range{}, fmt.Errorf("%w: a date is required", ErrInvalidTask)
	case start == nil:
		start = end
	case end == nil:
		end = start
	}
	r := dates.NewRange(*start, *end)
	if !r.Valid() {
		return dates.Range{}, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidTask, r.End, r.Start)
	}
	return r, nil
}

func (s *TaskService) resolveMember(ctx context.Context, input TaskInput) (*model.Member, error) {
	if input.MemberID != "" {
		member, err := s.memberRepo.FindByID(ctx, input.MemberID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown member %q", ErrInvalidTask, input.MemberID)
		}
		return member, err
	}

	name := strings.TrimSpace(input.MemberName)
	if name == "" {
		return nil, fmt.Errorf("%w: member is required", ErrInvalidTask)
	}
	count, err := s.memberRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return s.memberRepo.GetOrCreate(ctx, name, calendar.ColorFor(int(count)))
}

func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

// SetStatus moves a task through the status table and stores the result.
func (s *TaskService) SetStatus(ctx context.Context, id string, to model.Status) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.Transition(to, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.taskRepo.UpdateStatus(ctx, task.ID, task.Status, task.CompletedAt)
}

func (s *TaskService) Complete(ctx context.Context, id string) (*model.Task, error) {
	return s.SetStatus(ctx, id, model.StatusCompleted)
}

func (s *TaskService) Reopen(ctx context.Context, id string) (*model.Task, error) {
	return s.SetStatus(ctx, id, model.StatusPending)
}

func (s *TaskService) Cancel(ctx context.Context, id string) (*model.Task, error) {
	return s.SetStatus(ctx, id, model.StatusCancelled)
}

// Delete soft-deletes a task. The row stays with status deleted.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	_, err := s.SetStatus(ctx, id, model.StatusDeleted)
	return err
}

// Pending lists pending tasks, earliest end date first. An empty memberID
// lists everyone's.
func (s *TaskService) Pending(ctx context.Context, memberID string) ([]model.Task, error) {
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Statuses: []model.Status{model.StatusPending},
		MemberID: memberID,
	})
	if err != nil {
		return nil, err
	}
	sortByEnd(tasks)
	return tasks, nil
}

// sortByEnd orders tasks by the last day of their span. Undated tasks go
// last.
func sortByEnd(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, okA := tasks[i].Span()
		b, okB := tasks[j].Span()
		switch {
		case !okA || !okB:
			return okA && !okB
		case !a.End.Equal(b.End):
			return a.End.Before(b.End)
		default:
			return a.Start.Before(b.Start)
		}
	})
}
