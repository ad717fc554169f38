package repository

import (
	"context"
	"time"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
)

// Store serves a calendar board from the task and member tables.
type Store struct {
	Tasks   *TaskRepository
	Members *MemberRepository
}

func NewStore(tasks *TaskRepository, members *MemberRepository) *Store {
	return &Store{Tasks: tasks, Members: members}
}

func (s *Store) ListTasks(ctx context.Context, window dates.Range) ([]model.Task, error) {
	return s.Tasks.List(ctx, TaskFilter{Window: &window})
}

func (s *Store) ListMembers(ctx context.Context) ([]model.Member, error) {
	return s.Members.List(ctx)
}

func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status model.Status, completedAt *time.Time) (*model.Task, error) {
	return s.Tasks.UpdateStatus(ctx, id, status, completedAt)
}
