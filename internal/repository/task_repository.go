package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List on the database side. The result is a superset of
// what callers show; they still filter by span.
type TaskFilter struct {
	// Statuses limits the result to the given states. Empty means every
	// state except deleted.
	Statuses []model.Status

	Window   *dates.Range
	MemberID string
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	} else {
		q = q.Where("status <> ?", model.StatusDeleted)
	}
	if f.MemberID != "" {
		q = q.Where("member_id = ?", f.MemberID)
	}
	if f.Window != nil {
		w := *f.Window
		q = q.Where(
			r.db.Where("start_date <= ? AND end_date >= ?", w.End, w.Start).
				Or("scheduled_date BETWEEN ? AND ?", w.Start, w.End),
		)
	}

	var tasks []model.Task
	if err := q.Order("COALESCE(start_date, scheduled_date), created_at").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus writes status and completion time and returns the stored
// row.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status model.Status, completedAt *time.Time) (*model.Task, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update task status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}
