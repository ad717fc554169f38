package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"team-tracker/internal/model"
)

// GoalRepository stores monthly targets.
type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// ForMonth returns the goal for a "YYYY-MM" month, nil when none is set.
func (r *GoalRepository) ForMonth(ctx context.Context, month string) (*model.Goal, error) {
	var goal model.Goal
	err := r.db.WithContext(ctx).Where("month = ?", month).First(&goal).Error
	switch {
	case err == nil:
		return &goal, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find goal: %w", err)
	}
}

func (r *GoalRepository) Upsert(ctx context.Context, goal *model.Goal) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_amount", "target_points", "updated_at"}),
	}).Create(goal).Error
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}

// List returns all goals, newest month first.
func (r *GoalRepository) List(ctx context.Context) ([]model.Goal, error) {
	var goals []model.Goal
	if err := r.db.WithContext(ctx).Order("month DESC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}
