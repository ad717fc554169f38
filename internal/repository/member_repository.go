package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"team-tracker/internal/model"
)

// MemberRepository manages team members.
type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// GetOrCreate finds a member by name, creating it with color when missing.
func (r *MemberRepository) GetOrCreate(ctx context.Context, name, color string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&member).Error
	switch {
	case err == nil:
		return &member, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		member = model.Member{Name: name, Color: color}
		if err := r.Create(ctx, &member); err != nil {
			return nil, err
		}
		return &member, nil
	default:
		return nil, fmt.Errorf("find member: %w", err)
	}
}

func (r *MemberRepository) FindByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, notFound(err)
	}
	return &member, nil
}

// List returns members in creation order.
func (r *MemberRepository) List(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	if err := r.db.WithContext(ctx).Order("created_at ASC, name ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (r *MemberRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Member{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}
