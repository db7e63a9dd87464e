package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"group-board-api/internal/domain"
)

// MemberRepository defines the interface for group membership data access
type MemberRepository interface {
	Create(ctx context.Context, member *domain.GroupMember) error
	FindByGroupAndUser(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMember, error)
	FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMember, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, groupID, userID uuid.UUID) error
}

// memberRepositoryImpl is the GORM implementation of MemberRepository
type memberRepositoryImpl struct {
	db *gorm.DB
}

// NewMemberRepository creates a new instance of MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepositoryImpl{db: db}
}

// Create adds a user to a group
func (r *memberRepositoryImpl) Create(ctx context.Context, member *domain.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindByGroupAndUser returns the membership row for (group, user), or
// (nil, nil) when the user is not a member
func (r *memberRepositoryImpl) FindByGroupAndUser(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMember, error) {
	var member domain.GroupMember
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// FindByGroupID returns all members of a group with their users preloaded,
// in join order
func (r *memberRepositoryImpl) FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMember, error) {
	var members []*domain.GroupMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// IsMember reports whether the user belongs to the group
func (r *memberRepositoryImpl) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a user from a group
func (r *memberRepositoryImpl) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&domain.GroupMember{}).Error
}
