package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"group-board-api/internal/domain"
)

// UserTagRelationRepository defines the interface for user-tag assignment
// data access
type UserTagRelationRepository interface {
	Create(ctx context.Context, relation *domain.UserTagRelation) error
	FindByUserAndTag(ctx context.Context, userID, tagID uuid.UUID) (*domain.UserTagRelation, error)
	FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.UserTagRelation, error)
	Delete(ctx context.Context, userID, tagID uuid.UUID) error
}

// userTagRelationRepositoryImpl is the GORM implementation of
// UserTagRelationRepository
type userTagRelationRepositoryImpl struct {
	db *gorm.DB
}

// NewUserTagRelationRepository creates a new instance of
// UserTagRelationRepository
func NewUserTagRelationRepository(db *gorm.DB) UserTagRelationRepository {
	return &userTagRelationRepositoryImpl{db: db}
}

// Create creates a new user-tag relation
func (r *userTagRelationRepositoryImpl) Create(ctx context.Context, relation *domain.UserTagRelation) error {
	return r.db.WithContext(ctx).Create(relation).Error
}

// FindByUserAndTag returns the relation for (user, tag), or (nil, nil) when
// none exists
func (r *userTagRelationRepositoryImpl) FindByUserAndTag(ctx context.Context, userID, tagID uuid.UUID) (*domain.UserTagRelation, error) {
	var relation domain.UserTagRelation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND user_tag_id = ?", userID, tagID).
		First(&relation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &relation, nil
}

// FindByGroupID returns every relation scoped to the group with users and
// tags preloaded, ordered deterministically for board assembly
func (r *userTagRelationRepositoryImpl) FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.UserTagRelation, error) {
	var relations []*domain.UserTagRelation
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tag").
		Where("group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&relations).Error; err != nil {
		return nil, err
	}
	return relations, nil
}

// Delete removes the relation for (user, tag)
func (r *userTagRelationRepositoryImpl) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND user_tag_id = ?", userID, tagID).
		Delete(&domain.UserTagRelation{}).Error
}
