package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"group-board-api/internal/domain"
)

// CardTagRepository defines the interface for card tag data access
type CardTagRepository interface {
	FindByGroupAndCode(ctx context.Context, groupID uuid.UUID, code string) (*domain.CardTag, error)
	FindByGroupAndNameColor(ctx context.Context, groupID uuid.UUID, name, color string) (*domain.CardTag, error)
	FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.CardTag, error)
	Update(ctx context.Context, tag *domain.CardTag) error
	Delete(ctx context.Context, groupID uuid.UUID, code string) error
}

// UserTagRepository defines the interface for user tag data access
type UserTagRepository interface {
	FindByGroupAndCode(ctx context.Context, groupID uuid.UUID, code string) (*domain.UserTag, error)
	FindByGroupAndNameColor(ctx context.Context, groupID uuid.UUID, name, color string) (*domain.UserTag, error)
	FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.UserTag, error)
	Update(ctx context.Context, tag *domain.UserTag) error
	Delete(ctx context.Context, groupID uuid.UUID, code string) error
}

// Tag creation goes through the code allocator's transaction, the same way
// card creation does, so neither repository exposes a Create method.

type cardTagRepositoryImpl struct {
	db *gorm.DB
}

// NewCardTagRepository creates a new instance of CardTagRepository
func NewCardTagRepository(db *gorm.DB) CardTagRepository {
	return &cardTagRepositoryImpl{db: db}
}

func (r *cardTagRepositoryImpl) FindByGroupAndCode(ctx context.Context, groupID uuid.UUID, code string) (*domain.CardTag, error) {
	var tag domain.CardTag
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND code = ?", groupID, code).
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByGroupAndNameColor returns the tag with the same (name, color) in the
// group, or (nil, nil) when none exists. This is the lookup behind the tag
// index's get-or-create semantics.
func (r *cardTagRepositoryImpl) FindByGroupAndNameColor(ctx context.Context, groupID uuid.UUID, name, color string) (*domain.CardTag, error) {
	var tag domain.CardTag
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND name = ? AND color = ?", groupID, name, color).
		First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *cardTagRepositoryImpl) FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.CardTag, error) {
	var tags []*domain.CardTag
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("code ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *cardTagRepositoryImpl) Update(ctx context.Context, tag *domain.CardTag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

// Delete removes a card tag and detaches it from every card carrying it
func (r *cardTagRepositoryImpl) Delete(ctx context.Context, groupID uuid.UUID, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM card_tag_assignments WHERE card_tag_id IN (SELECT id FROM card_tags WHERE group_id = ? AND code = ?)",
			groupID, code).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ? AND code = ?", groupID, code).
			Delete(&domain.CardTag{}).Error
	})
}

type userTagRepositoryImpl struct {
	db *gorm.DB
}

// NewUserTagRepository creates a new instance of UserTagRepository
func NewUserTagRepository(db *gorm.DB) UserTagRepository {
	return &userTagRepositoryImpl{db: db}
}

func (r *userTagRepositoryImpl) FindByGroupAndCode(ctx context.Context, groupID uuid.UUID, code string) (*domain.UserTag, error) {
	var tag domain.UserTag
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND code = ?", groupID, code).
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *userTagRepositoryImpl) FindByGroupAndNameColor(ctx context.Context, groupID uuid.UUID, name, color string) (*domain.UserTag, error) {
	var tag domain.UserTag
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND name = ? AND color = ?", groupID, name, color).
		First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *userTagRepositoryImpl) FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.UserTag, error) {
	var tags []*domain.UserTag
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("code ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *userTagRepositoryImpl) Update(ctx context.Context, tag *domain.UserTag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

// Delete removes a user tag together with its member assignments
func (r *userTagRepositoryImpl) Delete(ctx context.Context, groupID uuid.UUID, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM user_tag_relations WHERE user_tag_id IN (SELECT id FROM user_tags WHERE group_id = ? AND code = ?)",
			groupID, code).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ? AND code = ?", groupID, code).
			Delete(&domain.UserTag{}).Error
	})
}
