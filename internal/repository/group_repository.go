package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"group-board-api/internal/domain"
)

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	CreateWithMember(ctx context.Context, group *domain.Group, member *domain.GroupMember) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	FindByPublicID(ctx context.Context, publicID string) (*domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Group, error)
	Purge(ctx context.Context, id uuid.UUID) error
}

// groupRepositoryImpl is the GORM implementation of GroupRepository
type groupRepositoryImpl struct {
	db *gorm.DB
}

// NewGroupRepository creates a new instance of GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepositoryImpl{db: db}
}

// Create creates a new group
func (r *groupRepositoryImpl) Create(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// CreateWithMember creates a group together with its first membership row in
// one transaction. A group whose creator is not a member would be invisible
// to everyone, so the two inserts land together or not at all.
func (r *groupRepositoryImpl) CreateWithMember(ctx context.Context, group *domain.Group, member *domain.GroupMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		member.GroupID = group.ID
		return tx.Create(member).Error
	})
}

// FindByID finds a group by its internal ID
func (r *groupRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	var group domain.Group
	if err := r.db.WithContext(ctx).
		Preload("Admin").
		Preload("Members.User").
		Where("id = ?", id).
		First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByPublicID finds a group by its public short identifier, with admin
// and members preloaded
func (r *groupRepositoryImpl) FindByPublicID(ctx context.Context, publicID string) (*domain.Group, error) {
	var group domain.Group
	if err := r.db.WithContext(ctx).
		Preload("Admin").
		Preload("Members.User").
		Where("public_id = ?", publicID).
		First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Update updates a group's metadata
func (r *groupRepositoryImpl) Update(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// Delete soft deletes a group. Everything scoped to it becomes unreachable
// immediately; the purge job removes the rows permanently later.
func (r *groupRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Group{}, "id = ?", id).Error
}

// FindDeletedBefore returns groups soft-deleted before the cutoff
func (r *groupRepositoryImpl) FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Group, error) {
	var groups []*domain.Group
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Purge permanently removes a group and everything it owns. Children carry
// ON DELETE CASCADE foreign keys, so one hard delete is enough on databases
// that enforce them; the explicit child deletes keep the behavior identical
// on SQLite test databases.
func (r *groupRepositoryImpl) Purge(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&domain.UserTagRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM card_tag_assignments WHERE card_id IN (SELECT id FROM cards WHERE group_id = ?)",
			id).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&domain.Card{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&domain.CardTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&domain.UserTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&domain.ColumnBoard{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&domain.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&domain.Group{}, "id = ?", id).Error
	})
}
