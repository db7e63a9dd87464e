package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"group-board-api/internal/domain"
)

// ColumnRepository defines the interface for board column data access
type ColumnRepository interface {
	Create(ctx context.Context, column *domain.ColumnBoard) error
	FindByID(ctx context.Context, groupID, columnID uuid.UUID) (*domain.ColumnBoard, error)
	FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.ColumnBoard, error)
	FindByGroupAndName(ctx context.Context, groupID uuid.UUID, name string) (*domain.ColumnBoard, error)
	Update(ctx context.Context, column *domain.ColumnBoard) error
	Delete(ctx context.Context, groupID, columnID uuid.UUID) error
}

// columnRepositoryImpl is the GORM implementation of ColumnRepository
type columnRepositoryImpl struct {
	db *gorm.DB
}

// NewColumnRepository creates a new instance of ColumnRepository
func NewColumnRepository(db *gorm.DB) ColumnRepository {
	return &columnRepositoryImpl{db: db}
}

// Create creates a new column
func (r *columnRepositoryImpl) Create(ctx context.Context, column *domain.ColumnBoard) error {
	return r.db.WithContext(ctx).Create(column).Error
}

// FindByID finds a column by ID within a group
func (r *columnRepositoryImpl) FindByID(ctx context.Context, groupID, columnID uuid.UUID) (*domain.ColumnBoard, error) {
	var column domain.ColumnBoard
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, columnID).
		First(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// FindByGroupID returns all columns of a group in creation order. The order
// is the board's stable presentation order.
func (r *columnRepositoryImpl) FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.ColumnBoard, error) {
	var columns []*domain.ColumnBoard
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

// FindByGroupAndName finds a column by name within a group. Returns
// (nil, nil) when no such column exists.
func (r *columnRepositoryImpl) FindByGroupAndName(ctx context.Context, groupID uuid.UUID, name string) (*domain.ColumnBoard, error) {
	var column domain.ColumnBoard
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND name = ?", groupID, name).
		First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &column, nil
}

// Update updates a column
func (r *columnRepositoryImpl) Update(ctx context.Context, column *domain.ColumnBoard) error {
	return r.db.WithContext(ctx).Save(column).Error
}

// Delete removes a column and, through the foreign key cascade, the cards in
// it. The explicit card delete keeps SQLite test databases consistent with
// PostgreSQL.
func (r *columnRepositoryImpl) Delete(ctx context.Context, groupID, columnID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM card_tag_assignments WHERE card_id IN (SELECT id FROM cards WHERE group_id = ? AND column_id = ?)",
			groupID, columnID).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ? AND column_id = ?", groupID, columnID).
			Delete(&domain.Card{}).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ? AND id = ?", groupID, columnID).
			Delete(&domain.ColumnBoard{}).Error
	})
}
