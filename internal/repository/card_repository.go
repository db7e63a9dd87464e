package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"group-board-api/internal/domain"
)

// CardRepository defines the interface for card data access
type CardRepository interface {
	FindByGroupAndCode(ctx context.Context, groupID uuid.UUID, code string) (*domain.Card, error)
	FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.Card, error)
	Update(ctx context.Context, card *domain.Card) error
	UpdateWithTags(ctx context.Context, card *domain.Card, tags []domain.CardTag) error
	ReplaceTags(ctx context.Context, card *domain.Card, tags []domain.CardTag) error
	Delete(ctx context.Context, groupID uuid.UUID, code string) error
}

// cardRepositoryImpl is the GORM implementation of CardRepository.
// Card creation is not part of this interface: new cards are inserted by the
// code allocator inside its allocation transaction.
type cardRepositoryImpl struct {
	db *gorm.DB
}

// NewCardRepository creates a new instance of CardRepository
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepositoryImpl{db: db}
}

// FindByGroupAndCode finds a card by its short code within a group, with
// tags, assignee and column preloaded
func (r *cardRepositoryImpl) FindByGroupAndCode(ctx context.Context, groupID uuid.UUID, code string) (*domain.Card, error) {
	var card domain.Card
	if err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("card_tags.code ASC")
		}).
		Preload("Assignee").
		Preload("Column").
		Where("group_id = ? AND code = ?", groupID, code).
		First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByGroupID returns all cards of a group in creation order with tags and
// assignees eagerly loaded, so assembling a board does not fan out into
// per-card queries
func (r *cardRepositoryImpl) FindByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.Card, error) {
	var cards []*domain.Card
	if err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("card_tags.code ASC")
		}).
		Preload("Assignee").
		Where("group_id = ?", groupID).
		Order("created_at ASC, code ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// Update persists changed card fields. Tag associations are managed
// separately through ReplaceTags.
func (r *cardRepositoryImpl) Update(ctx context.Context, card *domain.Card) error {
	return r.db.WithContext(ctx).
		Omit("Tags", "Assignee", "Column").
		Save(card).Error
}

// UpdateWithTags persists changed card fields and overwrites the tag
// associations in one transaction, so a failure on either leaves the card
// exactly as it was
func (r *cardRepositoryImpl) UpdateWithTags(ctx context.Context, card *domain.Card, tags []domain.CardTag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Assignee", "Column").Save(card).Error; err != nil {
			return err
		}
		return tx.Model(card).Association("Tags").Replace(tags)
	})
}

// ReplaceTags overwrites the card's tag associations with the given set.
// An empty set clears all associations.
func (r *cardRepositoryImpl) ReplaceTags(ctx context.Context, card *domain.Card, tags []domain.CardTag) error {
	return r.db.WithContext(ctx).
		Model(card).
		Association("Tags").
		Replace(tags)
}

// Delete removes a card and its tag associations
func (r *cardRepositoryImpl) Delete(ctx context.Context, groupID uuid.UUID, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card domain.Card
		if err := tx.Where("group_id = ? AND code = ?", groupID, code).
			First(&card).Error; err != nil {
			return err
		}
		if err := tx.Model(&card).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&card).Error
	})
}

// IsNotFound reports whether err is GORM's record-not-found, the shape every
// Find* method returns for a missing row
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique-constraint violation
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
