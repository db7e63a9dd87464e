package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"group-board-api/internal/allocator"
	"group-board-api/internal/cache"
	"group-board-api/internal/domain"
	"group-board-api/internal/dto"
	"group-board-api/internal/metrics"
	"group-board-api/internal/repository"
	"group-board-api/internal/response"
)

// CardService defines the interface for card business logic
type CardService interface {
	CreateCard(ctx context.Context, userID uuid.UUID, publicID string, req *dto.CreateCardRequest) (*dto.CardResponse, error)
	GetCard(ctx context.Context, userID uuid.UUID, publicID, code string) (*dto.CardResponse, error)
	ListCards(ctx context.Context, userID uuid.UUID, publicID string) (*dto.CardListResponse, error)
	UpdateCard(ctx context.Context, userID uuid.UUID, publicID, code string, req *dto.UpdateCardRequest) (*dto.CardResponse, error)
	DeleteCard(ctx context.Context, userID uuid.UUID, publicID, code string) error
}

// cardServiceImpl is the implementation of CardService
type cardServiceImpl struct {
	cardRepo   repository.CardRepository
	columnRepo repository.ColumnRepository
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
	membership MembershipService
	tags       TagService
	alloc      allocator.Allocator
	boardCache *cache.BoardCache
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewCardService creates a new instance of CardService
func NewCardService(
	cardRepo repository.CardRepository,
	columnRepo repository.ColumnRepository,
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	membership MembershipService,
	tags TagService,
	alloc allocator.Allocator,
	boardCache *cache.BoardCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) CardService {
	return &cardServiceImpl{
		cardRepo:   cardRepo,
		columnRepo: columnRepo,
		userRepo:   userRepo,
		memberRepo: memberRepo,
		membership: membership,
		tags:       tags,
		alloc:      alloc,
		boardCache: boardCache,
		metrics:    m,
		logger:     logger,
	}
}

// CreateCard creates a card in the named column. The short code is allocated
// and the card inserted in one transaction, so no code is ever burned on a
// failed insert.
func (s *cardServiceImpl) CreateCard(ctx context.Context, userID uuid.UUID, publicID string, req *dto.CreateCardRequest) (*dto.CardResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	column, err := s.columnRepo.FindByGroupAndName(ctx, group.ID, req.ColumnName)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up column", err.Error())
	}
	if column == nil {
		return nil, response.NewAppError(response.ErrCodeNotFound, "Column not found", "")
	}

	assigneeID, err := s.resolveAssignee(ctx, group.ID, req.Assignee)
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.ResolveOrCreateCardTags(ctx, group, req.Tags)
	if err != nil {
		return nil, err
	}

	card := &domain.Card{
		GroupID:     group.ID,
		ColumnID:    column.ID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  assigneeID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        tags,
	}
	_, err = s.alloc.Allocate(ctx, group.ID, allocator.KindCard, func(tx *gorm.DB, code string) error {
		card.Code = code
		return tx.Create(card).Error
	})
	if err != nil {
		if errors.Is(err, allocator.ErrAllocationConflict) {
			s.metrics.IncrementAllocatorConflict()
			return nil, response.NewAppError(response.ErrCodeConflict, "Failed to allocate card code, please retry", "")
		}
		if errors.Is(err, allocator.ErrCodeSpaceExhausted) {
			return nil, response.NewAppError(response.ErrCodeConflict, "No card codes left in this group", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create card", err.Error())
	}

	s.metrics.IncrementCardCreated()
	s.boardCache.Invalidate(ctx, group.ID)
	s.logger.Info("Card created",
		zap.String("group_uuid", publicID),
		zap.String("card_code", card.Code))

	return s.fetchCardResponse(ctx, group.ID, card.Code)
}

// GetCard returns one card of the group by its short code
func (s *cardServiceImpl) GetCard(ctx context.Context, userID uuid.UUID, publicID, code string) (*dto.CardResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}
	return s.fetchCardResponse(ctx, group.ID, code)
}

// ListCards returns all cards of the group in creation order
func (s *cardServiceImpl) ListCards(ctx context.Context, userID uuid.UUID, publicID string) (*dto.CardListResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	cards, err := s.cardRepo.FindByGroupID(ctx, group.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch cards", err.Error())
	}

	columns, err := s.columnRepo.FindByGroupID(ctx, group.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch columns", err.Error())
	}
	columnNames := make(map[uuid.UUID]string, len(columns))
	for _, column := range columns {
		columnNames[column.ID] = column.Name
	}

	resp := &dto.CardListResponse{Cards: make([]dto.CardResponse, 0, len(cards))}
	for _, card := range cards {
		resp.Cards = append(resp.Cards, toCardResponse(card, columnNames[card.ColumnID]))
	}
	return resp, nil
}

// UpdateCard partially updates a card. Tags follow the tri-state contract of
// the request DTO: absent keeps, empty clears, non-empty replaces.
func (s *cardServiceImpl) UpdateCard(ctx context.Context, userID uuid.UUID, publicID, code string, req *dto.UpdateCardRequest) (*dto.CardResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	card, err := s.cardRepo.FindByGroupAndCode(ctx, group.ID, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Card not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch card", err.Error())
	}

	if req.ColumnName != nil {
		column, err := s.columnRepo.FindByGroupAndName(ctx, group.ID, *req.ColumnName)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up column", err.Error())
		}
		if column == nil {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Column not found", "")
		}
		card.ColumnID = column.ID
	}
	if req.Title != nil {
		card.Title = *req.Title
	}
	if req.Description != nil {
		card.Description = *req.Description
	}
	if req.Assignee != nil {
		if *req.Assignee == "" {
			card.AssigneeID = nil
		} else {
			assigneeID, err := s.resolveAssignee(ctx, group.ID, req.Assignee)
			if err != nil {
				return nil, err
			}
			card.AssigneeID = assigneeID
		}
	}
	if req.StartDate != nil {
		card.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		card.EndDate = req.EndDate
	}

	// Tags resolve before anything is written, and the field save and tag
	// replacement share one transaction, so a failure anywhere leaves the
	// card exactly as it was.
	if req.Tags != nil {
		tags, err := s.tags.ResolveOrCreateCardTags(ctx, group, *req.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.cardRepo.UpdateWithTags(ctx, card, tags); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update card", err.Error())
		}
	} else {
		if err := s.cardRepo.Update(ctx, card); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update card", err.Error())
		}
	}

	s.boardCache.Invalidate(ctx, group.ID)
	return s.fetchCardResponse(ctx, group.ID, card.Code)
}

// DeleteCard removes a card. Its code is not retired: once it no longer holds
// the group's maximum it may be handed out again.
func (s *cardServiceImpl) DeleteCard(ctx context.Context, userID uuid.UUID, publicID, code string) error {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return err
	}

	if err := s.cardRepo.Delete(ctx, group.ID, code); err != nil {
		if repository.IsNotFound(err) {
			return response.NewAppError(response.ErrCodeNotFound, "Card not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete card", err.Error())
	}

	s.boardCache.Invalidate(ctx, group.ID)
	s.logger.Info("Card deleted",
		zap.String("group_uuid", publicID),
		zap.String("card_code", code))
	return nil
}

// resolveAssignee maps an assignee username to a user ID, requiring the user
// to be a member of the group. A nil username means no assignee.
func (s *cardServiceImpl) resolveAssignee(ctx context.Context, groupID uuid.UUID, username *string) (*uuid.UUID, error) {
	if username == nil || *username == "" {
		return nil, nil
	}

	user, err := s.userRepo.FindByUsername(ctx, *username)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up assignee", err.Error())
	}
	if user == nil {
		return nil, response.NewAppError(response.ErrCodeValidation, "Assignee is not a member of this group", "")
	}

	isMember, err := s.memberRepo.IsMember(ctx, groupID, user.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check membership", err.Error())
	}
	if !isMember {
		return nil, response.NewAppError(response.ErrCodeValidation, "Assignee is not a member of this group", "")
	}

	id := user.ID
	return &id, nil
}

// fetchCardResponse reloads a card with its relations and converts it
func (s *cardServiceImpl) fetchCardResponse(ctx context.Context, groupID uuid.UUID, code string) (*dto.CardResponse, error) {
	card, err := s.cardRepo.FindByGroupAndCode(ctx, groupID, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Card not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch card", err.Error())
	}

	resp := toCardResponse(card, card.Column.Name)
	return &resp, nil
}

// toCardResponse converts a card to its response DTO
func toCardResponse(card *domain.Card, columnName string) dto.CardResponse {
	tags := make([]dto.TagResponse, 0, len(card.Tags))
	for _, tag := range card.Tags {
		tags = append(tags, dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color})
	}

	var assignee *string
	if card.Assignee != nil {
		username := card.Assignee.Username
		assignee = &username
	}

	return dto.CardResponse{
		Code:        card.Code,
		Column:      columnName,
		Title:       card.Title,
		Description: card.Description,
		Assignee:    assignee,
		StartDate:   card.StartDate,
		EndDate:     card.EndDate,
		Tags:        tags,
		CreatedAt:   card.CreatedAt,
	}
}
