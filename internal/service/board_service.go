package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"group-board-api/internal/cache"
	"group-board-api/internal/domain"
	"group-board-api/internal/dto"
	"group-board-api/internal/repository"
	"group-board-api/internal/response"
)

// BoardService assembles the nested board view of a group from normalized
// storage. It performs no writes.
type BoardService interface {
	GetBoard(ctx context.Context, userID uuid.UUID, publicID string) (*dto.BoardView, error)
	AssembleBoard(ctx context.Context, group *domain.Group) (*dto.BoardView, error)
	MemberList(ctx context.Context, group *domain.Group) ([]dto.MemberResponse, error)
}

// boardServiceImpl is the implementation of BoardService
type boardServiceImpl struct {
	columnRepo   repository.ColumnRepository
	cardRepo     repository.CardRepository
	memberRepo   repository.MemberRepository
	relationRepo repository.UserTagRelationRepository
	membership   MembershipService
	boardCache   *cache.BoardCache
	logger       *zap.Logger
}

// NewBoardService creates a new instance of BoardService
func NewBoardService(
	columnRepo repository.ColumnRepository,
	cardRepo repository.CardRepository,
	memberRepo repository.MemberRepository,
	relationRepo repository.UserTagRelationRepository,
	membership MembershipService,
	boardCache *cache.BoardCache,
	logger *zap.Logger,
) BoardService {
	return &boardServiceImpl{
		columnRepo:   columnRepo,
		cardRepo:     cardRepo,
		memberRepo:   memberRepo,
		relationRepo: relationRepo,
		membership:   membership,
		boardCache:   boardCache,
		logger:       logger,
	}
}

// GetBoard authorizes the principal and returns the group's board view,
// serving from the cache when possible
func (s *boardServiceImpl) GetBoard(ctx context.Context, userID uuid.UUID, publicID string) (*dto.BoardView, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if view, ok := s.boardCache.Get(ctx, group.ID); ok {
		return view, nil
	}

	view, err := s.AssembleBoard(ctx, group)
	if err != nil {
		return nil, err
	}

	s.boardCache.Set(ctx, group.ID, view)
	return view, nil
}

// AssembleBoard folds the group's columns, cards and tags into one nested
// view. Columns keep their stable creation order and cards keep creation
// order within their column, so repeated calls over unchanged data return
// identical output.
func (s *boardServiceImpl) AssembleBoard(ctx context.Context, group *domain.Group) (*dto.BoardView, error) {
	columns, err := s.columnRepo.FindByGroupID(ctx, group.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch columns", err.Error())
	}

	cards, err := s.cardRepo.FindByGroupID(ctx, group.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch cards", err.Error())
	}

	// Partition cards by column. A card whose column is gone is an upstream
	// integrity violation; it is skipped, not rendered.
	byColumn := make(map[uuid.UUID][]dto.TaskView, len(columns))
	known := make(map[uuid.UUID]bool, len(columns))
	for _, column := range columns {
		known[column.ID] = true
	}
	for _, card := range cards {
		if !known[card.ColumnID] {
			s.logger.Warn("Skipping card with missing column",
				zap.String("group_id", group.ID.String()),
				zap.String("card_code", card.Code))
			continue
		}
		byColumn[card.ColumnID] = append(byColumn[card.ColumnID], toTaskView(card))
	}

	view := &dto.BoardView{Columns: make([]dto.ColumnView, 0, len(columns))}
	for _, column := range columns {
		tasks := byColumn[column.ID]
		if tasks == nil {
			tasks = []dto.TaskView{}
		}
		view.Columns = append(view.Columns, dto.ColumnView{
			Identifier: column.ID.String(),
			Name:       column.Name,
			Color:      column.Color,
			Tasks:      tasks,
		})
	}

	return view, nil
}

// MemberList returns the group's members with their user-tag lists attached,
// keyed by username. Members without tags carry an empty list, never a
// missing one.
func (s *boardServiceImpl) MemberList(ctx context.Context, group *domain.Group) ([]dto.MemberResponse, error) {
	members, err := s.memberRepo.FindByGroupID(ctx, group.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch members", err.Error())
	}

	relations, err := s.relationRepo.FindByGroupID(ctx, group.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch user tags", err.Error())
	}

	tagsByUser := make(map[uuid.UUID][]dto.TagResponse)
	for _, rel := range relations {
		if rel.Tag == nil {
			continue
		}
		tagsByUser[rel.UserID] = append(tagsByUser[rel.UserID], dto.TagResponse{
			Code:  rel.Tag.Code,
			Name:  rel.Tag.Name,
			Color: rel.Tag.Color,
		})
	}

	result := make([]dto.MemberResponse, 0, len(members))
	for _, member := range members {
		if member.User == nil {
			continue
		}
		tags := tagsByUser[member.UserID]
		if tags == nil {
			tags = []dto.TagResponse{}
		}
		result = append(result, dto.MemberResponse{
			Username: member.User.Username,
			Email:    member.User.Email,
			Tags:     tags,
		})
	}

	return result, nil
}

// toTaskView converts a card to its board representation
func toTaskView(card *domain.Card) dto.TaskView {
	tags := make([]dto.TagResponse, 0, len(card.Tags))
	for _, tag := range card.Tags {
		tags = append(tags, dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color})
	}

	var assignee *string
	if card.Assignee != nil {
		username := card.Assignee.Username
		assignee = &username
	}

	return dto.TaskView{
		Code:        card.Code,
		Title:       card.Title,
		Description: card.Description,
		Assignee:    assignee,
		StartDate:   card.StartDate,
		EndDate:     card.EndDate,
		Tags:        tags,
	}
}
