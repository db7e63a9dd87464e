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

// ColumnService defines the interface for board column business logic
type ColumnService interface {
	CreateColumn(ctx context.Context, userID uuid.UUID, publicID string, req *dto.CreateColumnRequest) (*dto.ColumnResponse, error)
	ListColumns(ctx context.Context, userID uuid.UUID, publicID string) ([]dto.ColumnResponse, error)
	UpdateColumn(ctx context.Context, userID uuid.UUID, publicID string, columnID uuid.UUID, req *dto.UpdateColumnRequest) (*dto.ColumnResponse, error)
	DeleteColumn(ctx context.Context, userID uuid.UUID, publicID string, columnID uuid.UUID) error
}

// columnServiceImpl is the implementation of ColumnService
type columnServiceImpl struct {
	columnRepo repository.ColumnRepository
	membership MembershipService
	boardCache *cache.BoardCache
	logger     *zap.Logger
}

// NewColumnService creates a new instance of ColumnService
func NewColumnService(
	columnRepo repository.ColumnRepository,
	membership MembershipService,
	boardCache *cache.BoardCache,
	logger *zap.Logger,
) ColumnService {
	return &columnServiceImpl{
		columnRepo: columnRepo,
		membership: membership,
		boardCache: boardCache,
		logger:     logger,
	}
}

// CreateColumn creates a column on the group's board. Column names are unique
// within a group because cards address their column by name.
func (s *columnServiceImpl) CreateColumn(ctx context.Context, userID uuid.UUID, publicID string, req *dto.CreateColumnRequest) (*dto.ColumnResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	existing, err := s.columnRepo.FindByGroupAndName(ctx, group.ID, req.Name)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up column", err.Error())
	}
	if existing != nil {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "A column with this name already exists in this group", "")
	}

	column := &domain.ColumnBoard{
		GroupID: group.ID,
		Name:    req.Name,
		Color:   req.Color,
	}
	if err := s.columnRepo.Create(ctx, column); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create column", err.Error())
	}

	s.boardCache.Invalidate(ctx, group.ID)
	s.logger.Info("Column created",
		zap.String("group_uuid", publicID),
		zap.String("column_name", column.Name))

	return toColumnResponse(column), nil
}

// ListColumns returns the group's columns in board order
func (s *columnServiceImpl) ListColumns(ctx context.Context, userID uuid.UUID, publicID string) ([]dto.ColumnResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	columns, err := s.columnRepo.FindByGroupID(ctx, group.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch columns", err.Error())
	}

	result := make([]dto.ColumnResponse, 0, len(columns))
	for _, column := range columns {
		result = append(result, *toColumnResponse(column))
	}
	return result, nil
}

// UpdateColumn renames or recolors a column. A rename must not collide with
// another column of the group.
func (s *columnServiceImpl) UpdateColumn(ctx context.Context, userID uuid.UUID, publicID string, columnID uuid.UUID, req *dto.UpdateColumnRequest) (*dto.ColumnResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	column, err := s.columnRepo.FindByID(ctx, group.ID, columnID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Column not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch column", err.Error())
	}

	if req.Name != nil && *req.Name != column.Name {
		existing, err := s.columnRepo.FindByGroupAndName(ctx, group.ID, *req.Name)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up column", err.Error())
		}
		if existing != nil {
			return nil, response.NewAppError(response.ErrCodeAlreadyExists, "A column with this name already exists in this group", "")
		}
		column.Name = *req.Name
	}
	if req.Color != nil {
		column.Color = *req.Color
	}

	if err := s.columnRepo.Update(ctx, column); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update column", err.Error())
	}

	s.boardCache.Invalidate(ctx, group.ID)
	return toColumnResponse(column), nil
}

// DeleteColumn removes a column and every card in it
func (s *columnServiceImpl) DeleteColumn(ctx context.Context, userID uuid.UUID, publicID string, columnID uuid.UUID) error {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return err
	}

	if _, err := s.columnRepo.FindByID(ctx, group.ID, columnID); err != nil {
		if repository.IsNotFound(err) {
			return response.NewAppError(response.ErrCodeNotFound, "Column not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to fetch column", err.Error())
	}

	if err := s.columnRepo.Delete(ctx, group.ID, columnID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete column", err.Error())
	}

	s.boardCache.Invalidate(ctx, group.ID)
	s.logger.Info("Column deleted",
		zap.String("group_uuid", publicID),
		zap.String("column_id", columnID.String()))
	return nil
}

// toColumnResponse converts a column to its response DTO
func toColumnResponse(column *domain.ColumnBoard) *dto.ColumnResponse {
	return &dto.ColumnResponse{
		Identifier: column.ID.String(),
		Name:       column.Name,
		Color:      column.Color,
	}
}
