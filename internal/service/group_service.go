package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"group-board-api/internal/cache"
	"group-board-api/internal/domain"
	"group-board-api/internal/dto"
	"group-board-api/internal/metrics"
	"group-board-api/internal/repository"
	"group-board-api/internal/response"
	"group-board-api/internal/util"
)

// GroupService defines the interface for group business logic
type GroupService interface {
	CreateGroup(ctx context.Context, creatorID uuid.UUID, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	GetGroup(ctx context.Context, userID uuid.UUID, publicID string) (*dto.GroupDetailResponse, error)
	UpdateGroup(ctx context.Context, userID uuid.UUID, publicID string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error)
	DeleteGroup(ctx context.Context, userID uuid.UUID, publicID string) error
	AddMember(ctx context.Context, userID uuid.UUID, publicID string, req *dto.AddMemberRequest) error
}

// groupServiceImpl is the implementation of GroupService
type groupServiceImpl struct {
	groupRepo  repository.GroupRepository
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
	membership MembershipService
	boards     BoardService
	boardCache *cache.BoardCache
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewGroupService creates a new instance of GroupService
func NewGroupService(
	groupRepo repository.GroupRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	membership MembershipService,
	boards BoardService,
	boardCache *cache.BoardCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) GroupService {
	return &groupServiceImpl{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		membership: membership,
		boards:     boards,
		boardCache: boardCache,
		metrics:    m,
		logger:     logger,
	}
}

// CreateGroup creates a group with the creator as admin and sole initial
// member
func (s *groupServiceImpl) CreateGroup(ctx context.Context, creatorID uuid.UUID, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	exists, err := s.userRepo.Exists(ctx, creatorID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to verify user", err.Error())
	}
	if !exists {
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "Unknown user", "")
	}

	adminID := creatorID
	group := &domain.Group{
		PublicID:    util.ShortID(),
		Name:        req.Name,
		Description: req.Description,
		AdminID:     &adminID,
	}
	member := &domain.GroupMember{
		UserID:   creatorID,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.groupRepo.CreateWithMember(ctx, group, member); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create group", err.Error())
	}

	s.metrics.IncrementGroupCreated()
	s.logger.Info("Group created",
		zap.String("group_uuid", group.PublicID),
		zap.String("admin_id", creatorID.String()))

	// Reload with relations for a complete response
	created, err := s.groupRepo.FindByID(ctx, group.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to reload group", err.Error())
	}
	return s.toGroupResponse(ctx, created)
}

// GetGroup returns the group detail view: metadata, the member list with
// user tags, and the assembled board
func (s *groupServiceImpl) GetGroup(ctx context.Context, userID uuid.UUID, publicID string) (*dto.GroupDetailResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	resp, err := s.toGroupResponse(ctx, group)
	if err != nil {
		return nil, err
	}

	board, err := s.boards.AssembleBoard(ctx, group)
	if err != nil {
		return nil, err
	}

	return &dto.GroupDetailResponse{GroupResponse: *resp, Board: *board}, nil
}

// UpdateGroup updates group metadata; admin only
func (s *groupServiceImpl) UpdateGroup(ctx context.Context, userID uuid.UUID, publicID string, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.membership.AuthorizeAdmin(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Description != nil {
		group.Description = *req.Description
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update group", err.Error())
	}

	return s.toGroupResponse(ctx, group)
}

// DeleteGroup soft deletes a group and everything scoped to it; admin only
func (s *groupServiceImpl) DeleteGroup(ctx context.Context, userID uuid.UUID, publicID string) error {
	group, err := s.membership.AuthorizeAdmin(ctx, userID, publicID)
	if err != nil {
		return err
	}

	if err := s.groupRepo.Delete(ctx, group.ID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete group", err.Error())
	}

	s.boardCache.Invalidate(ctx, group.ID)
	s.logger.Info("Group deleted", zap.String("group_uuid", publicID))
	return nil
}

// AddMember adds a user to the group by username. Any member may invite.
func (s *groupServiceImpl) AddMember(ctx context.Context, userID uuid.UUID, publicID string, req *dto.AddMemberRequest) error {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to look up user", err.Error())
	}
	if user == nil {
		return response.NewAppError(response.ErrCodeNotFound, "User not found", "")
	}

	existing, err := s.memberRepo.FindByGroupAndUser(ctx, group.ID, user.ID)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to check membership", err.Error())
	}
	if existing != nil {
		return response.NewAppError(response.ErrCodeAlreadyExists, "User is already a member of this group", "")
	}

	member := &domain.GroupMember{
		GroupID:  group.ID,
		UserID:   user.ID,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to add member", err.Error())
	}

	s.logger.Info("Member added to group",
		zap.String("group_uuid", publicID),
		zap.String("username", req.Username))
	return nil
}

// toGroupResponse converts a group with relations into its response DTO
func (s *groupServiceImpl) toGroupResponse(ctx context.Context, group *domain.Group) (*dto.GroupResponse, error) {
	members, err := s.boards.MemberList(ctx, group)
	if err != nil {
		return nil, err
	}

	var admin *string
	if group.AdminID != nil {
		adminUser, err := s.userRepo.FindByID(ctx, *group.AdminID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch admin", err.Error())
		}
		if adminUser != nil {
			username := adminUser.Username
			admin = &username
		}
	}

	return &dto.GroupResponse{
		GroupUUID:   group.PublicID,
		Name:        group.Name,
		Description: group.Description,
		Admin:       admin,
		Members:     members,
		CreatedAt:   group.CreatedAt,
	}, nil
}
