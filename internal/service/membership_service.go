package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"group-board-api/internal/domain"
	"group-board-api/internal/repository"
	"group-board-api/internal/response"
)

// MembershipService is the single authority deciding what a principal may do
// with a group and its scoped entities. Membership grants read and write;
// only the admin may change or delete the group itself.
type MembershipService interface {
	CanRead(ctx context.Context, userID uuid.UUID, group *domain.Group) (bool, error)
	CanWrite(ctx context.Context, userID uuid.UUID, entity domain.GroupScoped) (bool, error)
	CanAdminister(ctx context.Context, userID uuid.UUID, group *domain.Group) bool

	AuthorizeRead(ctx context.Context, userID uuid.UUID, publicID string) (*domain.Group, error)
	AuthorizeAdmin(ctx context.Context, userID uuid.UUID, publicID string) (*domain.Group, error)
}

// membershipServiceImpl is the implementation of MembershipService
type membershipServiceImpl struct {
	groupRepo  repository.GroupRepository
	memberRepo repository.MemberRepository
}

// NewMembershipService creates a new instance of MembershipService
func NewMembershipService(groupRepo repository.GroupRepository, memberRepo repository.MemberRepository) MembershipService {
	return &membershipServiceImpl{groupRepo: groupRepo, memberRepo: memberRepo}
}

// CanRead reports whether the user is a member of the group. The admin is a
// member like any other; there is no admin bypass for groups it left.
func (s *membershipServiceImpl) CanRead(ctx context.Context, userID uuid.UUID, group *domain.Group) (bool, error) {
	return s.memberRepo.IsMember(ctx, group.ID, userID)
}

// CanWrite reports whether the user may mutate a group-scoped entity.
// Regular members may mutate group content, so this degrades to membership
// in the entity's group. Every scoped entity goes through this one path;
// there is deliberately no per-type branching.
func (s *membershipServiceImpl) CanWrite(ctx context.Context, userID uuid.UUID, entity domain.GroupScoped) (bool, error) {
	return s.memberRepo.IsMember(ctx, entity.GroupRef(), userID)
}

// CanAdminister reports whether the user is the group's admin
func (s *membershipServiceImpl) CanAdminister(ctx context.Context, userID uuid.UUID, group *domain.Group) bool {
	return group.IsAdmin(userID)
}

// AuthorizeRead resolves a group by its public identifier and checks the
// principal may see it. A missing group and a group the principal is not a
// member of produce the identical NotFound error, so existence of private
// groups never leaks.
func (s *membershipServiceImpl) AuthorizeRead(ctx context.Context, userID uuid.UUID, publicID string) (*domain.Group, error) {
	group, err := s.groupRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Group not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch group", err.Error())
	}

	ok, err := s.CanRead(ctx, userID, group)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check membership", err.Error())
	}
	if !ok {
		return nil, response.NewAppError(response.ErrCodeNotFound, "Group not found", "")
	}

	return group, nil
}

// AuthorizeAdmin is AuthorizeRead plus the admin capability. A member who is
// not the admin gets Forbidden: the group is visible to them, so there is
// nothing to hide, only a capability to deny.
func (s *membershipServiceImpl) AuthorizeAdmin(ctx context.Context, userID uuid.UUID, publicID string) (*domain.Group, error) {
	group, err := s.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}
	if !s.CanAdminister(ctx, userID, group) {
		return nil, response.NewAppError(response.ErrCodeForbidden, "Only the group admin may perform this operation", "")
	}
	return group, nil
}
