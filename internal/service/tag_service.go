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

// TagService defines the interface for tag business logic: the per-group tag
// index (get-or-create by name and color), explicit tag CRUD, and user-tag
// assignments.
type TagService interface {
	ResolveOrCreateCardTags(ctx context.Context, group *domain.Group, specs []dto.TagSpec) ([]domain.CardTag, error)
	CreateTag(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind, req *dto.CreateTagRequest) (*dto.TagResponse, error)
	GetTag(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind, code string) (*dto.TagResponse, error)
	ListTags(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind) ([]dto.TagResponse, error)
	UpdateTag(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind, code string, req *dto.UpdateTagRequest) (*dto.TagResponse, error)
	DeleteTag(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind, code string) error

	CreateUserTagRelation(ctx context.Context, userID uuid.UUID, publicID string, req *dto.CreateUserTagRelationRequest) (*dto.UserTagRelationResponse, error)
	DeleteUserTagRelation(ctx context.Context, userID uuid.UUID, publicID, username, tagCode string) error
}

// tagServiceImpl is the implementation of TagService
type tagServiceImpl struct {
	cardTagRepo  repository.CardTagRepository
	userTagRepo  repository.UserTagRepository
	relationRepo repository.UserTagRelationRepository
	userRepo     repository.UserRepository
	memberRepo   repository.MemberRepository
	membership   MembershipService
	alloc        allocator.Allocator
	boardCache   *cache.BoardCache
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewTagService creates a new instance of TagService
func NewTagService(
	cardTagRepo repository.CardTagRepository,
	userTagRepo repository.UserTagRepository,
	relationRepo repository.UserTagRelationRepository,
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	membership MembershipService,
	alloc allocator.Allocator,
	boardCache *cache.BoardCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) TagService {
	return &tagServiceImpl{
		cardTagRepo:  cardTagRepo,
		userTagRepo:  userTagRepo,
		relationRepo: relationRepo,
		userRepo:     userRepo,
		memberRepo:   memberRepo,
		membership:   membership,
		alloc:        alloc,
		boardCache:   boardCache,
		metrics:      m,
		logger:       logger,
	}
}

// ResolveOrCreateCardTags resolves every tag spec to an existing card tag of
// the group or creates one with a freshly allocated code. Calling it twice
// with the same specs yields the same tags; no duplicates, no re-allocation.
func (s *tagServiceImpl) ResolveOrCreateCardTags(ctx context.Context, group *domain.Group, specs []dto.TagSpec) ([]domain.CardTag, error) {
	tags := make([]domain.CardTag, 0, len(specs))
	seen := make(map[dto.TagSpec]bool, len(specs))

	for _, spec := range specs {
		if seen[spec] {
			continue
		}
		seen[spec] = true

		tag, err := s.resolveOrCreateCardTag(ctx, group.ID, spec.Name, spec.Color)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}

func (s *tagServiceImpl) resolveOrCreateCardTag(ctx context.Context, groupID uuid.UUID, name, color string) (*domain.CardTag, error) {
	existing, err := s.cardTagRepo.FindByGroupAndNameColor(ctx, groupID, name, color)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up tag", err.Error())
	}
	if existing != nil {
		return existing, nil
	}

	tag := &domain.CardTag{GroupID: groupID, Name: name, Color: color}
	_, err = s.alloc.Allocate(ctx, groupID, allocator.KindCardTag, func(tx *gorm.DB, code string) error {
		tag.Code = code
		return tx.Create(tag).Error
	})
	if err != nil {
		// A concurrent request may have created the same (name, color) in
		// the meantime; the (group, name, color) unique index keeps the
		// loser's inserts failing until its retries run out, and the
		// idempotent answer is the winner's tag.
		if errors.Is(err, allocator.ErrAllocationConflict) {
			s.metrics.IncrementAllocatorConflict()
			if raced, findErr := s.cardTagRepo.FindByGroupAndNameColor(ctx, groupID, name, color); findErr == nil && raced != nil {
				return raced, nil
			}
			return nil, response.NewAppError(response.ErrCodeConflict, "Failed to allocate tag code, please retry", "")
		}
		if errors.Is(err, allocator.ErrCodeSpaceExhausted) {
			return nil, response.NewAppError(response.ErrCodeConflict, "No tag codes left in this group", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create tag", err.Error())
	}

	s.metrics.IncrementTagCreated(string(domain.TagKindCard))
	return tag, nil
}

// CreateTag explicitly creates a tag of the given kind. Unlike the tag
// index, an existing (name, color) is a conflict here, not an idempotent
// success.
func (s *tagServiceImpl) CreateTag(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind, req *dto.CreateTagRequest) (*dto.TagResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.TagKindCard:
		existing, err := s.cardTagRepo.FindByGroupAndNameColor(ctx, group.ID, req.Name, req.Color)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up tag", err.Error())
		}
		if existing != nil {
			return nil, response.NewAppError(response.ErrCodeAlreadyExists, "A tag with this name and color already exists in this group", "")
		}
		tag, err := s.resolveOrCreateCardTag(ctx, group.ID, req.Name, req.Color)
		if err != nil {
			return nil, err
		}
		return &dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color}, nil

	case domain.TagKindUser:
		existing, err := s.userTagRepo.FindByGroupAndNameColor(ctx, group.ID, req.Name, req.Color)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up tag", err.Error())
		}
		if existing != nil {
			return nil, response.NewAppError(response.ErrCodeAlreadyExists, "A tag with this name and color already exists in this group", "")
		}
		tag := &domain.UserTag{GroupID: group.ID, Name: req.Name, Color: req.Color}
		_, err = s.alloc.Allocate(ctx, group.ID, allocator.KindUserTag, func(tx *gorm.DB, code string) error {
			tag.Code = code
			return tx.Create(tag).Error
		})
		if err != nil {
			if errors.Is(err, allocator.ErrAllocationConflict) {
				s.metrics.IncrementAllocatorConflict()
				return nil, response.NewAppError(response.ErrCodeConflict, "Failed to allocate tag code, please retry", "")
			}
			if errors.Is(err, allocator.ErrCodeSpaceExhausted) {
				return nil, response.NewAppError(response.ErrCodeConflict, "No tag codes left in this group", "")
			}
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create tag", err.Error())
		}
		s.metrics.IncrementTagCreated(string(domain.TagKindUser))
		return &dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color}, nil

	default:
		return nil, response.NewAppError(response.ErrCodeValidation, "Unknown tag kind", string(kind))
	}
}

// GetTag returns one tag of the group by code
func (s *tagServiceImpl) GetTag(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind, code string) (*dto.TagResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.TagKindCard:
		tag, err := s.cardTagRepo.FindByGroupAndCode(ctx, group.ID, code)
		if err != nil {
			return nil, tagLookupError(err)
		}
		return &dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color}, nil
	case domain.TagKindUser:
		tag, err := s.userTagRepo.FindByGroupAndCode(ctx, group.ID, code)
		if err != nil {
			return nil, tagLookupError(err)
		}
		return &dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color}, nil
	default:
		return nil, response.NewAppError(response.ErrCodeValidation, "Unknown tag kind", string(kind))
	}
}

// ListTags returns all tags of one kind in the group, ordered by code
func (s *tagServiceImpl) ListTags(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind) ([]dto.TagResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	result := []dto.TagResponse{}
	switch kind {
	case domain.TagKindCard:
		tags, err := s.cardTagRepo.FindByGroupID(ctx, group.ID)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch tags", err.Error())
		}
		for _, tag := range tags {
			result = append(result, dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color})
		}
	case domain.TagKindUser:
		tags, err := s.userTagRepo.FindByGroupID(ctx, group.ID)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch tags", err.Error())
		}
		for _, tag := range tags {
			result = append(result, dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color})
		}
	default:
		return nil, response.NewAppError(response.ErrCodeValidation, "Unknown tag kind", string(kind))
	}
	return result, nil
}

// UpdateTag renames or recolors a tag. The code never changes.
func (s *tagServiceImpl) UpdateTag(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind, code string, req *dto.UpdateTagRequest) (*dto.TagResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.TagKindCard:
		tag, err := s.cardTagRepo.FindByGroupAndCode(ctx, group.ID, code)
		if err != nil {
			return nil, tagLookupError(err)
		}
		if req.Name != nil {
			tag.Name = *req.Name
		}
		if req.Color != nil {
			tag.Color = *req.Color
		}
		if err := s.cardTagRepo.Update(ctx, tag); err != nil {
			if repository.IsDuplicate(err) {
				return nil, response.NewAppError(response.ErrCodeAlreadyExists, "A tag with this name and color already exists in this group", "")
			}
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update tag", err.Error())
		}
		s.boardCache.Invalidate(ctx, group.ID)
		return &dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color}, nil

	case domain.TagKindUser:
		tag, err := s.userTagRepo.FindByGroupAndCode(ctx, group.ID, code)
		if err != nil {
			return nil, tagLookupError(err)
		}
		if req.Name != nil {
			tag.Name = *req.Name
		}
		if req.Color != nil {
			tag.Color = *req.Color
		}
		if err := s.userTagRepo.Update(ctx, tag); err != nil {
			if repository.IsDuplicate(err) {
				return nil, response.NewAppError(response.ErrCodeAlreadyExists, "A tag with this name and color already exists in this group", "")
			}
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update tag", err.Error())
		}
		return &dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color}, nil

	default:
		return nil, response.NewAppError(response.ErrCodeValidation, "Unknown tag kind", string(kind))
	}
}

// DeleteTag removes a tag from the group. Its code becomes available for
// reuse when it held the scope's maximum.
func (s *tagServiceImpl) DeleteTag(ctx context.Context, userID uuid.UUID, publicID string, kind domain.TagKind, code string) error {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return err
	}

	switch kind {
	case domain.TagKindCard:
		if _, err := s.cardTagRepo.FindByGroupAndCode(ctx, group.ID, code); err != nil {
			return tagLookupError(err)
		}
		if err := s.cardTagRepo.Delete(ctx, group.ID, code); err != nil {
			return response.NewAppError(response.ErrCodeInternal, "Failed to delete tag", err.Error())
		}
	case domain.TagKindUser:
		if _, err := s.userTagRepo.FindByGroupAndCode(ctx, group.ID, code); err != nil {
			return tagLookupError(err)
		}
		if err := s.userTagRepo.Delete(ctx, group.ID, code); err != nil {
			return response.NewAppError(response.ErrCodeInternal, "Failed to delete tag", err.Error())
		}
	default:
		return response.NewAppError(response.ErrCodeValidation, "Unknown tag kind", string(kind))
	}

	s.boardCache.Invalidate(ctx, group.ID)
	return nil
}

// CreateUserTagRelation assigns a user tag to a group member. The checks run
// in a fixed order so every failure mode is distinct: group, user, member,
// tag, then duplicate relation.
func (s *tagServiceImpl) CreateUserTagRelation(ctx context.Context, userID uuid.UUID, publicID string, req *dto.CreateUserTagRelationRequest) (*dto.UserTagRelationResponse, error) {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to look up user", err.Error())
	}
	if user == nil {
		return nil, response.NewAppError(response.ErrCodeNotFound, "User not found", "")
	}

	isMember, err := s.memberRepo.IsMember(ctx, group.ID, user.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check membership", err.Error())
	}
	if !isMember {
		return nil, response.NewAppError(response.ErrCodeValidation, "User is not a member of this group", "")
	}

	tag, err := s.userTagRepo.FindByGroupAndCode(ctx, group.ID, req.TagCode)
	if err != nil {
		return nil, tagLookupError(err)
	}

	existing, err := s.relationRepo.FindByUserAndTag(ctx, user.ID, tag.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check existing relation", err.Error())
	}
	if existing != nil {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "This user already carries this tag", "")
	}

	relation := &domain.UserTagRelation{
		GroupID:   group.ID,
		UserID:    user.ID,
		UserTagID: tag.ID,
	}
	if err := s.relationRepo.Create(ctx, relation); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create relation", err.Error())
	}

	s.boardCache.Invalidate(ctx, group.ID)
	return &dto.UserTagRelationResponse{
		Username: user.Username,
		Tag:      dto.TagResponse{Code: tag.Code, Name: tag.Name, Color: tag.Color},
	}, nil
}

// DeleteUserTagRelation removes a user-tag assignment
func (s *tagServiceImpl) DeleteUserTagRelation(ctx context.Context, userID uuid.UUID, publicID, username, tagCode string) error {
	group, err := s.membership.AuthorizeRead(ctx, userID, publicID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to look up user", err.Error())
	}
	if user == nil {
		return response.NewAppError(response.ErrCodeNotFound, "User not found", "")
	}

	tag, err := s.userTagRepo.FindByGroupAndCode(ctx, group.ID, tagCode)
	if err != nil {
		return tagLookupError(err)
	}

	relation, err := s.relationRepo.FindByUserAndTag(ctx, user.ID, tag.ID)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to look up relation", err.Error())
	}
	if relation == nil {
		return response.NewAppError(response.ErrCodeNotFound, "Relation not found", "")
	}

	if err := s.relationRepo.Delete(ctx, user.ID, tag.ID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete relation", err.Error())
	}

	s.boardCache.Invalidate(ctx, group.ID)
	return nil
}

func tagLookupError(err error) *response.AppError {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewAppError(response.ErrCodeNotFound, "Tag not found", "")
	}
	return response.NewAppError(response.ErrCodeInternal, "Failed to fetch tag", err.Error())
}
