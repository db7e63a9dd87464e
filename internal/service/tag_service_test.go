package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"group-board-api/internal/allocator"
	"group-board-api/internal/cache"
	"group-board-api/internal/domain"
	"group-board-api/internal/dto"
	"group-board-api/internal/metrics"
	"group-board-api/internal/repository"
	"group-board-api/internal/response"
)

func TestResolveOrCreateCardTags_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	group, err := env.groupRepo.FindByPublicID(context.Background(), publicID)
	require.NoError(t, err)

	specs := []dto.TagSpec{
		{Name: "bug", Color: "#ff0000"},
		{Name: "feature", Color: "#00ff00"},
	}

	first, err := env.tags.ResolveOrCreateCardTags(context.Background(), group, specs)
	require.NoError(t, err)
	second, err := env.tags.ResolveOrCreateCardTags(context.Background(), group, specs)
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	// Resolving the same specs again returns the same tags, no duplicates
	assert.Equal(t, first[0].Code, second[0].Code)
	assert.Equal(t, first[1].Code, second[1].Code)

	all, err := env.cardTagRepo.FindByGroupID(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResolveOrCreateCardTags_SameNameDifferentColor(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	group, err := env.groupRepo.FindByPublicID(context.Background(), publicID)
	require.NoError(t, err)

	tags, err := env.tags.ResolveOrCreateCardTags(context.Background(), group, []dto.TagSpec{
		{Name: "bug", Color: "#ff0000"},
		{Name: "bug", Color: "#990000"},
	})
	require.NoError(t, err)

	// Identity is (name, color); a different color is a different tag
	require.Len(t, tags, 2)
	assert.NotEqual(t, tags[0].Code, tags[1].Code)
}

func TestCardTags_NameColorUniquePerGroup(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()
	group, err := env.groupRepo.FindByPublicID(ctx, publicID)
	require.NoError(t, err)

	require.NoError(t, env.db.Create(&domain.CardTag{
		GroupID: group.ID, Code: "000001", Name: "bug", Color: "#ff0000",
	}).Error)

	// A second row with the same (name, color) never lands, whatever its code
	err = env.db.Create(&domain.CardTag{
		GroupID: group.ID, Code: "000002", Name: "bug", Color: "#ff0000",
	}).Error
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "unique")
}

// staleCardTagRepo misses its first (name, color) lookup, standing in for a
// writer that passed the existence check just before a concurrent writer
// committed the same tag.
type staleCardTagRepo struct {
	repository.CardTagRepository
	stale int
}

func (r *staleCardTagRepo) FindByGroupAndNameColor(ctx context.Context, groupID uuid.UUID, name, color string) (*domain.CardTag, error) {
	if r.stale > 0 {
		r.stale--
		return nil, nil
	}
	return r.CardTagRepository.FindByGroupAndNameColor(ctx, groupID, name, color)
}

func TestResolveOrCreateCardTags_LostRaceConvergesOnWinner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()
	group, err := env.groupRepo.FindByPublicID(ctx, publicID)
	require.NoError(t, err)

	winner, err := env.tags.ResolveOrCreateCardTags(ctx, group, []dto.TagSpec{{Name: "bug", Color: "#ff0000"}})
	require.NoError(t, err)
	require.Len(t, winner, 1)

	logger := zap.NewNop()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	racing := NewTagService(
		&staleCardTagRepo{CardTagRepository: env.cardTagRepo, stale: 1},
		env.userTagRepo, env.relationRepo, env.userRepo, env.memberRepo,
		env.membership, allocator.New(env.db, logger),
		cache.NewBoardCache(nil, 0, nil, logger), m, logger)

	resolved, err := racing.ResolveOrCreateCardTags(ctx, group, []dto.TagSpec{{Name: "bug", Color: "#ff0000"}})
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	// The loser converges on the winner's tag instead of minting a twin
	// under the next code
	assert.Equal(t, winner[0].Code, resolved[0].Code)
	all, err := env.cardTagRepo.FindByGroupID(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// The exhausted retries count as a conflict even though it recovered
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AllocatorConflictsTotal))
}

func TestUpdateTag_RenameCollision(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()

	_, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "bug", Color: "#ff0000"})
	require.NoError(t, err)
	other, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "defect", Color: "#ff0000"})
	require.NoError(t, err)

	name := "bug"
	_, err = env.tags.UpdateTag(ctx, alice.ID, publicID, domain.TagKindCard, other.Code,
		&dto.UpdateTagRequest{Name: &name})

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeAlreadyExists, appErr.Code)
}

func TestCreateTag_DuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()

	_, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "bug", Color: "#ff0000"})
	require.NoError(t, err)

	_, err = env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "bug", Color: "#ff0000"})

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeAlreadyExists, appErr.Code)
}

func TestTagKinds_IndependentNamespaces(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()

	cardTag, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "urgent", Color: "#ff0000"})
	require.NoError(t, err)
	userTag, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindUser,
		&dto.CreateTagRequest{Name: "oncall", Color: "#0000ff"})
	require.NoError(t, err)

	// Both namespaces start their own sequence at the same code
	assert.Equal(t, "000001", cardTag.Code)
	assert.Equal(t, "000001", userTag.Code)

	// Lookups never cross namespaces
	_, err = env.tags.GetTag(ctx, alice.ID, publicID, domain.TagKindCard, cardTag.Code)
	require.NoError(t, err)
	got, err := env.tags.GetTag(ctx, alice.ID, publicID, domain.TagKindUser, userTag.Code)
	require.NoError(t, err)
	assert.Equal(t, "oncall", got.Name)
}

func TestUpdateTag_CodeIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "bug", Color: "#ff0000"})
	require.NoError(t, err)

	name := "defect"
	updated, err := env.tags.UpdateTag(ctx, alice.ID, publicID, domain.TagKindCard, tag.Code,
		&dto.UpdateTagRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, tag.Code, updated.Code)
	assert.Equal(t, "defect", updated.Name)
	assert.Equal(t, "#ff0000", updated.Color)
}

func TestDeleteTag_FreesTopCode(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()

	_, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "bug", Color: "#ff0000"})
	require.NoError(t, err)
	top, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "feature", Color: "#00ff00"})
	require.NoError(t, err)

	require.NoError(t, env.tags.DeleteTag(ctx, alice.ID, publicID, domain.TagKindCard, top.Code))

	reused, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindCard,
		&dto.CreateTagRequest{Name: "chore", Color: "#888888"})
	require.NoError(t, err)
	assert.Equal(t, top.Code, reused.Code)
}

func TestCreateUserTagRelation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	publicID := env.createGroup(t, alice, "team")
	env.addMember(t, alice, publicID, bob)
	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindUser,
		&dto.CreateTagRequest{Name: "oncall", Color: "#0000ff"})
	require.NoError(t, err)

	relation, err := env.tags.CreateUserTagRelation(ctx, alice.ID, publicID,
		&dto.CreateUserTagRelationRequest{Username: "bob", TagCode: tag.Code})
	require.NoError(t, err)

	assert.Equal(t, "bob", relation.Username)
	assert.Equal(t, tag.Code, relation.Tag.Code)
}

func TestCreateUserTagRelation_ValidationOrder(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "mallory")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindUser,
		&dto.CreateTagRequest{Name: "oncall", Color: "#0000ff"})
	require.NoError(t, err)

	cases := []struct {
		name     string
		req      dto.CreateUserTagRelationRequest
		wantCode string
	}{
		{
			name:     "unknown user",
			req:      dto.CreateUserTagRelationRequest{Username: "nobody", TagCode: tag.Code},
			wantCode: response.ErrCodeNotFound,
		},
		{
			name:     "user exists but is not a member",
			req:      dto.CreateUserTagRelationRequest{Username: "mallory", TagCode: tag.Code},
			wantCode: response.ErrCodeValidation,
		},
		{
			name:     "tag not in group",
			req:      dto.CreateUserTagRelationRequest{Username: "alice", TagCode: "999000"},
			wantCode: response.ErrCodeNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.tags.CreateUserTagRelation(ctx, alice.ID, publicID, &tc.req)
			var appErr *response.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.wantCode, appErr.Code)
		})
	}
}

func TestCreateUserTagRelation_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindUser,
		&dto.CreateTagRequest{Name: "oncall", Color: "#0000ff"})
	require.NoError(t, err)

	req := &dto.CreateUserTagRelationRequest{Username: "alice", TagCode: tag.Code}
	_, err = env.tags.CreateUserTagRelation(ctx, alice.ID, publicID, req)
	require.NoError(t, err)

	_, err = env.tags.CreateUserTagRelation(ctx, alice.ID, publicID, req)
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeAlreadyExists, appErr.Code)
}

func TestDeleteUserTagRelation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, alice.ID, publicID, domain.TagKindUser,
		&dto.CreateTagRequest{Name: "oncall", Color: "#0000ff"})
	require.NoError(t, err)

	_, err = env.tags.CreateUserTagRelation(ctx, alice.ID, publicID,
		&dto.CreateUserTagRelationRequest{Username: "alice", TagCode: tag.Code})
	require.NoError(t, err)

	require.NoError(t, env.tags.DeleteUserTagRelation(ctx, alice.ID, publicID, "alice", tag.Code))

	err = env.tags.DeleteUserTagRelation(ctx, alice.ID, publicID, "alice", tag.Code)
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}
