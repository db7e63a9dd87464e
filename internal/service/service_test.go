package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"group-board-api/internal/allocator"
	"group-board-api/internal/cache"
	"group-board-api/internal/database"
	"group-board-api/internal/domain"
	"group-board-api/internal/dto"
	"group-board-api/internal/repository"
)

// testEnv wires the full service stack against an in-memory SQLite database,
// with a pass-through board cache and no metrics.
type testEnv struct {
	db *gorm.DB

	userRepo     repository.UserRepository
	groupRepo    repository.GroupRepository
	memberRepo   repository.MemberRepository
	columnRepo   repository.ColumnRepository
	cardRepo     repository.CardRepository
	cardTagRepo  repository.CardTagRepository
	userTagRepo  repository.UserTagRepository
	relationRepo repository.UserTagRelationRepository

	membership MembershipService
	boards     BoardService
	groups     GroupService
	tags       TagService
	cards      CardService
	columns    ColumnService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	logger := zap.NewNop()
	boardCache := cache.NewBoardCache(nil, 0, nil, logger)
	alloc := allocator.New(db, logger)

	env := &testEnv{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		groupRepo:    repository.NewGroupRepository(db),
		memberRepo:   repository.NewMemberRepository(db),
		columnRepo:   repository.NewColumnRepository(db),
		cardRepo:     repository.NewCardRepository(db),
		cardTagRepo:  repository.NewCardTagRepository(db),
		userTagRepo:  repository.NewUserTagRepository(db),
		relationRepo: repository.NewUserTagRelationRepository(db),
	}

	env.membership = NewMembershipService(env.groupRepo, env.memberRepo)
	env.boards = NewBoardService(env.columnRepo, env.cardRepo, env.memberRepo, env.relationRepo,
		env.membership, boardCache, logger)
	env.groups = NewGroupService(env.groupRepo, env.memberRepo, env.userRepo,
		env.membership, env.boards, boardCache, nil, logger)
	env.tags = NewTagService(env.cardTagRepo, env.userTagRepo, env.relationRepo, env.userRepo, env.memberRepo,
		env.membership, alloc, boardCache, nil, logger)
	env.cards = NewCardService(env.cardRepo, env.columnRepo, env.userRepo, env.memberRepo,
		env.membership, env.tags, alloc, boardCache, nil, logger)
	env.columns = NewColumnService(env.columnRepo, env.membership, boardCache, logger)

	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return user
}

// createGroup creates a group through the service so the creator ends up as
// admin and member, and returns its public identifier
func (e *testEnv) createGroup(t *testing.T, admin *domain.User, name string) string {
	t.Helper()

	resp, err := e.groups.CreateGroup(context.Background(), admin.ID, &dto.CreateGroupRequest{
		Name: name,
	})
	require.NoError(t, err)
	return resp.GroupUUID
}

func (e *testEnv) addMember(t *testing.T, actor *domain.User, publicID string, user *domain.User) {
	t.Helper()

	err := e.groups.AddMember(context.Background(), actor.ID, publicID, &dto.AddMemberRequest{
		Username: user.Username,
	})
	require.NoError(t, err)
}

func (e *testEnv) createColumn(t *testing.T, actor *domain.User, publicID, name string) *dto.ColumnResponse {
	t.Helper()

	column, err := e.columns.CreateColumn(context.Background(), actor.ID, publicID, &dto.CreateColumnRequest{
		Name:  name,
		Color: "#cccccc",
	})
	require.NoError(t, err)
	return column
}

// advanceClock nudges created_at timestamps apart; SQLite's timestamp
// resolution is too coarse to separate rows created back to back.
func advanceClock() {
	time.Sleep(2 * time.Millisecond)
}
