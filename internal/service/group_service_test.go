package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-board-api/internal/dto"
	"group-board-api/internal/response"
)

func TestCreateGroup_CreatorIsAdminAndMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	resp, err := env.groups.CreateGroup(context.Background(), alice.ID, &dto.CreateGroupRequest{
		Name:        "team",
		Description: "our board",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.GroupUUID)
	require.NotNil(t, resp.Admin)
	assert.Equal(t, "alice", *resp.Admin)
	require.Len(t, resp.Members, 1)
	assert.Equal(t, "alice", resp.Members[0].Username)
	assert.NotNil(t, resp.Members[0].Tags)
	assert.Empty(t, resp.Members[0].Tags)
}

func TestCreateGroup_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ghost := env.createUser(t, "temp")
	require.NoError(t, env.db.Delete(ghost).Error)

	_, err := env.groups.CreateGroup(context.Background(), ghost.ID, &dto.CreateGroupRequest{Name: "team"})

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeUnauthorized, appErr.Code)
}

func TestGetGroup_DetailIncludesBoard(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")

	detail, err := env.groups.GetGroup(context.Background(), alice.ID, publicID)
	require.NoError(t, err)

	assert.Equal(t, "team", detail.Name)
	require.Len(t, detail.Board.Columns, 1)
	assert.Equal(t, "todo", detail.Board.Columns[0].Name)
	assert.NotNil(t, detail.Board.Columns[0].Tasks)
}

func TestGetGroup_NonMemberDenied(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	mallory := env.createUser(t, "mallory")
	publicID := env.createGroup(t, alice, "team")

	_, err := env.groups.GetGroup(context.Background(), mallory.ID, publicID)

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}

func TestUpdateGroup_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	publicID := env.createGroup(t, alice, "team")
	env.addMember(t, alice, publicID, bob)

	name := "renamed"
	_, err := env.groups.UpdateGroup(context.Background(), bob.ID, publicID, &dto.UpdateGroupRequest{Name: &name})
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeForbidden, appErr.Code)

	resp, err := env.groups.UpdateGroup(context.Background(), alice.ID, publicID, &dto.UpdateGroupRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", resp.Name)
}

func TestUpdateGroup_NilFieldsKeepValues(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")

	desc := "described"
	resp, err := env.groups.UpdateGroup(context.Background(), alice.ID, publicID, &dto.UpdateGroupRequest{
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "team", resp.Name)
	assert.Equal(t, "described", resp.Description)
}

func TestDeleteGroup_HidesGroupFromMembers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")

	require.NoError(t, env.groups.DeleteGroup(context.Background(), alice.ID, publicID))

	_, err := env.groups.GetGroup(context.Background(), alice.ID, publicID)
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}

func TestAddMember_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	publicID := env.createGroup(t, alice, "team")
	env.addMember(t, alice, publicID, bob)

	err := env.groups.AddMember(context.Background(), alice.ID, publicID, &dto.AddMemberRequest{Username: "bob"})

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeAlreadyExists, appErr.Code)
}

func TestAddMember_AnyMemberMayInvite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	publicID := env.createGroup(t, alice, "team")
	env.addMember(t, alice, publicID, bob)

	require.NoError(t, env.groups.AddMember(context.Background(), bob.ID, publicID,
		&dto.AddMemberRequest{Username: "carol"}))

	detail, err := env.groups.GetGroup(context.Background(), carol.ID, publicID)
	require.NoError(t, err)
	assert.Len(t, detail.Members, 3)
}

func TestAddMember_UnknownUsername(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")

	err := env.groups.AddMember(context.Background(), alice.ID, publicID, &dto.AddMemberRequest{Username: "nobody"})

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}
