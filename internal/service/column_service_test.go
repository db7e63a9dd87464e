package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-board-api/internal/dto"
	"group-board-api/internal/response"
)

func TestCreateColumn_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")

	_, err := env.columns.CreateColumn(context.Background(), alice.ID, publicID, &dto.CreateColumnRequest{
		Name:  "todo",
		Color: "#dddddd",
	})

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeAlreadyExists, appErr.Code)
}

func TestUpdateColumn_RenameCollision(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")
	column := env.createColumn(t, alice, publicID, "doing")
	columnID := uuid.MustParse(column.Identifier)
	ctx := context.Background()

	name := "todo"
	_, err := env.columns.UpdateColumn(ctx, alice.ID, publicID, columnID, &dto.UpdateColumnRequest{Name: &name})
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeAlreadyExists, appErr.Code)

	// Renaming to its own current name is a no-op, not a collision
	same := "doing"
	updated, err := env.columns.UpdateColumn(ctx, alice.ID, publicID, columnID, &dto.UpdateColumnRequest{Name: &same})
	require.NoError(t, err)
	assert.Equal(t, "doing", updated.Name)
}

func TestDeleteColumn_RemovesItsCards(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	column := env.createColumn(t, alice, publicID, "todo")
	env.createColumn(t, alice, publicID, "keep")
	ctx := context.Background()

	doomed, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo", Title: "doomed",
	})
	require.NoError(t, err)
	kept, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "keep", Title: "kept",
	})
	require.NoError(t, err)

	columnID := uuid.MustParse(column.Identifier)
	require.NoError(t, env.columns.DeleteColumn(ctx, alice.ID, publicID, columnID))

	_, err = env.cards.GetCard(ctx, alice.ID, publicID, doomed.Code)
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)

	still, err := env.cards.GetCard(ctx, alice.ID, publicID, kept.Code)
	require.NoError(t, err)
	assert.Equal(t, "kept", still.Title)
}

func TestDeleteColumn_NotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")

	err := env.columns.DeleteColumn(context.Background(), alice.ID, publicID, uuid.New())

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}

func TestListColumns_NonMemberDenied(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	mallory := env.createUser(t, "mallory")
	publicID := env.createGroup(t, alice, "team")

	_, err := env.columns.ListColumns(context.Background(), mallory.ID, publicID)

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}
