package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-board-api/internal/domain"
	"group-board-api/internal/dto"
	"group-board-api/internal/response"
)

func TestCreateCard_AllocatesSequentialCodes(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")
	ctx := context.Background()

	first, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "first",
	})
	require.NoError(t, err)
	second, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "second",
	})
	require.NoError(t, err)

	assert.Equal(t, "000001", first.Code)
	assert.Equal(t, "000002", second.Code)
	assert.Equal(t, "todo", first.Column)
}

func TestCreateCard_UnknownColumn(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")

	_, err := env.cards.CreateCard(context.Background(), alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "missing",
		Title:      "card",
	})

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}

func TestCreateCard_AssigneeMustBeMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "mallory")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")

	_, err := env.cards.CreateCard(context.Background(), alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "card",
		Assignee:   strPtr("mallory"),
	})

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeValidation, appErr.Code)
}

func TestCreateCard_TagsResolvedThroughIndex(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")
	ctx := context.Background()

	specs := []dto.TagSpec{{Name: "bug", Color: "#ff0000"}}
	first, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "first",
		Tags:       specs,
	})
	require.NoError(t, err)
	second, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "second",
		Tags:       specs,
	})
	require.NoError(t, err)

	// Both cards reference the same tag; the index never duplicates
	require.Len(t, first.Tags, 1)
	require.Len(t, second.Tags, 1)
	assert.Equal(t, first.Tags[0].Code, second.Tags[0].Code)

	tags, err := env.tags.ListTags(ctx, alice.ID, publicID, "card")
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestUpdateCard_TagTriState(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")
	ctx := context.Background()

	card, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "card",
		Tags:       []dto.TagSpec{{Name: "bug", Color: "#ff0000"}},
	})
	require.NoError(t, err)

	// Absent tags field keeps the existing tags
	title := "renamed"
	updated, err := env.cards.UpdateCard(ctx, alice.ID, publicID, card.Code, &dto.UpdateCardRequest{
		Title: &title,
	})
	require.NoError(t, err)
	assert.Len(t, updated.Tags, 1)

	// Present non-empty list replaces them
	replacement := []dto.TagSpec{{Name: "feature", Color: "#00ff00"}}
	updated, err = env.cards.UpdateCard(ctx, alice.ID, publicID, card.Code, &dto.UpdateCardRequest{
		Tags: &replacement,
	})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "feature", updated.Tags[0].Name)

	// Present empty list clears them
	empty := []dto.TagSpec{}
	updated, err = env.cards.UpdateCard(ctx, alice.ID, publicID, card.Code, &dto.UpdateCardRequest{
		Tags: &empty,
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestUpdateCard_FailedTagStepLeavesCardUntouched(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")
	ctx := context.Background()

	card, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "card",
		Tags:       []dto.TagSpec{{Name: "bug", Color: "#ff0000"}},
	})
	require.NoError(t, err)

	// Exhaust the tag code space so resolving a new tag must fail
	group, err := env.groupRepo.FindByPublicID(ctx, publicID)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&domain.CardTag{
		GroupID: group.ID, Code: "999999", Name: "last", Color: "#000000",
	}).Error)

	title := "renamed"
	replacement := []dto.TagSpec{{Name: "feature", Color: "#00ff00"}}
	_, err = env.cards.UpdateCard(ctx, alice.ID, publicID, card.Code, &dto.UpdateCardRequest{
		Title: &title,
		Tags:  &replacement,
	})
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeConflict, appErr.Code)

	// Nothing of the half-failed update is visible
	reloaded, err := env.cards.GetCard(ctx, alice.ID, publicID, card.Code)
	require.NoError(t, err)
	assert.Equal(t, "card", reloaded.Title)
	require.Len(t, reloaded.Tags, 1)
	assert.Equal(t, "bug", reloaded.Tags[0].Name)
}

func TestUpdateCard_MoveBetweenColumns(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")
	env.createColumn(t, alice, publicID, "done")
	ctx := context.Background()

	card, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "card",
	})
	require.NoError(t, err)

	moved, err := env.cards.UpdateCard(ctx, alice.ID, publicID, card.Code, &dto.UpdateCardRequest{
		ColumnName: strPtr("done"),
	})
	require.NoError(t, err)
	// The code survives the move unchanged
	assert.Equal(t, card.Code, moved.Code)
	assert.Equal(t, "done", moved.Column)
}

func TestUpdateCard_ClearAssignee(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")
	ctx := context.Background()

	card, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo",
		Title:      "card",
		Assignee:   strPtr("alice"),
	})
	require.NoError(t, err)
	require.NotNil(t, card.Assignee)

	updated, err := env.cards.UpdateCard(ctx, alice.ID, publicID, card.Code, &dto.UpdateCardRequest{
		Assignee: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Assignee)
}

func TestDeleteCard_FreesTopCode(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")
	env.createColumn(t, alice, publicID, "todo")
	ctx := context.Background()

	_, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo", Title: "first",
	})
	require.NoError(t, err)
	top, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo", Title: "second",
	})
	require.NoError(t, err)

	require.NoError(t, env.cards.DeleteCard(ctx, alice.ID, publicID, top.Code))

	reused, err := env.cards.CreateCard(ctx, alice.ID, publicID, &dto.CreateCardRequest{
		ColumnName: "todo", Title: "third",
	})
	require.NoError(t, err)
	assert.Equal(t, top.Code, reused.Code)
}

func TestGetCard_NotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	publicID := env.createGroup(t, alice, "team")

	_, err := env.cards.GetCard(context.Background(), alice.ID, publicID, "000042")

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}

func TestListCards_NonMemberDenied(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	mallory := env.createUser(t, "mallory")
	publicID := env.createGroup(t, alice, "team")

	_, err := env.cards.ListCards(context.Background(), mallory.ID, publicID)

	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, response.ErrCodeNotFound, appErr.Code)
}

func strPtr(s string) *string {
	return &s
}
