package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	author := createTestUser(t, db, "author")
	item := createTestItem(t, db, owner.ID, "Grill")

	first := &models.Comment{Text: "great", ItemID: item.ID, AuthorID: author.ID}
	require.NoError(t, db.CreateComment(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, "author", first.AuthorName)
	assert.False(t, first.Created.IsZero())

	second := &models.Comment{Text: "still great", ItemID: item.ID, AuthorID: author.ID}
	require.NoError(t, db.CreateComment(ctx, second))

	comments, err := db.ListCommentsByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)
	assert.Equal(t, "author", comments[1].AuthorName)

	empty, err := db.ListCommentsByItem(ctx, 777)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
