package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	mk := func(userID int64, desc string) *models.Request {
		r := &models.Request{Description: desc, RequesterID: userID}
		require.NoError(t, db.CreateRequest(ctx, r))
		return r
	}
	a1 := mk(alice.ID, "need a tent")
	a2 := mk(alice.ID, "need a stove")
	b1 := mk(bob.ID, "need a boat")

	t.Run("Get", func(t *testing.T) {
		got, err := db.GetRequest(ctx, a1.ID)
		require.NoError(t, err)
		assert.Equal(t, "need a tent", got.Description)
		assert.Equal(t, alice.ID, got.RequesterID)

		_, err = db.GetRequest(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("OwnNewestFirst", func(t *testing.T) {
		got, err := db.ListRequestsByRequester(ctx, alice.ID, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, a2.ID, got[0].ID)
		assert.Equal(t, a1.ID, got[1].ID)
	})

	t.Run("Others", func(t *testing.T) {
		got, err := db.ListRequestsExcludingRequester(ctx, alice.ID, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, b1.ID, got[0].ID)

		paged, err := db.ListRequestsExcludingRequester(ctx, bob.ID, &models.Page{From: 1, Size: 1})
		require.NoError(t, err)
		require.Len(t, paged, 1)
		assert.Equal(t, a1.ID, paged[0].ID)
	})

	t.Run("DeletedRequestUnlinksItems", func(t *testing.T) {
		it := &models.Item{Name: "Tent", Description: "2p", Available: true, OwnerID: bob.ID, RequestID: &a1.ID}
		require.NoError(t, db.CreateItem(ctx, it))

		_, err := db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, a1.ID)
		require.NoError(t, err)

		got, err := db.GetItemByID(ctx, it.ID)
		require.NoError(t, err)
		assert.Nil(t, got.RequestID)
	})
}
