package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestItemService() (*ItemService, *mockRepo, time.Time) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewItemService(repo, nil, &logger)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, repo, fixed
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestItemService_GetItem(t *testing.T) {
	ctx := context.Background()
	svc, repo, now := newTestItemService()

	item := &models.Item{ID: 1, Name: "Drill", OwnerID: 2, Available: true}
	last := &models.BookingRef{ID: 10, BookerID: 3}
	comments := []models.Comment{{ID: 1, Text: "ok", AuthorName: "bob"}}

	repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
	repo.On("GetItemByID", ctx, int64(1)).Return(item, nil)
	repo.On("GetLastBooking", ctx, int64(1), int64(2), now).Return(last, nil)
	repo.On("GetNextBooking", ctx, int64(1), int64(2), now).Return(nil, nil)
	repo.On("ListCommentsByItem", ctx, int64(1)).Return(comments, nil)

	got, err := svc.GetItem(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "Drill", got.Name)
	assert.Equal(t, last, got.LastBooking)
	assert.Nil(t, got.NextBooking)
	assert.Equal(t, comments, got.Comments)

	t.Run("UnknownUser", func(t *testing.T) {
		repo.On("GetUserByID", ctx, int64(50)).Return(nil, database.ErrNotFound).Once()
		_, err := svc.GetItem(ctx, 50, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		repo.On("GetItemByID", ctx, int64(51)).Return(nil, database.ErrNotFound).Once()
		_, err := svc.GetItem(ctx, 2, 51)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemService_ListOwnerItems(t *testing.T) {
	ctx := context.Background()
	svc, repo, now := newTestItemService()
	page := &models.Page{Size: 10}

	items := []*models.Item{{ID: 1, OwnerID: 2}, {ID: 2, OwnerID: 2}}
	repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
	repo.On("ListItemsByOwner", ctx, int64(2), page).Return(items, nil)
	for _, it := range items {
		repo.On("GetLastBooking", ctx, it.ID, int64(2), now).Return(nil, nil)
		repo.On("GetNextBooking", ctx, it.ID, int64(2), now).Return(&models.BookingRef{ID: it.ID * 100, BookerID: 3}, nil)
		repo.On("ListCommentsByItem", ctx, it.ID).Return([]models.Comment{}, nil)
	}

	got, err := svc.ListOwnerItems(ctx, 2, page)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(200), got[1].NextBooking.ID)
	repo.AssertExpectations(t)
}

func TestItemService_CreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, _ := newTestItemService()
		reqID := int64(7)
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("GetRequest", ctx, reqID).Return(&models.Request{ID: reqID}, nil).Once()
		repo.On("CreateItem", ctx, mock.MatchedBy(func(it *models.Item) bool { return it.OwnerID == 2 })).
			Run(func(args mock.Arguments) { args.Get(1).(*models.Item).ID = 5 }).Return(nil).Once()

		got, err := svc.CreateItem(ctx, 2, &models.Item{Name: "Tent", Description: "2p", Available: true, RequestID: &reqID})
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.ID)
		assert.Equal(t, int64(2), got.OwnerID)
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		svc, repo, _ := newTestItemService()
		reqID := int64(8)
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("GetRequest", ctx, reqID).Return(nil, database.ErrNotFound).Once()

		_, err := svc.CreateItem(ctx, 2, &models.Item{Name: "Tent", RequestID: &reqID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		repo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	})
}

func TestItemService_UpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialUpdate", func(t *testing.T) {
		svc, repo, _ := newTestItemService()
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, Name: "Drill", Description: "old", Available: true, OwnerID: 2}, nil).Once()
		repo.On("UpdateItem", ctx, mock.Anything).Return(nil).Once()

		got, err := svc.UpdateItem(ctx, 2, 1, models.ItemPatch{Description: strPtr("new"), Available: boolPtr(false)})
		require.NoError(t, err)
		assert.Equal(t, "Drill", got.Name)
		assert.Equal(t, "new", got.Description)
		assert.False(t, got.Available)
	})

	t.Run("NotOwner", func(t *testing.T) {
		svc, repo, _ := newTestItemService()
		repo.On("GetUserByID", ctx, int64(3)).Return(&models.User{ID: 3}, nil).Once()
		repo.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 2}, nil).Once()

		_, err := svc.UpdateItem(ctx, 3, 1, models.ItemPatch{Name: strPtr("mine")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		repo.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
	})

	t.Run("EmptyPatchSkipsWrite", func(t *testing.T) {
		svc, repo, _ := newTestItemService()
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, Name: "Drill", OwnerID: 2}, nil).Once()

		_, err := svc.UpdateItem(ctx, 2, 1, models.ItemPatch{Name: strPtr("Drill")})
		require.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
	})
}

func TestItemService_DeleteItem(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestItemService()
	repo.On("GetUserByID", ctx, int64(3)).Return(&models.User{ID: 3}, nil)
	repo.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 2}, nil)
	repo.On("DeleteItem", ctx, int64(3), int64(1)).Return(nil, database.ErrNotFound).Once()

	err := svc.DeleteItem(ctx, 3, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemService_DeleteItem_DropsLedgerRows(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestItemService()
	outbox := new(mockWorker)
	svc.outbox = outbox

	repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil)
	repo.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 2}, nil)
	repo.On("DeleteItem", ctx, int64(2), int64(1)).Return([]int64{7, 9}, nil).Once()
	outbox.On("EnqueueTask", ctx, models.TaskDelete, int64(7), (*models.Booking)(nil), "").Return(nil).Once()
	outbox.On("EnqueueTask", ctx, models.TaskDelete, int64(9), (*models.Booking)(nil), "").Return(errors.New("redis down")).Once()

	require.NoError(t, svc.DeleteItem(ctx, 2, 1))
	outbox.AssertExpectations(t)
	outbox.AssertNumberOfCalls(t, "EnqueueTask", 2)
}

func TestItemService_DeleteItem_RefusedLeavesLedger(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestItemService()
	outbox := new(mockWorker)
	svc.outbox = outbox

	repo.On("GetUserByID", ctx, int64(3)).Return(&models.User{ID: 3}, nil)
	repo.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 2}, nil)
	repo.On("DeleteItem", ctx, int64(3), int64(1)).Return(nil, database.ErrNotFound).Once()

	assert.ErrorIs(t, svc.DeleteItem(ctx, 3, 1), domain.ErrNotFound)
	outbox.AssertNotCalled(t, "EnqueueTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestItemService_SearchItems(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestItemService()

	got, err := svc.SearchItems(ctx, "   ", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertNotCalled(t, "SearchItems", mock.Anything, mock.Anything, mock.Anything)

	repo.On("SearchItems", ctx, "drill", (*models.Page)(nil)).Return([]*models.Item{{ID: 1}}, nil).Once()
	got, err = svc.SearchItems(ctx, "drill", nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestItemService_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Allowed", func(t *testing.T) {
		svc, repo, now := newTestItemService()
		repo.On("GetUserByID", ctx, int64(3)).Return(&models.User{ID: 3, Name: "bob"}, nil).Once()
		repo.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 2}, nil).Once()
		repo.On("HasFinishedApprovedBooking", ctx, int64(3), int64(1), now).Return(true, nil).Once()
		repo.On("CreateComment", ctx, mock.AnythingOfType("*models.Comment")).
			Run(func(args mock.Arguments) { args.Get(1).(*models.Comment).ID = 9 }).Return(nil).Once()

		got, err := svc.AddComment(ctx, 3, 1, "nice")
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.ID)
		assert.Equal(t, "bob", got.AuthorName)
	})

	t.Run("NoFinishedBooking", func(t *testing.T) {
		svc, repo, now := newTestItemService()
		repo.On("GetUserByID", ctx, int64(3)).Return(&models.User{ID: 3, Name: "bob"}, nil).Once()
		repo.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 2}, nil).Once()
		repo.On("HasFinishedApprovedBooking", ctx, int64(3), int64(1), now).Return(false, nil).Once()

		_, err := svc.AddComment(ctx, 3, 1, "nice")
		assert.ErrorIs(t, err, domain.ErrBadRequest)
		repo.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
	})

	t.Run("BlankText", func(t *testing.T) {
		svc, _, _ := newTestItemService()
		_, err := svc.AddComment(ctx, 3, 1, " ")
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})
}
