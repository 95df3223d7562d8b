package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner.ID, "Tent")

	start := time.Now().Add(time.Hour).Truncate(time.Second)
	end := start.Add(24 * time.Hour)
	b := createTestBooking(t, db, item.ID, booker.ID, start, end, "")

	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusWaiting, b.Status)
	assert.Equal(t, int64(1), b.Version)
	assert.Equal(t, "Tent", b.ItemName)
	assert.Equal(t, owner.ID, b.OwnerID)
	assert.Equal(t, "booker", b.BookerName)
	assert.True(t, b.Start.Equal(start))
	assert.True(t, b.End.Equal(end))

	_, err := db.GetBooking(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBooking_RejectsInvertedInterval(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner.ID, "Tent")

	start := time.Now().Add(time.Hour)
	err := db.CreateBooking(context.Background(), &models.Booking{
		ItemID: item.ID, BookerID: booker.ID, Start: start, End: start.Add(-time.Minute),
	})
	assert.Error(t, err)
}

func TestUpdateBookingStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner.ID, "Kayak")

	start := time.Now().Add(time.Hour)
	b := createTestBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour), models.StatusWaiting)

	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusApproved))
	assert.ErrorIs(t, db.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusRejected), ErrConcurrentModification)
	assert.ErrorIs(t, db.UpdateBookingStatusWithVersion(ctx, 4242, 1, models.StatusRejected), ErrNotFound)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestUpdateBookingStatusWithVersion_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner.ID, "Bike")

	start := time.Now().Add(time.Hour)
	b := createTestBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour), models.StatusWaiting)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.UpdateBookingStatusWithVersion(ctx, b.ID, b.Version, models.StatusApproved)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, ErrConcurrentModification) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}

func TestListBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	stranger := createTestUser(t, db, "stranger")
	item := createTestItem(t, db, owner.ID, "Camera")

	now := time.Now()
	past := createTestBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.StatusApproved)
	current := createTestBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)
	future := createTestBooking(t, db, item.ID, booker.ID, now.Add(48*time.Hour), now.Add(72*time.Hour), models.StatusWaiting)
	rejected := createTestBooking(t, db, item.ID, booker.ID, now.Add(96*time.Hour), now.Add(120*time.Hour), models.StatusRejected)

	tests := []struct {
		state models.BookingState
		want  []int64
	}{
		{models.StateAll, []int64{rejected.ID, future.ID, current.ID, past.ID}},
		{models.StatePast, []int64{past.ID}},
		{models.StateCurrent, []int64{current.ID}},
		{models.StateFuture, []int64{rejected.ID, future.ID}},
		{models.StateWaiting, []int64{future.ID}},
		{models.StateApproved, []int64{current.ID, past.ID}},
		{models.StateRejected, []int64{rejected.ID}},
	}

	for _, role := range []models.BookingRole{models.RoleBooker, models.RoleOwner} {
		userID := booker.ID
		if role == models.RoleOwner {
			userID = owner.ID
		}
		for _, tt := range tests {
			t.Run(role.String()+"/"+string(tt.state), func(t *testing.T) {
				got, err := db.ListBookings(ctx, models.BookingQuery{Role: role, UserID: userID, State: tt.state, Now: now})
				require.NoError(t, err)

				ids := make([]int64, 0, len(got))
				for _, b := range got {
					ids = append(ids, b.ID)
					if tt.state == models.StatePast || tt.state == models.StateCurrent || tt.state == models.StateFuture {
						assert.Equal(t, tt.state, models.ClassifyBooking(b, now))
					}
				}
				assert.Equal(t, tt.want, ids)
			})
		}
	}

	t.Run("OtherUsersSeeNothing", func(t *testing.T) {
		for _, role := range []models.BookingRole{models.RoleBooker, models.RoleOwner} {
			got, err := db.ListBookings(ctx, models.BookingQuery{Role: role, UserID: stranger.ID, State: models.StateAll, Now: now})
			require.NoError(t, err)
			assert.Empty(t, got)
		}
	})

	t.Run("Paged", func(t *testing.T) {
		got, err := db.ListBookings(ctx, models.BookingQuery{
			Role: models.RoleBooker, UserID: booker.ID, State: models.StateAll, Now: now,
			Page: &models.Page{From: 2, Size: 2},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, current.ID, got[0].ID)
		assert.Equal(t, past.ID, got[1].ID)
	})

	t.Run("UnknownState", func(t *testing.T) {
		_, err := db.ListBookings(ctx, models.BookingQuery{UserID: booker.ID, State: "SOON", Now: now})
		var stateErr *models.UnknownStateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestLastAndNextBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner.ID, "Boat")
	now := time.Now()

	t.Run("NoneYet", func(t *testing.T) {
		last, err := db.GetLastBooking(ctx, item.ID, owner.ID, now)
		require.NoError(t, err)
		assert.Nil(t, last)

		next, err := db.GetNextBooking(ctx, item.ID, owner.ID, now)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	older := createTestBooking(t, db, item.ID, booker.ID, now.Add(-96*time.Hour), now.Add(-72*time.Hour), models.StatusApproved)
	newest := createTestBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusApproved)
	createTestBooking(t, db, item.ID, booker.ID, now.Add(-20*time.Hour), now.Add(-10*time.Hour), models.StatusRejected)
	far := createTestBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(96*time.Hour), models.StatusWaiting)
	near := createTestBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusApproved)
	createTestBooking(t, db, item.ID, booker.ID, now.Add(2*time.Hour), now.Add(3*time.Hour), models.StatusCanceled)

	last, err := db.GetLastBooking(ctx, item.ID, owner.ID, now)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, newest.ID, last.ID)
	assert.Equal(t, booker.ID, last.BookerID)
	assert.NotEqual(t, older.ID, last.ID)

	next, err := db.GetNextBooking(ctx, item.ID, owner.ID, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, near.ID, next.ID)
	assert.NotEqual(t, far.ID, next.ID)

	t.Run("ExcludesCaller", func(t *testing.T) {
		last, err := db.GetLastBooking(ctx, item.ID, booker.ID, now)
		require.NoError(t, err)
		assert.Nil(t, last)
	})
}

func TestHasFinishedApprovedBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	booker := createTestUser(t, db, "booker")
	item := createTestItem(t, db, owner.ID, "Projector")
	now := time.Now()

	createTestBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)
	createTestBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusWaiting)

	ok, err := db.HasFinishedApprovedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	createTestBooking(t, db, item.ID, booker.ID, now.Add(-10*time.Hour), now.Add(-5*time.Hour), models.StatusApproved)
	ok, err = db.HasFinishedApprovedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.HasFinishedApprovedBooking(ctx, owner.ID, item.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)
}
