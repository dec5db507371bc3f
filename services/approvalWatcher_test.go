package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ChurchPortal/models"
	"github.com/jpillora/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff() *backoff.Backoff {
	return &backoff.Backoff{Min: time.Millisecond, Max: 2 * time.Millisecond, Factor: 2}
}

func collect(t *testing.T, ch <-chan ApprovalStatus) []ApprovalStatus {
	t.Helper()
	var got []ApprovalStatus
	timeout := time.After(2 * time.Second)
	for {
		select {
		case status, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, status)
		case <-timeout:
			t.Fatal("watcher did not finish")
			return got
		}
	}
}

func TestDefaultApprovalBackoff(t *testing.T) {
	b := DefaultApprovalBackoff()
	assert.Equal(t, 10*time.Second, b.Duration())
	assert.Equal(t, 20*time.Second, b.Duration())
	assert.Equal(t, 30*time.Second, b.Duration())
	assert.Equal(t, 30*time.Second, b.Duration())
}

func TestApprovalWatcher_StopsOnApproval(t *testing.T) {
	var polls int32
	fetch := func(ctx context.Context, userID string) (*models.User, error) {
		n := atomic.AddInt32(&polls, 1)
		return &models.User{ID: userID, Is_Approved: n >= 3}, nil
	}

	w := NewApprovalWatcher(fetch, fastBackoff)
	ch, err := w.Watch(context.Background(), "u-1")
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 3)
	assert.False(t, got[0].Approved)
	assert.False(t, got[1].Approved)
	assert.True(t, got[2].Approved)
	assert.Equal(t, "u-1", got[2].User.ID)
	assert.Equal(t, 0, w.Active("u-1"))
}

func TestApprovalWatcher_StopsWhenRemoved(t *testing.T) {
	fetch := func(ctx context.Context, userID string) (*models.User, error) {
		return nil, ErrUserNotFound
	}

	w := NewApprovalWatcher(fetch, fastBackoff)
	ch, err := w.Watch(context.Background(), "u-1")
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 1)
	assert.True(t, got[0].Removed)
	assert.Nil(t, got[0].User)
}

func TestApprovalWatcher_RetriesTransientErrors(t *testing.T) {
	var polls int32
	fetch := func(ctx context.Context, userID string) (*models.User, error) {
		if atomic.AddInt32(&polls, 1) < 3 {
			return nil, errors.New("connection refused")
		}
		return &models.User{ID: userID, Is_Approved: true}, nil
	}

	w := NewApprovalWatcher(fetch, fastBackoff)
	ch, err := w.Watch(context.Background(), "u-1")
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 1)
	assert.True(t, got[0].Approved)
	assert.EqualValues(t, 3, atomic.LoadInt32(&polls))
}

func pendingFetch(ctx context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

func TestApprovalWatcher_Stop(t *testing.T) {
	w := NewApprovalWatcher(pendingFetch, fastBackoff)

	first, err := w.Watch(context.Background(), "u-1")
	require.NoError(t, err)
	second, err := w.Watch(context.Background(), "u-1")
	require.NoError(t, err)
	other, err := w.Watch(context.Background(), "u-2")
	require.NoError(t, err)

	assert.Equal(t, 2, w.Active("u-1"))
	w.Stop("u-1")

	collect(t, first)
	collect(t, second)
	assert.Equal(t, 0, w.Active("u-1"))
	assert.Equal(t, 1, w.Active("u-2"))

	w.StopAll()
	collect(t, other)
}

func TestApprovalWatcher_ContextCancel(t *testing.T) {
	w := NewApprovalWatcher(pendingFetch, fastBackoff)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := w.Watch(ctx, "u-1")
	require.NoError(t, err)

	cancel()
	collect(t, ch)
	assert.Equal(t, 0, w.Active("u-1"))
}

func TestApprovalWatcher_StopAllRefusesNewWatches(t *testing.T) {
	w := NewApprovalWatcher(pendingFetch, fastBackoff)
	w.StopAll()

	_, err := w.Watch(context.Background(), "u-1")
	assert.ErrorIs(t, err, ErrWatcherClosed)
}
