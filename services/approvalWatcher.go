package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ChurchPortal/models"
	"github.com/jpillora/backoff"
	"go.uber.org/zap"
)

var ErrWatcherClosed = errors.New("approval watcher is closed")

// DefaultApprovalBackoff polls after 10s, 20s, then every 30s.
func DefaultApprovalBackoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    10 * time.Second,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: false,
	}
}

type ProfileFetcher func(ctx context.Context, userID string) (*models.User, error)

type ApprovalStatus struct {
	User     *models.User `json:"user,omitempty"`
	Approved bool         `json:"approved"`
	Removed  bool         `json:"removed"`
}

type watch struct {
	cancel context.CancelFunc
}

// ApprovalWatcher runs one polling task per subscriber while a member waits
// for approval. Every task is cancelled by its context, by Stop for its user,
// or by StopAll.
type ApprovalWatcher struct {
	fetch      ProfileFetcher
	newBackoff func() *backoff.Backoff

	mu      sync.Mutex
	watches map[string]map[*watch]struct{}
	closed  bool
}

func NewApprovalWatcher(fetch ProfileFetcher, newBackoff func() *backoff.Backoff) *ApprovalWatcher {
	return &ApprovalWatcher{
		fetch:      fetch,
		newBackoff: newBackoff,
		watches:    make(map[string]map[*watch]struct{}),
	}
}

// Watch polls userID until the row is approved or removed. Each poll result is
// sent on the returned channel, which is closed when the task ends.
func (w *ApprovalWatcher) Watch(ctx context.Context, userID string) (<-chan ApprovalStatus, error) {
	ctx, cancel := context.WithCancel(ctx)
	wt := &watch{cancel: cancel}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		cancel()
		return nil, ErrWatcherClosed
	}
	if w.watches[userID] == nil {
		w.watches[userID] = make(map[*watch]struct{})
	}
	w.watches[userID][wt] = struct{}{}
	w.mu.Unlock()

	out := make(chan ApprovalStatus, 1)
	go w.run(ctx, userID, wt, out)
	return out, nil
}

func (w *ApprovalWatcher) run(ctx context.Context, userID string, wt *watch, out chan<- ApprovalStatus) {
	defer close(out)
	defer w.remove(userID, wt)
	defer wt.cancel()

	b := w.newBackoff()
	for {
		timer := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		user, err := w.fetch(ctx, userID)
		var status ApprovalStatus
		switch {
		case errors.Is(err, ErrUserNotFound):
			status = ApprovalStatus{Removed: true}
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			zap.S().Warnf("approval poll for %s failed: %v", userID, err)
			continue
		default:
			status = ApprovalStatus{User: user, Approved: user.Is_Approved}
		}

		select {
		case out <- status:
		case <-ctx.Done():
			return
		}

		if status.Approved || status.Removed {
			return
		}
	}
}

// Stop cancels every task watching userID.
func (w *ApprovalWatcher) Stop(userID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for wt := range w.watches[userID] {
		wt.cancel()
	}
	delete(w.watches, userID)
}

// StopAll cancels every task and refuses new ones.
func (w *ApprovalWatcher) StopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	for userID, set := range w.watches {
		for wt := range set {
			wt.cancel()
		}
		delete(w.watches, userID)
	}
}

// Active reports how many tasks are running for userID.
func (w *ApprovalWatcher) Active(userID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watches[userID])
}

func (w *ApprovalWatcher) remove(userID string, wt *watch) {
	w.mu.Lock()
	defer w.mu.Unlock()

	set := w.watches[userID]
	delete(set, wt)
	if len(set) == 0 {
		delete(w.watches, userID)
	}
}
