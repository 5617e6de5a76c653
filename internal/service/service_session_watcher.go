package service

import (
	"context"
	"sync"
	"time"
)

const maxWatchInterval = 30 * time.Second

type sessionWatcher struct {
	crypto JournalCryptoService

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSessionWatcher creates a sessionWatcher that calls crypto.LockIfIdle on
// a ticker. The watcher is idle until Start is called.
func NewSessionWatcher(crypto JournalCryptoService) SessionWatcher {
	return &sessionWatcher{crypto: crypto}
}

// Start implements SessionWatcher. It stops any previously running watcher,
// then launches a goroutine that checks the session four times per timeout,
// at most every 30 seconds. A zero or negative timeout disables idle locking.
// The goroutine exits when ctx is cancelled or Stop is called.
func (w *sessionWatcher) Start(ctx context.Context, timeout time.Duration) {
	w.Stop()
	if timeout <= 0 {
		return
	}

	interval := min(timeout/4, maxWatchInterval)
	if interval <= 0 {
		interval = timeout
	}

	w.mu.Lock()
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-t.C:
				w.crypto.LockIfIdle(timeout)
			}
		}
	}()
}

// Stop implements SessionWatcher. It cancels the background goroutine's
// context and blocks until the goroutine has fully exited. Safe to call when
// the watcher is not running.
func (w *sessionWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}
