package pathlock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// RetryDelay is the polling interval while waiting on another process.
const RetryDelay = 50 * time.Millisecond

type entry struct {
	token chan struct{}
	refs  int
}

// Locker hands out exclusive per-path locks.
type Locker struct {
	dir string

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a Locker whose lock files live in dir. An empty dir disables
// cross-process locking.
func New(dir string) *Locker {
	return &Locker{dir: dir, entries: make(map[string]*entry)}
}

// Key returns the lock key for a path: the hex SHA-256 of its absolute form.
func Key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve lock path: %w", err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return hex.EncodeToString(sum[:]), nil
}

// Acquire blocks until path is held exclusively or ctx ends. The returned
// release func must be called exactly once.
func (l *Locker) Acquire(ctx context.Context, path string) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	key, err := Key(path)
	if err != nil {
		return nil, err
	}

	e := l.ref(key)
	select {
	case e.token <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}

	var fileLock *flock.Flock
	if l.dir != "" {
		fileLock, err = l.lockFile(ctx, key)
		if err != nil {
			<-e.token
			l.unref(key, e)
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if fileLock != nil {
				_ = fileLock.Unlock()
			}
			<-e.token
			l.unref(key, e)
		})
	}, nil
}

func (l *Locker) lockFile(ctx context.Context, key string) (*flock.Flock, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fileLock := flock.New(filepath.Join(l.dir, key+".lock"))
	ok, err := fileLock.TryLockContext(ctx, RetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("acquire lock: lock held elsewhere")
	}
	return fileLock, nil
}

func (l *Locker) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{token: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
