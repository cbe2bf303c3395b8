package cache

import (
	"context"
	"sync"
	"time"
)

// Locker runs fn while holding a named lock. acquired is false, with a nil
// error, when another holder has the lock; fn is not run in that case.
type Locker interface {
	WithLock(ctx context.Context, name string, ttl time.Duration, fn func(ctx context.Context) error) (acquired bool, err error)
}

// LocalLocker serialises work inside a single process. It is used when no
// Redis is configured, which is only safe with one replica.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) WithLock(ctx context.Context, name string, _ time.Duration, fn func(ctx context.Context) error) (bool, error) {
	l.mu.Lock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return false, nil
	}
	defer m.Unlock()

	return true, fn(ctx)
}
