package lock_utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

const (
	defaultTimeout       = 5 * time.Second
	defaultRetryInterval = 100 * time.Millisecond
)

var (
	ErrLockNotAcquired = errors.New("lock is held by another owner")
	ErrLockUnavailable = errors.New("lock backend is unavailable")
)

// Deletes the key only when it still holds the caller's token, so an owner
// whose lease expired cannot release a lock taken over by someone else.
const releaseLuaScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// ValkeyLock is a lease-based mutual exclusion lock shared by every process
// connected to the same Valkey instance. The lease expires after ttl even if
// the owner never releases it.
type ValkeyLock struct {
	client        valkey.Client
	key           string
	ttl           time.Duration
	retryInterval time.Duration
}

func NewValkeyLock(client valkey.Client, key string, ttl time.Duration) *ValkeyLock {
	return &ValkeyLock{
		client:        client,
		key:           key,
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
	}
}

func (l *ValkeyLock) WithRetryInterval(retryInterval time.Duration) *ValkeyLock {
	if retryInterval > 0 {
		l.retryInterval = retryInterval
	}

	return l
}

// Acquire retries until the lock is taken or ctx is done. Backend failures are
// retried like contention; when ctx ends the error wraps ErrLockUnavailable if
// the last attempt failed on the backend and ErrLockNotAcquired otherwise.
// The returned function releases the lock and is safe to call more than once.
func (l *ValkeyLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.New().String()

	var backendErr error
	for {
		acquired, err := l.tryAcquire(ctx, token)
		if acquired {
			released := false
			return func() {
				if released {
					return
				}
				released = true
				l.release(token)
			}, nil
		}

		// a call cut short by ctx says nothing about the backend
		if err == nil || ctx.Err() == nil {
			backendErr = err
		}

		select {
		case <-ctx.Done():
			if backendErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrLockUnavailable, backendErr)
			}
			return nil, fmt.Errorf("%w: %w", ErrLockNotAcquired, ctx.Err())
		case <-time.After(l.retryInterval):
		}
	}
}

func (l *ValkeyLock) tryAcquire(ctx context.Context, token string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := l.client.Do(callCtx, l.client.B().Set().Key(l.key).Value(token).Nx().Px(l.ttl).Build()).Error()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}

	return true, nil
}

func (l *ValkeyLock) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	l.client.Do(ctx, l.client.B().Eval().
		Script(releaseLuaScript).
		Numkeys(1).
		Key(l.key).
		Arg(token).
		Build())
}
