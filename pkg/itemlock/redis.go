package itemlock

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultTTL           = 30 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
	defaultWaitTimeout   = 10 * time.Second
)

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ReleaseIfOwner(ctx context.Context, key, owner string) (bool, error)
	ItemLockKey(itemName string) string
}

// RedisParams configure a RedisLocker.
type RedisParams struct {
	Store         redisStore
	Logger        *logger.Logger
	TTL           time.Duration
	RetryInterval time.Duration
	WaitTimeout   time.Duration
}

// RedisLocker is a Locker shared by every process pointed at the same Redis.
type RedisLocker struct {
	store         redisStore
	logg          *logger.Logger
	ttl           time.Duration
	retryInterval time.Duration
	waitTimeout   time.Duration
}

func NewRedisLocker(params RedisParams) (*RedisLocker, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	l := &RedisLocker{
		store:         params.Store,
		logg:          params.Logger,
		ttl:           params.TTL,
		retryInterval: params.RetryInterval,
		waitTimeout:   params.WaitTimeout,
	}
	if l.ttl <= 0 {
		l.ttl = defaultTTL
	}
	if l.retryInterval <= 0 {
		l.retryInterval = defaultRetryInterval
	}
	if l.waitTimeout <= 0 {
		l.waitTimeout = defaultWaitTimeout
	}
	return l, nil
}

func (l *RedisLocker) Lock(ctx context.Context, itemName string) (func(), error) {
	key := l.store.ItemLockKey(itemName)
	owner := uuid.NewString()
	deadline := time.Now().Add(l.waitTimeout)

	for {
		ok, err := l.store.SetNX(ctx, key, owner, l.ttl)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "acquire item lock")
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, pkgerrors.New(pkgerrors.CodeLockTimeout, fmt.Sprintf("timed out waiting for lock on %q", itemName))
		}
		timer := time.NewTimer(l.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// release must run even when the caller's ctx is already done
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if _, err := l.store.ReleaseIfOwner(relCtx, key, owner); err != nil {
			l.logg.Warn(l.logg.WithFields(ctx, map[string]any{"lock_key": key, "error": err.Error()}), "failed to release item lock")
		}
	}, nil
}
