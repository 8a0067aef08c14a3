package cache

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mealsteals/dealworker/logger"
)

var (
	// ErrLocked is returned by Acquire when another holder owns the key
	ErrLocked = errors.New("lock already held")
	// ErrLockLost is returned by Release when the lock expired and was taken by someone else
	ErrLockLost = errors.New("lock expired before release")
)

// Lock is an advisory lock backed by a cache key with a TTL. A holder that
// dies leaves the key to expire. The key holds a token unique to the holder
// so a late Release never frees a lock taken over by someone else.
type Lock struct {
	cache CacheService
	key   string
	token []byte
}

// Acquire takes the lock named key for at most ttl
func Acquire(c CacheService, key string, ttl time.Duration) (*Lock, error) {
	token := []byte(uuid.NewString())
	err := c.Add(key, token, ttl)
	if errors.Is(err, ErrNotStored) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	logger.ForCache().Debug().Str("key", key).Dur("ttl", ttl).Msg("Lock acquired")
	return &Lock{cache: c, key: key, token: token}, nil
}

// Release frees the lock if this holder still owns it. Get and Delete are
// two round trips, so a takeover between them is still possible but needs
// the TTL to run out inside that window.
func (l *Lock) Release() error {
	current, err := l.cache.Get(l.key)
	if errors.Is(err, ErrCacheMiss) {
		logger.ForCache().Warn().Str("key", l.key).Msg("Lock expired before release")
		return ErrLockLost
	}
	if err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	if !bytes.Equal(current, l.token) {
		logger.ForCache().Warn().Str("key", l.key).Msg("Lock taken over by another holder, leaving it")
		return ErrLockLost
	}

	if err := l.cache.Delete(l.key); err != nil {
		logger.ForCache().Warn().Err(err).Str("key", l.key).Msg("Lock release failed, waiting for expiry")
		return err
	}
	return nil
}
