package cache_utils

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyCounter is a monotonically increasing counter shared by every
// instance connected to the same Valkey server. A missing key reads as zero.
type ValkeyCounter struct {
	client  valkey.Client
	key     string
	timeout time.Duration
}

func NewValkeyCounter(client valkey.Client, key string) *ValkeyCounter {
	return &ValkeyCounter{
		client:  client,
		key:     key,
		timeout: DefaultCacheTimeout,
	}
}

func (c *ValkeyCounter) Current(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, err := c.client.Do(ctx, c.client.B().Get().Key(c.key).Build()).AsInt64()
	if valkey.IsValkeyNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", c.key, err)
	}

	return uint64(value), nil
}

// Advance increments the counter and returns the new value.
func (c *ValkeyCounter) Advance(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, err := c.client.Do(ctx, c.client.B().Incr().Key(c.key).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", c.key, err)
	}

	return uint64(value), nil
}
