package cache

import (
	"context"
	"time"
)

// NoOpCache satisfies Cache without storing anything. It stands in for
// Redis when no address is configured or the connection fails: every
// lookup is a miss, every write succeeds.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache { return &NoOpCache{} }

func (NoOpCache) GetResponse(context.Context, string) (*Response, error) { return nil, nil }

func (NoOpCache) SetResponse(context.Context, string, *Response, time.Duration) error { return nil }

func (NoOpCache) InvalidateDocument(context.Context, string) error { return nil }

func (NoOpCache) Close() error { return nil }
