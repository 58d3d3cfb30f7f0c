package service

import "context"

// LoginLimiter throttles credential guessing. The redis implementation in
// internal/storage/redis is the production one.
type LoginLimiter interface {
	IsBlocked(ctx context.Context, key string) (bool, error)
	RegisterFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
