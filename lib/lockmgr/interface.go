package lockmgr

import (
	"context"
	"time"

	"github.com/ValentinKolb/credis/lib/client"
	"github.com/redis/go-redis/v9"
)

// ILockManager defines the interface for a lock provider.
type ILockManager interface {
	// AcquireLock acquires the lock for the given key. A ttl > 0 releases the
	// lock automatically after that period.
	// Return a boolean indicating whether the lock was acquired, an owner ID, and an error if any.
	AcquireLock(ctx context.Context, key any, ttl time.Duration) (ok bool, ownerID string, err error)

	// ReleaseLock releases the lock for the given key if ownerID holds it.
	// Return a boolean indicating whether the lock was released, and an error if any.
	// The method will also return True if the lock did not exist.
	ReleaseLock(ctx context.Context, key any, ownerID string) (ok bool, err error)
}

// Backend is the part of the client the lock manager depends on.
// *client.Client implements it.
type Backend interface {
	Set(ctx context.Context, key, value any, opts client.SetOptions) (bool, error)
	Transaction(ctx context.Context, fn func(*redis.Tx) error, watches ...any) error
	MakeKey(raw any) string
	DecodeValue(data []byte) (any, error)
}
