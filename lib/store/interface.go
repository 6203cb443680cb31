package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Conn is a connection bound to a single replica role (primary or replica).
// The same method set is used for both roles, the role is decided by whoever
// hands out the connection. *redis.Client satisfies this interface.
//
// Conn is as safe for concurrent use as the underlying implementation. The
// go-redis clients handed out by the sentinel monitor are.
type Conn interface {
	redis.Cmdable

	// Do sends a raw command. It is used where the reply shape depends on the
	// arguments (e.g. LPOP with and without a count).
	Do(ctx context.Context, args ...interface{}) *redis.Cmd
	// Watch runs fn inside an optimistic WATCH/MULTI/EXEC transaction.
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
	// AddHook installs a command hook (metrics, logging).
	AddHook(hook redis.Hook)
	// Close releases the connection pool.
	Close() error
}
