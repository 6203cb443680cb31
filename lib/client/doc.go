/*
Package client provides the namespaced, codec-transparent access layer to a
Redis deployment supervised by Sentinel.

A Client combines four parts:

  - a topology (see package topology) that discovers the current primary and
    one replica through the monitor and derives one connection per role
  - a namespacer (see package keys) that prefixes every key with the tenant
    prefix, e.g. "app:user:1"
  - a codec (see package codec) that turns arbitrary values into opaque byte
    strings and back
  - the routing table (see store.RoleOf) that sends every operation to the
    connection of its fixed role

Writes go to the primary and reads to the replica, so a read directly after
a write may observe stale data while replication catches up.

Eager and lazy clients:

	// connects immediately, fails fast
	c, err := client.New(ctx, conf)

	// no I/O until the first operation, which connects on demand
	c, err := client.NewLazy(conf)

Values:

	_, err = c.Set(ctx, "user:1", map[string]any{"name": "a"}, client.SetOptions{})
	v, err := c.Get(ctx, "user:1") // map[string]any{"name": "a"}

Counters (Incr, Decr, HIncrBy) and raw string operations (Append, GetRange,
SetRange) bypass the codec and work on plain store strings.

Errors raised by the client itself are of type *store.Error and can be
matched with errors.Is against store.ErrInit, store.ErrSentinel,
store.ErrConnection and store.ErrDecode. Errors of the store engine are
returned unchanged.
*/
package client
